package cache

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/bloodbowl-league/internal/domain/competition"
	competitionmock "github.com/riskibarqy/bloodbowl-league/internal/mocks/domain/competition"
	basecache "github.com/riskibarqy/bloodbowl-league/internal/platform/cache"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCompetitionRepository_CachesLookups(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := competitionmock.NewRepository(t)
	repo := NewCompetitionRepository(next, basecache.NewStore(time.Minute, nil))

	next.On("GetByID", mock.Anything, "c1").Return(competition.Competition{ID: "c1", Name: "Cup"}, true, nil).Once()

	for i := 0; i < 3; i++ {
		got, ok, err := repo.GetByID(ctx, "c1")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "Cup", got.Name)
	}
}

func TestCompetitionRepository_CreateDropsCachedMiss(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := competitionmock.NewRepository(t)
	repo := NewCompetitionRepository(next, basecache.NewStore(time.Minute, nil))

	next.On("GetByID", mock.Anything, "c1").Return(competition.Competition{}, false, nil).Once()
	_, ok, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	require.False(t, ok)

	item := competition.Competition{ID: "c1", Name: "Cup"}
	next.On("Create", ctx, item).Return(nil).Once()
	require.NoError(t, repo.Create(ctx, item))

	next.On("GetByID", mock.Anything, "c1").Return(item, true, nil).Once()
	got, ok, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, item, got)
}

func TestCompetitionRepository_LockingReadBypassesCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := competitionmock.NewRepository(t)
	repo := NewCompetitionRepository(next, basecache.NewStore(time.Minute, nil))

	item := competition.Competition{ID: "c1", Name: "Cup"}
	next.On("GetByID", mock.Anything, "c1").Return(item, true, nil).Once()
	_, _, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)

	next.On("GetByIDForUpdate", mock.Anything, "c1").Return(item, true, nil).Twice()
	for i := 0; i < 2; i++ {
		got, ok, err := repo.GetByIDForUpdate(ctx, "c1")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, item, got)
	}
}
