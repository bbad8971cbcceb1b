package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/bloodbowl-league/internal/domain/competition"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/match"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/roster"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/standing"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

type StandingService struct {
	competitionRepo competition.Repository
	rosterRepo      roster.Repository
	matchRepo       match.Repository
}

func NewStandingService(competitionRepo competition.Repository, rosterRepo roster.Repository, matchRepo match.Repository) *StandingService {
	return &StandingService{
		competitionRepo: competitionRepo,
		rosterRepo:      rosterRepo,
		matchRepo:       matchRepo,
	}
}

// List derives the competition table from played matches. Nothing is cached
// or persisted.
func (s *StandingService) List(ctx context.Context, competitionID string) ([]standing.Row, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingService.List", attribute.String("competition.id", competitionID))
	defer span.End()

	comp, err := requireCompetition(ctx, s.competitionRepo, competitionID)
	if err != nil {
		return nil, err
	}

	var (
		rosters []roster.Roster
		matches []match.Match
	)
	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		items, err := s.rosterRepo.ListByCompetition(ctx, comp.ID)
		if err != nil {
			return fmt.Errorf("list rosters by competition: %w", err)
		}
		rosters = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := s.matchRepo.ListByCompetition(ctx, comp.ID, match.Filter{Status: match.StatusPlayed})
		if err != nil {
			return fmt.Errorf("list played matches: %w", err)
		}
		matches = items
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	return standing.Compute(rosters, matches), nil
}
