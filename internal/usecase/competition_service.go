package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/bloodbowl-league/internal/domain/competition"
	idgen "github.com/riskibarqy/bloodbowl-league/internal/platform/id"
)

type CreateCompetitionInput struct {
	ID                 string
	Name               string
	CommissionerUserID string
}

type CompetitionService struct {
	repo  competition.Repository
	idGen idgen.Generator
	now   func() time.Time
}

func NewCompetitionService(repo competition.Repository, idGen idgen.Generator) *CompetitionService {
	return &CompetitionService{
		repo:  repo,
		idGen: idGen,
		now:   time.Now,
	}
}

func (s *CompetitionService) Create(ctx context.Context, input CreateCompetitionInput) (competition.Competition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.Create")
	defer span.End()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return competition.Competition{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	id := strings.TrimSpace(input.ID)
	if id == "" {
		generated, err := s.idGen.NewID()
		if err != nil {
			return competition.Competition{}, fmt.Errorf("generate competition id: %w", err)
		}
		id = generated
	}

	item := competition.Competition{
		ID:                 id,
		Name:               name,
		CommissionerUserID: strings.TrimSpace(input.CommissionerUserID),
		CreatedAt:          s.now().UTC(),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		if errors.Is(err, competition.ErrDuplicateID) {
			return competition.Competition{}, fmt.Errorf("%w: competition=%s", ErrDuplicateID, id)
		}
		return competition.Competition{}, fmt.Errorf("create competition: %w", err)
	}

	return item, nil
}

func (s *CompetitionService) Get(ctx context.Context, competitionID string) (competition.Competition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.Get")
	defer span.End()

	return requireCompetition(ctx, s.repo, competitionID)
}

// requireCompetition is shared by every service that scopes work to a
// competition.
func requireCompetition(ctx context.Context, repo competition.Repository, competitionID string) (competition.Competition, error) {
	competitionID = strings.TrimSpace(competitionID)
	if competitionID == "" {
		return competition.Competition{}, fmt.Errorf("%w: competition id is required", ErrInvalidInput)
	}

	item, exists, err := repo.GetByID(ctx, competitionID)
	if err != nil {
		return competition.Competition{}, fmt.Errorf("get competition: %w", err)
	}
	if !exists {
		return competition.Competition{}, fmt.Errorf("%w: competition=%s", ErrNotFound, competitionID)
	}
	return item, nil
}
