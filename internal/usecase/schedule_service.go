package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/bloodbowl-league/internal/domain/competition"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/match"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/schedule"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/txn"
	idgen "github.com/riskibarqy/bloodbowl-league/internal/platform/id"
	"github.com/riskibarqy/bloodbowl-league/internal/platform/resilience"
	"go.opentelemetry.io/otel/attribute"
)

type ScheduleResult struct {
	Rounds  int
	Matches []match.Match
}

type ScheduleService struct {
	competitionRepo competition.Repository
	uow             txn.UnitOfWork
	idGen           idgen.Generator
	locks           *resilience.KeyedMutex
	now             func() time.Time
}

func NewScheduleService(competitionRepo competition.Repository, uow txn.UnitOfWork, idGen idgen.Generator) *ScheduleService {
	return &ScheduleService{
		competitionRepo: competitionRepo,
		uow:             uow,
		idGen:           idGen,
		locks:           resilience.NewKeyedMutex(),
		now:             time.Now,
	}
}

// Generate creates a single round-robin of scheduled matches for every
// enrolled roster. Nothing is written unless all fixtures are stored.
func (s *ScheduleService) Generate(ctx context.Context, competitionID string) (ScheduleResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.Generate",
		attribute.String("competition.id", competitionID))
	defer span.End()

	comp, err := requireCompetition(ctx, s.competitionRepo, competitionID)
	if err != nil {
		return ScheduleResult{}, err
	}

	unlock, err := s.lockCompetition(ctx, comp.ID)
	if err != nil {
		return ScheduleResult{}, err
	}
	defer unlock()

	var result ScheduleResult
	err = s.uow.Do(ctx, func(ctx context.Context, repos txn.Repositories) error {
		if err := lockCompetitionRow(ctx, repos, comp.ID); err != nil {
			return err
		}

		pending, err := repos.Matches.ListByCompetition(ctx, comp.ID, match.Filter{Status: match.StatusScheduled})
		if err != nil {
			return fmt.Errorf("list scheduled matches: %w", err)
		}
		if len(pending) > 0 {
			return fmt.Errorf("%w: competition=%s has %d scheduled matches", ErrScheduleAlreadyExists, comp.ID, len(pending))
		}

		rosters, err := repos.Rosters.ListByCompetition(ctx, comp.ID)
		if err != nil {
			return fmt.Errorf("list rosters by competition: %w", err)
		}
		ids := make([]string, 0, len(rosters))
		names := make(map[string]match.TeamSide, len(rosters))
		for _, r := range rosters {
			ids = append(ids, r.ID)
			names[r.ID] = match.TeamSide{TeamName: r.TeamName, CoachName: r.CoachName, Race: r.Race}
		}

		pairings, rounds, err := schedule.Generate(ids)
		if err != nil {
			if errors.Is(err, schedule.ErrInsufficientParticipants) {
				return fmt.Errorf("%w: competition=%s has %d rosters", ErrInsufficientParticipants, comp.ID, len(ids))
			}
			return fmt.Errorf("generate schedule: %w", err)
		}

		now := s.now().UTC()
		items := make([]match.Match, 0, len(pairings))
		for _, p := range pairings {
			id, err := s.idGen.NewID()
			if err != nil {
				return fmt.Errorf("generate match id: %w", err)
			}
			items = append(items, match.Match{
				ID:            id,
				CompetitionID: comp.ID,
				HomeRosterID:  p.Home,
				AwayRosterID:  p.Away,
				Round:         p.RoundLabel(),
				Status:        match.StatusScheduled,
				Data: match.Data{
					HomeTeam: names[p.Home],
					AwayTeam: names[p.Away],
				},
				CreatedAt: now,
				UpdatedAt: now,
			})
		}

		if err := repos.Matches.InsertMany(ctx, items); err != nil {
			if errors.Is(err, match.ErrDuplicateID) {
				return fmt.Errorf("%w: %w", ErrDuplicateID, err)
			}
			return fmt.Errorf("insert scheduled matches: %w", err)
		}

		result = ScheduleResult{Rounds: rounds, Matches: items}
		return nil
	})
	if err != nil {
		return ScheduleResult{}, err
	}

	return result, nil
}

// DeleteSchedule removes scheduled matches only. Played matches and their
// progression stay untouched.
func (s *ScheduleService) DeleteSchedule(ctx context.Context, competitionID string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.DeleteSchedule",
		attribute.String("competition.id", competitionID))
	defer span.End()

	comp, err := requireCompetition(ctx, s.competitionRepo, competitionID)
	if err != nil {
		return 0, err
	}

	unlock, err := s.lockCompetition(ctx, comp.ID)
	if err != nil {
		return 0, err
	}
	defer unlock()

	var deleted int
	err = s.uow.Do(ctx, func(ctx context.Context, repos txn.Repositories) error {
		if err := lockCompetitionRow(ctx, repos, comp.ID); err != nil {
			return err
		}

		n, err := repos.Matches.DeleteByStatus(ctx, comp.ID, match.StatusScheduled)
		if err != nil {
			return fmt.Errorf("delete scheduled matches: %w", err)
		}
		deleted = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	return deleted, nil
}

func (s *ScheduleService) lockCompetition(ctx context.Context, competitionID string) (func(), error) {
	unlock, err := s.locks.Lock(ctx, "competition:"+competitionID)
	if err != nil {
		return nil, fmt.Errorf("acquire competition lock: %w", err)
	}
	return unlock, nil
}

// lockCompetitionRow serializes schedule writers across processes. The
// scheduled-match check that follows only holds while the lock is kept.
func lockCompetitionRow(ctx context.Context, repos txn.Repositories, competitionID string) error {
	_, exists, err := repos.Competitions.GetByIDForUpdate(ctx, competitionID)
	if err != nil {
		return fmt.Errorf("lock competition: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: competition=%s", ErrNotFound, competitionID)
	}
	return nil
}
