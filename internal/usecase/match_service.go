package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/bloodbowl-league/internal/domain/competition"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/match"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/notification"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/progression"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/roster"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/txn"
	idgen "github.com/riskibarqy/bloodbowl-league/internal/platform/id"
	"github.com/riskibarqy/bloodbowl-league/internal/platform/logging"
	"github.com/riskibarqy/bloodbowl-league/internal/platform/resilience"
	"go.opentelemetry.io/otel/attribute"
)

// NotificationPublisher hands events to an asynchronous delivery path. It must
// not block on the outside system.
type NotificationPublisher interface {
	Publish(ctx context.Context, events ...notification.Event) error
}

type CreateMatchInput struct {
	ID            string
	CompetitionID string
	HomeRosterID  string
	AwayRosterID  string
	Round         string
	Data          match.Data
}

type ReportMatchInput struct {
	MatchID string
	Data    match.Data
}

type EditMatchInput struct {
	MatchID string
	Data    match.Data
}

type MatchServiceConfig struct {
	// RestoreSuspensions makes a retraction set miss-next-game again on the
	// players whose flag the retracted apply had cleared.
	RestoreSuspensions bool
	// NewInjuryID overrides the injury id source. Nil means random UUIDs.
	NewInjuryID func() string
}

type MatchService struct {
	competitionRepo competition.Repository
	matchRepo       match.Repository
	uow             txn.UnitOfWork
	engine          *progression.Engine
	locks           *resilience.KeyedMutex
	publisher       NotificationPublisher
	idGen           idgen.Generator
	logger          *logging.Logger
	restore         bool
	now             func() time.Time
}

func NewMatchService(
	competitionRepo competition.Repository,
	matchRepo match.Repository,
	uow txn.UnitOfWork,
	publisher NotificationPublisher,
	idGen idgen.Generator,
	logger *logging.Logger,
	cfg MatchServiceConfig,
) *MatchService {
	if logger == nil {
		logger = logging.Default()
	}

	return &MatchService{
		competitionRepo: competitionRepo,
		matchRepo:       matchRepo,
		uow:             uow,
		engine:          progression.NewEngine(cfg.NewInjuryID),
		locks:           resilience.NewKeyedMutex(),
		publisher:       publisher,
		idGen:           idGen,
		logger:          logger,
		restore:         cfg.RestoreSuspensions,
		now:             time.Now,
	}
}

// Create records an already played match and applies both sides.
func (s *MatchService) Create(ctx context.Context, input CreateMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Create",
		attribute.String("competition.id", input.CompetitionID))
	defer span.End()

	homeID := strings.TrimSpace(input.HomeRosterID)
	awayID := strings.TrimSpace(input.AwayRosterID)
	switch {
	case homeID == "" || awayID == "":
		return match.Match{}, fmt.Errorf("%w: homeRosterId and awayRosterId are required", ErrInvalidRosterReference)
	case homeID == awayID:
		return match.Match{}, fmt.Errorf("%w: roster=%s cannot play itself", ErrInvalidRosterReference, homeID)
	}
	if err := validateMatchData(input.Data); err != nil {
		return match.Match{}, err
	}

	comp, err := requireCompetition(ctx, s.competitionRepo, input.CompetitionID)
	if err != nil {
		return match.Match{}, err
	}

	matchID := strings.TrimSpace(input.ID)
	if matchID == "" {
		matchID, err = s.idGen.NewID()
		if err != nil {
			return match.Match{}, fmt.Errorf("generate match id: %w", err)
		}
	}

	unlock, err := s.locks.Lock(ctx, homeID, awayID)
	if err != nil {
		return match.Match{}, fmt.Errorf("acquire roster locks: %w", err)
	}
	defer unlock()

	var (
		created    match.Match
		home, away roster.Roster
	)
	err = s.uow.Do(ctx, func(ctx context.Context, repos txn.Repositories) error {
		var err error
		if _, exists, err := repos.Matches.GetByID(ctx, matchID); err != nil {
			return fmt.Errorf("get match: %w", err)
		} else if exists {
			return fmt.Errorf("%w: match=%s", ErrDuplicateID, matchID)
		}

		home, err = loadSideRoster(ctx, repos, comp.ID, homeID, "home")
		if err != nil {
			return err
		}
		away, err = loadSideRoster(ctx, repos, comp.ID, awayID, "away")
		if err != nil {
			return err
		}

		now := s.now().UTC()
		created = match.Match{
			ID:            matchID,
			CompetitionID: comp.ID,
			HomeRosterID:  homeID,
			AwayRosterID:  awayID,
			Round:         strings.TrimSpace(input.Round),
			Status:        match.StatusPlayed,
			Data:          withSideNames(input.Data.Clone(), home, away),
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if home, err = s.applySide(ctx, repos, created, home, created.Data.HomeTeam.Players); err != nil {
			return err
		}
		if away, err = s.applySide(ctx, repos, created, away, created.Data.AwayTeam.Players); err != nil {
			return err
		}

		if err := repos.Matches.Insert(ctx, created); err != nil {
			if errors.Is(err, match.ErrDuplicateID) {
				return fmt.Errorf("%w: match=%s", ErrDuplicateID, matchID)
			}
			return fmt.Errorf("insert match: %w", err)
		}
		return nil
	})
	if err != nil {
		return match.Match{}, err
	}

	s.notifyResult(ctx, created, home, away)
	return created, nil
}

// Report plays a scheduled match.
func (s *MatchService) Report(ctx context.Context, input ReportMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Report", attribute.String("match.id", input.MatchID))
	defer span.End()

	if err := validateMatchData(input.Data); err != nil {
		return match.Match{}, err
	}

	current, unlock, err := s.lockMatch(ctx, input.MatchID)
	if err != nil {
		return match.Match{}, err
	}
	defer unlock()

	var (
		reported   match.Match
		home, away roster.Roster
	)
	err = s.uow.Do(ctx, func(ctx context.Context, repos txn.Repositories) error {
		m, err := reloadMatch(ctx, repos, current.ID)
		if err != nil {
			return err
		}
		if m.Status != match.StatusScheduled {
			return fmt.Errorf("%w: match=%s status=%s", ErrMatchAlreadyPlayed, m.ID, m.Status)
		}

		if home, err = loadSideRoster(ctx, repos, m.CompetitionID, m.HomeRosterID, "home"); err != nil {
			return err
		}
		if away, err = loadSideRoster(ctx, repos, m.CompetitionID, m.AwayRosterID, "away"); err != nil {
			return err
		}

		m.Status = match.StatusPlayed
		m.Data = withSideNames(input.Data.Clone(), home, away)
		m.UpdatedAt = s.now().UTC()

		if home, err = s.applySide(ctx, repos, m, home, m.Data.HomeTeam.Players); err != nil {
			return err
		}
		if away, err = s.applySide(ctx, repos, m, away, m.Data.AwayTeam.Players); err != nil {
			return err
		}

		if err := repos.Matches.Update(ctx, m); err != nil {
			return matchWriteError("update match", err)
		}
		reported = m
		return nil
	})
	if err != nil {
		return match.Match{}, err
	}

	s.notifyResult(ctx, reported, home, away)
	return reported, nil
}

// Edit replaces the result of a played match. The previous progression is
// retracted before the new data is applied.
func (s *MatchService) Edit(ctx context.Context, input EditMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Edit", attribute.String("match.id", input.MatchID))
	defer span.End()

	if err := validateMatchData(input.Data); err != nil {
		return match.Match{}, err
	}

	current, unlock, err := s.lockMatch(ctx, input.MatchID)
	if err != nil {
		return match.Match{}, err
	}
	defer unlock()

	var edited match.Match
	err = s.uow.Do(ctx, func(ctx context.Context, repos txn.Repositories) error {
		m, err := reloadMatch(ctx, repos, current.ID)
		if err != nil {
			return err
		}
		if m.Status != match.StatusPlayed {
			return fmt.Errorf("%w: match=%s status=%s", ErrMatchNotPlayed, m.ID, m.Status)
		}

		home, err := loadSideRoster(ctx, repos, m.CompetitionID, m.HomeRosterID, "home")
		if err != nil {
			return err
		}
		away, err := loadSideRoster(ctx, repos, m.CompetitionID, m.AwayRosterID, "away")
		if err != nil {
			return err
		}

		if home, err = s.revertSide(ctx, repos, m, home, m.Data.HomeTeam.Players); err != nil {
			return err
		}
		if away, err = s.revertSide(ctx, repos, m, away, m.Data.AwayTeam.Players); err != nil {
			return err
		}

		m.Data = withSideNames(input.Data.Clone(), home, away)
		m.UpdatedAt = s.now().UTC()

		if _, err = s.applySide(ctx, repos, m, home, m.Data.HomeTeam.Players); err != nil {
			return err
		}
		if _, err = s.applySide(ctx, repos, m, away, m.Data.AwayTeam.Players); err != nil {
			return err
		}

		if err := repos.Matches.Update(ctx, m); err != nil {
			return matchWriteError("update match", err)
		}
		edited = m
		return nil
	})
	if err != nil {
		return match.Match{}, err
	}

	return edited, nil
}

// Delete removes a match. A played match has its progression retracted first.
func (s *MatchService) Delete(ctx context.Context, matchID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Delete", attribute.String("match.id", matchID))
	defer span.End()

	current, unlock, err := s.lockMatch(ctx, matchID)
	if err != nil {
		return err
	}
	defer unlock()

	return s.uow.Do(ctx, func(ctx context.Context, repos txn.Repositories) error {
		m, err := reloadMatch(ctx, repos, current.ID)
		if err != nil {
			return err
		}

		if m.Status == match.StatusPlayed {
			home, err := loadSideRoster(ctx, repos, m.CompetitionID, m.HomeRosterID, "home")
			if err != nil {
				return err
			}
			away, err := loadSideRoster(ctx, repos, m.CompetitionID, m.AwayRosterID, "away")
			if err != nil {
				return err
			}
			if _, err := s.revertSide(ctx, repos, m, home, m.Data.HomeTeam.Players); err != nil {
				return err
			}
			if _, err := s.revertSide(ctx, repos, m, away, m.Data.AwayTeam.Players); err != nil {
				return err
			}
		}

		if err := repos.Matches.Delete(ctx, m.ID); err != nil {
			return matchWriteError("delete match", err)
		}
		return nil
	})
}

func (s *MatchService) Get(ctx context.Context, matchID string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Get")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	m, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	return m, nil
}

// ListByCompetition lists matches, optionally narrowed to one status.
func (s *MatchService) ListByCompetition(ctx context.Context, competitionID, status string) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListByCompetition")
	defer span.End()

	filter := match.Filter{}
	if strings.TrimSpace(status) != "" {
		filter.Status = match.NormalizeStatus(status)
		if !filter.Status.Valid() {
			return nil, fmt.Errorf("%w: status must be scheduled or played, got %q", ErrInvalidInput, status)
		}
	}

	comp, err := requireCompetition(ctx, s.competitionRepo, competitionID)
	if err != nil {
		return nil, err
	}

	items, err := s.matchRepo.ListByCompetition(ctx, comp.ID, filter)
	if err != nil {
		return nil, fmt.Errorf("list matches by competition: %w", err)
	}
	return items, nil
}

// lockMatch reads the match outside the transaction to learn its rosters and
// takes their locks. Roster ids never change after creation.
func (s *MatchService) lockMatch(ctx context.Context, matchID string) (match.Match, func(), error) {
	m, err := s.Get(ctx, matchID)
	if err != nil {
		return match.Match{}, nil, err
	}

	unlock, err := s.locks.Lock(ctx, m.HomeRosterID, m.AwayRosterID)
	if err != nil {
		return match.Match{}, nil, fmt.Errorf("acquire roster locks: %w", err)
	}
	return m, unlock, nil
}

func (s *MatchService) applySide(ctx context.Context, repos txn.Repositories, m match.Match, r roster.Roster, entries []match.PlayerEntry) (roster.Roster, error) {
	eventID, err := s.idGen.NewID()
	if err != nil {
		return roster.Roster{}, fmt.Errorf("generate progression event id: %w", err)
	}

	updated, ev := s.engine.ApplyEvent(r, progression.Event{
		ID:            eventID,
		MatchID:       m.ID,
		CompetitionID: m.CompetitionID,
		Entries:       entries,
		AppliedAt:     s.now().UTC(),
	})

	stored, err := s.storeRoster(ctx, repos, updated)
	if err != nil {
		return roster.Roster{}, err
	}

	ev.RosterVersion = stored.Version
	if err := repos.Events.Append(ctx, ev); err != nil {
		if errors.Is(err, progression.ErrEventExists) {
			return roster.Roster{}, fmt.Errorf("%w: %w: match=%s roster=%s", ErrConflict, err, m.ID, r.ID)
		}
		return roster.Roster{}, fmt.Errorf("append progression event: %w", err)
	}
	return stored, nil
}

// revertSide retracts the active event for the side. Matches stored before
// the event log existed fall back to reverting their recorded entries.
func (s *MatchService) revertSide(ctx context.Context, repos txn.Repositories, m match.Match, r roster.Roster, stored []match.PlayerEntry) (roster.Roster, error) {
	ev, found, err := repos.Events.GetActive(ctx, m.ID, r.ID)
	if err != nil {
		return roster.Roster{}, fmt.Errorf("get active progression event: %w", err)
	}

	var updated roster.Roster
	if found {
		updated = s.engine.Retract(r, ev, s.restore)
	} else {
		s.logger.WarnContext(ctx, "no active progression event, reverting stored match data",
			"match_id", m.ID,
			"roster_id", r.ID,
		)
		updated = s.engine.Revert(r, stored)
	}

	out, err := s.storeRoster(ctx, repos, updated)
	if err != nil {
		return roster.Roster{}, err
	}

	if found {
		if err := repos.Events.Retract(ctx, ev.ID, s.now().UTC()); err != nil {
			return roster.Roster{}, fmt.Errorf("retract progression event: %w", err)
		}
	}
	return out, nil
}

func (s *MatchService) storeRoster(ctx context.Context, repos txn.Repositories, r roster.Roster) (roster.Roster, error) {
	r.UpdatedAt = s.now().UTC()
	stored, err := repos.Rosters.Update(ctx, r)
	if err != nil {
		if errors.Is(err, roster.ErrStaleVersion) {
			return roster.Roster{}, fmt.Errorf("%w: %w: roster=%s version=%d", ErrConflict, err, r.ID, r.Version)
		}
		return roster.Roster{}, fmt.Errorf("update roster: %w", err)
	}
	return stored, nil
}

func (s *MatchService) notifyResult(ctx context.Context, m match.Match, home, away roster.Roster) {
	if s.publisher == nil {
		return
	}

	title := fmt.Sprintf("Result: %s %d - %d %s", home.TeamName, m.Data.HomeScore, m.Data.AwayScore, away.TeamName)
	body := fmt.Sprintf("%s %d - %d %s", home.TeamName, m.Data.HomeScore, m.Data.AwayScore, away.TeamName)
	if m.Round != "" {
		body = fmt.Sprintf("Round %s: %s", m.Round, body)
	}

	recipients := make([]string, 0, 2)
	for _, uid := range []string{home.CoachUserID, away.CoachUserID} {
		if uid == "" || (len(recipients) > 0 && recipients[0] == uid) {
			continue
		}
		recipients = append(recipients, uid)
	}

	events := make([]notification.Event, 0, len(recipients))
	for _, uid := range recipients {
		id, err := s.idGen.NewID()
		if err != nil {
			s.logger.WarnContext(ctx, "generate notification id failed", "match_id", m.ID, "error", err)
			return
		}
		events = append(events, notification.Event{
			ID:              id,
			RecipientUserID: uid,
			Kind:            notification.KindMatchResult,
			Title:           title,
			Body:            body,
			EntityType:      notification.EntityTypeMatch,
			EntityID:        m.ID,
			CreatedAt:       m.UpdatedAt,
		})
	}
	if len(events) == 0 {
		return
	}

	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.WarnContext(ctx, "publish match result notification failed", "match_id", m.ID, "error", err)
	}
}

func validateMatchData(data match.Data) error {
	if err := data.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

// reloadMatch reads the match under a row lock so a concurrent writer that
// committed first is observed.
func reloadMatch(ctx context.Context, repos txn.Repositories, matchID string) (match.Match, error) {
	m, exists, err := repos.Matches.GetByIDForUpdate(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	return m, nil
}

func matchWriteError(op string, err error) error {
	if errors.Is(err, match.ErrNotFound) {
		return fmt.Errorf("%w: %s: %w", ErrNotFound, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func loadSideRoster(ctx context.Context, repos txn.Repositories, competitionID, rosterID, side string) (roster.Roster, error) {
	r, exists, err := repos.Rosters.GetByIDForUpdate(ctx, rosterID)
	if err != nil {
		return roster.Roster{}, fmt.Errorf("get %s roster: %w", side, err)
	}
	if !exists || r.CompetitionID != competitionID {
		return roster.Roster{}, fmt.Errorf("%w: %s roster=%s is not enrolled in competition=%s", ErrInvalidRosterReference, side, rosterID, competitionID)
	}
	return r, nil
}

// withSideNames fills blank team descriptors from the rosters.
func withSideNames(data match.Data, home, away roster.Roster) match.Data {
	fill := func(side *match.TeamSide, r roster.Roster) {
		if side.TeamName == "" {
			side.TeamName = r.TeamName
		}
		if side.CoachName == "" {
			side.CoachName = r.CoachName
		}
		if side.Race == "" {
			side.Race = r.Race
		}
	}
	fill(&data.HomeTeam, home)
	fill(&data.AwayTeam, away)
	return data
}
