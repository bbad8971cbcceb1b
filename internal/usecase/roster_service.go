package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/bloodbowl-league/internal/domain/competition"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/progression"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/roster"
	idgen "github.com/riskibarqy/bloodbowl-league/internal/platform/id"
)

type EnrollPlayerInput struct {
	UID      string
	Name     string
	Position string
	Number   int
}

type EnrollRosterInput struct {
	CompetitionID string
	TeamName      string
	CoachName     string
	CoachUserID   string
	Race          string
	Players       []EnrollPlayerInput
}

type RosterService struct {
	competitionRepo competition.Repository
	rosterRepo      roster.Repository
	eventRepo       progression.Repository
	idGen           idgen.Generator
	now             func() time.Time
}

func NewRosterService(
	competitionRepo competition.Repository,
	rosterRepo roster.Repository,
	eventRepo progression.Repository,
	idGen idgen.Generator,
) *RosterService {
	return &RosterService{
		competitionRepo: competitionRepo,
		rosterRepo:      rosterRepo,
		eventRepo:       eventRepo,
		idGen:           idGen,
		now:             time.Now,
	}
}

// Enroll registers a team in a competition with fresh progression counters.
func (s *RosterService) Enroll(ctx context.Context, input EnrollRosterInput) (roster.Roster, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.Enroll")
	defer span.End()

	teamName := strings.TrimSpace(input.TeamName)
	if teamName == "" {
		return roster.Roster{}, fmt.Errorf("%w: teamName is required", ErrInvalidInput)
	}

	comp, err := requireCompetition(ctx, s.competitionRepo, input.CompetitionID)
	if err != nil {
		return roster.Roster{}, err
	}

	players := make([]roster.Player, 0, len(input.Players))
	seen := make(map[string]struct{}, len(input.Players))
	for i, p := range input.Players {
		uid := strings.TrimSpace(p.UID)
		if uid == "" {
			uid, err = s.idGen.NewID()
			if err != nil {
				return roster.Roster{}, fmt.Errorf("generate player uid: %w", err)
			}
		}
		if _, dup := seen[uid]; dup {
			return roster.Roster{}, fmt.Errorf("%w: players[%d] duplicates uid %s", ErrInvalidInput, i, uid)
		}
		seen[uid] = struct{}{}

		players = append(players, roster.Player{
			UID:      uid,
			Name:     strings.TrimSpace(p.Name),
			Position: strings.TrimSpace(p.Position),
			Number:   p.Number,
		})
	}

	rosterID, err := s.idGen.NewID()
	if err != nil {
		return roster.Roster{}, fmt.Errorf("generate roster id: %w", err)
	}

	now := s.now().UTC()
	item := roster.Roster{
		ID:            rosterID,
		CompetitionID: comp.ID,
		TeamName:      teamName,
		CoachName:     strings.TrimSpace(input.CoachName),
		CoachUserID:   strings.TrimSpace(input.CoachUserID),
		Race:          strings.TrimSpace(input.Race),
		Players:       players,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.rosterRepo.Create(ctx, item); err != nil {
		return roster.Roster{}, fmt.Errorf("create roster: %w", err)
	}

	return item, nil
}

func (s *RosterService) Get(ctx context.Context, rosterID string) (roster.Roster, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.Get")
	defer span.End()

	rosterID = strings.TrimSpace(rosterID)
	if rosterID == "" {
		return roster.Roster{}, fmt.Errorf("%w: roster id is required", ErrInvalidInput)
	}

	item, exists, err := s.rosterRepo.GetByID(ctx, rosterID)
	if err != nil {
		return roster.Roster{}, fmt.Errorf("get roster: %w", err)
	}
	if !exists {
		return roster.Roster{}, fmt.Errorf("%w: roster=%s", ErrNotFound, rosterID)
	}
	return item, nil
}

func (s *RosterService) ListByCompetition(ctx context.Context, competitionID string) ([]roster.Roster, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.ListByCompetition")
	defer span.End()

	comp, err := requireCompetition(ctx, s.competitionRepo, competitionID)
	if err != nil {
		return nil, err
	}

	items, err := s.rosterRepo.ListByCompetition(ctx, comp.ID)
	if err != nil {
		return nil, fmt.Errorf("list rosters by competition: %w", err)
	}
	return items, nil
}

// ListProgression returns every event applied to the roster, retracted ones
// included, oldest first.
func (s *RosterService) ListProgression(ctx context.Context, rosterID string) ([]progression.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.ListProgression")
	defer span.End()

	item, err := s.Get(ctx, rosterID)
	if err != nil {
		return nil, err
	}

	events, err := s.eventRepo.ListByRoster(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("list progression events: %w", err)
	}
	return events, nil
}
