package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/riskibarqy/bloodbowl-league/internal/domain/notification"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/roster"
	"github.com/riskibarqy/bloodbowl-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/bloodbowl-league/internal/platform/logging"
)

type sequentialIDs struct {
	mu sync.Mutex
	n  int
}

func (g *sequentialIDs) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%03d", g.n), nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []notification.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...notification.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.err
}

func (p *recordingPublisher) recipients() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.RecipientUserID)
	}
	return out
}

type harness struct {
	store        *memory.Store
	competitions *CompetitionService
	rosters      *RosterService
	matches      *MatchService
	schedules    *ScheduleService
	standings    *StandingService
	publisher    *recordingPublisher
}

func newHarness(t *testing.T, cfg MatchServiceConfig) *harness {
	t.Helper()

	if cfg.NewInjuryID == nil {
		cfg.NewInjuryID = func() string { return "injury" }
	}

	store := memory.NewStore()
	ids := &sequentialIDs{}
	publisher := &recordingPublisher{}
	competitionRepo := store.Competitions()

	return &harness{
		store:        store,
		competitions: NewCompetitionService(competitionRepo, ids),
		rosters:      NewRosterService(competitionRepo, store.Rosters(), store.Events(), ids),
		matches:      NewMatchService(competitionRepo, store.Matches(), store, publisher, ids, logging.NewNop(), cfg),
		schedules:    NewScheduleService(competitionRepo, store, ids),
		standings:    NewStandingService(competitionRepo, store.Rosters(), store.Matches()),
		publisher:    publisher,
	}
}

func (h *harness) competition(t *testing.T, id string) {
	t.Helper()
	if _, err := h.competitions.Create(context.Background(), CreateCompetitionInput{ID: id, Name: "League " + id}); err != nil {
		t.Fatalf("create competition: %v", err)
	}
}

func (h *harness) enroll(t *testing.T, competitionID, teamName, coachUserID string, uids ...string) roster.Roster {
	t.Helper()

	players := make([]EnrollPlayerInput, 0, len(uids))
	for i, uid := range uids {
		players = append(players, EnrollPlayerInput{UID: uid, Name: "Player " + uid, Position: "Lineman", Number: i + 1})
	}
	item, err := h.rosters.Enroll(context.Background(), EnrollRosterInput{
		CompetitionID: competitionID,
		TeamName:      teamName,
		CoachName:     "Coach " + teamName,
		CoachUserID:   coachUserID,
		Race:          "Human",
		Players:       players,
	})
	if err != nil {
		t.Fatalf("enroll roster: %v", err)
	}
	return item
}

func (h *harness) roster(t *testing.T, rosterID string) roster.Roster {
	t.Helper()
	item, err := h.rosters.Get(context.Background(), rosterID)
	if err != nil {
		t.Fatalf("get roster: %v", err)
	}
	return item
}
