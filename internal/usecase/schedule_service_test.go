package usecase

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/bloodbowl-league/internal/domain/competition"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/match"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/txn"
)

func TestScheduleService_GenerateFourRosters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, MatchServiceConfig{})
	h.competition(t, "c1")
	for _, name := range []string{"A", "B", "C", "D"} {
		h.enroll(t, "c1", name, "", name+"1")
	}

	result, err := h.schedules.Generate(ctx, "c1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.Rounds != 3 || len(result.Matches) != 6 {
		t.Fatalf("expected 3 rounds and 6 fixtures, got %d and %d", result.Rounds, len(result.Matches))
	}

	pairs := map[string]struct{}{}
	perRound := map[string]int{}
	for _, m := range result.Matches {
		if m.Status != match.StatusScheduled || m.Data.HomeScore != 0 || len(m.Data.HomeTeam.Players) != 0 {
			t.Fatalf("unexpected fixture: %+v", m)
		}
		a, b := m.HomeRosterID, m.AwayRosterID
		if a > b {
			a, b = b, a
		}
		pairs[a+"|"+b] = struct{}{}
		perRound[m.Round]++
	}
	if len(pairs) != 6 {
		t.Fatalf("expected every pair once, got %d distinct pairs", len(pairs))
	}
	for _, round := range []string{"1", "2", "3"} {
		if perRound[round] != 2 {
			t.Fatalf("expected 2 fixtures in round %s, got %d", round, perRound[round])
		}
	}

	stored, err := h.matches.ListByCompetition(ctx, "c1", "scheduled")
	if err != nil {
		t.Fatalf("list scheduled: %v", err)
	}
	if len(stored) != 6 {
		t.Fatalf("expected 6 stored fixtures, got %d", len(stored))
	}
}

func TestScheduleService_StateErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, MatchServiceConfig{})
	h.competition(t, "c1")
	h.enroll(t, "c1", "A", "", "a1")

	_, err := h.schedules.Generate(ctx, "c1")
	if !errors.Is(err, ErrInsufficientParticipants) || !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected insufficient participants, got %v", err)
	}

	h.enroll(t, "c1", "B", "", "b1")
	h.enroll(t, "c1", "C", "", "c1")
	if _, err := h.schedules.Generate(ctx, "c1"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := h.schedules.Generate(ctx, "c1"); !errors.Is(err, ErrScheduleAlreadyExists) {
		t.Fatalf("expected schedule already exists, got %v", err)
	}

	if _, err := h.schedules.Generate(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestScheduleService_DeleteKeepsPlayedMatches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, MatchServiceConfig{})
	h.competition(t, "c1")
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		h.enroll(t, "c1", name, "", name+"1")
	}

	result, err := h.schedules.Generate(ctx, "c1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.Rounds != 5 || len(result.Matches) != 10 {
		t.Fatalf("expected 5 rounds and 10 fixtures, got %d and %d", result.Rounds, len(result.Matches))
	}
	if _, err := h.matches.Report(ctx, ReportMatchInput{MatchID: result.Matches[0].ID}); err != nil {
		t.Fatalf("report: %v", err)
	}

	deleted, err := h.schedules.DeleteSchedule(ctx, "c1")
	if err != nil {
		t.Fatalf("delete schedule: %v", err)
	}
	if deleted != 9 {
		t.Fatalf("expected 9 deleted fixtures, got %d", deleted)
	}

	rest, err := h.matches.ListByCompetition(ctx, "c1", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rest) != 1 || rest[0].Status != match.StatusPlayed {
		t.Fatalf("expected only the played match to remain, got %+v", rest)
	}

	if _, err := h.schedules.Generate(ctx, "c1"); err != nil {
		t.Fatalf("regenerate after delete: %v", err)
	}
}

func TestScheduleService_ConcurrentGenerateCreatesOneSchedule(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, MatchServiceConfig{})
	h.competition(t, "c1")
	for _, name := range []string{"A", "B", "C", "D"} {
		h.enroll(t, "c1", name, "", name+"1")
	}

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			_, err := h.schedules.Generate(ctx, "c1")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrScheduleAlreadyExists):
				rejected++
			default:
				t.Errorf("unexpected generate error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 || rejected != callers-1 {
		t.Fatalf("expected 1 success and %d rejections, got %d and %d", callers-1, succeeded, rejected)
	}
	stored, err := h.matches.ListByCompetition(ctx, "c1", "scheduled")
	if err != nil {
		t.Fatalf("list scheduled: %v", err)
	}
	if len(stored) != 6 {
		t.Fatalf("expected 6 stored fixtures, got %d", len(stored))
	}
}

func TestScheduleService_GenerateWaitsForCompetitionLock(t *testing.T) {
	t.Parallel()

	h := newHarness(t, MatchServiceConfig{})
	h.competition(t, "c1")
	h.enroll(t, "c1", "A", "", "a1")
	h.enroll(t, "c1", "B", "", "b1")

	unlock, err := h.schedules.locks.Lock(context.Background(), "competition:c1")
	if err != nil {
		t.Fatalf("lock competition: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := h.schedules.Generate(ctx, "c1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected generate to wait for the lock, got %v", err)
	}
	if _, err := h.schedules.DeleteSchedule(ctx, "c1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected delete to wait for the lock, got %v", err)
	}

	unlock()
	if _, err := h.schedules.Generate(context.Background(), "c1"); err != nil {
		t.Fatalf("generate after unlock: %v", err)
	}
}

func TestScheduleService_LocksCompetitionRowBeforeCheckingFixtures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, MatchServiceConfig{})
	h.competition(t, "c1")
	h.enroll(t, "c1", "A", "", "a1")
	h.enroll(t, "c1", "B", "", "b1")

	uow := &recordingUnitOfWork{inner: h.store}
	svc := NewScheduleService(h.store.Competitions(), uow, &sequentialIDs{n: 1000})

	if _, err := svc.Generate(ctx, "c1"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.DeleteSchedule(ctx, "c1"); err != nil {
		t.Fatalf("delete schedule: %v", err)
	}

	want := []string{"lock c1", "list c1", "lock c1", "delete c1"}
	if got := uow.calls(); !slices.Equal(got, want) {
		t.Fatalf("unexpected call order\n got: %v\nwant: %v", got, want)
	}
}

// recordingUnitOfWork logs the competition row locks and fixture queries
// issued inside each unit of work.
type recordingUnitOfWork struct {
	inner txn.UnitOfWork
	mu    sync.Mutex
	log   []string
}

func (u *recordingUnitOfWork) record(entry string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.log = append(u.log, entry)
}

func (u *recordingUnitOfWork) calls() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.log...)
}

func (u *recordingUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos txn.Repositories) error) error {
	return u.inner.Do(ctx, func(ctx context.Context, repos txn.Repositories) error {
		repos.Competitions = recordingCompetitions{Repository: repos.Competitions, uow: u}
		repos.Matches = recordingMatches{Repository: repos.Matches, uow: u}
		return fn(ctx, repos)
	})
}

type recordingCompetitions struct {
	competition.Repository
	uow *recordingUnitOfWork
}

func (r recordingCompetitions) GetByIDForUpdate(ctx context.Context, competitionID string) (competition.Competition, bool, error) {
	r.uow.record("lock " + competitionID)
	return r.Repository.GetByIDForUpdate(ctx, competitionID)
}

type recordingMatches struct {
	match.Repository
	uow *recordingUnitOfWork
}

func (r recordingMatches) ListByCompetition(ctx context.Context, competitionID string, filter match.Filter) ([]match.Match, error) {
	r.uow.record("list " + competitionID)
	return r.Repository.ListByCompetition(ctx, competitionID, filter)
}

func (r recordingMatches) DeleteByStatus(ctx context.Context, competitionID string, status match.Status) (int, error) {
	r.uow.record("delete " + competitionID)
	return r.Repository.DeleteByStatus(ctx, competitionID, status)
}

