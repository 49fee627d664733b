package tracker

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/yerlanov/trackd/internal/clock"
	"github.com/yerlanov/trackd/internal/events"
	"github.com/yerlanov/trackd/internal/models"
	"github.com/yerlanov/trackd/internal/storage"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturePublisher) Publish(_ context.Context, e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *capturePublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, len(p.events))
	for i, e := range p.events {
		names[i] = e.Name
	}
	return names
}

type testEnv struct {
	svc   *Service
	stats *Stats
	store *storage.Store
	clock *clock.FixedClock
	pub   *capturePublisher
}

// mondayMorning is a fixed reference instant: Monday 2026-03-02 09:00 UTC.
var mondayMorning = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "trackd.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	clk := &clock.FixedClock{CurrentTime: mondayMorning}
	pub := &capturePublisher{}
	return &testEnv{
		svc:   NewService(store, clk, pub, zerolog.Nop()),
		stats: NewStats(store, clk),
		store: store,
		clock: clk,
		pub:   pub,
	}
}

func (env *testEnv) createTracker(t *testing.T, name string) *models.Tracker {
	t.Helper()
	tr, err := env.svc.CreateTracker(context.Background(), CreateTrackerRequest{
		UserID:      "alice",
		Name:        name,
		TargetHours: 8,
	})
	if err != nil {
		t.Fatalf("CreateTracker: %v", err)
	}
	return tr
}

func TestCreateTrackerValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateTrackerRequest
	}{
		{"missing user", CreateTrackerRequest{Name: "A", TargetHours: 8}},
		{"missing name", CreateTrackerRequest{UserID: "alice", TargetHours: 8}},
		{"zero target", CreateTrackerRequest{UserID: "alice", Name: "A"}},
		{"negative target", CreateTrackerRequest{UserID: "alice", Name: "A", TargetHours: -1}},
		{"bad work days", CreateTrackerRequest{UserID: "alice", Name: "A", TargetHours: 8, WorkDays: "1,9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.svc.CreateTracker(ctx, tt.req); !errors.Is(err, ErrValidation) {
				t.Errorf("CreateTracker = %v, want ErrValidation", err)
			}
		})
	}
}

func TestCreateTrackerDefaultsWorkDays(t *testing.T) {
	env := newTestEnv(t)

	tr := env.createTracker(t, "Deep work")
	if tr.WorkDays != models.DefaultWorkDays {
		t.Errorf("WorkDays = %q, want %q", tr.WorkDays, models.DefaultWorkDays)
	}
}

func TestStartCreatesActiveSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tr := env.createTracker(t, "A")

	active, started, err := env.svc.Start(ctx, tr.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !started {
		t.Error("expected started=true on first start")
	}
	if !active.StartTime.Equal(mondayMorning) {
		t.Errorf("start time = %v, want %v", active.StartTime, mondayMorning)
	}
}

func TestStartUnknownTracker(t *testing.T) {
	env := newTestEnv(t)

	if _, _, err := env.svc.Start(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Start = %v, want ErrNotFound", err)
	}
}

func TestStartIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tr := env.createTracker(t, "A")

	first, _, err := env.svc.Start(ctx, tr.ID)
	if err != nil {
		t.Fatalf("first Start: %v", err)
	}

	env.clock.Advance(10 * time.Minute)
	second, started, err := env.svc.Start(ctx, tr.ID)
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if started {
		t.Error("second start reported started=true")
	}
	if !second.StartTime.Equal(first.StartTime) {
		t.Errorf("second start reset start time: %v != %v", second.StartTime, first.StartTime)
	}

	active, err := env.svc.ActiveSessions(ctx, "alice")
	if err != nil {
		t.Fatalf("ActiveSessions: %v", err)
	}
	if len(active) != 1 {
		t.Errorf("active sessions = %d, want 1", len(active))
	}
}

func TestConcurrentStartsKeepOneActiveSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tr := env.createTracker(t, "A")

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = env.svc.Start(ctx, tr.ID)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("worker %d: %v", i, err)
		}
	}

	active, err := env.svc.ActiveSessions(ctx, "alice")
	if err != nil {
		t.Fatalf("ActiveSessions: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("active sessions = %d, want exactly 1", len(active))
	}
}

func TestStopWithoutStart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tr := env.createTracker(t, "A")

	if _, err := env.svc.Stop(ctx, tr.ID); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("Stop = %v, want ErrNoActiveSession", err)
	}

	sessions, err := env.svc.Sessions(ctx, tr.ID, nil)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("failed stop recorded %d sessions", len(sessions))
	}
}

func TestStopRecordsFlooredDuration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tr := env.createTracker(t, "A")

	if _, _, err := env.svc.Start(ctx, tr.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	env.clock.Advance(2*time.Minute + 30*time.Second)

	session, err := env.svc.Stop(ctx, tr.ID)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if session.DurationMinutes != 2 {
		t.Errorf("duration = %d, want 2 (floored)", session.DurationMinutes)
	}
	if session.EndTime.Before(session.StartTime) {
		t.Error("end time before start time")
	}

	if _, err := env.svc.Stop(ctx, tr.ID); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("second Stop = %v, want ErrNoActiveSession", err)
	}
}

// staleReadRepo serves a snapshot of the active session from before another
// stop committed, the interleaving where both stops pass the initial read.
type staleReadRepo struct {
	storage.Repository
	active *models.ActiveSession
}

func (r *staleReadRepo) FindActiveSession(context.Context, uint) (*models.ActiveSession, error) {
	return r.active, nil
}

func TestConcurrentStopsCloseOnlyOneSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tr := env.createTracker(t, "A")

	active, _, err := env.svc.Start(ctx, tr.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	env.clock.Advance(30 * time.Minute)

	// The loser read the active session, then the winner committed.
	loser := NewService(&staleReadRepo{Repository: env.store, active: active}, env.clock, env.pub, zerolog.Nop())

	if _, err := env.svc.Stop(ctx, tr.ID); err != nil {
		t.Fatalf("winning Stop: %v", err)
	}
	if _, err := loser.Stop(ctx, tr.ID); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("losing Stop = %v, want ErrNoActiveSession", err)
	}

	sessions, err := env.svc.Sessions(ctx, tr.ID, nil)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("sessions = %d, want exactly 1", len(sessions))
	}
}

func TestStartStopRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tr := env.createTracker(t, "A")

	// Two cycles: 30 minutes and 45 minutes.
	for _, minutes := range []int{30, 45} {
		if _, _, err := env.svc.Start(ctx, tr.ID); err != nil {
			t.Fatalf("Start: %v", err)
		}
		env.clock.Advance(time.Duration(minutes) * time.Minute)
		if _, err := env.svc.Stop(ctx, tr.ID); err != nil {
			t.Fatalf("Stop: %v", err)
		}
	}

	sessions, err := env.svc.Sessions(ctx, tr.ID, nil)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}
	total := sessions[0].DurationMinutes + sessions[1].DurationMinutes
	if total != 75 {
		t.Errorf("combined duration = %d, want 75", total)
	}
}

func TestStopTouchesTrackerUpdatedAt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tr := env.createTracker(t, "A")

	if _, _, err := env.svc.Start(ctx, tr.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	env.clock.Advance(time.Hour)
	if _, err := env.svc.Stop(ctx, tr.ID); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	updated, err := env.svc.Get(ctx, tr.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !updated.UpdatedAt.Equal(env.clock.Now()) {
		t.Errorf("UpdatedAt = %v, want %v", updated.UpdatedAt, env.clock.Now())
	}
}

func TestArchiveUnarchive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tr := env.createTracker(t, "A")

	archived, err := env.svc.Archive(ctx, tr.ID)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if !archived.Archived {
		t.Error("tracker not archived")
	}

	// Archiving does not affect running state.
	if _, _, err := env.svc.Start(ctx, tr.ID); err != nil {
		t.Fatalf("Start on archived tracker: %v", err)
	}

	restored, err := env.svc.Unarchive(ctx, tr.ID)
	if err != nil {
		t.Fatalf("Unarchive: %v", err)
	}
	if restored.Archived {
		t.Error("tracker still archived")
	}
}

func TestDeleteRemovesEverything(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tr := env.createTracker(t, "A")

	if _, _, err := env.svc.Start(ctx, tr.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	env.clock.Advance(time.Hour)
	if _, err := env.svc.Stop(ctx, tr.ID); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if _, _, err := env.svc.Start(ctx, tr.ID); err != nil {
		t.Fatalf("restart: %v", err)
	}

	if err := env.svc.Delete(ctx, tr.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := env.svc.Get(ctx, tr.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	active, err := env.svc.ActiveSessions(ctx, "alice")
	if err != nil {
		t.Fatalf("ActiveSessions: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("active sessions survived delete: %d", len(active))
	}
}

func TestDeleteUnknownTracker(t *testing.T) {
	env := newTestEnv(t)

	if err := env.svc.Delete(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete = %v, want ErrNotFound", err)
	}
}

func TestLifecycleEvents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tr := env.createTracker(t, "A")

	if _, _, err := env.svc.Start(ctx, tr.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	env.clock.Advance(time.Minute)
	if _, err := env.svc.Stop(ctx, tr.ID); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if _, err := env.svc.Archive(ctx, tr.ID); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if err := env.svc.Delete(ctx, tr.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	want := []string{
		events.TrackerCreated,
		events.SessionStarted,
		events.SessionStopped,
		events.StatsUpdated,
		events.TrackerArchived,
		events.TrackerDeleted,
	}
	got := env.pub.names()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestIdempotentStartEmitsNoEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tr := env.createTracker(t, "A")

	if _, _, err := env.svc.Start(ctx, tr.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	before := len(env.pub.names())

	if _, _, err := env.svc.Start(ctx, tr.ID); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if after := len(env.pub.names()); after != before {
		t.Errorf("idempotent start published %d extra events", after-before)
	}
}
