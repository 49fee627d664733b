package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yerlanov/trackd/internal/clock"
	"github.com/yerlanov/trackd/internal/events"
	"github.com/yerlanov/trackd/internal/models"
	"github.com/yerlanov/trackd/internal/storage"
)

// Service enforces the session lifecycle state machine. A tracker is either
// Stopped (no active session) or Running (exactly one active session); the
// unique index on active_sessions.tracker_id backs the invariant.
type Service struct {
	repo   storage.Repository
	clock  clock.Clock
	events events.Publisher
	log    zerolog.Logger
}

// NewService wires the lifecycle engine to its collaborators.
func NewService(repo storage.Repository, clk clock.Clock, pub events.Publisher, log zerolog.Logger) *Service {
	return &Service{repo: repo, clock: clk, events: pub, log: log}
}

// CreateTrackerRequest holds the data needed to create a new tracker.
type CreateTrackerRequest struct {
	UserID      string
	Name        string
	TargetHours float64
	Description string
	WorkDays    string // comma-separated weekday indices; empty means Mon-Fri
}

// CreateTracker validates and persists a new tracker.
func (s *Service) CreateTracker(ctx context.Context, req CreateTrackerRequest) (*models.Tracker, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	req.Name = strings.TrimSpace(req.Name)

	if req.UserID == "" {
		return nil, fmt.Errorf("%w: user ID is required", ErrValidation)
	}
	if req.Name == "" {
		return nil, fmt.Errorf("%w: tracker name is required", ErrValidation)
	}
	if req.TargetHours <= 0 {
		return nil, fmt.Errorf("%w: target hours must be positive", ErrValidation)
	}

	workDays := req.WorkDays
	if strings.TrimSpace(workDays) == "" {
		workDays = models.DefaultWorkDays
	}
	parsed, err := models.ParseWorkDays(workDays)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	t := &models.Tracker{
		UserID:      req.UserID,
		Name:        req.Name,
		TargetHours: req.TargetHours,
		Description: req.Description,
		WorkDays:    models.FormatWorkDays(parsed),
	}
	if err := s.repo.CreateTracker(ctx, t); err != nil {
		return nil, storErr(err)
	}

	s.log.Info().Uint("tracker_id", t.ID).Str("user_id", t.UserID).Msg("tracker created")
	s.publish(ctx, events.TrackerCreated, t)
	return t, nil
}

// UpdateTrackerRequest is a partial tracker update. Nil fields are left
// unchanged.
type UpdateTrackerRequest struct {
	Name        *string
	TargetHours *float64
	Description *string
	WorkDays    *string
}

// UpdateTracker applies a validated patch to an existing tracker.
func (s *Service) UpdateTracker(ctx context.Context, id uint, req UpdateTrackerRequest) (*models.Tracker, error) {
	patch := storage.TrackerPatch{Description: req.Description}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: tracker name is required", ErrValidation)
		}
		patch.Name = &name
	}
	if req.TargetHours != nil && *req.TargetHours <= 0 {
		return nil, fmt.Errorf("%w: target hours must be positive", ErrValidation)
	}
	patch.TargetHours = req.TargetHours
	if req.WorkDays != nil {
		parsed, err := models.ParseWorkDays(*req.WorkDays)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		normalized := models.FormatWorkDays(parsed)
		patch.WorkDays = &normalized
	}

	if err := s.repo.UpdateTracker(ctx, id, patch); err != nil {
		return nil, storErr(err)
	}

	t, err := s.repo.FindTracker(ctx, id)
	if err != nil {
		return nil, storErr(err)
	}
	s.publish(ctx, events.TrackerUpdated, t)
	return t, nil
}

// Get returns a tracker by ID.
func (s *Service) Get(ctx context.Context, id uint) (*models.Tracker, error) {
	t, err := s.repo.FindTracker(ctx, id)
	if err != nil {
		return nil, storErr(err)
	}
	return t, nil
}

// List returns a user's trackers, most recently touched first.
func (s *Service) List(ctx context.Context, userID string) ([]models.Tracker, error) {
	trackers, err := s.repo.ListTrackers(ctx, userID)
	if err != nil {
		return nil, storErr(err)
	}
	return trackers, nil
}

// Start begins a session for the tracker. Starting an already-running
// tracker is a no-op that reports the existing session: the original start
// time is never reset and no duplicate is created. The returned bool is true
// only when this call actually opened the session.
func (s *Service) Start(ctx context.Context, trackerID uint) (*models.ActiveSession, bool, error) {
	if _, err := s.repo.FindTracker(ctx, trackerID); err != nil {
		return nil, false, storErr(err)
	}

	now := s.clock.Now()
	if err := s.repo.UpdateTracker(ctx, trackerID, storage.TrackerPatch{UpdatedAt: &now}); err != nil {
		return nil, false, storErr(err)
	}

	existing, err := s.repo.FindActiveSession(ctx, trackerID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, false, storErr(err)
	}

	active := &models.ActiveSession{TrackerID: trackerID, StartTime: now}
	if err := s.repo.CreateActiveSession(ctx, active); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			// Lost the race to a concurrent start; their session wins.
			existing, ferr := s.repo.FindActiveSession(ctx, trackerID)
			if ferr != nil {
				return nil, false, storErr(ferr)
			}
			return existing, false, nil
		}
		return nil, false, storErr(err)
	}

	s.log.Info().Uint("tracker_id", trackerID).Time("start", now).Msg("session started")
	s.publish(ctx, events.SessionStarted, active)
	return active, true, nil
}

// Stop closes the tracker's running session. The session record, the active
// session removal, and the tracker touch are applied as one transaction so a
// crash can neither fork a duplicate close nor drop recorded time.
func (s *Service) Stop(ctx context.Context, trackerID uint) (*models.Session, error) {
	active, err := s.repo.FindActiveSession(ctx, trackerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoActiveSession
		}
		return nil, storErr(err)
	}

	end := s.clock.Now()
	session := &models.Session{
		TrackerID:       trackerID,
		StartTime:       active.StartTime,
		EndTime:         end,
		DurationMinutes: models.DurationBetween(active.StartTime, end),
	}

	err = s.repo.RunTransaction(ctx, func(tx storage.Repository) error {
		if err := tx.CreateSession(ctx, session); err != nil {
			return err
		}
		if err := tx.DeleteActiveSession(ctx, trackerID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				// A concurrent stop closed the session after our read. Abort
				// so only the winner records a session.
				return ErrNoActiveSession
			}
			return err
		}
		return tx.UpdateTracker(ctx, trackerID, storage.TrackerPatch{UpdatedAt: &end})
	})
	if err != nil {
		if errors.Is(err, ErrNoActiveSession) {
			return nil, ErrNoActiveSession
		}
		return nil, storErr(err)
	}

	s.log.Info().
		Uint("tracker_id", trackerID).
		Int("duration_min", session.DurationMinutes).
		Msg("session stopped")
	s.publish(ctx, events.SessionStopped, session)
	s.publish(ctx, events.StatsUpdated, map[string]any{"tracker_id": trackerID})
	return session, nil
}

// Archive marks the tracker archived. Running state is unaffected and
// historical sessions remain queryable; the tracker just stops contributing
// to active-tracker target aggregation.
func (s *Service) Archive(ctx context.Context, trackerID uint) (*models.Tracker, error) {
	t, err := s.setArchived(ctx, trackerID, true)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TrackerArchived, t)
	return t, nil
}

// Unarchive clears the archived flag.
func (s *Service) Unarchive(ctx context.Context, trackerID uint) (*models.Tracker, error) {
	t, err := s.setArchived(ctx, trackerID, false)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TrackerUpdated, t)
	return t, nil
}

func (s *Service) setArchived(ctx context.Context, trackerID uint, archived bool) (*models.Tracker, error) {
	if err := s.repo.UpdateTracker(ctx, trackerID, storage.TrackerPatch{Archived: &archived}); err != nil {
		return nil, storErr(err)
	}
	t, err := s.repo.FindTracker(ctx, trackerID)
	if err != nil {
		return nil, storErr(err)
	}
	return t, nil
}

// Delete removes the tracker and everything it owns: sessions first, then
// any active session, then the tracker itself. Explicit ordering — cascade
// semantics of the backing store are not assumed.
func (s *Service) Delete(ctx context.Context, trackerID uint) error {
	if _, err := s.repo.FindTracker(ctx, trackerID); err != nil {
		return storErr(err)
	}

	err := s.repo.RunTransaction(ctx, func(tx storage.Repository) error {
		if err := tx.DeleteSessions(ctx, trackerID); err != nil {
			return err
		}
		// A tracker with no running session has no row to delete here.
		if err := tx.DeleteActiveSession(ctx, trackerID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		return tx.DeleteTracker(ctx, trackerID)
	})
	if err != nil {
		return storErr(err)
	}

	s.log.Info().Uint("tracker_id", trackerID).Msg("tracker deleted")
	s.publish(ctx, events.TrackerDeleted, map[string]any{"tracker_id": trackerID})
	return nil
}

// Sessions returns a tracker's closed sessions, oldest first, optionally
// restricted by start-time range.
func (s *Service) Sessions(ctx context.Context, trackerID uint, rng *storage.SessionRange) ([]models.Session, error) {
	if _, err := s.repo.FindTracker(ctx, trackerID); err != nil {
		return nil, storErr(err)
	}
	sessions, err := s.repo.ListSessions(ctx, trackerID, rng)
	if err != nil {
		return nil, storErr(err)
	}
	return sessions, nil
}

// ActiveSessions returns all running sessions across a user's trackers.
func (s *Service) ActiveSessions(ctx context.Context, userID string) ([]models.ActiveSession, error) {
	active, err := s.repo.ListActiveSessions(ctx, userID)
	if err != nil {
		return nil, storErr(err)
	}
	return active, nil
}

// publish fires an event without ever failing the operation.
func (s *Service) publish(ctx context.Context, name string, payload any) {
	s.events.Publish(ctx, events.Event{Name: name, Payload: payload})
}

// storErr maps repository errors to the taxonomy: missing records become
// ErrNotFound, everything else is a storage failure.
func storErr(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}
