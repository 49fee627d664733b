package storage

import (
	"context"
	"errors"
	"time"

	"github.com/yerlanov/trackd/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a uniqueness constraint rejects a write,
	// e.g. a second active session for the same tracker.
	ErrDuplicate = errors.New("duplicate record")
)

// SessionRange restricts a session query by start time. Nil bounds are open.
type SessionRange struct {
	From *time.Time
	To   *time.Time
}

// TrackerPatch is a partial tracker update. Nil fields are left untouched.
type TrackerPatch struct {
	Name        *string
	TargetHours *float64
	Description *string
	WorkDays    *string
	Archived    *bool
	UpdatedAt   *time.Time
}

// Repository is the persistence contract consumed by the lifecycle and stats
// engines. Implementations map their native errors to ErrNotFound and
// ErrDuplicate; anything else is reported as-is and treated as a storage
// failure by callers.
type Repository interface {
	CreateTracker(ctx context.Context, t *models.Tracker) error
	FindTracker(ctx context.Context, id uint) (*models.Tracker, error)
	UpdateTracker(ctx context.Context, id uint, patch TrackerPatch) error
	DeleteTracker(ctx context.Context, id uint) error
	ListTrackers(ctx context.Context, userID string) ([]models.Tracker, error)

	CreateActiveSession(ctx context.Context, s *models.ActiveSession) error
	FindActiveSession(ctx context.Context, trackerID uint) (*models.ActiveSession, error)
	// DeleteActiveSession reports ErrNotFound when no row was deleted, so a
	// transactional close can detect that a concurrent close already won.
	DeleteActiveSession(ctx context.Context, trackerID uint) error
	ListActiveSessions(ctx context.Context, userID string) ([]models.ActiveSession, error)

	CreateSession(ctx context.Context, s *models.Session) error
	ListSessions(ctx context.Context, trackerID uint, rng *SessionRange) ([]models.Session, error)
	DeleteSessions(ctx context.Context, trackerID uint) error

	// RunTransaction executes fn against a transaction-scoped repository.
	// If fn returns an error the transaction is rolled back and no effect
	// is applied.
	RunTransaction(ctx context.Context, fn func(Repository) error) error
}
