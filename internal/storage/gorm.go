package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yerlanov/trackd/internal/models"
)

// Store is the SQLite-backed Repository implementation.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the database at path and runs migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent), // Quiet by default
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// Single connection: SQLite writes serialize, and concurrent starts race
	// on the active-session unique index instead of on the file lock.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(
		&models.Tracker{},
		&models.Session{},
		&models.ActiveSession{},
	); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// wrapErr maps gorm errors to the storage sentinels.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicate
	}
	return err
}

func (s *Store) CreateTracker(ctx context.Context, t *models.Tracker) error {
	return wrapErr(s.db.WithContext(ctx).Create(t).Error)
}

func (s *Store) FindTracker(ctx context.Context, id uint) (*models.Tracker, error) {
	var t models.Tracker
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &t, nil
}

func (s *Store) UpdateTracker(ctx context.Context, id uint, patch TrackerPatch) error {
	updates := map[string]any{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.TargetHours != nil {
		updates["target_hours"] = *patch.TargetHours
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.WorkDays != nil {
		updates["work_days"] = *patch.WorkDays
	}
	if patch.Archived != nil {
		updates["archived"] = *patch.Archived
	}
	if patch.UpdatedAt != nil {
		updates["updated_at"] = *patch.UpdatedAt
	}
	if len(updates) == 0 {
		return nil
	}

	res := s.db.WithContext(ctx).Model(&models.Tracker{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return wrapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteTracker(ctx context.Context, id uint) error {
	return wrapErr(s.db.WithContext(ctx).Delete(&models.Tracker{}, id).Error)
}

func (s *Store) ListTrackers(ctx context.Context, userID string) ([]models.Tracker, error) {
	var trackers []models.Tracker
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&trackers).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return trackers, nil
}

func (s *Store) CreateActiveSession(ctx context.Context, as *models.ActiveSession) error {
	return wrapErr(s.db.WithContext(ctx).Create(as).Error)
}

func (s *Store) FindActiveSession(ctx context.Context, trackerID uint) (*models.ActiveSession, error) {
	var as models.ActiveSession
	err := s.db.WithContext(ctx).Where("tracker_id = ?", trackerID).First(&as).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return &as, nil
}

func (s *Store) DeleteActiveSession(ctx context.Context, trackerID uint) error {
	res := s.db.WithContext(ctx).
		Where("tracker_id = ?", trackerID).
		Delete(&models.ActiveSession{})
	if res.Error != nil {
		return wrapErr(res.Error)
	}
	// Zero rows means another writer already closed the session; inside the
	// stop transaction that must abort, not silently succeed.
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListActiveSessions(ctx context.Context, userID string) ([]models.ActiveSession, error) {
	var active []models.ActiveSession
	err := s.db.WithContext(ctx).
		Joins("JOIN trackers ON trackers.id = active_sessions.tracker_id").
		Where("trackers.user_id = ?", userID).
		Order("active_sessions.start_time ASC").
		Find(&active).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return active, nil
}

func (s *Store) CreateSession(ctx context.Context, sess *models.Session) error {
	return wrapErr(s.db.WithContext(ctx).Create(sess).Error)
}

func (s *Store) ListSessions(ctx context.Context, trackerID uint, rng *SessionRange) ([]models.Session, error) {
	q := s.db.WithContext(ctx).Where("tracker_id = ?", trackerID)
	if rng != nil {
		if rng.From != nil {
			q = q.Where("start_time >= ?", *rng.From)
		}
		if rng.To != nil {
			q = q.Where("start_time <= ?", *rng.To)
		}
	}

	var sessions []models.Session
	if err := q.Order("start_time ASC").Find(&sessions).Error; err != nil {
		return nil, wrapErr(err)
	}
	return sessions, nil
}

func (s *Store) DeleteSessions(ctx context.Context, trackerID uint) error {
	return wrapErr(s.db.WithContext(ctx).
		Where("tracker_id = ?", trackerID).
		Delete(&models.Session{}).Error)
}

// RunTransaction runs fn against a repository bound to a single gorm
// transaction. The three-part session close relies on this being
// all-or-nothing.
func (s *Store) RunTransaction(ctx context.Context, fn func(Repository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}
