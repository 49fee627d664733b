package models

import (
	"time"
)

// Session is a completed, immutable timing interval. DurationMinutes is
// derived at close time: floor((EndTime - StartTime) / 1 minute).
type Session struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	TrackerID       uint      `gorm:"index;not null" json:"tracker_id"`
	StartTime       time.Time `gorm:"not null" json:"start_time"`
	EndTime         time.Time `gorm:"not null" json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
}

// ActiveSession is an in-progress timing interval. The unique index on
// TrackerID enforces at most one running session per tracker and serializes
// concurrent starts.
type ActiveSession struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	TrackerID uint      `gorm:"uniqueIndex;not null" json:"tracker_id"`
	StartTime time.Time `gorm:"not null" json:"start_time"`
}

// DurationBetween computes a session's duration in whole minutes, rounded
// down. Never negative for end >= start.
func DurationBetween(start, end time.Time) int {
	return int(end.Sub(start) / time.Minute)
}
