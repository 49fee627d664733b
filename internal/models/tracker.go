package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultWorkDays is Monday through Friday.
const DefaultWorkDays = "1,2,3,4,5"

// Tracker represents a named activity with a daily-hour target and
// a work-day calendar.
type Tracker struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID      string  `gorm:"index;not null" json:"user_id"`
	Name        string  `gorm:"not null" json:"name"`
	TargetHours float64 `gorm:"not null" json:"target_hours"` // hours per work day
	Description string  `json:"description"`
	WorkDays    string  `gorm:"default:1,2,3,4,5" json:"work_days"` // comma-separated weekday indices, Sunday=0
	Archived    bool    `gorm:"default:false" json:"archived"`

	// Relationships
	Sessions []Session `gorm:"foreignKey:TrackerID" json:"sessions,omitempty"`
}

// WorkDaySet parses the tracker's WorkDays field into a weekday set.
func (t *Tracker) WorkDaySet() (map[time.Weekday]bool, error) {
	return ParseWorkDays(t.WorkDays)
}

// ParseWorkDays parses a comma-separated weekday list ("1,2,3,4,5") into a
// set. Weekday indices follow time.Weekday: Sunday=0 through Saturday=6.
func ParseWorkDays(s string) (map[time.Weekday]bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("work days must not be empty")
	}

	days := make(map[time.Weekday]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid work day %q", part)
		}
		if n < 0 || n > 6 {
			return nil, fmt.Errorf("work day %d out of range 0-6", n)
		}
		days[time.Weekday(n)] = true
	}

	if len(days) == 0 {
		return nil, fmt.Errorf("work days must not be empty")
	}
	return days, nil
}

// FormatWorkDays renders a weekday set back to the stored comma-separated
// form, sorted ascending.
func FormatWorkDays(days map[time.Weekday]bool) string {
	var indices []int
	for d := range days {
		indices = append(indices, int(d))
	}
	sort.Ints(indices)

	parts := make([]string, len(indices))
	for i, n := range indices {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
