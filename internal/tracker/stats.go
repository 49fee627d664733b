package tracker

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/yerlanov/trackd/internal/clock"
	"github.com/yerlanov/trackd/internal/models"
	"github.com/yerlanov/trackd/internal/storage"
)

// Stats computes work statistics from closed sessions. All aggregation runs
// in memory on full precision; figures are rounded to two decimals only at
// the output step.
//
// Known limitation, kept on purpose: a session that straddles UTC midnight
// is attributed entirely to its start date, not split across days.
type Stats struct {
	repo  storage.Repository
	clock clock.Clock
}

// NewStats wires the stats engine to its repository and clock.
func NewStats(repo storage.Repository, clk clock.Clock) *Stats {
	return &Stats{repo: repo, clock: clk}
}

// WorkStats is the debt/advance report for a single tracker. At most one of
// WorkDebt and WorkAdvance is non-zero.
type WorkStats struct {
	WorkDebt        float64 `json:"work_debt"`
	WorkAdvance     float64 `json:"work_advance"`
	TotalWorkDays   int     `json:"total_work_days"`
	TotalWorkHours  float64 `json:"total_work_hours"`
	TargetWorkHours float64 `json:"target_work_hours"`
}

// ComputeWorkStats aggregates a tracker's entire history, from its first
// session's start date through today. Hours worked accumulate on every
// calendar day — rest-day work still counts — while only work days feed the
// target denominator.
func (e *Stats) ComputeWorkStats(ctx context.Context, trackerID uint) (*WorkStats, error) {
	t, err := e.repo.FindTracker(ctx, trackerID)
	if err != nil {
		return nil, storErr(err)
	}
	workDays, err := t.WorkDaySet()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	sessions, err := e.repo.ListSessions(ctx, trackerID, nil)
	if err != nil {
		return nil, storErr(err)
	}
	if len(sessions) == 0 {
		return &WorkStats{}, nil
	}

	minutes, _ := bucketByDay(sessions)

	var totalWorkDays int
	var totalWorkHours float64
	from := dayStart(sessions[0].StartTime)
	to := dayStart(e.clock.Now())
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if workDays[day.Weekday()] {
			totalWorkDays++
		}
		totalWorkHours += float64(minutes[dateKey(day)]) / 60
	}

	targetWorkHours := float64(totalWorkDays) * t.TargetHours
	var debt, advance float64
	if targetWorkHours > totalWorkHours {
		debt = targetWorkHours - totalWorkHours
	} else {
		advance = totalWorkHours - targetWorkHours
	}

	return &WorkStats{
		WorkDebt:        round2(debt),
		WorkAdvance:     round2(advance),
		TotalWorkDays:   totalWorkDays,
		TotalWorkHours:  round2(totalWorkHours),
		TargetWorkHours: round2(targetWorkHours),
	}, nil
}

// DailyTotal is one day of the daily-series report.
type DailyTotal struct {
	Date         string  `json:"date"`
	TotalMinutes int     `json:"total_minutes"`
	TotalHours   float64 `json:"total_hours"`
	SessionCount int     `json:"session_count"`
}

// DailyTotals produces one entry per calendar day in [from, to], ascending,
// zero-filled for days with no sessions. Scoped to one tracker when
// trackerID is non-nil, otherwise covering all of the user's trackers.
func (e *Stats) DailyTotals(ctx context.Context, userID string, trackerID *uint, from, to time.Time) ([]DailyTotal, error) {
	start, end := dayStart(from), dayStart(to)
	if start.After(end) {
		return nil, fmt.Errorf("%w: start date is after end date", ErrValidation)
	}

	trackers, err := e.scopedTrackers(ctx, userID, trackerID)
	if err != nil {
		return nil, err
	}

	sessions, err := e.collectSessions(ctx, trackers, start, endOfDay(end))
	if err != nil {
		return nil, err
	}
	minutes, counts := bucketByDay(sessions)

	var totals []DailyTotal
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := dateKey(day)
		totals = append(totals, DailyTotal{
			Date:         key,
			TotalMinutes: minutes[key],
			TotalHours:   round2(float64(minutes[key]) / 60),
			SessionCount: counts[key],
		})
	}
	return totals, nil
}

// DailyTotalsForPeriod is DailyTotals over a symbolic period ending today.
func (e *Stats) DailyTotalsForPeriod(ctx context.Context, userID string, trackerID *uint, period string) ([]DailyTotal, error) {
	rng, err := ResolvePeriod(period, e.clock.Now())
	if err != nil {
		return nil, err
	}
	return e.DailyTotals(ctx, userID, trackerID, rng.From, rng.To)
}

// TotalsReport is the aggregate worked-versus-target report over a range.
type TotalsReport struct {
	TotalMinutes    int     `json:"total_minutes"`
	TotalHours      float64 `json:"total_hours"`
	TargetHours     float64 `json:"target_hours"`
	HoursDifference float64 `json:"hours_difference"`
	Status          string  `json:"status"` // "ahead" or "behind"
}

// TotalsReport status values.
const (
	StatusAhead  = "ahead"
	StatusBehind = "behind"
)

// TotalHours sums worked minutes over the range and compares them to the
// target. Unscoped, archived trackers are excluded; scoped to one tracker,
// it contributes regardless of its archived flag. Each tracker's target is
// computed against its own work-day calendar — calendars are never merged.
func (e *Stats) TotalHours(ctx context.Context, userID string, trackerID *uint, from, to time.Time) (*TotalsReport, error) {
	start, end := dayStart(from), dayStart(to)
	if start.After(end) {
		return nil, fmt.Errorf("%w: start date is after end date", ErrValidation)
	}

	trackers, err := e.scopedTrackers(ctx, userID, trackerID)
	if err != nil {
		return nil, err
	}
	if trackerID == nil {
		active := trackers[:0]
		for _, t := range trackers {
			if !t.Archived {
				active = append(active, t)
			}
		}
		trackers = active
	}

	var totalMinutes int
	var targetHours float64
	rangeEnd := endOfDay(end)
	for _, t := range trackers {
		sessions, err := e.repo.ListSessions(ctx, t.ID, &storage.SessionRange{From: &start, To: &rangeEnd})
		if err != nil {
			return nil, storErr(err)
		}
		for _, sess := range sessions {
			totalMinutes += sess.DurationMinutes
		}

		workDays, err := t.WorkDaySet()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		targetHours += float64(countWorkDays(start, end, workDays)) * t.TargetHours
	}

	worked := float64(totalMinutes) / 60
	status := StatusBehind
	if worked >= targetHours {
		status = StatusAhead
	}

	return &TotalsReport{
		TotalMinutes:    totalMinutes,
		TotalHours:      round2(worked),
		TargetHours:     round2(targetHours),
		HoursDifference: round2(math.Abs(worked - targetHours)),
		Status:          status,
	}, nil
}

// scopedTrackers resolves the tracker scope for a report: one tracker
// (which must belong to the user) or all of the user's trackers.
func (e *Stats) scopedTrackers(ctx context.Context, userID string, trackerID *uint) ([]models.Tracker, error) {
	if trackerID != nil {
		t, err := e.repo.FindTracker(ctx, *trackerID)
		if err != nil {
			return nil, storErr(err)
		}
		if t.UserID != userID {
			return nil, ErrNotFound
		}
		return []models.Tracker{*t}, nil
	}

	trackers, err := e.repo.ListTrackers(ctx, userID)
	if err != nil {
		return nil, storErr(err)
	}
	return trackers, nil
}

func (e *Stats) collectSessions(ctx context.Context, trackers []models.Tracker, from, to time.Time) ([]models.Session, error) {
	var all []models.Session
	for _, t := range trackers {
		sessions, err := e.repo.ListSessions(ctx, t.ID, &storage.SessionRange{From: &from, To: &to})
		if err != nil {
			return nil, storErr(err)
		}
		all = append(all, sessions...)
	}
	return all, nil
}

// bucketByDay groups session minutes and counts by the UTC calendar date of
// each session's start time.
func bucketByDay(sessions []models.Session) (minutes map[string]int, counts map[string]int) {
	minutes = make(map[string]int)
	counts = make(map[string]int)
	for _, s := range sessions {
		key := dateKey(s.StartTime)
		minutes[key] += s.DurationMinutes
		counts[key]++
	}
	return minutes, counts
}

// countWorkDays walks [from, to] inclusive and counts days whose weekday is
// in the tracker's work-day set.
func countWorkDays(from, to time.Time, workDays map[time.Weekday]bool) int {
	n := 0
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if workDays[day.Weekday()] {
			n++
		}
	}
	return n
}

func dateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// round2 rounds half away from zero to two decimals.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
