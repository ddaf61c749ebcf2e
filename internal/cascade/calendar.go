package cascade

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// DayClass is the per-day status label driving calendar-style views.
// Every calendar view honors the same trichotomy (plus Empty for grid slots
// that are not valid days of the month).
type DayClass int

const (
	// ClassEmpty — not a valid day of this month (e.g. Feb 30).
	ClassEmpty DayClass = iota
	// ClassLocked — strictly in the future.
	ClassLocked
	// ClassMissed — no submission and the day is not in the future.
	ClassMissed
	// ClassCompleted — a submission exists for the day.
	ClassCompleted
)

func (c DayClass) String() string {
	switch c {
	case ClassLocked:
		return "locked"
	case ClassMissed:
		return "missed"
	case ClassCompleted:
		return "completed"
	default:
		return "empty"
	}
}

// heatmapSlots is the fixed grid height of the heatmap: one column per
// month, 31 square slots per column.
const heatmapSlots = 31

// ClassifyMonth classifies every slot of a month's grid. The result always
// has 31 entries; entries beyond the month's length are ClassEmpty.
// submitted holds YYYY-MM-DD day strings; now supplies "today" in the
// user's local calendar.
func ClassifyMonth(year int, month time.Month, submitted map[string]bool, now time.Time) []DayClass {
	classes := make([]DayClass, heatmapSlots)
	days := DaysIn(year, month)
	today := Day(now)

	for i := range classes {
		day := i + 1
		if day > days {
			classes[i] = ClassEmpty
			continue
		}
		date := DayOf(year, month, day)
		switch {
		case date > today:
			classes[i] = ClassLocked
		case submitted[date]:
			classes[i] = ClassCompleted
		default:
			classes[i] = ClassMissed
		}
	}
	return classes
}

// Streak returns the current streak: the number of consecutive submitted
// days ending today, or ending yesterday when today has no submission yet
// (the day is still in progress).
func Streak(submitted map[string]bool, now time.Time) int {
	day := StartOfDay(now)
	if !submitted[Day(day)] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for submitted[Day(day)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// MonthlyCount returns how many submissions fall in now's calendar month.
func MonthlyCount(submitted map[string]bool, now time.Time) int {
	prefix := now.Format("2006-01")
	count := 0
	for date := range submitted {
		if len(date) >= 7 && date[:7] == prefix {
			count++
		}
	}
	return count
}

// ConsistencyReport is the aggregated heatmap data for one year.
type ConsistencyReport struct {
	Year    int
	Total   int             // total submissions, all time
	Streak  int             // current streak
	Monthly int             // submissions in the current month
	Months  [12][]DayClass  // 31 classified slots per month
	Days    map[string]bool // submitted day set, for callers that drill in
}

// Consistency fetches the user's activity records and buckets them into the
// heatmap grid for the given year.
func (s *Service) Consistency(ctx context.Context, year int) (*ConsistencyReport, error) {
	sess, err := s.CurrentSession()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNoSession
	}

	records, err := s.backend.Consistency(ctx, sess.Token)
	if err != nil {
		return nil, fmt.Errorf("fetching consistency records: %w", err)
	}

	submitted := make(map[string]bool, len(records))
	for _, r := range records {
		submitted[r.Date] = true
	}

	now := s.clock.Now()
	report := &ConsistencyReport{
		Year:    year,
		Total:   len(submitted),
		Streak:  Streak(submitted, now),
		Monthly: MonthlyCount(submitted, now),
		Days:    submitted,
	}
	for m := time.January; m <= time.December; m++ {
		report.Months[m-1] = ClassifyMonth(year, m, submitted, now)
	}
	return report, nil
}

// SubmittedDays returns the sorted day strings of a submitted set.
func SubmittedDays(submitted map[string]bool) []string {
	days := make([]string, 0, len(submitted))
	for d := range submitted {
		days = append(days, d)
	}
	sort.Strings(days)
	return days
}
