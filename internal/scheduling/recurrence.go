// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package scheduling

import (
	"sort"
	"time"

	"github.com/tubefleet/tubefleet/internal/models"
)

// maxCandidateSteps bounds the candidate walk when searching for the next
// occurrence. A pattern whose next slot is further than this many strides
// away is treated as exhausted rather than looping unbounded.
const maxCandidateSteps = 10000

// NextOccurrence returns the first occurrence of p that starts strictly after
// the given instant. The boolean is false when the pattern has no further
// occurrences before its end date.
//
// The occurrence is computed in the pattern's timezone and returned in UTC.
// Occurrence count exhaustion is a generation-state concern and is not
// checked here; callers that track generated counts use Preview or consult
// models.RecurrencePattern.CountExhausted.
func NextOccurrence(p *models.RecurrencePattern, after time.Time) (time.Time, bool) {
	loc := p.Location()
	anchor := p.StartDate.In(loc)

	// The pattern start itself is the first occurrence.
	if p.StartDate.After(after) {
		if p.DateExhausted(p.StartDate) {
			return time.Time{}, false
		}
		// Weekly patterns with an explicit day set may exclude the anchor's
		// own weekday, and monthly patterns with an explicit day-of-month may
		// exclude the anchor's own day; fall through to the walk in either case.
		if anchorMatchesPattern(p, anchor) {
			return p.StartDate.UTC(), true
		}
	}

	var next time.Time
	var ok bool
	switch p.Frequency {
	case models.FrequencyDaily:
		next, ok = nextDaily(p, anchor, after, loc)
	case models.FrequencyWeekly:
		next, ok = nextWeekly(p, anchor, after, loc)
	case models.FrequencyMonthly:
		next, ok = nextMonthly(p, anchor, after, loc)
	default:
		return time.Time{}, false
	}
	if !ok {
		return time.Time{}, false
	}
	if p.DateExhausted(next) {
		return time.Time{}, false
	}
	return next.UTC(), true
}

// Preview returns up to limit upcoming occurrences after the given instant,
// honoring both the pattern's end date and its remaining occurrence budget.
// It is used by the occurrence preview endpoint and by tests; the
// materializer walks occurrences itself so it can advance per-slot state.
func Preview(p *models.RecurrencePattern, after time.Time, limit int) []time.Time {
	if limit <= 0 {
		return nil
	}
	if remaining := p.RemainingOccurrences(); remaining >= 0 && remaining < limit {
		limit = remaining
	}
	out := make([]time.Time, 0, limit)
	cursor := after
	for len(out) < limit {
		next, ok := NextOccurrence(p, cursor)
		if !ok {
			break
		}
		out = append(out, next)
		cursor = next
	}
	return out
}

// nextDaily walks day strides of p.Interval from the anchor date.
func nextDaily(p *models.RecurrencePattern, anchor, after time.Time, loc *time.Location) (time.Time, bool) {
	interval := p.Interval
	if interval < 1 {
		interval = 1
	}
	local := after.In(loc)
	// Jump close to the target stride instead of walking one day at a time.
	elapsed := daysBetween(dateOf(anchor), dateOf(local))
	stride := elapsed / interval
	if stride < 0 {
		stride = 0
	}
	for i := 0; i < maxCandidateSteps; i++ {
		d := dateOf(anchor).AddDate(0, 0, (stride+i)*interval)
		candidate := atWallClock(d, anchor, loc)
		if candidate.After(after) {
			return candidate, true
		}
	}
	return time.Time{}, false
}

// nextWeekly walks week strides of p.Interval from the week containing the
// anchor. Weeks start on Sunday to match the day-of-week numbering.
func nextWeekly(p *models.RecurrencePattern, anchor, after time.Time, loc *time.Location) (time.Time, bool) {
	interval := p.Interval
	if interval < 1 {
		interval = 1
	}
	days := append([]int(nil), p.DaysOfWeek...)
	if len(days) == 0 {
		days = []int{int(anchor.Weekday())}
	}
	sort.Ints(days)

	anchorWeek := startOfWeek(dateOf(anchor))
	local := after.In(loc)
	elapsed := daysBetween(anchorWeek, startOfWeek(dateOf(local))) / 7
	stride := elapsed / interval
	if stride < 0 {
		stride = 0
	}
	for i := 0; i < maxCandidateSteps; i++ {
		week := anchorWeek.AddDate(0, 0, (stride+i)*interval*7)
		for _, dow := range days {
			if dow < 0 || dow > 6 {
				continue
			}
			d := week.AddDate(0, 0, dow)
			candidate := atWallClock(d, anchor, loc)
			if candidate.After(after) && !candidate.Before(p.StartDate) {
				return candidate, true
			}
		}
	}
	return time.Time{}, false
}

// nextMonthly walks month strides of p.Interval from the anchor month,
// clamping the scheduled day to the length of each candidate month.
func nextMonthly(p *models.RecurrencePattern, anchor, after time.Time, loc *time.Location) (time.Time, bool) {
	interval := p.Interval
	if interval < 1 {
		interval = 1
	}
	day := p.DayOfMonth
	if day < 1 {
		day = anchor.Day()
	}
	local := after.In(loc)
	elapsed := monthsBetween(anchor, local)
	stride := elapsed / interval
	if stride < 0 {
		stride = 0
	}
	for i := 0; i < maxCandidateSteps; i++ {
		months := (stride + i) * interval
		year, month := addMonths(anchor.Year(), anchor.Month(), months)
		d := clampDayToMonth(year, month, day)
		candidate := time.Date(year, month, d, anchor.Hour(), anchor.Minute(), anchor.Second(), 0, loc)
		if candidate.After(after) && !candidate.Before(p.StartDate) {
			return candidate, true
		}
	}
	return time.Time{}, false
}

// clampDayToMonth returns day limited to the number of days in the month, so
// a day-31 pattern lands on February 28 (29 in leap years).
func clampDayToMonth(year int, month time.Month, day int) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}

// atWallClock combines a calendar date with the anchor's wall-clock time in
// loc. Constructing the instant from components keeps the local time stable
// across DST transitions.
func atWallClock(date, anchor time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		anchor.Hour(), anchor.Minute(), anchor.Second(), 0, loc)
}

// dateOf truncates t to midnight in its own location.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the Sunday that begins t's week.
func startOfWeek(t time.Time) time.Time {
	return t.AddDate(0, 0, -int(t.Weekday()))
}

// daysBetween counts whole calendar days from a to b. Both arguments must be
// midnight values in the same location.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// monthsBetween counts whole calendar months from a to b, ignoring days.
func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// addMonths normalizes year/month arithmetic without day overflow.
func addMonths(year int, month time.Month, n int) (int, time.Month) {
	m := int(month) - 1 + n
	year += m / 12
	m %= 12
	if m < 0 {
		m += 12
		year--
	}
	return year, time.Month(m + 1)
}

// anchorMatchesPattern reports whether the pattern's start instant is itself a
// valid occurrence of the pattern's day rule. Weekly day sets and explicit
// monthly day-of-month values can both exclude the anchor's own calendar day.
func anchorMatchesPattern(p *models.RecurrencePattern, anchor time.Time) bool {
	switch p.Frequency {
	case models.FrequencyWeekly:
		return len(p.DaysOfWeek) == 0 || containsInt(p.DaysOfWeek, int(anchor.Weekday()))
	case models.FrequencyMonthly:
		if p.DayOfMonth < 1 {
			return true
		}
		// Compare against the clamped day so a day-31 pattern anchored on
		// February 28 still counts the anchor as its first occurrence.
		return anchor.Day() == clampDayToMonth(anchor.Year(), anchor.Month(), p.DayOfMonth)
	default:
		return true
	}
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
