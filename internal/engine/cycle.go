package engine

import (
	"time"

	"github.com/ah91648/roomie-roster-sub000/internal/models"
)

// weekdayIndex maps Monday to 0 through Sunday to 6, so comparing
// indices tells us whether a week boundary sits between two dates.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// elapsedDays counts whole 24-hour periods between two instants.
func elapsedDays(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// ShouldStartNewCycle reports whether the weekly point ledger should be
// reset before assigning: the scheduler has never run, seven or more
// days have passed, or a Monday has gone by since the last run.
func ShouldStartNewCycle(state models.ScheduleState, now time.Time) bool {
	if state.LastRunDate == nil {
		return true
	}
	if elapsedDays(*state.LastRunDate, now) >= 7 {
		return true
	}
	return weekdayIndex(now) < weekdayIndex(*state.LastRunDate)
}

// IsChoreDue reports whether enough days have passed since the last
// scheduler run for the chore's frequency. With no last run everything
// is due, and an unrecognized frequency counts as due rather than
// silently dropping the chore.
func IsChoreDue(chore models.Chore, lastRun *time.Time, now time.Time) bool {
	if lastRun == nil {
		return true
	}
	days := elapsedDays(*lastRun, now)
	switch chore.Frequency {
	case models.FrequencyDaily:
		return days >= 1
	case models.FrequencyWeekly:
		return days >= 7
	case models.FrequencyBiWeekly:
		return days >= 14
	default:
		return true
	}
}

// DueDate is when an assignment handed out at the given time must be
// finished. Unrecognized frequencies get the weekly window.
func DueDate(frequency models.Frequency, assigned time.Time) time.Time {
	return assigned.AddDate(0, 0, dueOffsetDays(frequency))
}

func dueOffsetDays(frequency models.Frequency) int {
	switch frequency {
	case models.FrequencyDaily:
		return 1
	case models.FrequencyWeekly:
		return 7
	case models.FrequencyBiWeekly:
		return 14
	default:
		return 7
	}
}
