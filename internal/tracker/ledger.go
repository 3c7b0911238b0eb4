package tracker

import (
	"time"

	"github.com/julianstephens/habitreel/internal/models"
	"github.com/julianstephens/habitreel/internal/utils"
)

// IsCompletedOn reports whether any completion falls on the same local day as date.
// Timestamps that do not parse never match.
func (e *Evaluator) IsCompletedOn(habit models.Habit, date time.Time) bool {
	day := utils.StartOfLocalDay(date, e.loc)
	for _, ts := range habit.CompletedDates {
		t, err := utils.ParseTimestamp(ts, e.loc)
		if err != nil {
			continue
		}
		if utils.StartOfLocalDay(t, e.loc).Equal(day) {
			return true
		}
	}
	return false
}

func (e *Evaluator) IsCompletedToday(habit models.Habit) bool {
	return e.IsCompletedOn(habit, e.now)
}

// CompletionsOn returns the raw ledger entries that fall on date's local day.
func (e *Evaluator) CompletionsOn(habit models.Habit, date time.Time) []string {
	day := utils.StartOfLocalDay(date, e.loc)
	var out []string
	for _, ts := range habit.CompletedDates {
		t, err := utils.ParseTimestamp(ts, e.loc)
		if err != nil {
			continue
		}
		if utils.StartOfLocalDay(t, e.loc).Equal(day) {
			out = append(out, ts)
		}
	}
	return out
}

// completedDaySet indexes the ledger by local ISO day.
func (e *Evaluator) completedDaySet(habit models.Habit) map[string]bool {
	days := make(map[string]bool, len(habit.CompletedDates))
	for _, ts := range habit.CompletedDates {
		t, err := utils.ParseTimestamp(ts, e.loc)
		if err != nil {
			continue
		}
		days[e.dayKey(t)] = true
	}
	return days
}
