package tracker

import (
	"time"

	"github.com/julianstephens/habitreel/internal/models"
	"github.com/julianstephens/habitreel/internal/utils"
)

// maxStreakLookback bounds the backwards walk for habits with corrupt start dates.
const maxStreakLookback = 366 * 20

// ComputeStreak counts consecutive completed due days ending today. A due day that is
// still open today does not break the streak; days the habit is not scheduled are
// skipped. The walk stops at the first missed due day or at the habit's first day.
//
// This is the authoritative value stored on the habit; display code only reads it.
func (e *Evaluator) ComputeStreak(habit models.Habit) int {
	if !Schedulable(habit) {
		return 0
	}

	first, ok := e.firstDay(habit)
	if !ok {
		return 0
	}

	completed := e.completedDaySet(habit)
	day := e.Today()
	if e.IsDueOn(habit, day) && !completed[e.dayKey(day)] {
		day = utils.AddDays(day, -1, e.loc)
	}

	streak := 0
	for i := 0; i < maxStreakLookback && !day.Before(first); i++ {
		if e.IsDueOn(habit, day) {
			if !completed[e.dayKey(day)] {
				break
			}
			streak++
		}
		day = utils.AddDays(day, -1, e.loc)
	}
	return streak
}

// firstDay is the earliest of the habit's start date and its earliest completion.
func (e *Evaluator) firstDay(habit models.Habit) (time.Time, bool) {
	var first time.Time
	found := false

	if habit.StartDate != "" {
		if d, err := utils.ParseDateInLocation(habit.StartDate, e.loc); err == nil {
			first, found = d, true
		}
	} else if !habit.CreatedAt.IsZero() {
		first, found = utils.StartOfLocalDay(habit.CreatedAt, e.loc), true
	}

	for _, ts := range habit.CompletedDates {
		t, err := utils.ParseTimestamp(ts, e.loc)
		if err != nil {
			continue
		}
		d := utils.StartOfLocalDay(t, e.loc)
		if !found || d.Before(first) {
			first, found = d, true
		}
	}
	return first, found
}
