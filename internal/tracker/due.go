package tracker

import (
	"errors"
	"sort"
	"time"

	"github.com/julianstephens/habitreel/internal/models"
	"github.com/julianstephens/habitreel/internal/utils"
)

// ErrEmptyFrequency is returned when a next due date is requested for a habit with no
// scheduled weekdays.
var ErrEmptyFrequency = errors.New("tracker: habit has no scheduled weekdays")

// IsDueOn reports whether date's weekday, taken in the user's zone, is in the habit's
// frequency set. Names match case-insensitively.
func (e *Evaluator) IsDueOn(habit models.Habit, date time.Time) bool {
	weekday := date.In(e.loc).Weekday()
	for _, f := range habit.Frequency {
		if wd, err := utils.ParseWeekday(f); err == nil && wd == weekday {
			return true
		}
	}
	return false
}

func (e *Evaluator) IsDueToday(habit models.Habit) bool {
	return e.IsDueOn(habit, e.now)
}

// NextDueDate returns local midnight of the next day the habit should be done, counting
// from the day containing from. Today counts if it is due and not yet completed.
func (e *Evaluator) NextDueDate(habit models.Habit, from time.Time) (time.Time, error) {
	indices := dueIndices(habit)
	if len(indices) == 0 {
		return time.Time{}, ErrEmptyFrequency
	}

	today := utils.StartOfLocalDay(from, e.loc)
	if e.IsDueOn(habit, today) && !e.IsCompletedOn(habit, today) {
		return today, nil
	}

	todayIdx := int(today.Weekday())
	for _, idx := range indices {
		if idx > todayIdx {
			return utils.AddDays(today, idx-todayIdx, e.loc), nil
		}
	}
	return utils.AddDays(today, 7-todayIdx+indices[0], e.loc), nil
}

// NextDueDateFromToday is NextDueDate evaluated from the pinned instant.
func (e *Evaluator) NextDueDateFromToday(habit models.Habit) (time.Time, error) {
	return e.NextDueDate(habit, e.now)
}

// dueIndices returns the sorted, distinct weekday indices of a frequency set.
// Entries that are not weekday names are ignored.
func dueIndices(habit models.Habit) []int {
	seen := make(map[int]bool, len(habit.Frequency))
	indices := make([]int, 0, len(habit.Frequency))
	for _, f := range habit.Frequency {
		wd, err := utils.ParseWeekday(f)
		if err != nil {
			continue
		}
		if !seen[int(wd)] {
			seen[int(wd)] = true
			indices = append(indices, int(wd))
		}
	}
	sort.Ints(indices)
	return indices
}

// Schedulable reports whether the habit has at least one valid weekday.
func Schedulable(habit models.Habit) bool {
	return len(dueIndices(habit)) > 0
}
