package tracker

import (
	"fmt"
	"math"
	"time"

	"github.com/julianstephens/habitreel/internal/models"
	"github.com/julianstephens/habitreel/internal/utils"
)

// HistoryForRange returns one record per local day from start to end inclusive.
// An inverted range yields an empty slice.
func (e *Evaluator) HistoryForRange(habit models.Habit, start, end time.Time) []models.DayRecord {
	first := utils.StartOfLocalDay(start, e.loc)
	last := utils.StartOfLocalDay(end, e.loc)
	if last.Before(first) {
		return []models.DayRecord{}
	}

	completed := e.completedDaySet(habit)
	var records []models.DayRecord
	for day := first; !day.After(last); day = utils.AddDays(day, 1, e.loc) {
		records = append(records, models.DayRecord{
			Date:      day,
			Due:       e.IsDueOn(habit, day),
			Completed: completed[e.dayKey(day)],
		})
	}
	return records
}

// WeekBounds returns local midnight of the Sunday starting the week that contains the
// pinned instant, and of the Saturday ending it.
func (e *Evaluator) WeekBounds() (time.Time, time.Time) {
	today := e.Today()
	start := utils.AddDays(today, -int(today.Weekday()), e.loc)
	return start, utils.AddDays(start, 6, e.loc)
}

// WeeklyReport summarises the current week. It returns nil when there are no habits.
// Rates are whole percentages; the overall rate is the unweighted mean of per-habit rates.
func (e *Evaluator) WeeklyReport(habits []models.Habit) *models.WeeklyReport {
	if len(habits) == 0 {
		return nil
	}

	start, end := e.WeekBounds()
	report := &models.WeeklyReport{
		StartDate: e.dayKey(start),
		EndDate:   e.dayKey(end),
		PerHabit:  make([]models.HabitWeekStats, 0, len(habits)),
	}

	var sum float64
	for _, habit := range habits {
		stats := models.HabitWeekStats{
			HabitID:   habit.ID,
			HabitName: habit.Name,
			Streak:    habit.Streak,
		}
		for _, rec := range e.HistoryForRange(habit, start, end) {
			if !rec.Due {
				continue
			}
			stats.DueDays++
			if rec.Completed {
				stats.CompletedDays++
			}
		}
		if stats.DueDays > 0 {
			stats.CompletionRate = math.Round(float64(stats.CompletedDays) / float64(stats.DueDays) * 100)
		}
		sum += stats.CompletionRate
		report.PerHabit = append(report.PerHabit, stats)
	}
	report.OverallCompletionRate = math.Round(sum / float64(len(habits)))

	return report
}

// StreakText renders a streak count for display.
func StreakText(streak int) string {
	if streak == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", streak)
}
