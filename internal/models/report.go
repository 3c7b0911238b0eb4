package models

import "time"

// DayRecord is the due/completed state of one habit on one local day
type DayRecord struct {
	Date      time.Time `json:"date"`
	Due       bool      `json:"due"`
	Completed bool      `json:"completed"`
}

// Bonus reports a completion on a day the habit was not scheduled.
func (r DayRecord) Bonus() bool {
	return r.Completed && !r.Due
}

// HabitWeekStats summarises one habit over a report window
type HabitWeekStats struct {
	HabitID        string  `json:"habit_id"`
	HabitName      string  `json:"habit_name"`
	DueDays        int     `json:"due_days"`
	CompletedDays  int     `json:"completed_days"`
	CompletionRate float64 `json:"completion_rate"` // percentage, 0-100
	Streak         int     `json:"streak"`
}

// WeeklyReport covers the Sunday-aligned week containing the report instant
type WeeklyReport struct {
	StartDate             string           `json:"start_date"` // YYYY-MM-DD format
	EndDate               string           `json:"end_date"`   // YYYY-MM-DD format
	PerHabit              []HabitWeekStats `json:"habits"`
	OverallCompletionRate float64          `json:"overall_completion_rate"`
}
