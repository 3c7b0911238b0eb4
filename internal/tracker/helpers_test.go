package tracker

import (
	"time"

	"github.com/julianstephens/habitreel/internal/models"
)

var allDays = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func habitWith(id string, frequency []string, completed ...time.Time) models.Habit {
	h := models.Habit{
		ID:        id,
		Name:      id,
		Frequency: frequency,
		StartDate: "2025-01-01",
		Active:    true,
	}
	for _, c := range completed {
		h.CompletedDates = append(h.CompletedDates, stamp(c))
	}
	return h
}
