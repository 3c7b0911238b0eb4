package models

import (
	"time"

	"github.com/julianstephens/habitreel/internal/constants"
)

// Habit represents a recurring practice with a weekly schedule
type Habit struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Description    string              `json:"description,omitempty"`
	Color          string              `json:"color,omitempty"`
	Icon           string              `json:"icon,omitempty"`
	Frequency      []string            `json:"frequency"`             // weekday names, e.g. "monday"
	TimeOfDay      constants.TimeOfDay `json:"time_of_day,omitempty"` // cosmetic only
	StartDate      string              `json:"start_date"`            // YYYY-MM-DD format
	Streak         int                 `json:"streak"`
	CompletedDates []string            `json:"completed_dates"` // RFC3339 timestamps, one per completion
	Active         bool                `json:"active"`
	RewardEnabled  bool                `json:"reward_enabled"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	DeletedAt      *time.Time          `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the habit has been soft deleted.
func (h Habit) IsDeleted() bool {
	return h.DeletedAt != nil
}
