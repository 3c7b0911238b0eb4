// Package storage defines the persistence contract shared by the SQLite and PostgreSQL
// backends and picks a backend from a database setting.
package storage

import "github.com/julianstephens/habitreel/internal/models"

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Habits. GetHabit and GetHabitByName only see live habits and return
	// models.ErrNotFound otherwise.
	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetHabitByName(name string) (models.Habit, error)
	GetAllHabits(includeInactive, includeDeleted bool) ([]models.Habit, error)
	UpdateHabit(models.Habit) error
	DeleteHabit(id string) error
	RestoreHabit(id string) error

	// Completion ledger
	GetCompletions(habitID string) ([]string, error)
	AddCompletion(habitID, completedAt string) error
	RemoveCompletions(habitID string, completedAt []string) error

	// Preferences. A missing key reads as "" with no error.
	GetPreference(key string) (string, error)
	SetPreference(key, value string) error
	DeletePreference(key string) error
	DeletePreferencesWithPrefix(prefix string) (int, error)

	// Migrations
	Migrate(logFn func(string)) (int, error)
	SchemaVersion() (current, latest int, err error)

	// Utils
	GetConfigPath() string
}
