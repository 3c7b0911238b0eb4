package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

// TimeOfDay is the cosmetic time-of-day tag carried by a habit
type TimeOfDay string

const (
	AppName            = "habitreel"
	DefaultKeyringUser = "database-connection"
	RewardKeyringUser  = "photo-provider-token"
	DefaultConfigDir   = "~/.config/habitreel"
	DefaultConfigPath  = "~/.config/habitreel/config.yaml"
	DefaultDBPath      = "~/.config/habitreel/habitreel.db"
	Version            = "v0.3.0"

	// DateFormat is the standard calendar-day format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimestampFormat is used for completion timestamps and row metadata
	TimestampFormat = time.RFC3339

	// DefaultTimezone is used whenever the user's zone cannot be resolved
	DefaultTimezone = "UTC"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitreel-"
	BackupFileSuffix = ".db"

	// Preference store keys
	PrefSortPreference = "habit_sort_preference"
	PrefRewards        = "habit_rewards"
	PrefRewardsDate    = "habit_rewards_date"
	// PrefRevealedFormat is formatted with the habit id and the ISO day
	PrefRevealedFormat = PrefRevealedPrefix + "%s_%s"
	PrefRevealedPrefix = "revealed_photo_"

	// Reward provider defaults
	DefaultRewardTimeout       = 10 * time.Second
	DefaultRewardPrefetchLimit = 4

	// Server defaults
	DefaultServerAddr = "127.0.0.1:8420"

	// Time of day tags
	TimeOfDayMorning   TimeOfDay = "morning"
	TimeOfDayAfternoon TimeOfDay = "afternoon"
	TimeOfDayEvening   TimeOfDay = "evening"
	TimeOfDayAnytime   TimeOfDay = "anytime"
)

// Session States
const (
	StateHabits SessionState = iota
	StateReport
	StateAddHabit
	StateConfirmDelete
)

// Weekdays lists weekday names indexed by time.Weekday (0=Sunday).
var Weekdays = [7]string{
	"sunday",
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
}
