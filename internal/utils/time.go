package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/habitreel/internal/constants"
)

// localtimePath is where most Unix systems link the configured zone.
var localtimePath = "/etc/localtime"

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, the user's zone is resolved from the runtime.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.LoadLocation(ResolveUserTimezone())
	}
	return time.LoadLocation(timezone)
}

// LocationOrDefault is LoadLocation without the error: an invalid zone degrades to
// constants.DefaultTimezone.
func LocationOrDefault(timezone string) *time.Location {
	loc, err := LoadLocation(timezone)
	if err != nil {
		if fallback, ferr := time.LoadLocation(constants.DefaultTimezone); ferr == nil {
			return fallback
		}
		return time.UTC
	}
	return loc
}

// ResolveUserTimezone returns the IANA name of the runtime's zone. It never fails:
// when no usable zone can be found it returns constants.DefaultTimezone.
func ResolveUserTimezone() string {
	return resolveTimezone(os.Getenv("TZ"), readLocaltimeLink)
}

func resolveTimezone(tzEnv string, linkFn func() (string, error)) string {
	tzEnv = strings.TrimPrefix(tzEnv, ":")
	if tzEnv != "" && isIANAName(tzEnv) {
		return tzEnv
	}

	if linkFn != nil {
		if target, err := linkFn(); err == nil {
			if idx := strings.Index(target, "zoneinfo/"); idx >= 0 {
				name := target[idx+len("zoneinfo/"):]
				if isIANAName(name) {
					return name
				}
			}
		}
	}

	return constants.DefaultTimezone
}

func isIANAName(name string) bool {
	if name == "" || name == "Local" {
		return false
	}
	_, err := time.LoadLocation(name)
	return err == nil
}

func readLocaltimeLink() (string, error) {
	target, err := os.Readlink(localtimePath)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(target), nil
}

// ToZoned projects an instant into the wall clock of loc.
func ToZoned(instant time.Time, loc *time.Location) time.Time {
	return instant.In(loc)
}

// StartOfLocalDay returns midnight of the calendar day that instant falls on in loc.
// All "same day" comparisons go through this function.
func StartOfLocalDay(instant time.Time, loc *time.Location) time.Time {
	z := instant.In(loc)
	return time.Date(z.Year(), z.Month(), z.Day(), 0, 0, 0, 0, loc)
}

// SameLocalDay reports whether a and b fall on the same calendar day in loc.
func SameLocalDay(a, b time.Time, loc *time.Location) bool {
	return StartOfLocalDay(a, loc).Equal(StartOfLocalDay(b, loc))
}

// AddDays moves a local day forward by n calendar days, staying at midnight across DST changes.
func AddDays(day time.Time, n int, loc *time.Location) time.Time {
	d := StartOfLocalDay(day, loc)
	return time.Date(d.Year(), d.Month(), d.Day()+n, 0, 0, 0, 0, loc)
}

// FormatDay returns the ISO calendar day (YYYY-MM-DD) of instant in loc.
func FormatDay(instant time.Time, loc *time.Location) string {
	return instant.In(loc).Format(constants.DateFormat)
}

// ParseDateInLocation parses a date string (YYYY-MM-DD) in the specified timezone.
func ParseDateInLocation(dateStr string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, err
	}
	// Return the date at midnight in the specified timezone
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// ParseTimestamp parses a completion timestamp. RFC3339 (with or without fractional
// seconds) is preferred; a bare YYYY-MM-DD is read as midnight in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := ParseDateInLocation(s, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == "Local" {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}
