// Package errors formats command failures for the terminal.
package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/habitreel/internal/keyring"
	"github.com/julianstephens/habitreel/internal/logger"
	"github.com/julianstephens/habitreel/internal/models"
	"github.com/julianstephens/habitreel/internal/tracker"
)

var hints = []struct {
	target error
	hint   string
}{
	{models.ErrNotFound, "run 'habitreel habit list --inactive' to see habit names"},
	{models.ErrInvalidHabit, "a habit needs a name and at least one weekday"},
	{tracker.ErrEmptyFrequency, "set weekdays with 'habitreel habit edit <id> --days mon,wed,fri'"},
	{keyring.ErrKeyringUnavailable, "set the connection string with --db or HABITREEL_DATABASE instead"},
}

// Hint returns a follow-up suggestion for known failures, or "".
func Hint(err error) string {
	for _, h := range hints {
		if errors.Is(err, h.target) {
			return h.hint
		}
	}
	return ""
}

// Format formats an error message with a consistent "Error: " prefix and a hint line
// when one is known.
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	if hint := Hint(err); hint != "" {
		msg += "\nHint: " + hint
	}
	return msg
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
