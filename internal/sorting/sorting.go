// Package sorting orders habits for display.
package sorting

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/julianstephens/habitreel/internal/models"
	"github.com/julianstephens/habitreel/internal/tracker"
)

// Strategy selects a habit ordering.
type Strategy string

const (
	Default        Strategy = "default"
	Alphabetical   Strategy = "alphabetical"
	Streak         Strategy = "streak"
	Newest         Strategy = "newest"
	Oldest         Strategy = "oldest"
	CompletionRate Strategy = "completion_rate"
)

// ErrUnknownStrategy is returned by Parse for names it does not recognize.
var ErrUnknownStrategy = errors.New("unknown sort strategy")

// Strategies lists every strategy in menu order.
var Strategies = []Strategy{Default, Alphabetical, Streak, Newest, Oldest, CompletionRate}

// Parse accepts a strategy name, case-insensitive, with '-' or '_' separators.
func Parse(s string) (Strategy, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	if name == "" {
		return Default, nil
	}
	for _, st := range Strategies {
		if string(st) == name {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w %q (want one of %s)", ErrUnknownStrategy, s, strings.Join(Names(), ", "))
}

// Names returns the strategy names.
func Names() []string {
	names := make([]string, len(Strategies))
	for i, st := range Strategies {
		names[i] = string(st)
	}
	return names
}

// Label is the human-readable name of a strategy.
func (s Strategy) Label() string {
	switch s {
	case Alphabetical:
		return "A to Z"
	case Streak:
		return "Longest streak"
	case Newest:
		return "Newest first"
	case Oldest:
		return "Oldest first"
	case CompletionRate:
		return "Completion rate"
	default:
		return "Due today"
	}
}

// Compare orders two habits; negative puts a first.
type Compare func(a, b models.Habit) int

// ByName is a deterministic tie-break on name, then id.
func ByName(a, b models.Habit) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// Options carries what the default strategy needs.
type Options struct {
	// Evaluator answers due and completed for the day being rendered. Required by Default.
	Evaluator *tracker.Evaluator
	// TieBreak orders habits in the same priority bucket. Nil keeps input order.
	TieBreak Compare
	// Language drives alphabetical collation. The zero value means English.
	Language language.Tag
}

// Sort returns a new slice ordered by strategy. The input is never modified and equal
// habits keep their input order.
func Sort(habits []models.Habit, strategy Strategy, opts Options) []models.Habit {
	out := slices.Clone(habits)
	if out == nil {
		out = []models.Habit{}
	}

	var cmp Compare
	switch strategy {
	case Alphabetical:
		tag := opts.Language
		if tag == language.Und {
			tag = language.English
		}
		col := collate.New(tag, collate.IgnoreCase)
		cmp = func(a, b models.Habit) int { return col.CompareString(a.Name, b.Name) }
	case Streak:
		cmp = func(a, b models.Habit) int { return b.Streak - a.Streak }
	case Newest:
		cmp = func(a, b models.Habit) int { return compareTime(b.CreatedAt, a.CreatedAt) }
	case Oldest:
		cmp = func(a, b models.Habit) int { return compareTime(a.CreatedAt, b.CreatedAt) }
	case CompletionRate:
		cmp = func(a, b models.Habit) int { return compareFloat(completionProxy(b), completionProxy(a)) }
	default:
		cmp = priorityCompare(opts)
	}

	slices.SortStableFunc(out, cmp)
	return out
}

// Priority buckets: due and open, due and done, not due and open, not due and done.
func Priority(ev *tracker.Evaluator, h models.Habit) int {
	due := ev.IsDueToday(h)
	done := ev.IsCompletedToday(h)
	switch {
	case due && !done:
		return 1
	case due && done:
		return 2
	case !due && !done:
		return 3
	default:
		return 4
	}
}

func priorityCompare(opts Options) Compare {
	ev := opts.Evaluator
	if ev == nil {
		ev = tracker.NewAt(time.UTC, time.Now())
	}
	return func(a, b models.Habit) int {
		if d := Priority(ev, a) - Priority(ev, b); d != 0 {
			return d
		}
		if opts.TieBreak != nil {
			return opts.TieBreak(a, b)
		}
		return 0
	}
}

// completionProxy is completions per scheduled weekday. It is not a windowed rate.
func completionProxy(h models.Habit) float64 {
	return float64(len(h.CompletedDates)) / float64(max(1, len(h.Frequency)))
}

func compareTime(a, b time.Time) int {
	return a.Compare(b)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
