// Package validation finds inconsistencies in stored habits and repairs the ones that
// have a safe fix.
package validation

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/julianstephens/habitreel/internal/constants"
	"github.com/julianstephens/habitreel/internal/models"
	"github.com/julianstephens/habitreel/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateHabitName ConflictType = "duplicate_habit_name"
	ConflictEmptyFrequency     ConflictType = "empty_frequency"
	ConflictInvalidStartDate   ConflictType = "invalid_start_date"
	ConflictInvalidTimeOfDay   ConflictType = "invalid_time_of_day"
	ConflictInvalidCompletion  ConflictType = "invalid_completion"
	ConflictFutureCompletion   ConflictType = "future_completion"
)

// Conflict is one problem found in the stored habits.
type Conflict struct {
	Type        ConflictType
	Description string
	HabitIDs    []string
	// Stamps holds the offending completion timestamps, if any.
	Stamps []string
}

type ValidationResult struct {
	Conflicts []Conflict
}

// FixAction describes one repair made by an auto-fix.
type FixAction struct {
	Action         string
	SourceConflict Conflict
}

func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// Of returns the conflicts of the given types.
func (vr *ValidationResult) Of(types ...ConflictType) []Conflict {
	var out []Conflict
	for _, c := range vr.Conflicts {
		if slices.Contains(types, c.Type) {
			out = append(out, c)
		}
	}
	return out
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}
	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

// Validator checks habits against one instant so future completions can be spotted.
type Validator struct {
	loc *time.Location
	now time.Time
}

func New(loc *time.Location, now time.Time) *Validator {
	if loc == nil {
		loc = time.UTC
	}
	return &Validator{loc: loc, now: now}
}

// ValidateHabits checks every habit passed in. Deleted habits are checked for their own
// fields but never count toward duplicate names.
func (v *Validator) ValidateHabits(habits []models.Habit) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	byName := make(map[string][]string)
	var order []string
	for _, h := range habits {
		if h.IsDeleted() || strings.TrimSpace(h.Name) == "" {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(h.Name))
		if _, seen := byName[key]; !seen {
			order = append(order, key)
		}
		byName[key] = append(byName[key], h.ID)
	}
	for _, key := range order {
		if ids := byName[key]; len(ids) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateHabitName,
				Description: fmt.Sprintf("Duplicate habit name: %q (IDs: %v)", key, ids),
				HabitIDs:    ids,
			})
		}
	}

	for _, h := range habits {
		result.Conflicts = append(result.Conflicts, v.validateHabit(h)...)
	}
	return result
}

func (v *Validator) validateHabit(h models.Habit) []Conflict {
	var conflicts []Conflict
	ids := []string{h.ID}

	if freq, err := utils.NormalizeFrequency(h.Frequency); err != nil || len(freq) == 0 {
		conflicts = append(conflicts, Conflict{
			Type:        ConflictEmptyFrequency,
			Description: fmt.Sprintf("%s has no valid weekdays", h.Name),
			HabitIDs:    ids,
		})
	}
	if _, err := utils.ParseDateInLocation(h.StartDate, v.loc); err != nil {
		conflicts = append(conflicts, Conflict{
			Type:        ConflictInvalidStartDate,
			Description: fmt.Sprintf("%s has an invalid start date %q", h.Name, h.StartDate),
			HabitIDs:    ids,
		})
	}
	switch h.TimeOfDay {
	case "", constants.TimeOfDayMorning, constants.TimeOfDayAfternoon,
		constants.TimeOfDayEvening, constants.TimeOfDayAnytime:
	default:
		conflicts = append(conflicts, Conflict{
			Type:        ConflictInvalidTimeOfDay,
			Description: fmt.Sprintf("%s has an unknown time of day %q", h.Name, h.TimeOfDay),
			HabitIDs:    ids,
		})
	}

	var bad, future []string
	for _, stamp := range h.CompletedDates {
		t, err := utils.ParseTimestamp(stamp, v.loc)
		switch {
		case err != nil:
			bad = append(bad, stamp)
		case !v.now.IsZero() && t.After(v.now):
			future = append(future, stamp)
		}
	}
	if len(bad) > 0 {
		conflicts = append(conflicts, Conflict{
			Type:        ConflictInvalidCompletion,
			Description: fmt.Sprintf("%s has %d completions with unparsable timestamps", h.Name, len(bad)),
			HabitIDs:    ids,
			Stamps:      bad,
		})
	}
	if len(future) > 0 {
		conflicts = append(conflicts, Conflict{
			Type:        ConflictFutureCompletion,
			Description: fmt.Sprintf("%s has %d completions in the future", h.Name, len(future)),
			HabitIDs:    ids,
			Stamps:      future,
		})
	}
	return conflicts
}

// AutoFixDuplicateHabits keeps the oldest habit of each duplicate name and soft-deletes
// the rest.
func AutoFixDuplicateHabits(conflicts []Conflict, habits []models.Habit, deleteFunc func(id string) error) []FixAction {
	actions := []FixAction{}

	habitMap := make(map[string]models.Habit, len(habits))
	for _, h := range habits {
		habitMap[h.ID] = h
	}

	for _, conflict := range conflicts {
		if conflict.Type != ConflictDuplicateHabitName {
			continue
		}
		var dupes []models.Habit
		for _, id := range conflict.HabitIDs {
			if h, ok := habitMap[id]; ok && !h.IsDeleted() {
				dupes = append(dupes, h)
			}
		}
		if len(dupes) <= 1 {
			continue
		}
		slices.SortFunc(dupes, func(a, b models.Habit) int {
			if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
				return c
			}
			return strings.Compare(a.ID, b.ID)
		})

		keep := dupes[0]
		var deleted, failed []string
		for _, h := range dupes[1:] {
			if err := deleteFunc(h.ID); err != nil {
				failed = append(failed, h.ID)
				continue
			}
			deleted = append(deleted, h.ID)
		}

		if len(deleted) > 0 {
			msg := fmt.Sprintf("Removed %d duplicate habit(s) named %q (kept ID: %s, removed: %v)", len(deleted), keep.Name, keep.ID, deleted)
			if len(failed) > 0 {
				msg += fmt.Sprintf(" (failed to remove: %v)", failed)
			}
			actions = append(actions, FixAction{Action: msg, SourceConflict: conflict})
		} else if len(failed) > 0 {
			actions = append(actions, FixAction{
				Action:         fmt.Sprintf("Failed to remove duplicates for %q: %v", keep.Name, failed),
				SourceConflict: conflict,
			})
		}
	}
	return actions
}

// AutoFixCompletions drops completions whose timestamps cannot be parsed. Future
// completions are left alone since a wrong clock is the likelier cause.
func AutoFixCompletions(conflicts []Conflict, removeFunc func(habitID string, stamps []string) error) []FixAction {
	actions := []FixAction{}
	for _, conflict := range conflicts {
		if conflict.Type != ConflictInvalidCompletion || len(conflict.HabitIDs) != 1 {
			continue
		}
		id := conflict.HabitIDs[0]
		if err := removeFunc(id, conflict.Stamps); err != nil {
			actions = append(actions, FixAction{
				Action:         fmt.Sprintf("Failed to remove bad completions from %s: %v", id, err),
				SourceConflict: conflict,
			})
			continue
		}
		actions = append(actions, FixAction{
			Action:         fmt.Sprintf("Removed %d unparsable completion(s) from %s", len(conflict.Stamps), id),
			SourceConflict: conflict,
		})
	}
	return actions
}
