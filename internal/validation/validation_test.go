package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/habitreel/internal/models"
)

var now = time.Date(2025, 3, 12, 9, 30, 0, 0, time.UTC)

func habit(id, name string, created time.Time) models.Habit {
	return models.Habit{
		ID:        id,
		Name:      name,
		Frequency: []string{"monday", "wednesday"},
		StartDate: "2025-03-01",
		CreatedAt: created,
	}
}

func TestValidateHabitsClean(t *testing.T) {
	v := New(time.UTC, now)
	result := v.ValidateHabits([]models.Habit{habit("h1", "Stretch", now), habit("h2", "Read", now)})
	if result.HasConflicts() {
		t.Errorf("unexpected conflicts: %+v", result.Conflicts)
	}
	if got := result.FormatReport(); got != "No conflicts detected." {
		t.Errorf("FormatReport() = %q", got)
	}
}

func TestValidateHabitsFindsProblems(t *testing.T) {
	bad := habit("h3", "Walk", now)
	bad.Frequency = nil
	bad.StartDate = "03/01/2025"
	bad.TimeOfDay = "midnight"
	bad.CompletedDates = []string{"2025-03-10T08:00:00Z", "last tuesday", "2025-03-20T08:00:00Z"}

	deleted := habit("h4", "stretch", now)
	deletedAt := now
	deleted.DeletedAt = &deletedAt

	v := New(time.UTC, now)
	result := v.ValidateHabits([]models.Habit{
		habit("h1", "Stretch", now),
		habit("h2", "STRETCH ", now),
		bad,
		deleted,
	})

	tests := []struct {
		typ  ConflictType
		want string
	}{
		{ConflictDuplicateHabitName, `Duplicate habit name: "stretch" (IDs: [h1 h2])`},
		{ConflictEmptyFrequency, "Walk has no valid weekdays"},
		{ConflictInvalidStartDate, `Walk has an invalid start date "03/01/2025"`},
		{ConflictInvalidTimeOfDay, `Walk has an unknown time of day "midnight"`},
		{ConflictInvalidCompletion, "Walk has 1 completions with unparsable timestamps"},
		{ConflictFutureCompletion, "Walk has 1 completions in the future"},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			got := result.Of(tt.typ)
			if len(got) != 1 {
				t.Fatalf("got %d conflicts of type %s, want 1", len(got), tt.typ)
			}
			if got[0].Description != tt.want {
				t.Errorf("Description = %q, want %q", got[0].Description, tt.want)
			}
		})
	}
	if len(result.Conflicts) != len(tests) {
		t.Errorf("got %d conflicts, want %d", len(result.Conflicts), len(tests))
	}
	if report := result.FormatReport(); !strings.HasPrefix(report, "Conflicts detected:\n- ") {
		t.Errorf("FormatReport() = %q", report)
	}
}

func TestAutoFixDuplicateHabitsKeepsOldest(t *testing.T) {
	habits := []models.Habit{
		habit("b", "Stretch", now),
		habit("a", "Stretch", now.Add(-time.Hour)),
		habit("c", "stretch", now),
	}
	result := New(time.UTC, now).ValidateHabits(habits)

	var removed []string
	actions := AutoFixDuplicateHabits(result.Conflicts, habits, func(id string) error {
		if id == "c" {
			return errors.New("locked")
		}
		removed = append(removed, id)
		return nil
	})

	if strings.Join(removed, ",") != "b" {
		t.Errorf("removed = %v, want [b]", removed)
	}
	if len(actions) != 1 {
		t.Fatalf("got %d actions, want 1", len(actions))
	}
	want := `Removed 1 duplicate habit(s) named "Stretch" (kept ID: a, removed: [b]) (failed to remove: [c])`
	if actions[0].Action != want {
		t.Errorf("Action = %q, want %q", actions[0].Action, want)
	}
}

func TestAutoFixCompletions(t *testing.T) {
	h := habit("h1", "Stretch", now)
	h.CompletedDates = []string{"2025-03-10T08:00:00Z", "garbage", "2025-04-01T08:00:00Z"}
	result := New(time.UTC, now).ValidateHabits([]models.Habit{h})

	got := map[string][]string{}
	actions := AutoFixCompletions(result.Conflicts, func(id string, stamps []string) error {
		got[id] = stamps
		return nil
	})

	if len(actions) != 1 || actions[0].Action != "Removed 1 unparsable completion(s) from h1" {
		t.Errorf("actions = %+v", actions)
	}
	if len(got["h1"]) != 1 || got["h1"][0] != "garbage" {
		t.Errorf("removed stamps = %v, want only the unparsable one", got)
	}
}
