package habits

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/habitreel/internal/cli"
	"github.com/julianstephens/habitreel/internal/config"
	"github.com/julianstephens/habitreel/internal/models"
	"github.com/julianstephens/habitreel/internal/storage/sqlite"
	"github.com/julianstephens/habitreel/internal/utils"
)

// 2025-03-12 is a Wednesday.
var now = time.Date(2025, 3, 12, 9, 30, 0, 0, time.UTC)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Store:  store,
		Config: cfg,
		Clock:  utils.NewFixedClock(now),
		Out:    out,
	}
	if err := ctx.Prepare(); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	return ctx, out
}

func run(t *testing.T, ctx *cli.Context, out *bytes.Buffer, cmd interface{ Run(*cli.Context) error }) string {
	t.Helper()
	out.Reset()
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("%T failed: %v", cmd, err)
	}
	return out.String()
}

func assertContains(t *testing.T, got string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("output missing %q:\n%s", w, got)
		}
	}
}

func TestAddAndList(t *testing.T) {
	ctx, out := setupTestContext(t)

	got := run(t, ctx, out, &HabitAddCmd{Name: "Stretch", Days: "mon,wed,fri", TimeOfDay: "morning"})
	assertContains(t, got, "Added habit: Stretch (mon,wed,fri)")

	got = run(t, ctx, out, &HabitListCmd{})
	assertContains(t, got, "Stretch", "mon,wed,fri", "0 days", "created now")

	if err := (&HabitAddCmd{Name: "stretch", Days: "daily"}).Run(ctx); err == nil {
		t.Error("expected a duplicate name error")
	}
	if err := (&HabitListCmd{Sort: "sideways"}).Run(ctx); err == nil {
		t.Error("expected an unknown sort error")
	}
}

func TestToggleTodayAndNext(t *testing.T) {
	ctx, out := setupTestContext(t)
	run(t, ctx, out, &HabitAddCmd{Name: "Stretch", Days: "mon,wed,fri", TimeOfDay: "anytime"})
	run(t, ctx, out, &HabitAddCmd{Name: "Walk", Days: "weekends", TimeOfDay: "anytime"})

	got := run(t, ctx, out, &HabitToggleCmd{Habit: "Stretch"})
	assertContains(t, got, `✓ Marked "Stretch" for 2025-03-12 (streak: 1 day)`)

	got = run(t, ctx, out, &HabitTodayCmd{})
	assertContains(t, got,
		"Habits for 2025-03-12 (Wednesday)",
		"[x] Stretch",
		" -  Walk (not scheduled)",
		"Recorded: 1/1 due",
	)

	got = run(t, ctx, out, &HabitNextCmd{Habit: "Stretch"})
	assertContains(t, got, "Friday, in 2 days (2025-03-14)")

	got = run(t, ctx, out, &HabitNextCmd{})
	assertContains(t, got, "Walk", "Saturday, in 3 days (2025-03-15)")

	got = run(t, ctx, out, &HabitToggleCmd{Habit: "stretch"})
	assertContains(t, got, `Unmarked "Stretch" for 2025-03-12`)

	got = run(t, ctx, out, &HabitNextCmd{Habit: "Stretch"})
	assertContains(t, got, "today (2025-03-12)")
}

func TestToggleRejectsBadDates(t *testing.T) {
	ctx, out := setupTestContext(t)
	run(t, ctx, out, &HabitAddCmd{Name: "Stretch", Days: "daily", TimeOfDay: "anytime"})

	if err := (&HabitToggleCmd{Habit: "Stretch", Date: "12/03/2025"}).Run(ctx); err == nil {
		t.Error("expected a date format error")
	}
	if err := (&HabitToggleCmd{Habit: "Stretch", Date: "2025-03-13"}).Run(ctx); err == nil {
		t.Error("expected a future day error")
	}
	if err := (&HabitToggleCmd{Habit: "Nope"}).Run(ctx); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("unknown habit error = %v, want ErrNotFound", err)
	}
}

func TestHistoryAndLog(t *testing.T) {
	ctx, out := setupTestContext(t)
	run(t, ctx, out, &HabitAddCmd{Name: "Stretch", Days: "mon,wed,fri", TimeOfDay: "anytime", Start: "2025-03-01"})
	run(t, ctx, out, &HabitToggleCmd{Habit: "Stretch", Date: "2025-03-10"})
	run(t, ctx, out, &HabitToggleCmd{Habit: "Stretch"})

	got := run(t, ctx, out, &HabitHistoryCmd{Habit: "Stretch", Start: "2025-03-07"})
	assertContains(t, got,
		"Stretch (mon,wed,fri, 2 days)",
		"2025-03-07 Fri  missed",
		"2025-03-09 Sun  -",
		"2025-03-10 Mon  done",
		"2025-03-12 Wed  done",
	)

	if err := (&HabitHistoryCmd{Habit: "Stretch", Start: "2025-03-12", End: "2025-03-10"}).Run(ctx); err == nil {
		t.Error("expected an inverted range error")
	}

	got = run(t, ctx, out, &HabitLogCmd{Days: 3})
	assertContains(t, got, "Habit log (last 3 days)", "03/10", "03/11", "03/12")
	lines := strings.Split(strings.TrimSpace(got), "\n")
	last := lines[len(lines)-1]
	if !strings.HasPrefix(last, "Stretch") || strings.Count(last, "x") != 2 {
		t.Errorf("log row = %q, want two completions", last)
	}
}

func TestEditDeleteRestore(t *testing.T) {
	ctx, out := setupTestContext(t)
	run(t, ctx, out, &HabitAddCmd{Name: "Stretch", Days: "daily", TimeOfDay: "anytime"})

	name := "Yoga"
	got := run(t, ctx, out, &HabitEditCmd{Habit: "Stretch", Name: &name})
	assertContains(t, got, "Updated habit: Yoga")

	empty := ""
	if err := (&HabitEditCmd{Habit: "Yoga", Days: &empty}).Run(ctx); !errors.Is(err, models.ErrInvalidHabit) {
		t.Errorf("empty days error = %v, want ErrInvalidHabit", err)
	}

	got = run(t, ctx, out, &HabitDeleteCmd{Habit: "Yoga"})
	assertContains(t, got, "Deleted habit: Yoga", "habitreel habit restore")

	got = run(t, ctx, out, &HabitListCmd{})
	assertContains(t, got, "No habits found.")

	got = run(t, ctx, out, &HabitListCmd{Deleted: true})
	assertContains(t, got, "Yoga", "[DELETED]")

	got = run(t, ctx, out, &HabitRestoreCmd{Habit: "yoga"})
	assertContains(t, got, "Restored habit: Yoga")
}

func TestSortCommands(t *testing.T) {
	ctx, out := setupTestContext(t)

	got := run(t, ctx, out, &SortGetCmd{})
	assertContains(t, got, "default (Due today)")

	got = run(t, ctx, out, &SortSetCmd{Strategy: "completion-rate"})
	assertContains(t, got, "Sort order set to completion_rate (Completion rate)")

	got = run(t, ctx, out, &SortListCmd{})
	assertContains(t, got, "* completion_rate")

	if err := (&SortSetCmd{Strategy: "random"}).Run(ctx); err == nil {
		t.Error("expected an unknown strategy error")
	}
}

func TestRewardCommandsWithoutProvider(t *testing.T) {
	ctx, out := setupTestContext(t)
	run(t, ctx, out, &HabitAddCmd{Name: "Stretch", Days: "daily", TimeOfDay: "anytime"})
	run(t, ctx, out, &HabitAddCmd{Name: "Read", Days: "daily", TimeOfDay: "anytime", Reward: true})

	got := run(t, ctx, out, &RewardShowCmd{Habit: "Stretch"})
	assertContains(t, got, "Rewards are off for Stretch")

	run(t, ctx, out, &HabitToggleCmd{Habit: "Read"})
	got = run(t, ctx, out, &RewardShowCmd{Habit: "Read"})
	assertContains(t, got, "No reward yet for Read today")

	if err := (&RewardRevealCmd{Habit: "Read"}).Run(ctx); err == nil {
		t.Error("expected reveal to fail without an unlocked photo")
	}
}

func TestWeeklyReportFormats(t *testing.T) {
	ctx, out := setupTestContext(t)
	run(t, ctx, out, &HabitAddCmd{Name: "Stretch", Days: "mon,wed,fri", TimeOfDay: "anytime", Start: "2025-03-01"})
	run(t, ctx, out, &HabitToggleCmd{Habit: "Stretch"})

	got := run(t, ctx, out, &ReportWeeklyCmd{Format: "json"})
	var report models.WeeklyReport
	if err := json.Unmarshal([]byte(got), &report); err != nil {
		t.Fatalf("report is not JSON: %v\n%s", err, got)
	}
	if report.StartDate != "2025-03-09" || len(report.PerHabit) != 1 || report.PerHabit[0].CompletedDays != 1 {
		t.Errorf("report = %+v", report)
	}

	got = run(t, ctx, out, &ReportWeeklyCmd{Format: "markdown"})
	assertContains(t, got, "# Week of 2025-03-09 to 2025-03-15", "| Stretch | 1 | 3 | 33% | 1 |")
}
