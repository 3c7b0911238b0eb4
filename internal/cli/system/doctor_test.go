package system

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/habitreel/internal/cli"
	"github.com/julianstephens/habitreel/internal/models"
	"github.com/julianstephens/habitreel/internal/storage/sqlite"
	"github.com/julianstephens/habitreel/internal/utils"
	gokeyring "github.com/zalando/go-keyring"
)

func setupTestDoctorDB(t *testing.T) (*cli.Context, *sqlite.Store, *bytes.Buffer) {
	t.Helper()
	gokeyring.MockInit()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Store: store,
		Clock: utils.NewFixedClock(time.Date(2025, 3, 12, 9, 30, 0, 0, time.UTC)),
		Out:   out,
	}
	return ctx, store, out
}

func testHabit(id, name string, frequency ...string) models.Habit {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return models.Habit{
		ID:        id,
		Name:      name,
		Frequency: frequency,
		StartDate: "2025-03-01",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestDoctorCmd_HealthyDB(t *testing.T) {
	ctx, store, out := setupTestDoctorDB(t)
	if err := store.AddHabit(testHabit("h1", "Stretch", "monday")); err != nil {
		t.Fatal(err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor command failed on healthy database: %v\n%s", err, out.String())
	}
	// Missing backups only warn.
	if !strings.Contains(out.String(), "⚠ Backups present: WARNING") {
		t.Errorf("expected a backup warning:\n%s", out.String())
	}
}

func TestDoctorCmd_WithBackups(t *testing.T) {
	ctx, _, out := setupTestDoctorDB(t)
	if _, err := ctx.BackupManager().Create(); err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor command failed with backups present: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Backups present: OK") {
		t.Errorf("expected backups to pass:\n%s", out.String())
	}
}

func TestDoctorCmd_BrokenSchema(t *testing.T) {
	ctx, store, _ := setupTestDoctorDB(t)
	db := store.GetDB()
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		t.Fatalf("failed to delete schema version: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (999)"); err != nil {
		t.Fatalf("failed to insert schema version: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor command should fail with a newer schema")
	}
}

func TestCheckMigrationsComplete_Incomplete(t *testing.T) {
	ctx, store, _ := setupTestDoctorDB(t)
	current, _, err := store.SchemaVersion()
	if err != nil {
		t.Fatal(err)
	}
	db := store.GetDB()
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", current-1); err != nil {
		t.Fatal(err)
	}

	if err := checkMigrationsComplete(ctx); err == nil {
		t.Error("checkMigrationsComplete should fail with pending migrations")
	}
}

func TestCheckHabitsIntegrity(t *testing.T) {
	ctx, store, _ := setupTestDoctorDB(t)
	if err := store.AddHabit(testHabit("h1", "Stretch")); err != nil {
		t.Fatal(err)
	}

	err := checkHabitsIntegrity(ctx)
	if err == nil || !strings.Contains(err.Error(), "Stretch has no valid weekdays") {
		t.Errorf("checkHabitsIntegrity() = %v, want an empty frequency problem", err)
	}
}

func TestCheckCompletionTimestamps(t *testing.T) {
	ctx, store, _ := setupTestDoctorDB(t)
	h := testHabit("h1", "Stretch", "daily")
	h.CompletedDates = []string{"2025-03-10T08:00:00Z", "last tuesday"}
	if err := store.AddHabit(h); err != nil {
		t.Fatal(err)
	}

	err := checkCompletionTimestamps(ctx)
	if err == nil || !strings.Contains(err.Error(), "found 1 completions") {
		t.Errorf("checkCompletionTimestamps() = %v, want one bad completion", err)
	}
}

func TestCheckClockTimezone(t *testing.T) {
	ctx, _, _ := setupTestDoctorDB(t)
	if err := checkClockTimezone(ctx); err != nil {
		t.Errorf("clock/timezone check failed: %v", err)
	}

	ctx.Clock = utils.NewFixedClock(time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC))
	if err := checkClockTimezone(ctx); err == nil {
		t.Error("expected a failure for a clock stuck in 1999")
	}
}
