package system

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habitreel/internal/cli"
	"github.com/julianstephens/habitreel/internal/constants"
	"github.com/julianstephens/habitreel/internal/keyring"
	"github.com/julianstephens/habitreel/internal/sorting"
	"github.com/julianstephens/habitreel/internal/storage/sqlite"
	"github.com/julianstephens/habitreel/internal/utils"
	"github.com/julianstephens/habitreel/internal/validation"
)

var errSkipped = errors.New("skipped")

type check struct {
	name string
	// needsDB checks are skipped when the database cannot be loaded.
	needsDB bool
	// warnOnly checks report problems without failing the run.
	warnOnly bool
	run      func(*cli.Context) error
}

var checks = []check{
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
	{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	{name: "Settings", needsDB: true, run: checkSettings},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "Habit integrity", needsDB: true, run: checkHabitsIntegrity},
	{name: "Completion timestamps", needsDB: true, run: checkCompletionTimestamps},
	{name: "Keyring", warnOnly: true, run: checkKeyring},
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := true
	if err := checkDBReachable(ctx); err != nil {
		ctx.Printf("❌ Database reachable: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		ctx.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case errors.Is(err, errSkipped):
			ctx.Printf("⊘ %s: SKIPPED (%v)\n", c.name, err)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if s, ok := ctx.Store.(*sqlite.Store); ok {
		db := s.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, err := ctx.Store.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	current, latest, err := ctx.Store.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run '%s migrate')", current, latest, constants.AppName)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr := ctx.BackupManager()
	if mgr == nil {
		return fmt.Errorf("%w: not a SQLite database", errSkipped)
	}
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with '%s backup create'", constants.AppName)
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if !utils.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("unknown timezone %q", settings.Timezone)
	}
	if _, err := sorting.Parse(settings.SortPreference); err != nil {
		return err
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if ctx.Clock != nil {
		now = ctx.Clock.Now()
	}
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if ctx.Config != nil && ctx.Config.Timezone != "" && !utils.ValidateTimezone(ctx.Config.Timezone) {
		return fmt.Errorf("configured timezone %q cannot be loaded", ctx.Config.Timezone)
	}
	return nil
}

// checkHabitsIntegrity looks for habits that can never be due or that share a name.
func checkHabitsIntegrity(ctx *cli.Context) error {
	_, result, err := validateHabits(ctx, false)
	if err != nil {
		return err
	}
	conflicts := result.Of(
		validation.ConflictDuplicateHabitName,
		validation.ConflictEmptyFrequency,
		validation.ConflictInvalidStartDate,
		validation.ConflictInvalidTimeOfDay,
	)
	if len(conflicts) == 0 {
		return nil
	}
	problems := make([]string, len(conflicts))
	for i, c := range conflicts {
		problems[i] = c.Description
	}
	return errors.New(strings.Join(problems, "; "))
}

func checkCompletionTimestamps(ctx *cli.Context) error {
	_, result, err := validateHabits(ctx, true)
	if err != nil {
		return err
	}
	bad := 0
	for _, c := range result.Of(validation.ConflictInvalidCompletion) {
		bad += len(c.Stamps)
	}
	if bad > 0 {
		return fmt.Errorf("found %d completions with unparsable timestamps (run '%s validate --fix')", bad, constants.AppName)
	}
	return nil
}

func checkKeyring(*cli.Context) error {
	if !keyring.IsAvailable() {
		return fmt.Errorf("OS keyring is not available; connection strings and provider tokens cannot be stored")
	}
	return nil
}
