package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitreel/internal/cli"
	"github.com/julianstephens/habitreel/internal/cli/backups"
	"github.com/julianstephens/habitreel/internal/cli/habits"
	"github.com/julianstephens/habitreel/internal/cli/settings"
	"github.com/julianstephens/habitreel/internal/cli/system"
	"github.com/julianstephens/habitreel/internal/config"
	"github.com/julianstephens/habitreel/internal/constants"
	apperrors "github.com/julianstephens/habitreel/internal/errors"
	"github.com/julianstephens/habitreel/internal/logger"
	"github.com/julianstephens/habitreel/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"string" default:"${config_path}"`
	DB      string `name:"db" help:"SQLite file or PostgreSQL connection string. PostgreSQL strings must NOT embed a password; use the OS keyring or .pgpass instead."`
	Debug   bool   `help:"Log debug output to stderr."`

	Init     system.InitCmd       `cmd:"" help:"Initialize habitreel storage."`
	Migrate  system.MigrateCmd    `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Validate system.ValidateCmd   `cmd:"" help:"Check stored habits for conflicts."`
	Tui      system.TuiCmd        `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Serve    system.ServeCmd      `cmd:"" help:"Serve the JSON habit API."`
	Habit    habits.HabitCmd      `cmd:"" help:"Manage habits and habit tracking."`
	Report   habits.ReportCmd     `cmd:"" help:"Show completion reports."`
	Sort     habits.SortCmd       `cmd:"" help:"Manage the habit sort order."`
	Reward   habits.RewardCmd     `cmd:"" help:"Show and reveal photo rewards."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Keyring  system.KeyringCmd    `cmd:"" help:"Manage secrets in the OS keyring."`
	Backup   struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
}

// selfManaged commands open and close the store themselves.
var selfManaged = map[string]bool{
	"init":     true,
	"migrate":  true,
	"doctor":   true,
	"validate": true,
	"keyring":  true,
	"backup":   true,
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with streaks, weekly reports and photo rewards"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": constants.DefaultConfigPath,
		},
	)

	apperrors.Fatal(run(kctx))
}

func run(kctx *kong.Context) error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if CLI.DB != "" {
		cfg.Database = CLI.DB
	}
	if CLI.Debug {
		cfg.Debug = true
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: config.Dir(CLI.Config)}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	defer logger.Close()

	store, err := storage.Open(cfg.Database)
	if err != nil {
		return err
	}

	appCtx := &cli.Context{Store: store, Config: cfg}

	top, _, _ := strings.Cut(kctx.Command(), " ")
	if !selfManaged[top] {
		if err := store.Load(); err != nil {
			return err
		}
		defer store.Close()
		if err := appCtx.Prepare(); err != nil {
			return err
		}
	}

	return kctx.Run(appCtx)
}
