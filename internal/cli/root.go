package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/habitreel/internal/backup"
	"github.com/julianstephens/habitreel/internal/config"
	"github.com/julianstephens/habitreel/internal/keyring"
	"github.com/julianstephens/habitreel/internal/logger"
	"github.com/julianstephens/habitreel/internal/manager"
	"github.com/julianstephens/habitreel/internal/models"
	"github.com/julianstephens/habitreel/internal/reward"
	"github.com/julianstephens/habitreel/internal/storage"
	"github.com/julianstephens/habitreel/internal/storage/sqlite"
	"github.com/julianstephens/habitreel/internal/tracker"
	"github.com/julianstephens/habitreel/internal/utils"
)

// Context is bound into every kong command.
type Context struct {
	Store  storage.Provider
	Config *config.Config
	Clock  utils.Clock
	Out    io.Writer

	// Manager is built by Prepare once the store is loaded.
	Manager *manager.Manager
}

// Prepare reads user settings from the loaded store and wires the habit manager.
func (c *Context) Prepare() error {
	if c.Config == nil {
		c.Config = config.DefaultConfig()
	}
	if c.Clock == nil {
		c.Clock = utils.RealClock{}
	}

	settings, err := c.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	tz := settings.Timezone
	if c.Config.Timezone != "" {
		tz = c.Config.Timezone
	}
	loc := utils.LocationOrDefault(tz)

	c.Manager = manager.New(c.Store, c.rewardService(settings), c.Clock, loc)
	if _, err := c.Manager.RecomputeStreaks(); err != nil {
		logger.Warn("Failed to refresh streaks", "error", err)
	}
	return nil
}

// rewardService always returns a service so cached rewards stay readable. It only gets a
// provider when rewards are enabled and a provider URL is known.
func (c *Context) rewardService(settings models.Settings) *reward.Service {
	cache := reward.NewCache(c.Store)

	url := c.Config.Rewards.ProviderURL
	if url == "" {
		url = settings.RewardProviderURL
	}
	enabled := settings.RewardsEnabled || c.Config.Rewards.Enabled
	if !enabled || url == "" {
		return reward.NewService(nil, cache, c.Config.Rewards.PrefetchLimit)
	}

	provider := reward.NewHTTPProvider(url, keyring.GetRewardToken(), c.Config.RewardTimeout())
	return reward.NewService(provider, cache, c.Config.Rewards.PrefetchLimit)
}

// Evaluator pins the temporal model to one instant for the current command.
func (c *Context) Evaluator() *tracker.Evaluator {
	return c.Manager.Evaluator()
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.writer(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.writer(), args...)
}

func (c *Context) writer() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// ResolveDay parses YYYY-MM-DD in the user's zone. Empty means today; "yesterday" is
// accepted as a shorthand.
func (c *Context) ResolveDay(ev *tracker.Evaluator, s string) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return ev.Today(), nil
	case "yesterday":
		return utils.AddDays(ev.Today(), -1, ev.Location()), nil
	}
	day, err := utils.ParseDateInLocation(s, ev.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", s)
	}
	return day, nil
}

// BackupManager returns a backup manager for the SQLite database, or nil for PostgreSQL.
func (c *Context) BackupManager() *backup.Manager {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return nil
	}
	return backup.NewManager(c.Store.GetConfigPath(), c.Clock)
}

// PerformAutomaticBackup creates an automatic backup and only logs failures.
func (c *Context) PerformAutomaticBackup() {
	mgr := c.BackupManager()
	if mgr == nil {
		return
	}
	if _, err := mgr.Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}
