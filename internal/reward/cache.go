package reward

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/julianstephens/habitreel/internal/constants"
	"github.com/julianstephens/habitreel/internal/logger"
	"github.com/julianstephens/habitreel/internal/models"
)

// Preferences is the key/value store the cache persists through.
type Preferences interface {
	GetPreference(key string) (string, error)
	SetPreference(key, value string) error
	DeletePreference(key string) error
	DeletePreferencesWithPrefix(prefix string) (int, error)
}

// Cache holds today's unlocked rewards keyed by habit id. The whole map belongs to a
// single day and is dropped when that day changes. Store failures are logged and the
// cache carries on in memory.
type Cache struct {
	mu      sync.Mutex
	prefs   Preferences
	day     string
	rewards map[string]models.PhotoReward
	loaded  bool
}

// NewCache returns a cache backed by prefs. A nil prefs keeps everything in memory.
func NewCache(prefs Preferences) *Cache {
	return &Cache{prefs: prefs, rewards: make(map[string]models.PhotoReward)}
}

// Get returns the reward unlocked for habitID on day.
func (c *Cache) Get(habitID, day string) (models.PhotoReward, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensureDay(day)
	r, ok := c.rewards[habitID]
	return r, ok
}

// All returns a copy of every reward unlocked on day.
func (c *Cache) All(day string) map[string]models.PhotoReward {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensureDay(day)
	out := make(map[string]models.PhotoReward, len(c.rewards))
	for id, r := range c.rewards {
		out[id] = r
	}
	return out
}

// Put records a reward for habitID on day. The last write wins.
func (c *Cache) Put(habitID, day string, r models.PhotoReward) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensureDay(day)
	c.rewards[habitID] = r
	c.persist()
}

// Remove forgets the reward for habitID on day.
func (c *Cache) Remove(habitID, day string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensureDay(day)
	if _, ok := c.rewards[habitID]; !ok {
		return
	}
	delete(c.rewards, habitID)
	c.persist()
}

// IsRevealed reports whether the user has already looked at the habit's photo on day.
// Reveal flags follow the same day as the reward map.
func (c *Cache) IsRevealed(habitID, day string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensureDay(day)
	if c.prefs == nil {
		return false
	}
	v, err := c.prefs.GetPreference(revealedKey(habitID, day))
	if err != nil {
		logger.Warn("Failed to read reveal flag", "habit", habitID, "day", day, "error", err)
		return false
	}
	return v == "true"
}

func (c *Cache) MarkRevealed(habitID, day string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensureDay(day)
	if c.prefs == nil {
		return
	}
	if err := c.prefs.SetPreference(revealedKey(habitID, day), "true"); err != nil {
		logger.Warn("Failed to store reveal flag", "habit", habitID, "day", day, "error", err)
	}
}

func revealedKey(habitID, day string) string {
	return fmt.Sprintf(constants.PrefRevealedFormat, habitID, day)
}

// ensureDay loads the stored map on first use and resets it when day moves on.
// Callers hold c.mu.
func (c *Cache) ensureDay(day string) {
	if !c.loaded {
		c.loaded = true
		c.load()
	}
	if c.day == day {
		return
	}

	if len(c.rewards) > 0 || c.day != "" {
		logger.Debug("Discarding rewards from previous day", "stored", c.day, "today", day)
	}
	c.day = day
	c.rewards = make(map[string]models.PhotoReward)
	c.clearStored()
}

func (c *Cache) load() {
	if c.prefs == nil {
		return
	}

	day, err := c.prefs.GetPreference(constants.PrefRewardsDate)
	if err != nil {
		logger.Warn("Failed to read reward date", "error", err)
		return
	}
	raw, err := c.prefs.GetPreference(constants.PrefRewards)
	if err != nil {
		logger.Warn("Failed to read rewards", "error", err)
		return
	}
	if day == "" {
		return
	}
	if raw == "" {
		c.day = day
		return
	}

	rewards := make(map[string]models.PhotoReward)
	if err := json.Unmarshal([]byte(raw), &rewards); err != nil {
		logger.Warn("Ignoring unreadable reward map", "error", err)
		return
	}
	c.day = day
	c.rewards = rewards
}

func (c *Cache) persist() {
	if c.prefs == nil {
		return
	}

	data, err := json.Marshal(c.rewards)
	if err != nil {
		logger.Warn("Failed to encode rewards", "error", err)
		return
	}
	if err := c.prefs.SetPreference(constants.PrefRewards, string(data)); err != nil {
		logger.Warn("Failed to store rewards", "error", err)
		return
	}
	if err := c.prefs.SetPreference(constants.PrefRewardsDate, c.day); err != nil {
		logger.Warn("Failed to store reward date", "error", err)
	}
}

// clearStored drops the stored map and every reveal flag, then records the new day so a
// restart on the same day keeps the flags written after this point.
func (c *Cache) clearStored() {
	if c.prefs == nil {
		return
	}
	if err := c.prefs.DeletePreference(constants.PrefRewards); err != nil {
		logger.Warn("Failed to clear stored rewards", "error", err)
	}
	n, err := c.prefs.DeletePreferencesWithPrefix(constants.PrefRevealedPrefix)
	if err != nil {
		logger.Warn("Failed to clear reveal flags", "error", err)
	} else if n > 0 {
		logger.Debug("Cleared reveal flags from previous day", "count", n)
	}
	if err := c.prefs.SetPreference(constants.PrefRewardsDate, c.day); err != nil {
		logger.Warn("Failed to store reward date", "error", err)
	}
}
