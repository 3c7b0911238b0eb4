// Package manager owns every habit mutation: create, edit, soft delete, restore and the
// completion toggle. It persists through a storage.Provider, recomputes the stored streak
// after each toggle and asks the reward service for a photo when today is completed.
//
// Reads go through a tracker.Evaluator built by Evaluator(). Callers build one per command,
// render pass or request and hand it to List, Status and the report helpers.
package manager

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitreel/internal/constants"
	"github.com/julianstephens/habitreel/internal/logger"
	"github.com/julianstephens/habitreel/internal/models"
	"github.com/julianstephens/habitreel/internal/reward"
	"github.com/julianstephens/habitreel/internal/sorting"
	"github.com/julianstephens/habitreel/internal/storage"
	"github.com/julianstephens/habitreel/internal/tracker"
	"github.com/julianstephens/habitreel/internal/utils"
)

var (
	ErrDuplicateName = errors.New("a habit with that name already exists")
	ErrFutureDay     = errors.New("cannot record a completion in the future")
	ErrNoReward      = errors.New("no reward unlocked for this habit today")
)

type Manager struct {
	store   storage.Provider
	rewards *reward.Service
	clock   utils.Clock
	loc     *time.Location

	mu       sync.Mutex
	sortPref sorting.Strategy
}

// New returns a Manager. A nil rewards service disables photo unlocks, a nil clock reads
// the wall clock and a nil location means UTC.
func New(store storage.Provider, rewards *reward.Service, clock utils.Clock, loc *time.Location) *Manager {
	if clock == nil {
		clock = utils.RealClock{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Manager{store: store, rewards: rewards, clock: clock, loc: loc}
}

// Evaluator reads the clock once and pins a tracker to that instant in the user's zone.
func (m *Manager) Evaluator() *tracker.Evaluator {
	return tracker.New(m.loc, m.clock)
}

func (m *Manager) Location() *time.Location { return m.loc }

func (m *Manager) Rewards() *reward.Service { return m.rewards }

func (m *Manager) Store() storage.Provider { return m.store }

// HabitInput carries the user-editable fields of a new habit.
type HabitInput struct {
	Name          string
	Description   string
	Color         string
	Icon          string
	Frequency     []string
	TimeOfDay     constants.TimeOfDay
	StartDate     string
	RewardEnabled bool
}

// HabitPatch changes only the fields that are set.
type HabitPatch struct {
	Name          *string
	Description   *string
	Color         *string
	Icon          *string
	Frequency     []string
	TimeOfDay     *constants.TimeOfDay
	StartDate     *string
	RewardEnabled *bool
	Active        *bool
}

func (m *Manager) Create(in HabitInput) (models.Habit, error) {
	ev := m.Evaluator()

	habit := models.Habit{
		ID:            uuid.New().String(),
		Name:          strings.TrimSpace(in.Name),
		Description:   strings.TrimSpace(in.Description),
		Color:         in.Color,
		Icon:          in.Icon,
		Frequency:     in.Frequency,
		TimeOfDay:     in.TimeOfDay,
		StartDate:     in.StartDate,
		Active:        true,
		RewardEnabled: in.RewardEnabled,
	}
	if habit.StartDate == "" {
		habit.StartDate = ev.TodayString()
	}
	if err := m.validate(&habit); err != nil {
		return models.Habit{}, err
	}
	if err := m.checkName(habit.Name, ""); err != nil {
		return models.Habit{}, err
	}

	now := ev.Now().UTC()
	habit.CreatedAt = now
	habit.UpdatedAt = now
	if err := m.store.AddHabit(habit); err != nil {
		return models.Habit{}, fmt.Errorf("failed to add habit: %w", err)
	}
	logger.Info("Habit created", "habit", habit.ID, "name", habit.Name)
	return habit, nil
}

// Get resolves a live habit by id, then by name.
func (m *Manager) Get(ref string) (models.Habit, error) {
	habit, err := m.store.GetHabit(ref)
	if err == nil {
		return habit, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return models.Habit{}, err
	}
	habit, err = m.store.GetHabitByName(ref)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Habit{}, fmt.Errorf("habit %q: %w", ref, models.ErrNotFound)
		}
		return models.Habit{}, err
	}
	return habit, nil
}

func (m *Manager) Update(ref string, patch HabitPatch) (models.Habit, error) {
	habit, err := m.Get(ref)
	if err != nil {
		return models.Habit{}, err
	}

	if patch.Name != nil {
		habit.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		habit.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Color != nil {
		habit.Color = *patch.Color
	}
	if patch.Icon != nil {
		habit.Icon = *patch.Icon
	}
	if patch.Frequency != nil {
		habit.Frequency = patch.Frequency
	}
	if patch.TimeOfDay != nil {
		habit.TimeOfDay = *patch.TimeOfDay
	}
	if patch.StartDate != nil {
		habit.StartDate = *patch.StartDate
	}
	if patch.RewardEnabled != nil {
		habit.RewardEnabled = *patch.RewardEnabled
	}
	if patch.Active != nil {
		habit.Active = *patch.Active
	}

	if err := m.validate(&habit); err != nil {
		return models.Habit{}, err
	}
	if patch.Name != nil {
		if err := m.checkName(habit.Name, habit.ID); err != nil {
			return models.Habit{}, err
		}
	}

	ev := m.Evaluator()
	if patch.Frequency != nil || patch.StartDate != nil {
		habit.Streak = ev.ComputeStreak(habit)
	}
	habit.UpdatedAt = ev.Now().UTC()
	if err := m.store.UpdateHabit(habit); err != nil {
		return models.Habit{}, fmt.Errorf("failed to update habit: %w", err)
	}
	return habit, nil
}

func (m *Manager) Delete(ref string) (models.Habit, error) {
	habit, err := m.Get(ref)
	if err != nil {
		return models.Habit{}, err
	}
	if err := m.store.DeleteHabit(habit.ID); err != nil {
		return models.Habit{}, fmt.Errorf("failed to delete habit: %w", err)
	}
	if m.rewards != nil {
		m.rewards.Forget(habit.ID, m.Evaluator().TodayString())
	}
	logger.Info("Habit deleted", "habit", habit.ID)
	return habit, nil
}

// Restore brings back a soft-deleted habit matched by id or name.
func (m *Manager) Restore(ref string) (models.Habit, error) {
	habits, err := m.store.GetAllHabits(true, true)
	if err != nil {
		return models.Habit{}, err
	}
	for _, h := range habits {
		if !h.IsDeleted() {
			continue
		}
		if h.ID == ref || strings.EqualFold(h.Name, ref) {
			if err := m.checkName(h.Name, h.ID); err != nil {
				return models.Habit{}, err
			}
			if err := m.store.RestoreHabit(h.ID); err != nil {
				return models.Habit{}, fmt.Errorf("failed to restore habit: %w", err)
			}
			h.DeletedAt = nil
			return h, nil
		}
	}
	return models.Habit{}, fmt.Errorf("deleted habit %q: %w", ref, models.ErrNotFound)
}

// ToggleResult is the outcome of a completion toggle.
type ToggleResult struct {
	Habit     models.Habit
	Day       string
	Completed bool
	// Reward is set when today was completed and a photo was unlocked.
	Reward *models.PhotoReward

	today bool
}

// Toggle completes the habit on the local day containing day, or undoes every completion
// on that day if there already is one, then unlocks today's reward. Reward failures are
// logged and never fail the toggle.
func (m *Manager) Toggle(ctx context.Context, ref string, day time.Time) (*ToggleResult, error) {
	res, err := m.RecordToggle(ref, day)
	if err != nil {
		return nil, err
	}
	m.UnlockReward(ctx, res)
	return res, nil
}

// RecordToggle is the storage half of Toggle: it flips the day's completion and
// recomputes the stored streak. Undoing today also forgets today's reward. It makes no
// network calls.
func (m *Manager) RecordToggle(ref string, day time.Time) (*ToggleResult, error) {
	ev := m.Evaluator()
	habit, err := m.Get(ref)
	if err != nil {
		return nil, err
	}

	target := utils.StartOfLocalDay(day, m.loc)
	if target.After(ev.Today()) {
		return nil, ErrFutureDay
	}
	dayKey := utils.FormatDay(target, m.loc)

	res := &ToggleResult{Day: dayKey, today: dayKey == ev.TodayString()}
	if existing := ev.CompletionsOn(habit, target); len(existing) > 0 {
		if err := m.store.RemoveCompletions(habit.ID, existing); err != nil {
			return nil, fmt.Errorf("failed to remove completions: %w", err)
		}
		habit.CompletedDates = slices.DeleteFunc(slices.Clone(habit.CompletedDates), func(s string) bool {
			return slices.Contains(existing, s)
		})
	} else {
		stamp := completionStamp(ev, target)
		if err := m.store.AddCompletion(habit.ID, stamp); err != nil {
			return nil, fmt.Errorf("failed to add completion: %w", err)
		}
		habit.CompletedDates = append(habit.CompletedDates, stamp)
		res.Completed = true
	}

	habit.Streak = ev.ComputeStreak(habit)
	habit.UpdatedAt = ev.Now().UTC()
	if err := m.store.UpdateHabit(habit); err != nil {
		return nil, fmt.Errorf("failed to save streak: %w", err)
	}
	res.Habit = habit
	logger.Debug("Habit toggled", "habit", habit.ID, "day", dayKey, "completed", res.Completed, "streak", habit.Streak)

	if m.rewards != nil && res.today && !res.Completed {
		m.rewards.Forget(habit.ID, dayKey)
	}
	return res, nil
}

// UnlockReward sets res.Reward when res completed today. It may call the photo provider.
func (m *Manager) UnlockReward(ctx context.Context, res *ToggleResult) {
	if m.rewards == nil || res == nil || !res.today || !res.Completed {
		return
	}
	photo, err := m.rewards.Unlock(ctx, res.Habit, res.Day)
	if err != nil && !errors.Is(err, reward.ErrDisabled) {
		logger.Warn("Failed to unlock reward", "habit", res.Habit.ID, "error", err)
	}
	res.Reward = photo
}

// completionStamp is the instant recorded for a completion: now for today, local noon for
// an earlier day so a later zone change does not move it across midnight.
func completionStamp(ev *tracker.Evaluator, day time.Time) string {
	if day.Equal(ev.Today()) {
		return ev.Now().UTC().Format(constants.TimestampFormat)
	}
	y, mo, d := day.Date()
	noon := time.Date(y, mo, d, 12, 0, 0, 0, ev.Location())
	return noon.UTC().Format(constants.TimestampFormat)
}

// RecomputeStreaks refreshes the stored streak of every live habit and returns how many
// changed. Streaks go stale when a due day passes without a toggle.
func (m *Manager) RecomputeStreaks() (int, error) {
	ev := m.Evaluator()
	habits, err := m.store.GetAllHabits(true, false)
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, h := range habits {
		streak := ev.ComputeStreak(h)
		if streak == h.Streak {
			continue
		}
		h.Streak = streak
		if err := m.store.UpdateHabit(h); err != nil {
			return changed, fmt.Errorf("failed to save streak for %s: %w", h.ID, err)
		}
		changed++
	}
	return changed, nil
}

func (m *Manager) validate(h *models.Habit) error {
	if h.Name == "" {
		return fmt.Errorf("%w: name is required", models.ErrInvalidHabit)
	}
	freq, err := utils.NormalizeFrequency(h.Frequency)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidHabit, err)
	}
	if len(freq) == 0 {
		return fmt.Errorf("%w: at least one weekday is required", models.ErrInvalidHabit)
	}
	h.Frequency = freq

	switch h.TimeOfDay {
	case "":
		h.TimeOfDay = constants.TimeOfDayAnytime
	case constants.TimeOfDayMorning, constants.TimeOfDayAfternoon,
		constants.TimeOfDayEvening, constants.TimeOfDayAnytime:
	default:
		return fmt.Errorf("%w: unknown time of day %q", models.ErrInvalidHabit, h.TimeOfDay)
	}

	if _, err := utils.ParseDateInLocation(h.StartDate, m.loc); err != nil {
		return fmt.Errorf("%w: start date %q is not YYYY-MM-DD", models.ErrInvalidHabit, h.StartDate)
	}
	return nil
}

// checkName rejects a name already used by a live habit other than selfID.
func (m *Manager) checkName(name, selfID string) error {
	existing, err := m.store.GetHabitByName(name)
	switch {
	case err == nil && existing.ID != selfID:
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	case err == nil, errors.Is(err, models.ErrNotFound):
		return nil
	default:
		return err
	}
}
