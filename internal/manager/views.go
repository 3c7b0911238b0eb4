package manager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitreel/internal/constants"
	"github.com/julianstephens/habitreel/internal/logger"
	"github.com/julianstephens/habitreel/internal/models"
	"github.com/julianstephens/habitreel/internal/sorting"
	"github.com/julianstephens/habitreel/internal/tracker"
)

// Filter selects which habits a listing includes.
type Filter struct {
	IncludeInactive bool
	IncludeDeleted  bool
}

// List loads habits and orders them. An empty strategy uses the saved sort preference.
func (m *Manager) List(ev *tracker.Evaluator, f Filter, strategy sorting.Strategy) ([]models.Habit, error) {
	habits, err := m.store.GetAllHabits(f.IncludeInactive, f.IncludeDeleted)
	if err != nil {
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}
	if strategy == "" {
		strategy = m.SortPreference()
	}
	return sorting.Sort(habits, strategy, sorting.Options{Evaluator: ev}), nil
}

// Status is a habit together with what the pinned day says about it.
type Status struct {
	Habit          models.Habit        `json:"habit"`
	DueToday       bool                `json:"due_today"`
	CompletedToday bool                `json:"completed_today"`
	NextDue        string              `json:"next_due,omitempty"` // YYYY-MM-DD format
	Reward         *models.PhotoReward `json:"reward,omitempty"`
	Revealed       bool                `json:"revealed"`
}

func (m *Manager) Status(ev *tracker.Evaluator, h models.Habit) Status {
	st := Status{
		Habit:          h,
		DueToday:       ev.IsDueToday(h),
		CompletedToday: ev.IsCompletedToday(h),
	}
	if next, err := ev.NextDueDateFromToday(h); err == nil {
		st.NextDue = next.Format(constants.DateFormat)
	}
	if m.rewards != nil {
		today := ev.TodayString()
		st.Reward, _ = m.rewards.Lookup(h.ID, today)
		st.Revealed = m.rewards.Revealed(h.ID, today)
	}
	return st
}

func (m *Manager) Statuses(ev *tracker.Evaluator, habits []models.Habit) []Status {
	out := make([]Status, len(habits))
	for i, h := range habits {
		out[i] = m.Status(ev, h)
	}
	return out
}

// History returns one record per local day from start to end inclusive.
func (m *Manager) History(ev *tracker.Evaluator, ref string, start, end time.Time) (models.Habit, []models.DayRecord, error) {
	habit, err := m.Get(ref)
	if err != nil {
		return models.Habit{}, nil, err
	}
	return habit, ev.HistoryForRange(habit, start, end), nil
}

// WeeklyReport covers every active habit over the week containing the pinned instant.
func (m *Manager) WeeklyReport(ev *tracker.Evaluator) (*models.WeeklyReport, error) {
	habits, err := m.store.GetAllHabits(false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}
	return ev.WeeklyReport(habits), nil
}

// SortPreference returns the strategy set earlier in this process, else the saved one.
// The preference key wins over its mirror in settings.
func (m *Manager) SortPreference() sorting.Strategy {
	m.mu.Lock()
	st := m.sortPref
	m.mu.Unlock()
	if st != "" {
		return st
	}

	value, err := m.store.GetPreference(constants.PrefSortPreference)
	if err != nil {
		logger.Warn("Failed to read sort preference", "error", err)
		return sorting.Default
	}
	if value == "" {
		settings, err := m.store.GetSettings()
		if err != nil {
			return sorting.Default
		}
		value = settings.SortPreference
	}
	st, err = sorting.Parse(value)
	if err != nil {
		logger.Warn("Ignoring stored sort preference", "value", value, "error", err)
		return sorting.Default
	}
	return st
}

// SetSortPreference keeps the strategy for the rest of the process and saves it under
// the preference key, mirrored into settings. Store failures are only logged.
func (m *Manager) SetSortPreference(st sorting.Strategy) {
	m.mu.Lock()
	m.sortPref = st
	m.mu.Unlock()

	if err := m.store.SetPreference(constants.PrefSortPreference, string(st)); err != nil {
		logger.Warn("Failed to save sort preference", "strategy", st, "error", err)
		return
	}
	settings, err := m.store.GetSettings()
	if err != nil {
		logger.Warn("Failed to read settings", "error", err)
		return
	}
	if settings.SortPreference == string(st) {
		return
	}
	settings.SortPreference = string(st)
	if err := m.store.SaveSettings(settings); err != nil {
		logger.Warn("Failed to mirror sort preference into settings", "strategy", st, "error", err)
	}
}

// Reward returns today's unlocked photo for a habit and whether it has been revealed.
func (m *Manager) Reward(ev *tracker.Evaluator, ref string) (models.Habit, *models.PhotoReward, bool, error) {
	habit, err := m.Get(ref)
	if err != nil {
		return models.Habit{}, nil, false, err
	}
	if m.rewards == nil {
		return habit, nil, false, nil
	}
	today := ev.TodayString()
	photo, ok := m.rewards.Lookup(habit.ID, today)
	if !ok {
		return habit, nil, false, nil
	}
	return habit, photo, m.rewards.Revealed(habit.ID, today), nil
}

// Reveal marks today's photo as seen. It fails when nothing was unlocked.
func (m *Manager) Reveal(ev *tracker.Evaluator, ref string) (*models.PhotoReward, error) {
	habit, photo, _, err := m.Reward(ev, ref)
	if err != nil {
		return nil, err
	}
	if photo == nil {
		return nil, fmt.Errorf("%s: %w", habit.Name, ErrNoReward)
	}
	m.rewards.Reveal(habit.ID, ev.TodayString())
	return photo, nil
}

// PrefetchRewards fetches today's photos for habits completed today that have none
// cached yet. It is a no-op without a reward provider.
func (m *Manager) PrefetchRewards(ctx context.Context) error {
	if m.rewards == nil || !m.rewards.Enabled() {
		return nil
	}
	habits, err := m.store.GetAllHabits(false, false)
	if err != nil {
		return fmt.Errorf("failed to load habits: %w", err)
	}
	return m.rewards.Prefetch(ctx, m.Evaluator(), habits)
}

// IsNotFound reports whether err means a habit could not be resolved.
func IsNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
