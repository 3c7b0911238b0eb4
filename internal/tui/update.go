package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitreel/internal/constants"
	"github.com/julianstephens/habitreel/internal/logger"
	"github.com/julianstephens/habitreel/internal/manager"
	"github.com/julianstephens/habitreel/internal/tracker"
	"github.com/julianstephens/habitreel/internal/tui/components/habits"
)

// toggleTimeout bounds the reward fetch that may follow a completion.
const toggleTimeout = 15 * time.Second

type toggledMsg struct {
	res *manager.ToggleResult
	err error
}

type prefetchedMsg struct {
	err error
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.resize(size)
		return m, nil
	}
	if p, ok := msg.(prefetchedMsg); ok {
		if p.err != nil {
			logger.Warn("Reward prefetch failed", "error", p.err)
		}
		m.refresh()
		return m, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case constants.StateAddHabit:
		return m.updateAddHabit(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	case constants.StateReport:
		return m.updateReport(msg)
	}
	return m.updateHabits(msg)
}

func (m *Model) resize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.help.Width = msg.Width
	// Tabs, flash line and help take about four rows.
	listHeight := msg.Height - 4
	h, v := docStyle.GetFrameSize()
	m.habitsModel.SetSize(msg.Width-h, listHeight-v)
	if m.state == constants.StateReport {
		m.renderReport()
	}
}

func (m Model) updateHabits(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.habitsModel.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Tab):
			m.state = constants.StateReport
			m.renderReport()
			return m, nil
		case key.Matches(msg, m.keys.Sort):
			m.cycleSort()
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

	case habits.AddHabitMsg:
		m.habitForm = newHabitFormModel()
		m.form = NewHabitForm(m.habitForm)
		m.formError = ""
		m.state = constants.StateAddHabit
		return m, m.form.Init()

	case habits.ToggleHabitMsg:
		return m, m.toggleCmd(msg.ID)

	case toggledMsg:
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.setFlash(toggleText(msg.res))
		}
		m.refresh()
		return m, nil

	case habits.DeleteHabitMsg:
		m.habitToDeleteID = msg.ID
		m.state = constants.StateConfirmDelete
		return m, nil

	case habits.RestoreHabitMsg:
		if h, err := m.mgr.Restore(msg.ID); err != nil {
			m.setError(err)
		} else {
			m.setFlash("Restored " + h.Name)
		}
		m.refresh()
		return m, nil

	case habits.RevealRewardMsg:
		if _, err := m.mgr.Reveal(m.mgr.Evaluator(), msg.ID); err != nil {
			m.setError(err)
		}
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.habitsModel, cmd = m.habitsModel.Update(msg)
	return m, cmd
}

// toggleCmd runs the toggle off the update loop because it may call the photo provider.
func (m Model) toggleCmd(id string) tea.Cmd {
	mgr := m.mgr
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), toggleTimeout)
		defer cancel()
		res, err := mgr.Toggle(ctx, id, mgr.Evaluator().Today())
		return toggledMsg{res: res, err: err}
	}
}

// prefetchCmd fetches photos for habits finished before the TUI started.
func (m Model) prefetchCmd() tea.Cmd {
	mgr := m.mgr
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), toggleTimeout)
		defer cancel()
		return prefetchedMsg{err: mgr.PrefetchRewards(ctx)}
	}
}

func toggleText(res *manager.ToggleResult) string {
	if !res.Completed {
		return fmt.Sprintf("Unmarked %s for %s", res.Habit.Name, res.Day)
	}
	text := fmt.Sprintf("✓ %s done (streak: %s)", res.Habit.Name, tracker.StreakText(res.Habit.Streak))
	if res.Reward != nil {
		text += " · 🎁 photo unlocked"
	}
	return text
}

func (m Model) updateAddHabit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
		m.state = constants.StateHabits
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		name, err := m.create()
		if err == nil {
			m.setFlash("Added " + name)
			m.state = constants.StateHabits
			m.refresh()
			return m, cmd
		}
		// Stay on the form so the user can fix the input or leave with esc.
		m.formError = err.Error()
		m.form.State = huh.StateNormal
	case huh.StateAborted:
		m.state = constants.StateHabits
	}
	return m, cmd
}

func (m *Model) create() (string, error) {
	freq, err := m.habitForm.Frequency()
	if err != nil {
		return "", err
	}
	h, err := m.mgr.Create(manager.HabitInput{
		Name:          strings.TrimSpace(m.habitForm.Name),
		Frequency:     freq,
		TimeOfDay:     m.habitForm.TimeOfDay,
		RewardEnabled: m.habitForm.Reward,
	})
	if err != nil {
		return "", err
	}
	return h.Name, nil
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "y", "Y":
		if h, err := m.mgr.Delete(m.habitToDeleteID); err != nil {
			m.setError(err)
		} else {
			m.setFlash("Deleted " + h.Name + " (press 'r' to restore)")
		}
		m.habitToDeleteID = ""
		m.state = constants.StateHabits
		m.refresh()
	case "n", "N", "esc", "q":
		m.habitToDeleteID = ""
		m.state = constants.StateHabits
	}
	return m, nil
}

func (m Model) updateReport(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(k, m.keys.Tab), k.Type == tea.KeyEsc:
		m.state = constants.StateHabits
		m.refresh()
	case k.String() == "q":
		m.quitting = true
		return m, tea.Quit
	case key.Matches(k, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}
