// Package tui is the interactive habit list.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitreel/internal/constants"
	"github.com/julianstephens/habitreel/internal/logger"
	"github.com/julianstephens/habitreel/internal/manager"
	"github.com/julianstephens/habitreel/internal/report"
	"github.com/julianstephens/habitreel/internal/sorting"
	"github.com/julianstephens/habitreel/internal/tui/components/habits"
)

type Model struct {
	mgr         *manager.Manager
	state       constants.SessionState
	keys        KeyMap
	help        help.Model
	habitsModel habits.Model
	form        *huh.Form
	habitForm   *HabitFormModel
	report      string
	// flash is a one-line result of the last action.
	flash           string
	flashIsError    bool
	formError       string
	habitToDeleteID string
	quitting        bool
	width           int
	height          int
}

func NewModel(mgr *manager.Manager) Model {
	m := Model{
		mgr:         mgr,
		state:       constants.StateHabits,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		habitsModel: habits.New(nil, 0, 0),
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.prefetchCmd()
}

// refresh reloads habits against a fresh evaluator so a day rollover is picked up.
func (m *Model) refresh() {
	ev := m.mgr.Evaluator()
	list, err := m.mgr.List(ev, manager.Filter{IncludeDeleted: true}, "")
	if err != nil {
		logger.Error("Failed to load habits", "error", err)
		m.setError(err)
		return
	}
	m.habitsModel.SetHabits(m.mgr.Statuses(ev, list))
	st := m.mgr.SortPreference()
	m.habitsModel.SetTitle(fmt.Sprintf("%s · sorted by %s", ev.TodayString(), st.Label()))
}

func (m *Model) renderReport() {
	weekly, err := m.mgr.WeeklyReport(m.mgr.Evaluator())
	if err != nil {
		m.report = errorStyle.Render(err.Error())
		return
	}
	out, err := report.Render(weekly, m.width-4)
	if err != nil {
		// Fall back to the plain markdown.
		out = report.Markdown(weekly)
	}
	m.report = out
}

// cycleSort advances to the next strategy and saves it.
func (m *Model) cycleSort() {
	current := m.mgr.SortPreference()
	next := sorting.Strategies[0]
	for i, st := range sorting.Strategies {
		if st == current {
			next = sorting.Strategies[(i+1)%len(sorting.Strategies)]
			break
		}
	}
	m.mgr.SetSortPreference(next)
	m.setFlash("Sorted by " + next.Label())
	m.refresh()
}

func (m *Model) setFlash(s string) {
	m.flash = s
	m.flashIsError = false
}

func (m *Model) setError(err error) {
	m.flash = err.Error()
	m.flashIsError = true
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	if m.state == constants.StateHabits {
		keys = append(keys, m.keys.Sort)
		keys = append(keys, habits.DefaultKeyMap().Bindings()...)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.Sort, m.keys.Quit, m.keys.Help}
	if m.state != constants.StateHabits {
		return [][]key.Binding{global}
	}
	return [][]key.Binding{global, habits.DefaultKeyMap().Bindings()}
}
