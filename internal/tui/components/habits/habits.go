// Package habits is the TUI list of habits with today's status.
package habits

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitreel/internal/manager"
	"github.com/julianstephens/habitreel/internal/tracker"
	"github.com/julianstephens/habitreel/internal/utils"
)

type AddHabitMsg struct{}

type ToggleHabitMsg struct {
	ID string
}

type DeleteHabitMsg struct {
	ID string
}

type RestoreHabitMsg struct {
	ID string
}

type RevealRewardMsg struct {
	ID string
}

type Item struct {
	Status manager.Status
}

func (i Item) Title() string {
	h := i.Status.Habit
	switch {
	case h.IsDeleted():
		return "[DELETED] " + h.Name
	case i.Status.CompletedToday:
		return "✓ " + h.Name
	case i.Status.DueToday:
		return "○ " + h.Name
	default:
		return "· " + h.Name
	}
}

func (i Item) Description() string {
	h := i.Status.Habit
	if h.IsDeleted() {
		return "can restore with 'r'"
	}

	parts := []string{utils.FormatFrequency(h.Frequency), "streak " + tracker.StreakText(h.Streak)}
	switch {
	case i.Status.CompletedToday && !i.Status.DueToday:
		parts = append(parts, "done today (bonus)")
	case i.Status.CompletedToday:
		parts = append(parts, "done today")
	case i.Status.DueToday:
		parts = append(parts, "due today")
	case i.Status.NextDue != "":
		parts = append(parts, "next "+i.Status.NextDue)
	}
	if i.Status.Reward != nil {
		if i.Status.Revealed {
			parts = append(parts, "🎁 "+i.Status.Reward.URL)
		} else {
			parts = append(parts, "🎁 press 'p' to reveal")
		}
	}
	return strings.Join(parts, " · ")
}

func (i Item) FilterValue() string { return i.Status.Habit.Name }

type KeyMap struct {
	Add     key.Binding
	Toggle  key.Binding
	Delete  key.Binding
	Restore key.Binding
	Reveal  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "toggle today"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Restore: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restore"),
		),
		Reveal: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "reveal photo"),
		),
	}
}

func (k KeyMap) Bindings() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Delete, k.Restore, k.Reveal}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(statuses []manager.Status, width, height int) Model {
	l := list.New(items(statuses), list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = keys.Bindings
	l.AdditionalFullHelpKeys = keys.Bindings

	return Model{list: l, keys: keys}
}

func items(statuses []manager.Status) []list.Item {
	out := make([]list.Item, len(statuses))
	for i, st := range statuses {
		out[i] = Item{Status: st}
	}
	return out
}

// SetHabits replaces the rows and keeps the cursor on the same index where possible.
func (m *Model) SetHabits(statuses []manager.Status) {
	idx := m.list.Index()
	m.list.SetItems(items(statuses))
	if idx < len(statuses) {
		m.list.Select(idx)
	}
}

// SetTitle shows the active sort order above the list.
func (m *Model) SetTitle(title string) {
	m.list.Title = title
	m.list.SetShowTitle(title != "")
}

func (m Model) Selected() (Item, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i, ok
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && !m.Filtering() {
		if cmd := m.handleKey(msg); cmd != nil {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Add) {
		return func() tea.Msg { return AddHabitMsg{} }
	}
	i, ok := m.Selected()
	if !ok {
		return nil
	}
	id := i.Status.Habit.ID
	deleted := i.Status.Habit.IsDeleted()

	switch {
	case key.Matches(msg, m.keys.Toggle) && !deleted:
		return func() tea.Msg { return ToggleHabitMsg{ID: id} }
	case key.Matches(msg, m.keys.Delete) && !deleted:
		return func() tea.Msg { return DeleteHabitMsg{ID: id} }
	case key.Matches(msg, m.keys.Restore) && deleted:
		return func() tea.Msg { return RestoreHabitMsg{ID: id} }
	case key.Matches(msg, m.keys.Reveal) && i.Status.Reward != nil && !i.Status.Revealed:
		return func() tea.Msg { return RevealRewardMsg{ID: id} }
	}
	return nil
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

// Len is the number of rows.
func (m Model) Len() int { return len(m.list.Items()) }

