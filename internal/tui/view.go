package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitreel/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateReport:
		content = docStyle.Render(m.report)
	case constants.StateAddHabit:
		content = m.viewForm()
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	default:
		content = docStyle.Render(m.habitsModel.View())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewFlash(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	titles := []struct {
		title string
		state constants.SessionState
	}{
		{"Habits", constants.StateHabits},
		{"Weekly report", constants.StateReport},
	}
	for _, t := range titles {
		active := m.state == t.state ||
			(t.state == constants.StateHabits && m.state != constants.StateReport)
		if active {
			tabs = append(tabs, activeTabStyle.Render(t.title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(t.title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewForm() string {
	if m.formError == "" {
		return docStyle.Render(m.form.View())
	}
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		errorStyle.Render(m.formError),
		"",
		m.form.View(),
	))
}

func (m Model) viewFlash() string {
	if m.flash == "" {
		return ""
	}
	if m.flashIsError {
		return errorStyle.Render(m.flash)
	}
	return flashStyle.Render(m.flash)
}

func (m Model) viewConfirmDelete() string {
	name := m.habitToDeleteID
	if h, err := m.mgr.Get(m.habitToDeleteID); err == nil {
		name = h.Name
	}
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Delete "+name+"?"),
			"Completions are kept and the habit can be restored.",
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
