// Package report formats weekly reports for terminals.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/julianstephens/habitreel/internal/models"
)

const defaultWrap = 100

// Markdown renders a weekly report as a markdown document with one table row per habit.
func Markdown(report *models.WeeklyReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Week of %s to %s\n\n", report.StartDate, report.EndDate)
	if len(report.PerHabit) == 0 {
		b.WriteString("No active habits.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Overall completion: **%.0f%%**\n\n", report.OverallCompletionRate)
	b.WriteString("| Habit | Done | Due | Rate | Streak |\n")
	b.WriteString("|---|---:|---:|---:|---:|\n")
	for _, s := range report.PerHabit {
		fmt.Fprintf(&b, "| %s | %d | %d | %.0f%% | %d |\n",
			escapeCell(s.HabitName), s.CompletedDays, s.DueDays, s.CompletionRate, s.Streak)
	}
	return b.String()
}

// Render styles the markdown for the terminal. A width of zero or less wraps at 100 columns.
func Render(report *models.WeeklyReport, width int) (string, error) {
	if width <= 0 {
		width = defaultWrap
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(Markdown(report))
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return out, nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
