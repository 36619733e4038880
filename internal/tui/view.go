package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/iconix/fortudo/internal/models"
	"github.com/iconix/fortudo/internal/timemath"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch {
	case m.pending.RequiresConfirmation:
		content = m.viewConfirm()
	case m.form != nil:
		content = m.form.View()
	default:
		content = m.viewTasks()
	}

	var footer string
	if m.message != "" {
		footer = lipgloss.NewStyle().Faint(true).Render(m.message)
	}

	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		content,
		footer,
		m.help.View(m.keys),
	))
}

func (m Model) viewConfirm() string {
	prompt := warningStyle.Render(m.pending.Reason)
	return lipgloss.JoinVertical(lipgloss.Left, prompt, "[y] confirm   [n] cancel")
}

func (m Model) viewTasks() string {
	var b strings.Builder
	b.WriteString(activeTabStyle.Render("fortudo") + "\n\n")

	i := 0
	b.WriteString("Scheduled\n")
	for _, t := range m.tasks {
		if t.Type != models.TypeScheduled {
			continue
		}
		b.WriteString(m.renderRow(i, t) + "\n")
		i++
	}

	b.WriteString("\nBacklog\n")
	for _, t := range m.tasks {
		if t.Type != models.TypeUnscheduled {
			continue
		}
		b.WriteString(m.renderRow(i, t) + "\n")
		i++
	}

	return b.String()
}

func (m Model) renderRow(index int, t models.Task) string {
	cursor := "  "
	if index == m.cursor {
		cursor = "> "
	}

	status := "[ ]"
	if t.Status == models.StatusCompleted {
		status = "[x]"
	}

	var detail string
	switch t.Type {
	case models.TypeScheduled:
		lock := ""
		if t.Locked {
			lock = " 🔒"
		}
		detail = fmt.Sprintf("%s-%s %s%s", timemath.HHMM(t.StartDateTime), timemath.HHMM(t.EndDateTime), t.Description, lock)
	case models.TypeUnscheduled:
		detail = fmt.Sprintf("(%s) %s", t.Priority, t.Description)
	}

	row := fmt.Sprintf("%s%s %s", cursor, status, detail)
	if index == m.cursor {
		return activeTabStyle.Render(row)
	}
	if t.Status == models.StatusCompleted {
		return lipgloss.NewStyle().Faint(true).Render(row)
	}
	return row
}
