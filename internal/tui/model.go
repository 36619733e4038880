// Package tui implements the interactive bubbletea session over Ops: a
// single scrollable view of the day's scheduled tasks followed by the
// backlog, with huh forms for add/edit and an inline confirm prompt for
// any OperationResult that requires one.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/iconix/fortudo/internal/models"
	"github.com/iconix/fortudo/internal/ops"
)

// TaskFormModel backs the add/edit huh.Form. Fields are strings, per huh's
// binding convention, and parsed/validated on submit.
type TaskFormModel struct {
	Description string
	Unscheduled bool
	Date        string
	Start       string
	Hours       string
	Minutes     string
	Locked      bool
	Priority    string
}

// pendingKind distinguishes which Ops entry point a confirmed or
// skip-resubmitted plan belongs to, since a CascadePlan's
// ConfirmationType alone cannot tell AddTask, UpdateTask, and
// ScheduleUnscheduledTask apart.
type pendingKind int

const (
	pendingNone pendingKind = iota
	pendingAdd
	pendingUpdate
	pendingSchedule
	pendingDelete
)

type Model struct {
	ops  *ops.Ops
	keys KeyMap
	help help.Model

	tasks  []models.Task
	cursor int

	form      *huh.Form
	formModel *TaskFormModel
	editingID string // empty when the form is for a new task

	pending     models.OperationResult
	pendingKind pendingKind
	pendingID   string // task id for schedule/update resubmits

	message  string
	quitting bool
	width    int
	height   int
}

func NewModel(o *ops.Ops) Model {
	m := Model{
		ops:  o,
		keys: DefaultKeyMap(),
		help: help.New(),
	}
	m.refresh()
	return m
}

func (m *Model) refresh() {
	m.tasks = m.ops.Tasks()
	if m.cursor >= len(m.tasks) {
		m.cursor = len(m.tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func newTaskForm(fm *TaskFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Description").Value(&fm.Description),
			huh.NewConfirm().Title("Leave unscheduled (backlog)?").Value(&fm.Unscheduled),
		),
		huh.NewGroup(
			huh.NewInput().Title("Start date (YYYY-MM-DD)").Value(&fm.Date),
			huh.NewInput().Title("Start time (HH:MM)").Value(&fm.Start),
			huh.NewInput().Title("Duration hours").Value(&fm.Hours),
			huh.NewInput().Title("Duration minutes").Value(&fm.Minutes),
			huh.NewConfirm().Title("Locked?").Value(&fm.Locked),
		).WithHideFunc(func() bool { return fm.Unscheduled }),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Priority").
				Options(
					huh.NewOption("High", "high"),
					huh.NewOption("Medium", "medium"),
					huh.NewOption("Low", "low"),
				).
				Value(&fm.Priority),
		).WithHideFunc(func() bool { return !fm.Unscheduled }),
	).WithTheme(huh.ThemeDracula())
}
