package tui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/iconix/fortudo/internal/models"
	"github.com/iconix/fortudo/internal/ops"
	"github.com/iconix/fortudo/internal/timemath"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.pending.RequiresConfirmation {
			return m.updateConfirm(msg)
		}
		if m.form != nil {
			return m.updateForm(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.Add):
		m.formModel = &TaskFormModel{
			Date:     timemath.YMD(m.ops.Now()),
			Start:    m.ops.SuggestedStartTime(),
			Hours:    "0",
			Minutes:  "30",
			Priority: "medium",
		}
		m.editingID = ""
		m.form = newTaskForm(m.formModel)
		return m, m.form.Init()
	case key.Matches(msg, m.keys.Edit):
		return m.startEdit()
	case key.Matches(msg, m.keys.Complete):
		return m.completeSelected()
	case key.Matches(msg, m.keys.Delete):
		return m.deleteSelected()
	case key.Matches(msg, m.keys.Lock):
		return m.toggleLockSelected()
	case key.Matches(msg, m.keys.Unschedule):
		return m.unscheduleSelected()
	}
	return m, nil
}

func (m Model) selected() (models.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return models.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m Model) completeSelected() (tea.Model, tea.Cmd) {
	task, ok := m.selected()
	if !ok {
		return m, nil
	}
	index := m.ops.IndexOf(task.ID)
	now := timemath.HHMM(m.ops.Now())
	res := m.ops.CompleteTask(index, &now)
	m.applyResult(res, pendingNone, "")
	return m, nil
}

func (m Model) deleteSelected() (tea.Model, tea.Cmd) {
	task, ok := m.selected()
	if !ok {
		return m, nil
	}
	res := m.ops.DeleteTask(task.ID, false)
	m.applyResult(res, pendingDelete, task.ID)
	return m, nil
}

func (m Model) toggleLockSelected() (tea.Model, tea.Cmd) {
	task, ok := m.selected()
	if !ok {
		return m, nil
	}
	res := m.ops.ToggleLockState(task.ID)
	m.applyResult(res, pendingNone, "")
	return m, nil
}

func (m Model) unscheduleSelected() (tea.Model, tea.Cmd) {
	task, ok := m.selected()
	if !ok {
		return m, nil
	}
	res := m.ops.UnscheduleTask(task.ID)
	m.applyResult(res, pendingNone, "")
	return m, nil
}

func (m Model) startEdit() (tea.Model, tea.Cmd) {
	task, ok := m.selected()
	if !ok || task.Type != models.TypeScheduled {
		m.message = "only scheduled tasks can be edited here"
		return m, nil
	}
	m.formModel = &TaskFormModel{
		Description: task.Description,
		Date:        timemath.YMD(task.StartDateTime),
		Start:       timemath.HHMM(task.StartDateTime),
		Hours:       strconv.Itoa(task.Duration / 60),
		Minutes:     strconv.Itoa(task.Duration % 60),
		Locked:      task.Locked,
	}
	m.editingID = task.ID
	m.form = newTaskForm(m.formModel)
	return m, m.form.Init()
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.form = nil
		m.formModel = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State != huh.StateCompleted {
		return m, cmd
	}
	return m.submitForm()
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	fm := m.formModel
	hours, _ := strconv.Atoi(fm.Hours)
	minutes, _ := strconv.Atoi(fm.Minutes)

	var res models.OperationResult
	switch {
	case m.editingID != "":
		index := m.ops.IndexOf(m.editingID)
		start, err := timemath.NewInstant(fm.Date, fm.Start)
		if err != nil {
			m.message = err.Error()
			m.form = nil
			return m, nil
		}
		in := models.ScheduledTaskInput{Description: fm.Description, StartDateTime: start, Hours: hours, Minutes: minutes, Locked: fm.Locked}
		res = m.ops.UpdateTask(index, in, false, false)
		m.applyResult(res, pendingUpdate, m.editingID)

	case fm.Unscheduled:
		res = m.ops.AddTask(ops.AddTaskInput{Unscheduled: &models.UnscheduledTaskInput{
			Description: fm.Description,
			Priority:    models.Priority(fm.Priority),
		}})
		m.applyResult(res, pendingNone, "")

	default:
		start, err := timemath.NewInstant(fm.Date, fm.Start)
		if err != nil {
			m.message = err.Error()
			m.form = nil
			return m, nil
		}
		res = m.ops.AddTask(ops.AddTaskInput{Scheduled: &models.ScheduledTaskInput{
			Description:   fm.Description,
			StartDateTime: start,
			Hours:         hours,
			Minutes:       minutes,
			Locked:        fm.Locked,
		}})
		m.applyResult(res, pendingAdd, "")
	}

	m.form = nil
	m.formModel = nil
	return m, nil
}

// applyResult stores a result on the model, entering confirm mode if the
// engine asked for one, and otherwise surfacing its message and refreshing
// the task list.
func (m *Model) applyResult(res models.OperationResult, kind pendingKind, id string) {
	if res.RequiresConfirmation {
		m.pending = res
		m.pendingKind = kind
		m.pendingID = id
		return
	}
	if res.Success {
		m.message = res.Message
	} else {
		m.message = res.Reason
	}
	m.refresh()
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		res := m.resolvePending()
		m.pending = models.OperationResult{}
		m.pendingKind = pendingNone
		if res.Success {
			m.message = res.Message
		} else {
			m.message = res.Reason
		}
		m.refresh()
	case "n", "N", "esc":
		m.pending = models.OperationResult{}
		m.pendingKind = pendingNone
		m.message = "cancelled"
	}
	return m, nil
}

// resolvePending applies a confirmed plan. A pendingDelete carries no
// ConfirmationType (DeleteTask's confirmation result leaves it empty) so it
// is checked before the type switch. CascadePlan confirmations route to the
// Ops entry point matching pendingKind, since AddTask, UpdateTask, and
// ScheduleUnscheduledTask share ConfirmationTypes but not apply methods.
// The remaining three confirmation types have no apply step: the caller
// resubmits the original call with the matching skip flag, or at the
// plan's adjusted start.
func (m Model) resolvePending() models.OperationResult {
	if m.pendingKind == pendingDelete {
		return m.ops.DeleteTask(m.pendingID, true)
	}
	switch m.pending.ConfirmationType {
	case models.ConfirmRescheduleUpdate:
		return m.ops.ConfirmUpdateTaskAndReschedule(m.pending.Plan.(models.CascadePlan))
	case models.ConfirmRescheduleOverlapsUnlockedOthers:
		plan := m.pending.Plan.(models.CascadePlan)
		if m.pendingKind == pendingSchedule {
			return m.ops.ConfirmScheduleUnscheduledTask(plan)
		}
		return m.ops.ConfirmAddTaskAndReschedule(plan)
	case models.ConfirmCompleteLate:
		return m.ops.ConfirmCompleteLate(m.pending.Plan.(models.CompleteLatePlan))
	case models.ConfirmAdjustRunningTask:
		plan := m.pending.Plan.(models.AdjustRunningTaskPlan)
		return m.resubmitCandidate(plan.Candidate, true, false)
	case models.ConfirmTruncateCompletedTask:
		plan := m.pending.Plan.(models.TruncateCompletedTaskPlan)
		return m.resubmitCandidate(plan.Candidate, false, true)
	case models.ConfirmRescheduleNeedsShiftDueToLocked:
		plan := m.pending.Plan.(models.ShiftPlan)
		return m.resubmitAt(plan.AdjustedTask, plan.TaskIndex)
	default:
		return models.Fail("unhandled confirmation")
	}
}

func (m Model) resubmitCandidate(candidate models.Task, skipAdjust, skipCompleted bool) models.OperationResult {
	in := models.ScheduledTaskInput{
		Description:   candidate.Description,
		StartDateTime: candidate.StartDateTime,
		Hours:         candidate.Duration / 60,
		Minutes:       candidate.Duration % 60,
		Locked:        candidate.Locked,
	}
	if m.pendingKind == pendingUpdate {
		return m.ops.UpdateTask(m.ops.IndexOf(m.pendingID), in, skipAdjust, skipCompleted)
	}
	return m.ops.AddTask(ops.AddTaskInput{Scheduled: &in, SkipAdjustCheck: skipAdjust, SkipCompletedCheck: skipCompleted})
}

func (m Model) resubmitAt(adjusted models.Task, taskIndex int) models.OperationResult {
	in := models.ScheduledTaskInput{
		Description:   adjusted.Description,
		StartDateTime: adjusted.StartDateTime,
		Hours:         adjusted.Duration / 60,
		Minutes:       adjusted.Duration % 60,
		Locked:        adjusted.Locked,
	}
	if taskIndex >= 0 {
		return m.ops.UpdateTask(taskIndex, in, true, true)
	}
	return m.ops.AddTask(ops.AddTaskInput{Scheduled: &in, SkipAdjustCheck: true, SkipCompletedCheck: true})
}
