// Package ops implements SchedulerOps (spec.md §4.6): the public operations
// that compose RescheduleEngine with TaskStore and emit OperationResults.
// Every entry point takes raw, pre-validated input and returns a result the
// caller (cli or tui) either accepts, discards, or re-submits through the
// matching confirm… entry point.
package ops

import (
	"fmt"
	"time"

	"github.com/iconix/fortudo/internal/apperrors"
	"github.com/iconix/fortudo/internal/logger"
	"github.com/iconix/fortudo/internal/models"
	"github.com/iconix/fortudo/internal/scheduler"
	"github.com/iconix/fortudo/internal/store"
	"github.com/iconix/fortudo/internal/suggestion"
	"github.com/iconix/fortudo/internal/timemath"
)

// Persister is the subset of the storage collaborator ops needs. Any
// concrete backend (sqlite, postgres, jsonstore) satisfies it structurally
// without ops importing the storage package.
type Persister interface {
	PutTask(models.Task) error
	DeleteTask(id string) error
	ReplaceAll([]models.Task) error
}

type noopPersister struct{}

func (noopPersister) PutTask(models.Task) error      { return nil }
func (noopPersister) DeleteTask(string) error        { return nil }
func (noopPersister) ReplaceAll([]models.Task) error { return nil }

// Ops is the orchestration layer: one instance per running process, shared
// by the cli and tui entrypoints, owning the single TaskStore.
type Ops struct {
	store   *store.Store
	clock   func() time.Time
	persist Persister
}

// New constructs an Ops over an existing store. persist may be nil, in
// which case mutations are not written through to any backend (used by
// tests that only care about in-memory behavior).
func New(s *store.Store, clock func() time.Time, persist Persister) *Ops {
	if persist == nil {
		persist = noopPersister{}
	}
	return &Ops{store: s, clock: clock, persist: persist}
}

// Tasks returns every task currently held in the in-memory store, scheduled
// tasks first in start order followed by unscheduled tasks in insertion
// order.
func (o *Ops) Tasks() []models.Task {
	all := o.store.GetAll()
	ordered := make([]models.Task, 0, len(all))
	for _, t := range all {
		if t.Type == models.TypeScheduled {
			ordered = append(ordered, t)
		}
	}
	for _, t := range all {
		if t.Type != models.TypeScheduled {
			ordered = append(ordered, t)
		}
	}
	return ordered
}

// Now returns the current instant per the clock ops was constructed with.
func (o *Ops) Now() time.Time {
	return o.clock()
}

// IndexOf returns the store position of the task with the given id, or -1
// if it is not present. Callers use this to translate an id-addressed CLI
// argument into the index UpdateTask/CompleteTask/ScheduleUnscheduledTask
// expect.
func (o *Ops) IndexOf(id string) int {
	return o.store.GetIndex(id)
}

// TaskByID returns the task with the given id, or ok=false if absent.
func (o *Ops) TaskByID(id string) (models.Task, bool) {
	return o.store.GetByID(id)
}

// SuggestedStartTime returns the HH:MM a new scheduled task should default
// to: right after the latest incomplete scheduled task's end, or now
// rounded up to the next 5 minutes if the calendar is empty.
func (o *Ops) SuggestedStartTime() string {
	return suggestion.GetSuggestedStartTime(o.store, o.clock())
}

func (o *Ops) putTask(task models.Task) {
	if err := o.persist.PutTask(task); err != nil {
		logger.Warn("persist task failed", "task", task.ID, "err", err)
	}
}

// applyShifts writes a cascade plan's shifted tasks back into the store,
// re-validating that each target still exists (spec.md §5: the confirm
// call must re-validate against current store state).
func (o *Ops) applyShifts(shifts []models.ShiftedTask) error {
	for _, sh := range shifts {
		task, ok := o.store.GetByID(sh.TaskID)
		if !ok {
			return apperrors.NewPrecondition("task %s no longer exists; plan is stale", sh.TaskID)
		}
		task.StartDateTime = sh.NewStart
		task.EndDateTime = sh.NewEnd
		task.Duration = int(sh.NewEnd.Sub(sh.NewStart).Minutes())
		o.store.Upsert(task)
		o.putTask(task)
	}
	return nil
}

// planScheduledInsertion runs the addTask/scheduleUnscheduledTask/
// updateTask conflict analysis shared by all three (spec.md §4.6). taskIndex
// is -1 for inserts, or the index being replaced for an update, which
// selects RESCHEDULE_UPDATE over RESCHEDULE_OVERLAPS_UNLOCKED_OTHERS for
// the cascade arm. The second return value is false when there is no
// conflict and the caller should proceed to insert directly.
func (o *Ops) planScheduledInsertion(candidate models.Task, skipAdjustCheck, skipCompletedCheck bool, taskIndex int) (models.OperationResult, bool) {
	now := o.clock()
	tasks := o.store.GetAll()

	if !skipAdjustCheck {
		if conflict, ok := scheduler.FindActiveRunningConflict(candidate.StartDateTime, tasks, now); ok && conflict.ID != candidate.ID {
			return models.NeedsConfirmation(models.ConfirmAdjustRunningTask, models.AdjustRunningTaskPlan{
				AdjustableTask: conflict,
				NewEndTime:     candidate.StartDateTime,
				IsExtend:       candidate.StartDateTime.After(conflict.EndDateTime),
				Candidate:      candidate,
			}, fmt.Sprintf("%q is currently running; adjust its end to %s?", conflict.Description, timemath.HHMM(candidate.StartDateTime))), true
		}
	}

	overlap := scheduler.DetectOverlaps(candidate, tasks)

	if !skipCompletedCheck && len(overlap.Completed) > 0 {
		c := overlap.Completed[0]
		return models.NeedsConfirmation(models.ConfirmTruncateCompletedTask, models.TruncateCompletedTaskPlan{
			CompletedTask: c,
			NewEndTime:    candidate.StartDateTime,
			Candidate:     candidate,
		}, fmt.Sprintf("completed task %q overlaps; truncate its end to %s?", c.Description, timemath.HHMM(candidate.StartDateTime))), true
	}

	if len(overlap.Locked) > 0 {
		sStar := scheduler.FindEarliestFeasibleStart(candidate.StartDateTime, candidate.Duration, tasks, candidate.ID)
		adjusted := candidate.WithStart(sStar)
		return models.NeedsConfirmation(models.ConfirmRescheduleNeedsShiftDueToLocked, models.ShiftPlan{
			AdjustedTask: adjusted,
			TaskIndex:    taskIndex,
		}, fmt.Sprintf("locked task(s) block %s; earliest feasible start is %s", timemath.HHMM(candidate.StartDateTime), timemath.HHMM(sStar))), true
	}

	if len(overlap.Unlocked) > 0 {
		shifts, err := scheduler.Cascade(candidate, tasks)
		if err != nil {
			logger.Warn("cascade rejected", "candidate", candidate.ID, "err", err)
			return models.Fail(apperrors.Format(err)), true
		}
		confirmType := models.ConfirmRescheduleOverlapsUnlockedOthers
		if taskIndex >= 0 {
			confirmType = models.ConfirmRescheduleUpdate
		}
		return models.NeedsConfirmation(confirmType, models.CascadePlan{
			TaskToFinalize: candidate,
			TaskIndex:      taskIndex,
			Shifts:         shifts,
			Message:        fmt.Sprintf("rescheduling %d downstream task(s)", len(shifts)),
		}, fmt.Sprintf("%q overlaps %d incomplete task(s)", candidate.Description, len(overlap.Unlocked))), true
	}

	return models.OperationResult{}, false
}

// AddTaskInput carries either a scheduled or unscheduled factory input,
// plus the addTask-specific escape flags from spec.md §4.6.
type AddTaskInput struct {
	Scheduled          *models.ScheduledTaskInput
	Unscheduled        *models.UnscheduledTaskInput
	SkipAdjustCheck    bool
	SkipCompletedCheck bool
}

// AddTask validates and inserts a new task, or returns a confirmation
// result describing the conflict the caller must resolve.
func (o *Ops) AddTask(in AddTaskInput) models.OperationResult {
	switch {
	case in.Unscheduled != nil:
		task, err := models.NewUnscheduledTask(*in.Unscheduled)
		if err != nil {
			return models.Fail(apperrors.Format(err))
		}
		o.store.Upsert(task)
		o.putTask(task)
		logger.Info("added unscheduled task", "task", task.ID)
		return models.Ok(fmt.Sprintf("added %q to the backlog", task.Description))

	case in.Scheduled != nil:
		candidate, err := models.NewScheduledTask(*in.Scheduled)
		if err != nil {
			return models.Fail(apperrors.Format(err))
		}
		if result, handled := o.planScheduledInsertion(candidate, in.SkipAdjustCheck, in.SkipCompletedCheck, -1); handled {
			return result
		}
		o.store.Upsert(candidate)
		o.putTask(candidate)
		logger.Info("added scheduled task", "task", candidate.ID, "start", timemath.HHMM(candidate.StartDateTime))
		return models.Ok(fmt.Sprintf("added %q at %s", candidate.Description, timemath.HHMM(candidate.StartDateTime)))

	default:
		return models.Fail("no task input provided")
	}
}

// ConfirmAddTaskAndReschedule applies a CascadePlan returned by AddTask,
// inserting the new task and shifting every displaced task atomically.
func (o *Ops) ConfirmAddTaskAndReschedule(plan models.CascadePlan) models.OperationResult {
	if _, exists := o.store.GetByID(plan.TaskToFinalize.ID); exists {
		return models.Fail(apperrors.Formatf("task %s already exists", plan.TaskToFinalize.ID))
	}
	for _, sh := range plan.Shifts {
		if _, ok := o.store.GetByID(sh.TaskID); !ok {
			return models.Fail(apperrors.Format(apperrors.NewPrecondition("task %s no longer exists; plan is stale", sh.TaskID)))
		}
	}
	o.store.Upsert(plan.TaskToFinalize)
	o.putTask(plan.TaskToFinalize)
	if err := o.applyShifts(plan.Shifts); err != nil {
		return models.Fail(apperrors.Format(err))
	}
	logger.Info("cascade applied on insert", "task", plan.TaskToFinalize.ID, "shifted", len(plan.Shifts))
	return models.Ok(fmt.Sprintf("added %q; rescheduled %d downstream task(s)", plan.TaskToFinalize.Description, len(plan.Shifts)))
}

// UpdateTask replaces the scheduled task at index with newInputs, excluding
// its prior interval from conflict detection since it is being replaced.
func (o *Ops) UpdateTask(index int, in models.ScheduledTaskInput, skipAdjustCheck, skipCompletedCheck bool) models.OperationResult {
	existing, ok := o.store.AtIndex(index)
	if !ok {
		return models.Fail(apperrors.Formatf("no task at index %d", index))
	}
	if existing.Type != models.TypeScheduled {
		return models.Fail("only scheduled tasks may be updated with a new interval")
	}

	candidate, err := models.NewScheduledTask(in)
	if err != nil {
		return models.Fail(apperrors.Format(err))
	}
	candidate.ID = existing.ID
	candidate.Status = existing.Status

	if result, handled := o.planScheduledInsertion(candidate, skipAdjustCheck, skipCompletedCheck, index); handled {
		return result
	}

	o.store.ReplaceAt(index, candidate)
	o.putTask(candidate)
	logger.Info("updated scheduled task", "task", candidate.ID)
	return models.Ok(fmt.Sprintf("updated %q", candidate.Description))
}

// ConfirmUpdateTaskAndReschedule applies a RESCHEDULE_UPDATE plan: the
// updated task replaces its prior slot and every displaced task shifts.
func (o *Ops) ConfirmUpdateTaskAndReschedule(plan models.CascadePlan) models.OperationResult {
	existing, ok := o.store.AtIndex(plan.TaskIndex)
	if !ok || existing.ID != plan.TaskToFinalize.ID {
		return models.Fail(apperrors.Formatf("task at index %d no longer matches the plan", plan.TaskIndex))
	}
	o.store.ReplaceAt(plan.TaskIndex, plan.TaskToFinalize)
	o.putTask(plan.TaskToFinalize)
	if err := o.applyShifts(plan.Shifts); err != nil {
		return models.Fail(apperrors.Format(err))
	}
	logger.Info("cascade applied on update", "task", plan.TaskToFinalize.ID, "shifted", len(plan.Shifts))
	return models.Ok(fmt.Sprintf("updated %q; rescheduled %d downstream task(s)", plan.TaskToFinalize.Description, len(plan.Shifts)))
}

// CancelEdit clears the editing flag without mutating the interval.
func (o *Ops) CancelEdit(id string) models.OperationResult {
	if !o.store.SetEditing(id, false) {
		return models.Fail(apperrors.Formatf("no task with id %s", id))
	}
	return models.Ok("edit cancelled")
}

// EditTask marks a task as being edited, excluding it from overlap
// detection and cascade shifting until committed or cancelled.
func (o *Ops) EditTask(id string) models.OperationResult {
	if !o.store.SetEditing(id, true) {
		return models.Fail(apperrors.Formatf("no task with id %s", id))
	}
	return models.Ok("editing")
}

// CompleteTask marks a task done. If currentTime24 is non-nil and strictly
// past the task's scheduled end, it instead returns COMPLETE_LATE for the
// caller to confirm (or the caller may call CompleteTask again with a nil
// currentTime24 to mark complete without adjusting the end).
func (o *Ops) CompleteTask(index int, currentTime24 *string) models.OperationResult {
	task, ok := o.store.AtIndex(index)
	if !ok {
		return models.Fail(apperrors.Formatf("no task at index %d", index))
	}
	if task.Status == models.StatusCompleted {
		return models.Ok(fmt.Sprintf("%q is already completed", task.Description))
	}

	if currentTime24 != nil && task.Type == models.TypeScheduled {
		now, err := timemath.NewInstant(timemath.YMD(task.StartDateTime), *currentTime24)
		if err != nil {
			return models.Fail(apperrors.Format(err))
		}
		if scheduler.IsRunningLate(task, now) {
			newDuration := int(now.Sub(task.StartDateTime).Minutes())
			return models.NeedsConfirmation(models.ConfirmCompleteLate, models.CompleteLatePlan{
				TaskIndex:   index,
				NewEndTime:  now,
				NewDuration: newDuration,
			}, fmt.Sprintf("%q is running late; extend its end to %s?", task.Description, timemath.HHMM(now)))
		}
	}

	task.Status = models.StatusCompleted
	o.store.ReplaceAt(index, task)
	o.putTask(task)
	logger.Info("completed task", "task", task.ID)
	return models.Ok(fmt.Sprintf("completed %q", task.Description))
}

// ConfirmCompleteLate extends a late task's end to now, marks it completed,
// and cascades the remainder of the day around the new, larger interval.
func (o *Ops) ConfirmCompleteLate(plan models.CompleteLatePlan) models.OperationResult {
	task, ok := o.store.AtIndex(plan.TaskIndex)
	if !ok {
		return models.Fail(apperrors.Formatf("no task at index %d", plan.TaskIndex))
	}
	task = task.WithEnd(plan.NewEndTime)
	task.Status = models.StatusCompleted
	o.store.ReplaceAt(plan.TaskIndex, task)
	o.putTask(task)

	others := o.store.GetAll()
	shifts, err := scheduler.Cascade(task, others)
	if err != nil {
		return models.Fail(apperrors.Format(err))
	}
	if err := o.applyShifts(shifts); err != nil {
		return models.Fail(apperrors.Format(err))
	}
	logger.Info("completed late", "task", task.ID, "newDuration", plan.NewDuration, "shifted", len(shifts))
	return models.Ok(fmt.Sprintf("completed %q late; rescheduled %d downstream task(s)", task.Description, len(shifts)))
}

// ToggleLockState flips a scheduled task's locked flag. Never affects its
// interval.
func (o *Ops) ToggleLockState(id string) models.OperationResult {
	task, ok := o.store.GetByID(id)
	if !ok {
		return models.Fail(apperrors.Formatf("no task with id %s", id))
	}
	if task.Type != models.TypeScheduled {
		return models.Fail("only scheduled tasks may be locked")
	}
	task.Locked = !task.Locked
	o.store.Upsert(task)
	o.putTask(task)
	return models.Ok(fmt.Sprintf("%q is now %s", task.Description, lockWord(task.Locked)))
}

func lockWord(locked bool) string {
	if locked {
		return "locked"
	}
	return "unlocked"
}

// DeleteTask implements the two-click confirm flow: the first call (not
// yet confirmed) flags the task pending delete; the second call removes it.
func (o *Ops) DeleteTask(id string, confirmed bool) models.OperationResult {
	task, ok := o.store.GetByID(id)
	if !ok {
		return models.Fail(apperrors.Formatf("no task with id %s", id))
	}
	if !confirmed {
		o.store.SetConfirmingDelete(id, true)
		return models.OperationResult{
			Success:              false,
			RequiresConfirmation: true,
			Reason:               fmt.Sprintf("delete %q?", task.Description),
		}
	}
	o.store.Remove(id)
	if err := o.persist.DeleteTask(id); err != nil {
		logger.Warn("persist delete failed", "task", id, "err", err)
	}
	logger.Info("deleted task", "task", id)
	return models.Ok(fmt.Sprintf("deleted %q", task.Description))
}

// UnscheduleTask converts a scheduled task to unscheduled in place,
// preserving id, description, and status. The freed interval is not
// automatically closed by pulling later tasks earlier.
func (o *Ops) UnscheduleTask(id string) models.OperationResult {
	task, ok := o.store.GetByID(id)
	if !ok {
		return models.Fail(apperrors.Formatf("no task with id %s", id))
	}
	if task.Type != models.TypeScheduled {
		return models.Fail(apperrors.Formatf("%q is not scheduled", task.Description))
	}
	converted := models.Task{
		ID:          task.ID,
		Type:        models.TypeUnscheduled,
		Description: task.Description,
		Status:      task.Status,
		Priority:    models.PriorityMedium,
	}
	o.store.Upsert(converted)
	o.putTask(converted)
	logger.Info("unscheduled task", "task", task.ID)
	return models.Ok(fmt.Sprintf("moved %q to the backlog", task.Description))
}

// ScheduleUnscheduledTask converts a backlog item to scheduled at the given
// start, running the identical conflict analysis as AddTask.
func (o *Ops) ScheduleUnscheduledTask(id string, start time.Time, hours, minutes int, skipAdjustCheck, skipCompletedCheck bool) models.OperationResult {
	task, ok := o.store.GetByID(id)
	if !ok {
		return models.Fail(apperrors.Formatf("no task with id %s", id))
	}
	if task.Type != models.TypeUnscheduled {
		return models.Fail(apperrors.Formatf("%q is already scheduled", task.Description))
	}

	candidate, err := models.NewScheduledTask(models.ScheduledTaskInput{
		Description:   task.Description,
		StartDateTime: start,
		Hours:         hours,
		Minutes:       minutes,
	})
	if err != nil {
		return models.Fail(apperrors.Format(err))
	}
	candidate.ID = task.ID
	candidate.Status = task.Status

	if result, handled := o.planScheduledInsertion(candidate, skipAdjustCheck, skipCompletedCheck, -1); handled {
		return result
	}

	o.store.Upsert(candidate)
	o.putTask(candidate)
	logger.Info("scheduled backlog task", "task", candidate.ID, "start", timemath.HHMM(candidate.StartDateTime))
	return models.Ok(fmt.Sprintf("scheduled %q at %s", candidate.Description, timemath.HHMM(candidate.StartDateTime)))
}

// ConfirmScheduleUnscheduledTask applies a cascade plan produced by
// ScheduleUnscheduledTask, converting the backlog item in place.
func (o *Ops) ConfirmScheduleUnscheduledTask(plan models.CascadePlan) models.OperationResult {
	o.store.Upsert(plan.TaskToFinalize)
	o.putTask(plan.TaskToFinalize)
	if err := o.applyShifts(plan.Shifts); err != nil {
		return models.Fail(apperrors.Format(err))
	}
	logger.Info("cascade applied on schedule-from-backlog", "task", plan.TaskToFinalize.ID, "shifted", len(plan.Shifts))
	return models.Ok(fmt.Sprintf("scheduled %q; rescheduled %d downstream task(s)", plan.TaskToFinalize.Description, len(plan.Shifts)))
}

// DeleteAllTasks removes every task in the store.
func (o *Ops) DeleteAllTasks() models.OperationResult {
	n := o.store.Len()
	if n == 0 {
		return models.Fail(apperrors.Format(apperrors.NewNoOp("there are no tasks to delete")))
	}
	o.store.RemoveWhere(func(models.Task) bool { return true })
	if err := o.persist.ReplaceAll(nil); err != nil {
		logger.Warn("persist replace-all failed", "err", err)
	}
	logger.Info("deleted all tasks", "count", n)
	return models.Ok(fmt.Sprintf("deleted %d task(s)", n))
}

// DeleteAllScheduledTasks removes every scheduled task, leaving the backlog
// untouched.
func (o *Ops) DeleteAllScheduledTasks() models.OperationResult {
	n := o.store.RemoveWhere(func(t models.Task) bool { return t.Type == models.TypeScheduled })
	if n == 0 {
		return models.Fail(apperrors.Format(apperrors.NewNoOp("there are no scheduled tasks to delete")))
	}
	if err := o.persist.ReplaceAll(o.store.GetAll()); err != nil {
		logger.Warn("persist replace-all failed", "err", err)
	}
	logger.Info("deleted all scheduled tasks", "count", n)
	return models.Ok(fmt.Sprintf("deleted %d scheduled task(s)", n))
}

// DeleteCompletedTasks removes every completed task.
func (o *Ops) DeleteCompletedTasks() models.OperationResult {
	n := o.store.RemoveWhere(func(t models.Task) bool { return t.Status == models.StatusCompleted })
	if n == 0 {
		return models.Fail(apperrors.Format(apperrors.NewNoOp("there are no completed tasks to delete")))
	}
	if err := o.persist.ReplaceAll(o.store.GetAll()); err != nil {
		logger.Warn("persist replace-all failed", "err", err)
	}
	logger.Info("deleted completed tasks", "count", n)
	return models.Ok(fmt.Sprintf("deleted %d completed task(s)", n))
}
