package models

import "time"

// ConfirmationType discriminates the payload carried by an OperationResult
// that requires user consent before the engine may mutate state, per
// spec.md §4.3.
type ConfirmationType string

const (
	ConfirmAdjustRunningTask                ConfirmationType = "ADJUST_RUNNING_TASK"
	ConfirmTruncateCompletedTask            ConfirmationType = "TRUNCATE_COMPLETED_TASK"
	ConfirmRescheduleNeedsShiftDueToLocked   ConfirmationType = "RESCHEDULE_NEEDS_SHIFT_DUE_TO_LOCKED"
	ConfirmRescheduleOverlapsUnlockedOthers  ConfirmationType = "RESCHEDULE_OVERLAPS_UNLOCKED_OTHERS"
	ConfirmRescheduleUpdate                  ConfirmationType = "RESCHEDULE_UPDATE"
	ConfirmCompleteLate                      ConfirmationType = "COMPLETE_LATE"
)

// ShiftedTask describes one leg of a cascade plan: a task moved to a new
// interval, duration preserved exactly.
type ShiftedTask struct {
	TaskID   string
	NewStart time.Time
	NewEnd   time.Time
}

// CascadePlan is the payload for ConfirmRescheduleOverlapsUnlockedOthers:
// the new or updated task to finalize, plus the shift plan for every task
// it displaces.
type CascadePlan struct {
	TaskToFinalize Task
	TaskIndex      int // only meaningful for UpdateTask's RESCHEDULE_UPDATE; -1 for inserts
	Shifts         []ShiftedTask
	Message        string // optional autoRescheduledMessage for the eventual success result
}

// ShiftPlan is the payload for ConfirmRescheduleNeedsShiftDueToLocked: the
// candidate task re-proposed at the earliest feasible start s*.
type ShiftPlan struct {
	AdjustedTask Task
	TaskIndex    int // -1 for inserts
}

// AdjustRunningTaskPlan is the payload for ADJUST_RUNNING_TASK: the
// currently-active task that would be truncated or extended to the new
// candidate's start.
type AdjustRunningTaskPlan struct {
	AdjustableTask Task
	NewEndTime     time.Time
	IsExtend       bool
	Candidate      Task
}

// TruncateCompletedTaskPlan is the payload for TRUNCATE_COMPLETED_TASK: the
// completed task to truncate, with its new end set to the candidate's start.
type TruncateCompletedTaskPlan struct {
	CompletedTask Task
	NewEndTime    time.Time
	Candidate     Task
}

// CompleteLatePlan is the payload for COMPLETE_LATE: the late task, the
// proposed new end (now), and the resulting duration.
type CompleteLatePlan struct {
	TaskIndex   int
	NewEndTime  time.Time
	NewDuration int
}

// OperationResult is the discriminated-union return value of every
// mutating SchedulerOps call, per spec.md §4.3.
type OperationResult struct {
	Success              bool
	RequiresConfirmation bool
	ConfirmationType     ConfirmationType
	Reason               string
	Message              string
	Plan                 any
}

// Ok constructs a plain success result.
func Ok(message string) OperationResult {
	return OperationResult{Success: true, Message: message}
}

// Fail constructs a plain failure result carrying a human-readable reason.
func Fail(reason string) OperationResult {
	return OperationResult{Success: false, Reason: reason}
}

// NeedsConfirmation constructs a confirmation-required result carrying the
// plan payload the caller must echo back to the matching confirm… entry
// point (or override via a _skip… escape flag).
func NeedsConfirmation(kind ConfirmationType, plan any, reason string) OperationResult {
	return OperationResult{
		Success:              false,
		RequiresConfirmation: true,
		ConfirmationType:     kind,
		Reason:               reason,
		Plan:                 plan,
	}
}
