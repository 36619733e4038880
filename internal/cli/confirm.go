package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/iconix/fortudo/internal/models"
)

// Confirm prompts the user with a yes/no question on stdin and returns
// their answer. Anything starting with 'y' or 'Y' counts as yes.
func Confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return strings.HasPrefix(line, "y")
}

// ResolveResult walks an OperationResult that requires confirmation through
// the matching Ops.Confirm… entry point after prompting the user, per
// spec.md §4.3's confirm-or-discard contract. A result that does not
// require confirmation is returned unchanged.
//
// fromBacklog selects ConfirmScheduleUnscheduledTask over
// ConfirmAddTaskAndReschedule for a RESCHEDULE_OVERLAPS_UNLOCKED_OTHERS
// plan originating from ScheduleUnscheduledTask rather than AddTask; the
// two share a ConfirmationType but apply through different entry points.
//
// ADJUST_RUNNING_TASK, TRUNCATE_COMPLETED_TASK, and
// RESCHEDULE_NEEDS_SHIFT_DUE_TO_LOCKED have no standalone apply step: the
// caller must resubmit the original AddTask/UpdateTask/
// ScheduleUnscheduledTask call with the matching skip flag set (or, for
// the locked-shift case, with the adjusted start time from the plan). The
// CLI surfaces the plan's reason and asks the caller to retry explicitly
// rather than silently resubmitting on its behalf.
func (c *Context) ResolveResult(res models.OperationResult, fromBacklog bool) models.OperationResult {
	if !res.RequiresConfirmation {
		return res
	}

	if !Confirm(res.Reason) {
		return models.Ok("cancelled")
	}

	switch res.ConfirmationType {
	case models.ConfirmRescheduleOverlapsUnlockedOthers, models.ConfirmRescheduleUpdate:
		plan := res.Plan.(models.CascadePlan)
		switch {
		case res.ConfirmationType == models.ConfirmRescheduleUpdate:
			return c.Ops.ConfirmUpdateTaskAndReschedule(plan)
		case fromBacklog:
			return c.Ops.ConfirmScheduleUnscheduledTask(plan)
		default:
			return c.Ops.ConfirmAddTaskAndReschedule(plan)
		}
	case models.ConfirmCompleteLate:
		plan := res.Plan.(models.CompleteLatePlan)
		return c.Ops.ConfirmCompleteLate(plan)
	case models.ConfirmAdjustRunningTask:
		plan := res.Plan.(models.AdjustRunningTaskPlan)
		return models.Ok(fmt.Sprintf("confirmed; re-run with --skip-adjust-check to add the task without the running-task check (%q is not adjusted)", plan.AdjustableTask.Description))
	case models.ConfirmTruncateCompletedTask:
		plan := res.Plan.(models.TruncateCompletedTaskPlan)
		return models.Ok(fmt.Sprintf("confirmed; re-run with --skip-completed-check to add the task without the completed-task check (%q is not truncated)", plan.CompletedTask.Description))
	case models.ConfirmRescheduleNeedsShiftDueToLocked:
		plan := res.Plan.(models.ShiftPlan)
		return models.Ok(fmt.Sprintf("confirmed; re-run at %s to use the earliest feasible start", plan.AdjustedTask.StartDateTime.Format("15:04")))
	default:
		return models.Fail(fmt.Sprintf("unhandled confirmation type %q", res.ConfirmationType))
	}
}
