package tasks

import (
	"fmt"

	"github.com/iconix/fortudo/internal/cli"
	"github.com/iconix/fortudo/internal/timemath"
)

// TaskCompleteCmd marks a task done, confirming an extend-to-now plan when
// the scheduled task is running late.
type TaskCompleteCmd struct {
	ID  string `arg:"" help:"Task ID to complete."`
	Now string `help:"Current time (HH:MM), used to detect a late completion." optional:""`
}

func (c *TaskCompleteCmd) Run(ctx *cli.Context) error {
	index := ctx.Ops.IndexOf(c.ID)
	if index < 0 {
		return fmt.Errorf("no task with id %s", c.ID)
	}
	var now *string
	if c.Now != "" {
		now = &c.Now
	}
	res := ctx.Ops.CompleteTask(index, now)
	res = ctx.ResolveResult(res, false)
	return report(res)
}

// TaskLockCmd toggles a scheduled task's locked flag.
type TaskLockCmd struct {
	ID string `arg:"" help:"Task ID to lock/unlock."`
}

func (c *TaskLockCmd) Run(ctx *cli.Context) error {
	return report(ctx.Ops.ToggleLockState(c.ID))
}

// TaskUnscheduleCmd moves a scheduled task back to the backlog.
type TaskUnscheduleCmd struct {
	ID string `arg:"" help:"Task ID to unschedule."`
}

func (c *TaskUnscheduleCmd) Run(ctx *cli.Context) error {
	return report(ctx.Ops.UnscheduleTask(c.ID))
}

// TaskScheduleCmd moves a backlog item onto the calendar at a given start.
type TaskScheduleCmd struct {
	ID      string `arg:"" help:"Task ID to schedule."`
	Date    string `arg:"" help:"Start date (YYYY-MM-DD)."`
	Start   string `arg:"" help:"Start time (HH:MM)."`
	Hours   int    `help:"Duration hours." default:"0"`
	Minutes int    `help:"Duration minutes." default:"30"`

	SkipAdjustCheck    bool `help:"Skip the currently-running-task adjustment check."`
	SkipCompletedCheck bool `help:"Skip the completed-task truncation check."`
}

func (c *TaskScheduleCmd) Run(ctx *cli.Context) error {
	start, err := timemath.NewInstant(c.Date, c.Start)
	if err != nil {
		return err
	}
	res := ctx.Ops.ScheduleUnscheduledTask(c.ID, start, c.Hours, c.Minutes, c.SkipAdjustCheck, c.SkipCompletedCheck)
	res = ctx.ResolveResult(res, true)
	return report(res)
}

// TaskClearCmd bulk-deletes tasks matching a scope.
type TaskClearCmd struct {
	Scope string `arg:"" enum:"all,scheduled,completed" help:"Which tasks to delete: all, scheduled, or completed."`
}

func (c *TaskClearCmd) Run(ctx *cli.Context) error {
	switch c.Scope {
	case "all":
		return report(ctx.Ops.DeleteAllTasks())
	case "scheduled":
		return report(ctx.Ops.DeleteAllScheduledTasks())
	case "completed":
		return report(ctx.Ops.DeleteCompletedTasks())
	default:
		return fmt.Errorf("unknown scope %q", c.Scope)
	}
}
