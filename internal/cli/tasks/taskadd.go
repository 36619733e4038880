package tasks

import (
	"fmt"

	"github.com/iconix/fortudo/internal/cli"
	"github.com/iconix/fortudo/internal/models"
	"github.com/iconix/fortudo/internal/ops"
	"github.com/iconix/fortudo/internal/timemath"
)

// TaskAddCmd adds either a scheduled task (when Date/Start are given) or an
// unscheduled backlog item (when they are omitted).
type TaskAddCmd struct {
	Description string `arg:"" help:"Task description."`
	Date        string `short:"d" help:"Start date (YYYY-MM-DD). Required for a scheduled task."`
	Start       string `short:"s" help:"Start time (HH:MM). Required for a scheduled task."`
	Hours       int    `help:"Duration hours." default:"0"`
	Minutes     int    `help:"Duration minutes." default:"30"`
	Locked      bool   `help:"Lock the task so reschedules never move it."`
	Priority    string `short:"p" help:"Backlog priority for an unscheduled task (high|medium|low)." default:"medium"`
	Estimate    int    `short:"e" help:"Estimated duration in minutes for an unscheduled task."`

	SkipAdjustCheck    bool `help:"Skip the currently-running-task adjustment check."`
	SkipCompletedCheck bool `help:"Skip the completed-task truncation check."`
}

func (c *TaskAddCmd) Validate() error {
	if (c.Date == "") != (c.Start == "") {
		return fmt.Errorf("date and start must be given together, or both omitted")
	}
	switch models.Priority(c.Priority) {
	case models.PriorityHigh, models.PriorityMedium, models.PriorityLow:
	default:
		return fmt.Errorf("priority must be one of high, medium, low")
	}
	return nil
}

func (c *TaskAddCmd) Run(ctx *cli.Context) error {
	var in ops.AddTaskInput
	in.SkipAdjustCheck = c.SkipAdjustCheck
	in.SkipCompletedCheck = c.SkipCompletedCheck

	if c.Date != "" {
		start, err := timemath.NewInstant(c.Date, c.Start)
		if err != nil {
			return err
		}
		in.Scheduled = &models.ScheduledTaskInput{
			Description:   c.Description,
			StartDateTime: start,
			Hours:         c.Hours,
			Minutes:       c.Minutes,
			Locked:        c.Locked,
		}
	} else {
		var est *int
		if c.Estimate > 0 {
			v := c.Estimate
			est = &v
		}
		in.Unscheduled = &models.UnscheduledTaskInput{
			Description: c.Description,
			Priority:    models.Priority(c.Priority),
			EstDuration: est,
		}
	}

	res := ctx.Ops.AddTask(in)
	res = ctx.ResolveResult(res, false)
	return report(res)
}

// report prints an OperationResult's outcome and turns a failure into a
// returned error so kong exits non-zero.
func report(res models.OperationResult) error {
	if !res.Success {
		return fmt.Errorf("%s", res.Reason)
	}
	fmt.Println(res.Message)
	return nil
}
