package tasks

import (
	"fmt"

	"github.com/iconix/fortudo/internal/cli"
	"github.com/iconix/fortudo/internal/models"
	"github.com/iconix/fortudo/internal/timemath"
)

// TaskEditCmd replaces a scheduled task's description or interval. Only
// scheduled tasks carry an interval to edit; use `task unschedule`/
// `task schedule` to move a task between the backlog and the calendar.
type TaskEditCmd struct {
	ID          string  `arg:"" help:"Task ID."`
	Description *string `help:"New description."`
	Date        *string `short:"d" help:"New start date (YYYY-MM-DD)."`
	Start       *string `short:"s" help:"New start time (HH:MM)."`
	Hours       *int    `help:"New duration hours."`
	Minutes     *int    `help:"New duration minutes."`
	Locked      *bool   `help:"New locked flag."`

	SkipAdjustCheck    bool `help:"Skip the currently-running-task adjustment check."`
	SkipCompletedCheck bool `help:"Skip the completed-task truncation check."`
}

func (c *TaskEditCmd) Run(ctx *cli.Context) error {
	index := ctx.Ops.IndexOf(c.ID)
	if index < 0 {
		return fmt.Errorf("no task with id %s", c.ID)
	}

	existing, _ := ctx.Ops.TaskByID(c.ID)
	if existing.Type != models.TypeScheduled {
		return fmt.Errorf("only scheduled tasks may be edited with 'task edit'; use 'task schedule' for backlog items")
	}

	in := models.ScheduledTaskInput{
		Description:   existing.Description,
		StartDateTime: existing.StartDateTime,
		Hours:         existing.Duration / 60,
		Minutes:       existing.Duration % 60,
		Locked:        existing.Locked,
	}

	if c.Description != nil {
		in.Description = *c.Description
	}
	if c.Date != nil || c.Start != nil {
		date := timemath.YMD(existing.StartDateTime)
		start := timemath.HHMM(existing.StartDateTime)
		if c.Date != nil {
			date = *c.Date
		}
		if c.Start != nil {
			start = *c.Start
		}
		t, err := timemath.NewInstant(date, start)
		if err != nil {
			return err
		}
		in.StartDateTime = t
	}
	if c.Hours != nil {
		in.Hours = *c.Hours
	}
	if c.Minutes != nil {
		in.Minutes = *c.Minutes
	}
	if c.Locked != nil {
		in.Locked = *c.Locked
	}

	res := ctx.Ops.UpdateTask(index, in, c.SkipAdjustCheck, c.SkipCompletedCheck)
	res = ctx.ResolveResult(res, false)
	return report(res)
}
