package tasks

import (
	"github.com/iconix/fortudo/internal/cli"
	"github.com/iconix/fortudo/internal/models"
)

// TaskDeleteCmd implements the two-step confirm-then-delete flow: the first
// invocation flags the task pending delete and prompts; Force skips the
// prompt and deletes immediately.
type TaskDeleteCmd struct {
	ID    string `arg:"" help:"Task ID to delete."`
	Force bool   `short:"f" help:"Delete without confirmation."`
}

func (c *TaskDeleteCmd) Run(ctx *cli.Context) error {
	res := ctx.Ops.DeleteTask(c.ID, c.Force)
	if res.RequiresConfirmation {
		if !cli.Confirm(res.Reason) {
			return report(models.Ok("cancelled"))
		}
		res = ctx.Ops.DeleteTask(c.ID, true)
	}
	return report(res)
}
