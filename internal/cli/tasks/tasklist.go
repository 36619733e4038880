package tasks

import (
	"fmt"

	"github.com/iconix/fortudo/internal/cli"
	"github.com/iconix/fortudo/internal/models"
	"github.com/iconix/fortudo/internal/timemath"
)

// TaskListCmd prints every task, scheduled tasks first in start order
// followed by the backlog.
type TaskListCmd struct{}

func (c *TaskListCmd) Run(ctx *cli.Context) error {
	tasks := ctx.Ops.Tasks()
	if len(tasks) == 0 {
		fmt.Println("No tasks found")
		return nil
	}

	fmt.Println("Scheduled:")
	any := false
	for _, t := range tasks {
		if t.Type != models.TypeScheduled {
			continue
		}
		any = true
		lock := ""
		if t.Locked {
			lock = " [locked]"
		}
		status := " "
		if t.Status == models.StatusCompleted {
			status = "x"
		}
		fmt.Printf("  [%s] %s %s-%s  %s%s\n", status, t.ID[:8], timemath.HHMM(t.StartDateTime), timemath.HHMM(t.EndDateTime), t.Description, lock)
	}
	if !any {
		fmt.Println("  (none)")
	}

	fmt.Println("\nBacklog:")
	any = false
	for _, t := range tasks {
		if t.Type != models.TypeUnscheduled {
			continue
		}
		any = true
		status := " "
		if t.Status == models.StatusCompleted {
			status = "x"
		}
		est := ""
		if t.EstDuration != nil {
			est = fmt.Sprintf(" (~%dm)", *t.EstDuration)
		}
		fmt.Printf("  [%s] %s (%s) %s%s\n", status, t.ID[:8], t.Priority, t.Description, est)
	}
	if !any {
		fmt.Println("  (none)")
	}

	return nil
}
