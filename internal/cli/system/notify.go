package system

import (
	"fmt"
	"strings"
	"time"

	"github.com/iconix/fortudo/internal/cli"
	"github.com/iconix/fortudo/internal/constants"
	"github.com/iconix/fortudo/internal/models"
	"github.com/iconix/fortudo/internal/notifier"
)

// NotifyCmd is the polling entry point a cron-style scheduler (crontab,
// launchd, systemd timer) invokes periodically; it compares every
// scheduled task's start and end against the current time and pushes a
// desktop notification through notifier for anything starting or ending
// imminently or overdue.
type NotifyCmd struct {
	DryRun bool `help:"Print notifications to stdout instead of sending them."`
}

// startEndOffsetMin bounds, in minutes, how far ahead of a task's start/end fortudo warns,
// and how long after it still bothers to warn about having missed it.
const startEndOffsetMin = 5

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	var err error
	for attempt := 0; attempt < constants.NotifyMaxRetries; attempt++ {
		err = c.runWithRetry(ctx)
		if err == nil {
			return nil
		}
		if attempt < constants.NotifyMaxRetries-1 && isDatabaseBusyError(err) {
			time.Sleep(constants.NotifyRetryDelay * time.Duration(attempt+1))
			continue
		}
		break
	}
	return err
}

func isDatabaseBusyError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "database busy") ||
		strings.Contains(errStr, "database table is locked")
}

func (c *NotifyCmd) runWithRetry(ctx *cli.Context) error {
	now := time.Now()
	n := notifier.New()

	for _, task := range ctx.Ops.Tasks() {
		if task.Type != models.TypeScheduled || task.Status == models.StatusCompleted {
			continue
		}
		c.checkStart(task, now, n)
		c.checkEnd(task, now, n)
	}

	return nil
}

func (c *NotifyCmd) checkStart(task models.Task, now time.Time, n *notifier.Notifier) {
	delta := now.Sub(task.StartDateTime).Minutes()
	if delta < -startEndOffsetMin || delta > startEndOffsetMin {
		return
	}

	var msg string
	switch {
	case delta < 0:
		msg = fmt.Sprintf("Upcoming: %s starts in %d min", task.Description, int(-delta))
	case delta == 0:
		msg = fmt.Sprintf("Starting now: %s", task.Description)
	default:
		msg = fmt.Sprintf("Started %d min ago: %s", int(delta), task.Description)
	}
	c.send(msg, n)
}

func (c *NotifyCmd) checkEnd(task models.Task, now time.Time, n *notifier.Notifier) {
	delta := now.Sub(task.EndDateTime).Minutes()
	if delta < -startEndOffsetMin || delta > startEndOffsetMin {
		return
	}

	var msg string
	switch {
	case delta < 0:
		msg = fmt.Sprintf("Ending soon: %s ends in %d min", task.Description, int(-delta))
	case delta == 0:
		msg = fmt.Sprintf("Ending now: %s", task.Description)
	default:
		msg = fmt.Sprintf("Running late: %s should have ended %d min ago", task.Description, int(delta))
	}
	c.send(msg, n)
}

func (c *NotifyCmd) send(msg string, n *notifier.Notifier) {
	if c.DryRun {
		fmt.Println("[DryRun] " + msg)
		return
	}
	if err := n.Notify(msg); err != nil {
		fmt.Printf("Failed to send notification: %v\n", err)
	}
}
