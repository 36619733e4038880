package system

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/iconix/fortudo/internal/cli"
	"github.com/iconix/fortudo/internal/models"
	"github.com/iconix/fortudo/internal/ops"
	"github.com/iconix/fortudo/internal/storage/sqlite"
)

func newTestContext(t *testing.T) *cli.Context {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "fortudo-test.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx, err := cli.NewContext(store, time.Now)
	if err != nil {
		t.Fatalf("failed to build context: %v", err)
	}
	return ctx
}

func TestNotifyCmd_RunIsIdempotentAndSideEffectFree(t *testing.T) {
	ctx := newTestContext(t)

	now := time.Now()
	res := ctx.Ops.AddTask(ops.AddTaskInput{
		Scheduled: &models.ScheduledTaskInput{
			Description:   "test task",
			StartDateTime: now.Add(2 * time.Minute),
			Minutes:       30,
		},
	})
	if !res.Success {
		t.Fatalf("AddTask failed: %+v", res)
	}

	cmd := &NotifyCmd{DryRun: true}
	for i := 0; i < 3; i++ {
		if err := cmd.Run(ctx); err != nil {
			t.Fatalf("notify run %d failed: %v", i, err)
		}
	}

	tasks := ctx.Ops.Tasks()
	if len(tasks) != 1 || tasks[0].Status != models.StatusIncomplete {
		t.Errorf("notify should not mutate task state, got %+v", tasks)
	}
}

func TestNotifyCmd_SkipsCompletedTasks(t *testing.T) {
	ctx := newTestContext(t)

	now := time.Now()
	res := ctx.Ops.AddTask(ops.AddTaskInput{
		Scheduled: &models.ScheduledTaskInput{
			Description:   "already done",
			StartDateTime: now,
			Minutes:       30,
		},
	})
	if !res.Success {
		t.Fatalf("AddTask failed: %+v", res)
	}
	tasks := ctx.Ops.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if r := ctx.Ops.CompleteTask(0, nil); !r.Success {
		t.Fatalf("CompleteTask failed: %+v", r)
	}

	cmd := &NotifyCmd{DryRun: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("notify run failed: %v", err)
	}
}

func TestNotifyCmd_SkipsUnscheduledTasks(t *testing.T) {
	ctx := newTestContext(t)

	est := 20
	res := ctx.Ops.AddTask(ops.AddTaskInput{
		Unscheduled: &models.UnscheduledTaskInput{
			Description: "someday",
			Priority:    models.PriorityLow,
			EstDuration: &est,
		},
	})
	if !res.Success {
		t.Fatalf("AddTask failed: %+v", res)
	}

	cmd := &NotifyCmd{DryRun: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("notify run failed: %v", err)
	}
}

func TestIsDatabaseBusyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "database is locked", err: fmt.Errorf("database is locked"), expected: true},
		{name: "database busy", err: fmt.Errorf("database busy"), expected: true},
		{name: "other error", err: fmt.Errorf("some other error"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := isDatabaseBusyError(tt.err); result != tt.expected {
				t.Errorf("isDatabaseBusyError(%v) = %v, expected %v", tt.err, result, tt.expected)
			}
		})
	}
}
