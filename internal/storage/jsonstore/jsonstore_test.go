package jsonstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/iconix/fortudo/internal/models"
)

func TestInitThenLoadRoundTripsEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fortudo.json")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	reopened := NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	tasks, err := reopened.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected empty store, got %d tasks", len(tasks))
	}
}

func TestInitTwiceFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fortudo.json")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if err := NewStore(path).Init(); err == nil {
		t.Error("expected second Init() at the same path to fail")
	}
}

func TestPutTaskPersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fortudo.json")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	start := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	task := models.Task{
		ID: "t1", Type: models.TypeScheduled, Description: "write report",
		Status: models.StatusIncomplete, StartDateTime: start, EndDateTime: start.Add(time.Hour), Duration: 60,
	}
	if err := store.PutTask(task); err != nil {
		t.Fatalf("PutTask() failed: %v", err)
	}

	reopened := NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	tasks, err := reopened.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "t1" {
		t.Fatalf("expected persisted task t1, got %+v", tasks)
	}
}

func TestDeleteTaskRemovesEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fortudo.json")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	est := 20
	task := models.Task{ID: "t1", Type: models.TypeUnscheduled, Description: "x", Status: models.StatusIncomplete, Priority: models.PriorityLow, EstDuration: &est}
	if err := store.PutTask(task); err != nil {
		t.Fatalf("PutTask() failed: %v", err)
	}
	if err := store.DeleteTask("t1"); err != nil {
		t.Fatalf("DeleteTask() failed: %v", err)
	}

	tasks, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected task to be deleted, got %d remaining", len(tasks))
	}
}

func TestReplaceAllOverwritesTaskSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fortudo.json")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	est := 20
	if err := store.PutTask(models.Task{ID: "old", Type: models.TypeUnscheduled, Description: "stale", Status: models.StatusIncomplete, Priority: models.PriorityLow, EstDuration: &est}); err != nil {
		t.Fatalf("PutTask() failed: %v", err)
	}

	fresh := []models.Task{{ID: "new", Type: models.TypeUnscheduled, Description: "fresh", Status: models.StatusIncomplete, Priority: models.PriorityHigh, EstDuration: &est}}
	if err := store.ReplaceAll(fresh); err != nil {
		t.Fatalf("ReplaceAll() failed: %v", err)
	}

	tasks, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "new" {
		t.Errorf("expected only the new task, got %+v", tasks)
	}
}
