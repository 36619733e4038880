package store

import (
	"testing"
	"time"

	"github.com/iconix/fortudo/internal/models"
)

func mkScheduled(id string, start string, durMin int) models.Task {
	startT, _ := time.Parse("2006-01-02 15:04", "2025-01-15 "+start)
	return models.Task{
		ID:            id,
		Type:          models.TypeScheduled,
		Description:   id,
		Status:        models.StatusIncomplete,
		StartDateTime: startT,
		EndDateTime:   startT.Add(time.Duration(durMin) * time.Minute),
		Duration:      durMin,
	}
}

func mkUnscheduled(id string) models.Task {
	return models.Task{
		ID:          id,
		Type:        models.TypeUnscheduled,
		Description: id,
		Status:      models.StatusIncomplete,
		Priority:    models.PriorityMedium,
	}
}

func TestUpsertMaintainsStartOrder(t *testing.T) {
	s := New()
	s.Upsert(mkScheduled("b", "10:00", 60))
	s.Upsert(mkScheduled("a", "09:00", 60))
	s.Upsert(mkScheduled("c", "11:00", 60))

	tasks := s.GetAll()
	ids := []string{tasks[0].ID, tasks[1].ID, tasks[2].ID}
	if ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Errorf("expected start-order a,b,c, got %v", ids)
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	s := New()
	task := mkScheduled("a", "09:00", 60)
	s.Upsert(task)

	task.Description = "updated"
	s.Upsert(task)

	if s.Len() != 1 {
		t.Fatalf("expected 1 task after upsert of existing id, got %d", s.Len())
	}
	got, ok := s.GetByID("a")
	if !ok || got.Description != "updated" {
		t.Errorf("expected updated description, got %+v", got)
	}
}

func TestUnscheduledOrderPreservedAcrossResort(t *testing.T) {
	s := New()
	s.Upsert(mkUnscheduled("u1"))
	s.Upsert(mkScheduled("b", "10:00", 60))
	s.Upsert(mkUnscheduled("u2"))
	s.Upsert(mkScheduled("a", "09:00", 60))

	tasks := s.GetAll()
	var unscheduledIDs []string
	for _, t := range tasks {
		if t.Type == models.TypeUnscheduled {
			unscheduledIDs = append(unscheduledIDs, t.ID)
		}
	}
	if len(unscheduledIDs) != 2 || unscheduledIDs[0] != "u1" || unscheduledIDs[1] != "u2" {
		t.Errorf("expected unscheduled insertion order u1,u2, got %v", unscheduledIDs)
	}
}

func TestRemove(t *testing.T) {
	s := New()
	s.Upsert(mkScheduled("a", "09:00", 60))
	if !s.Remove("a") {
		t.Fatal("expected Remove to report success")
	}
	if s.Remove("a") {
		t.Error("expected second Remove to report failure (already gone)")
	}
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d", s.Len())
	}
}

func TestRemoveWhere(t *testing.T) {
	s := New()
	a := mkScheduled("a", "09:00", 60)
	a.Status = models.StatusCompleted
	s.Upsert(a)
	s.Upsert(mkScheduled("b", "10:00", 60))

	n := s.RemoveWhere(func(t models.Task) bool { return t.Status == models.StatusCompleted })
	if n != 1 {
		t.Fatalf("expected 1 removed, got %d", n)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 remaining task, got %d", s.Len())
	}
}

func TestSetEditingExcludesFromDefaultButKeepsInStore(t *testing.T) {
	s := New()
	s.Upsert(mkScheduled("a", "09:00", 60))
	if !s.SetEditing("a", true) {
		t.Fatal("expected SetEditing to succeed")
	}
	got, _ := s.GetByID("a")
	if !got.Editing {
		t.Error("expected Editing flag set")
	}
}

func TestObserverFiresOnMutation(t *testing.T) {
	s := New()
	var calls int
	var lastLen int
	s.Subscribe(func(snap Snapshot) {
		calls++
		lastLen = len(snap.Tasks)
	})
	s.Upsert(mkScheduled("a", "09:00", 60))
	s.Upsert(mkScheduled("b", "10:00", 60))
	s.Remove("a")

	if calls != 3 {
		t.Errorf("expected 3 notifications, got %d", calls)
	}
	if lastLen != 1 {
		t.Errorf("expected last snapshot length 1, got %d", lastLen)
	}
}

func TestReplaceAllReestablishesOrder(t *testing.T) {
	s := New()
	s.ReplaceAll([]models.Task{
		mkScheduled("b", "10:00", 60),
		mkScheduled("a", "09:00", 60),
	})
	tasks := s.GetAll()
	if tasks[0].ID != "a" || tasks[1].ID != "b" {
		t.Errorf("expected order a,b after ReplaceAll, got %v", []string{tasks[0].ID, tasks[1].ID})
	}
}

func TestGetIndexAndAtIndex(t *testing.T) {
	s := New()
	s.Upsert(mkScheduled("a", "09:00", 60))
	idx := s.GetIndex("a")
	if idx != 0 {
		t.Fatalf("expected index 0, got %d", idx)
	}
	task, ok := s.AtIndex(idx)
	if !ok || task.ID != "a" {
		t.Errorf("expected AtIndex to find task a, got %+v ok=%v", task, ok)
	}
	if _, ok := s.AtIndex(5); ok {
		t.Error("expected out-of-range AtIndex to report ok=false")
	}
}
