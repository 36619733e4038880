// Package store holds the authoritative in-memory Task list and enforces
// the TaskStore invariants from spec.md §3/§4.5: start-order among
// scheduled tasks, and a synchronous change notification fired after every
// mutation so the UI collaborator and persistence layer stay in sync.
package store

import (
	"sort"
	"sync"

	"github.com/iconix/fortudo/internal/models"
)

// Snapshot is the read-only view handed to observers after a mutation.
type Snapshot struct {
	Tasks []models.Task
}

// Store is the single authoritative task list owned by the scheduler
// module. Per spec.md §9, there is exactly one Store instance per running
// application, bounded by process start/teardown — no package-level
// singleton is used here; the caller constructs and owns one.
type Store struct {
	mu        sync.Mutex
	tasks     []models.Task
	observers []func(Snapshot)
}

// New constructs an empty Store.
func New() *Store {
	return &Store{}
}

// Subscribe registers an observer fired synchronously after every mutation.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	snap := Snapshot{Tasks: append([]models.Task(nil), s.tasks...)}
	for _, fn := range s.observers {
		fn(snap)
	}
}

// resort re-establishes the start-order invariant among scheduled tasks in
// place, leaving unscheduled tasks exactly where they sit (insertion
// order). It does this by sorting only the scheduled slots' values, not
// the whole slice, so backlog positions are never disturbed.
func (s *Store) resort() {
	var positions []int
	var scheduled []models.Task
	for i, t := range s.tasks {
		if t.Type == models.TypeScheduled {
			positions = append(positions, i)
			scheduled = append(scheduled, t)
		}
	}
	sort.SliceStable(scheduled, func(i, j int) bool {
		return scheduled[i].StartDateTime.Before(scheduled[j].StartDateTime)
	})
	for k, pos := range positions {
		s.tasks[pos] = scheduled[k]
	}
}

// GetAll returns a defensive copy of every task in store order.
func (s *Store) GetAll() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Task(nil), s.tasks...)
}

// GetByID returns the task with the given id, or ok=false if absent.
func (s *Store) GetByID(id string) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

// GetIndex returns the slice index of the task with the given id, or -1.
func (s *Store) GetIndex(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// AtIndex returns the task at the given index, or ok=false if out of range.
func (s *Store) AtIndex(index int) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.tasks) {
		return models.Task{}, false
	}
	return s.tasks[index], true
}

// Len returns the number of tasks currently in the store.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// ReplaceAll replaces the entire task list, re-establishing start-order,
// and notifies observers. Used to seed the store at startup.
func (s *Store) ReplaceAll(tasks []models.Task) {
	s.mu.Lock()
	s.tasks = append([]models.Task(nil), tasks...)
	s.resort()
	s.mu.Unlock()
	s.notify()
}

// Upsert inserts a new task or replaces an existing one with the same id,
// re-establishes start-order, and notifies observers.
func (s *Store) Upsert(task models.Task) {
	s.mu.Lock()
	found := false
	for i, t := range s.tasks {
		if t.ID == task.ID {
			s.tasks[i] = task
			found = true
			break
		}
	}
	if !found {
		s.tasks = append(s.tasks, task)
	}
	s.resort()
	s.mu.Unlock()
	s.notify()
}

// ReplaceAt replaces the task at the given index in place (used by
// UpdateTask, which excludes the prior interval from conflict detection
// but keeps the task's position semantics until the store re-sorts).
func (s *Store) ReplaceAt(index int, task models.Task) bool {
	s.mu.Lock()
	if index < 0 || index >= len(s.tasks) {
		s.mu.Unlock()
		return false
	}
	s.tasks[index] = task
	s.resort()
	s.mu.Unlock()
	s.notify()
	return true
}

// Remove deletes the task with the given id and notifies observers.
// Returns false if no such task existed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	idx := -1
	for i, t := range s.tasks {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return false
	}
	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	s.mu.Unlock()
	s.notify()
	return true
}

// RemoveWhere deletes every task matching pred and notifies observers once.
// Returns the number of tasks removed.
func (s *Store) RemoveWhere(pred func(models.Task) bool) int {
	s.mu.Lock()
	kept := s.tasks[:0:0]
	removed := 0
	for _, t := range s.tasks {
		if pred(t) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	s.tasks = kept
	s.mu.Unlock()
	if removed > 0 {
		s.notify()
	}
	return removed
}

func (s *Store) mutateFlag(id string, set func(*models.Task)) bool {
	s.mu.Lock()
	idx := -1
	for i, t := range s.tasks {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return false
	}
	set(&s.tasks[idx])
	s.mu.Unlock()
	s.notify()
	return true
}

// SetEditing flips the transient editing flag; editing tasks are excluded
// from overlap detection and cascade shifting per spec.md §3 invariant 6.
func (s *Store) SetEditing(id string, editing bool) bool {
	return s.mutateFlag(id, func(t *models.Task) { t.Editing = editing })
}

// SetConfirmingDelete flips the two-click delete confirmation flag.
func (s *Store) SetConfirmingDelete(id string, confirming bool) bool {
	return s.mutateFlag(id, func(t *models.Task) { t.ConfirmingDelete = confirming })
}

// SetInlineEditing flips the unscheduled-task inline edit flag.
func (s *Store) SetInlineEditing(id string, editing bool) bool {
	return s.mutateFlag(id, func(t *models.Task) { t.IsEditingInline = editing })
}
