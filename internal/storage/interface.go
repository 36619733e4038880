// Package storage defines the persistence contract fortudo's SchedulerOps
// layer writes through, per spec.md §6 and §9's external interfaces.
// Concrete backends (sqlite, postgres, jsonstore) each implement Provider.
package storage

import "github.com/iconix/fortudo/internal/models"

// Provider is the persistence collaborator SchedulerOps calls after every
// successful mutation. Init/Load/Close manage the backend's lifecycle;
// LoadAll/PutTask/DeleteTask/ReplaceAll project the TaskStore's state.
type Provider interface {
	// Init creates a fresh backend (file, schema, seed data) at the
	// configured location. Callers use Init on first run, Load afterward.
	Init() error

	// Load opens an existing backend and validates its schema version.
	Load() error

	// Close releases any held resources (database handles, file locks).
	Close() error

	// LoadAll returns every persisted task, scheduled and unscheduled.
	LoadAll() ([]models.Task, error)

	// PutTask inserts or replaces a single task by ID.
	PutTask(task models.Task) error

	// DeleteTask removes a single task by ID. Deleting a task that does
	// not exist is not an error.
	DeleteTask(id string) error

	// ReplaceAll overwrites the entire persisted task set, used by the
	// bulk-delete operations.
	ReplaceAll(tasks []models.Task) error

	// GetConfigPath returns the backend's on-disk location, used by
	// internal/backup for SQLite snapshot rotation.
	GetConfigPath() string
}
