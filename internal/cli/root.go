package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/iconix/fortudo/internal/backup"
	"github.com/iconix/fortudo/internal/ops"
	"github.com/iconix/fortudo/internal/storage"
	"github.com/iconix/fortudo/internal/store"
)

// Context is the shared collaborator handed to every kong command: the
// hydrated in-memory task store wrapped by ops, plus the storage backend
// ops writes through to.
type Context struct {
	Store storage.Provider
	Ops   *ops.Ops
}

// NewContext loads every task out of provider into a fresh in-memory
// store and wires an Ops instance that persists mutations back through
// provider as they happen.
func NewContext(provider storage.Provider, clock func() time.Time) (*Context, error) {
	tasks, err := provider.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	s := store.New()
	for _, t := range tasks {
		s.Upsert(t)
	}

	return &Context{
		Store: provider,
		Ops:   ops.New(s, clock, provider),
	}, nil
}

// NewUninitializedContext wires a Context around a store that has not yet
// had Init or Load called — used only by the init command, which must
// create the backend's schema itself before any task can be loaded.
func NewUninitializedContext(provider storage.Provider, clock func() time.Time) *Context {
	return &Context{
		Store: provider,
		Ops:   ops.New(store.New(), clock, provider),
	}
}

// PerformAutomaticBackup creates an automatic backup. A failure is reported
// as a warning on stderr and does not stop the command.
func (c *Context) PerformAutomaticBackup() {
	mgr := backup.NewManager(c.Store.GetConfigPath())
	_, err := mgr.CreateBackup()
	if err != nil {
		// Warn only - don't interrupt user workflow
		fmt.Fprintf(os.Stderr, "Warning: automatic backup failed: %v\n", err)
	}
}
