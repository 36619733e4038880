package system

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iconix/fortudo/internal/cli"
	"github.com/iconix/fortudo/internal/models"
	"github.com/iconix/fortudo/internal/storage/sqlite"
)

func fixedClock() time.Time { return time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC) }

func setupTestInitDB(t *testing.T) (*cli.Context, string, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	ctx, err := cli.NewContext(store, fixedClock)
	if err != nil {
		t.Fatalf("failed to build context: %v", err)
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	}

	return ctx, dbPath, cleanup
}

func TestInitCmd_Success(t *testing.T) {
	ctx, dbPath, cleanup := setupTestInitDB(t)
	defer cleanup()

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("init command failed: %v", err)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created at %s", dbPath)
	}
}

func TestInitCmd_ForceDeletesExisting(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	ctx, err := cli.NewContext(store, fixedClock)
	if err != nil {
		t.Fatalf("failed to build context: %v", err)
	}

	est := 30
	if err := store.PutTask(models.Task{
		ID: "t1", Type: models.TypeUnscheduled, Description: "leftover",
		Status: models.StatusIncomplete, Priority: models.PriorityLow, EstDuration: &est,
	}); err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store before force reset: %v", err)
	}

	forceCmd := &InitCmd{Force: true}
	if err := forceCmd.Run(ctx); err != nil {
		t.Fatalf("init with force failed: %v", err)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatalf("database file was not recreated after force")
	}

	if err := store.Load(); err != nil {
		t.Fatalf("failed to load store after force: %v", err)
	}

	tasks, err := store.LoadAll()
	if err != nil {
		t.Fatalf("failed to load tasks after force: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected force reset to wipe prior tasks, got %d remaining", len(tasks))
	}
}

func TestInitCmd_ForceWithNonExistentDatabase(t *testing.T) {
	ctx, dbPath, cleanup := setupTestInitDB(t)
	defer cleanup()

	os.Remove(dbPath)

	forceCmd := &InitCmd{Force: true}
	if err := forceCmd.Run(ctx); err != nil {
		t.Fatalf("init with force on non-existent database failed: %v", err)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created")
	}
}

func TestInitCmd_MigrationFromSQLiteToSQLite(t *testing.T) {
	tempDir := t.TempDir()

	sourceDBPath := filepath.Join(tempDir, "source.db")
	sourceStore := sqlite.NewStore(sourceDBPath)
	if err := sourceStore.Init(); err != nil {
		t.Fatalf("failed to init source store: %v", err)
	}

	est := 25
	task := models.Task{
		ID: "task-1", Type: models.TypeUnscheduled, Description: "migrate me",
		Status: models.StatusIncomplete, Priority: models.PriorityHigh, EstDuration: &est,
	}
	if err := sourceStore.PutTask(task); err != nil {
		t.Fatalf("failed to seed source task: %v", err)
	}
	sourceStore.Close()

	destDBPath := filepath.Join(tempDir, "dest.db")
	destStore := sqlite.NewStore(destDBPath)
	if err := destStore.Init(); err != nil {
		t.Fatalf("failed to init destination store: %v", err)
	}
	ctx, err := cli.NewContext(destStore, fixedClock)
	if err != nil {
		t.Fatalf("failed to build context: %v", err)
	}

	cmd := &InitCmd{Source: sourceDBPath}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("init with migration failed: %v", err)
	}

	if _, err := os.Stat(destDBPath); os.IsNotExist(err) {
		t.Fatalf("destination database was not created")
	}

	tasks, err := destStore.LoadAll()
	if err != nil {
		t.Fatalf("failed to load tasks from destination: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 migrated task, got %d", len(tasks))
	}
	if tasks[0].ID != "task-1" || tasks[0].Description != "migrate me" {
		t.Errorf("migrated task mismatch: got %+v", tasks[0])
	}

	destStore.Close()
}

func TestInitCmd_MigrationPreventsSourceDestinationConflict(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	store.Close()

	reopened := sqlite.NewStore(dbPath)
	if err := reopened.Load(); err != nil {
		t.Fatalf("failed to load store: %v", err)
	}
	ctx, err := cli.NewContext(reopened, fixedClock)
	if err != nil {
		t.Fatalf("failed to build context: %v", err)
	}

	cmd := &InitCmd{Force: true, Source: dbPath}
	if err := cmd.Run(ctx); err == nil {
		t.Fatal("expected error when source and destination are the same with --force, got nil")
	}

	if !filepath.IsAbs(dbPath) {
		t.Error("dbPath should be absolute")
	}
}

func TestInitCmd_MigrationWithNonExistentSource(t *testing.T) {
	tempDir := t.TempDir()
	destDBPath := filepath.Join(tempDir, "dest.db")
	nonExistentSource := filepath.Join(tempDir, "nonexistent.db")

	destStore := sqlite.NewStore(destDBPath)
	if err := destStore.Init(); err != nil {
		t.Fatalf("failed to init destination store: %v", err)
	}
	ctx, err := cli.NewContext(destStore, fixedClock)
	if err != nil {
		t.Fatalf("failed to build context: %v", err)
	}

	cmd := &InitCmd{Source: nonExistentSource}
	if err := cmd.Run(ctx); err == nil {
		t.Fatal("expected error when migrating from non-existent source, got nil")
	}

	destStore.Close()
}
