// Package jsonstore is the zero-dependency storage.Provider backend: a
// single indented JSON file holding the full task set, suitable for local
// use without a SQLite driver and as a `fortudo init --source` migration
// source.
package jsonstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iconix/fortudo/internal/models"
)

type document struct {
	Version int                    `json:"version"`
	Tasks   map[string]models.Task `json:"tasks"`
}

// Store is the JSON-file storage.Provider.
type Store struct {
	path string
	doc  *document
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.doc = &document{
		Version: 1,
		Tasks:   make(map[string]models.Task),
	}
	return s.save()
}

func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'fortudo init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	s.doc = &document{}
	if err := json.Unmarshal(data, s.doc); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if s.doc.Tasks == nil {
		s.doc.Tasks = make(map[string]models.Task)
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

func (s *Store) LoadAll() ([]models.Task, error) {
	if s.doc == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	tasks := make([]models.Task, 0, len(s.doc.Tasks))
	for _, t := range s.doc.Tasks {
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (s *Store) PutTask(task models.Task) error {
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}
	s.doc.Tasks[task.ID] = task
	return s.save()
}

func (s *Store) DeleteTask(id string) error {
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}
	delete(s.doc.Tasks, id)
	return s.save()
}

func (s *Store) ReplaceAll(tasks []models.Task) error {
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}
	fresh := make(map[string]models.Task, len(tasks))
	for _, t := range tasks {
		fresh[t.ID] = t
	}
	s.doc.Tasks = fresh
	return s.save()
}

func (s *Store) GetConfigPath() string {
	return s.path
}
