package postgres

import (
	"database/sql"
	"fmt"

	"github.com/iconix/fortudo/internal/models"
)

func scanScheduledRow(scan func(dest ...any) error) (models.Task, error) {
	var t models.Task
	t.Type = models.TypeScheduled
	if err := scan(&t.ID, &t.Description, &t.Status, &t.StartDateTime, &t.EndDateTime, &t.Duration, &t.Locked); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

func scanUnscheduledRow(scan func(dest ...any) error) (models.Task, error) {
	var t models.Task
	var estDuration sql.NullInt64
	t.Type = models.TypeUnscheduled
	if err := scan(&t.ID, &t.Description, &t.Status, &t.Priority, &estDuration); err != nil {
		return models.Task{}, err
	}
	if estDuration.Valid {
		v := int(estDuration.Int64)
		t.EstDuration = &v
	}
	return t, nil
}

func (s *Store) LoadAll() ([]models.Task, error) {
	var tasks []models.Task

	rows, err := s.db.Query(`
SELECT id, description, status, start_date_time, end_date_time, duration, locked
FROM scheduled_tasks`)
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled tasks: %w", err)
	}
	for rows.Next() {
		t, err := scanScheduledRow(rows.Scan)
		if err != nil {
			rows.Close()
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	rows, err = s.db.Query(`
SELECT id, description, status, priority, est_duration
FROM unscheduled_tasks`)
	if err != nil {
		return nil, fmt.Errorf("failed to query unscheduled tasks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		t, err := scanUnscheduledRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) PutTask(task models.Task) error {
	switch task.Type {
	case models.TypeScheduled:
		if _, err := s.db.Exec("DELETE FROM unscheduled_tasks WHERE id = $1", task.ID); err != nil {
			return fmt.Errorf("failed to clear stale unscheduled row for task %s: %w", task.ID, err)
		}
		_, err := s.db.Exec(`
INSERT INTO scheduled_tasks (id, description, status, start_date_time, end_date_time, duration, locked)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
description = EXCLUDED.description,
status = EXCLUDED.status,
start_date_time = EXCLUDED.start_date_time,
end_date_time = EXCLUDED.end_date_time,
duration = EXCLUDED.duration,
locked = EXCLUDED.locked`,
			task.ID, task.Description, task.Status, task.StartDateTime, task.EndDateTime, task.Duration, task.Locked,
		)
		return err
	case models.TypeUnscheduled:
		if _, err := s.db.Exec("DELETE FROM scheduled_tasks WHERE id = $1", task.ID); err != nil {
			return fmt.Errorf("failed to clear stale scheduled row for task %s: %w", task.ID, err)
		}
		var estDuration sql.NullInt64
		if task.EstDuration != nil {
			estDuration = sql.NullInt64{Int64: int64(*task.EstDuration), Valid: true}
		}
		_, err := s.db.Exec(`
INSERT INTO unscheduled_tasks (id, description, status, priority, est_duration)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
description = EXCLUDED.description,
status = EXCLUDED.status,
priority = EXCLUDED.priority,
est_duration = EXCLUDED.est_duration`,
			task.ID, task.Description, task.Status, task.Priority, estDuration,
		)
		return err
	default:
		return fmt.Errorf("unknown task type %q for task %s", task.Type, task.ID)
	}
}

func (s *Store) DeleteTask(id string) error {
	if _, err := s.db.Exec("DELETE FROM scheduled_tasks WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete scheduled task %s: %w", id, err)
	}
	if _, err := s.db.Exec("DELETE FROM unscheduled_tasks WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete unscheduled task %s: %w", id, err)
	}
	return nil
}

func (s *Store) ReplaceAll(tasks []models.Task) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin replace-all transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM scheduled_tasks"); err != nil {
		return fmt.Errorf("failed to clear scheduled tasks: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM unscheduled_tasks"); err != nil {
		return fmt.Errorf("failed to clear unscheduled tasks: %w", err)
	}

	for _, task := range tasks {
		switch task.Type {
		case models.TypeScheduled:
			if _, err := tx.Exec(`
INSERT INTO scheduled_tasks (id, description, status, start_date_time, end_date_time, duration, locked)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				task.ID, task.Description, task.Status, task.StartDateTime, task.EndDateTime, task.Duration, task.Locked,
			); err != nil {
				return fmt.Errorf("failed to insert scheduled task %s: %w", task.ID, err)
			}
		case models.TypeUnscheduled:
			var estDuration sql.NullInt64
			if task.EstDuration != nil {
				estDuration = sql.NullInt64{Int64: int64(*task.EstDuration), Valid: true}
			}
			if _, err := tx.Exec(`
INSERT INTO unscheduled_tasks (id, description, status, priority, est_duration)
VALUES ($1, $2, $3, $4, $5)`,
				task.ID, task.Description, task.Status, task.Priority, estDuration,
			); err != nil {
				return fmt.Errorf("failed to insert unscheduled task %s: %w", task.ID, err)
			}
		default:
			return fmt.Errorf("unknown task type %q for task %s", task.Type, task.ID)
		}
	}

	return tx.Commit()
}
