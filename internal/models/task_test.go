package models

import (
	"testing"
	"time"
)

func TestNewScheduledTask(t *testing.T) {
	start := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		in      ScheduledTaskInput
		wantErr bool
	}{
		{
			name: "valid",
			in:   ScheduledTaskInput{Description: "write report", StartDateTime: start, Hours: 1, Minutes: 30},
		},
		{
			name:    "empty description",
			in:      ScheduledTaskInput{Description: "  ", StartDateTime: start, Minutes: 30},
			wantErr: true,
		},
		{
			name:    "negative hours",
			in:      ScheduledTaskInput{Description: "x", StartDateTime: start, Hours: -1, Minutes: 30},
			wantErr: true,
		},
		{
			name:    "minutes out of range",
			in:      ScheduledTaskInput{Description: "x", StartDateTime: start, Minutes: 60},
			wantErr: true,
		},
		{
			name:    "zero duration",
			in:      ScheduledTaskInput{Description: "x", StartDateTime: start, Hours: 0, Minutes: 0},
			wantErr: true,
		},
		{
			name:    "zero start time",
			in:      ScheduledTaskInput{Description: "x", Hours: 0, Minutes: 30},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := NewScheduledTask(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if task.Type != TypeScheduled {
				t.Errorf("expected TypeScheduled, got %s", task.Type)
			}
			if task.Duration != 90 {
				t.Errorf("expected duration 90, got %d", task.Duration)
			}
			if !task.EndDateTime.Equal(start.Add(90 * time.Minute)) {
				t.Errorf("expected end %v, got %v", start.Add(90*time.Minute), task.EndDateTime)
			}
			if task.ID == "" {
				t.Error("expected a generated id")
			}
		})
	}
}

func TestNewUnscheduledTask(t *testing.T) {
	t.Run("defaults priority to medium", func(t *testing.T) {
		task, err := NewUnscheduledTask(UnscheduledTaskInput{Description: "clean inbox"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if task.Priority != PriorityMedium {
			t.Errorf("expected medium priority, got %s", task.Priority)
		}
		if task.EstDuration != nil {
			t.Errorf("expected nil estimate, got %v", *task.EstDuration)
		}
	})

	t.Run("zero estimate normalizes to nil", func(t *testing.T) {
		zero := 0
		task, err := NewUnscheduledTask(UnscheduledTaskInput{Description: "x", EstDuration: &zero})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if task.EstDuration != nil {
			t.Error("expected zero estimate to normalize to nil")
		}
	})

	t.Run("rejects invalid priority", func(t *testing.T) {
		_, err := NewUnscheduledTask(UnscheduledTaskInput{Description: "x", Priority: "urgent"})
		if err == nil {
			t.Fatal("expected error for invalid priority")
		}
	})

	t.Run("rejects negative estimate", func(t *testing.T) {
		neg := -5
		_, err := NewUnscheduledTask(UnscheduledTaskInput{Description: "x", EstDuration: &neg})
		if err == nil {
			t.Fatal("expected error for negative estimate")
		}
	})

	t.Run("rejects empty description", func(t *testing.T) {
		_, err := NewUnscheduledTask(UnscheduledTaskInput{Description: ""})
		if err == nil {
			t.Fatal("expected error for empty description")
		}
	})
}

func TestTaskWithEndAndWithStart(t *testing.T) {
	start := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	task, err := NewScheduledTask(ScheduledTaskInput{Description: "x", StartDateTime: start, Minutes: 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	extended := task.WithEnd(start.Add(45 * time.Minute))
	if extended.Duration != 45 {
		t.Errorf("expected duration 45 after WithEnd, got %d", extended.Duration)
	}

	shifted := task.WithStart(start.Add(time.Hour))
	if shifted.Duration != task.Duration {
		t.Errorf("expected WithStart to preserve duration %d, got %d", task.Duration, shifted.Duration)
	}
	if !shifted.EndDateTime.Equal(start.Add(time.Hour + 30*time.Minute)) {
		t.Errorf("unexpected end after WithStart: %v", shifted.EndDateTime)
	}
}
