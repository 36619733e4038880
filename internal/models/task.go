// Package models defines the Task entity — a tagged variant of scheduled
// and unscheduled tasks — its validation rules and factories, and the
// OperationResult discriminated union shared by every mutating engine
// call.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iconix/fortudo/internal/apperrors"
)

// Type discriminates the two Task shapes.
type Type string

const (
	TypeScheduled   Type = "scheduled"
	TypeUnscheduled Type = "unscheduled"
)

// Status is shared by both task shapes.
type Status string

const (
	StatusIncomplete Status = "incomplete"
	StatusCompleted  Status = "completed"
)

// Priority is an UnscheduledTask's backlog ordering hint.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Task is the tagged variant described by spec.md §3. Only the fields
// relevant to Type are meaningful; callers should branch on Type before
// reading variant-specific fields, exhaustively matching both variants
// per spec.md §9.
type Task struct {
	ID          string
	Type        Type
	Description string
	Status      Status

	// transient UI-facing flags, excluded from any persisted projection
	Editing          bool `json:"-"`
	ConfirmingDelete bool `json:"-"`

	// ScheduledTask fields
	StartDateTime time.Time
	EndDateTime   time.Time
	Duration      int // minutes; EndDateTime == StartDateTime + Duration
	Locked        bool

	// UnscheduledTask fields
	Priority        Priority
	EstDuration     *int // nil means "no estimate"
	IsEditingInline bool `json:"-"`
}

// NewID returns a fresh globally-unique opaque task id.
func NewID() string {
	return uuid.NewString()
}

// ScheduledTaskInput is the raw, pre-validated input shape for creating or
// replacing a scheduled task.
type ScheduledTaskInput struct {
	Description   string
	StartDateTime time.Time
	Hours         int
	Minutes       int
	Locked        bool
}

// UnscheduledTaskInput is the raw, pre-validated input shape for creating
// or replacing an unscheduled task.
type UnscheduledTaskInput struct {
	Description string
	Priority    Priority
	EstDuration *int
}

func validateDescription(desc string) (string, error) {
	trimmed := strings.TrimSpace(desc)
	if trimmed == "" {
		return "", apperrors.NewValidation("description cannot be empty")
	}
	return trimmed, nil
}

// NewScheduledTask validates inputs and constructs a fresh ScheduledTask,
// computing EndDateTime from StartDateTime + duration. duration is derived
// from hours/minutes per spec.md §4.2: hours >= 0, 0 <= minutes <= 59, and
// the total must be strictly positive.
func NewScheduledTask(in ScheduledTaskInput) (Task, error) {
	desc, err := validateDescription(in.Description)
	if err != nil {
		return Task{}, err
	}
	if in.Hours < 0 {
		return Task{}, apperrors.NewValidation("duration hours cannot be negative")
	}
	if in.Minutes < 0 || in.Minutes > 59 {
		return Task{}, apperrors.NewValidation("duration minutes must be between 0 and 59")
	}
	duration := in.Hours*60 + in.Minutes
	if duration <= 0 {
		return Task{}, apperrors.NewValidation("scheduled task duration must be positive")
	}
	if in.StartDateTime.IsZero() {
		return Task{}, apperrors.NewValidation("scheduled task requires a start time")
	}

	return Task{
		ID:            NewID(),
		Type:          TypeScheduled,
		Description:   desc,
		Status:        StatusIncomplete,
		StartDateTime: in.StartDateTime,
		EndDateTime:   in.StartDateTime.Add(time.Duration(duration) * time.Minute),
		Duration:      duration,
		Locked:        in.Locked,
	}, nil
}

// NewUnscheduledTask validates inputs and constructs a fresh UnscheduledTask.
// Priority defaults to "medium" if empty. estDuration may be nil (no
// estimate); zero is normalized to nil per spec.md §4.2.
func NewUnscheduledTask(in UnscheduledTaskInput) (Task, error) {
	desc, err := validateDescription(in.Description)
	if err != nil {
		return Task{}, err
	}
	priority := in.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if priority != PriorityHigh && priority != PriorityMedium && priority != PriorityLow {
		return Task{}, apperrors.NewValidation("invalid priority %q", priority)
	}

	estDuration := in.EstDuration
	if estDuration != nil {
		if *estDuration < 0 {
			return Task{}, apperrors.NewValidation("estimated duration cannot be negative")
		}
		if *estDuration == 0 {
			estDuration = nil
		}
	}

	return Task{
		ID:          NewID(),
		Type:        TypeUnscheduled,
		Description: desc,
		Status:      StatusIncomplete,
		Priority:    priority,
		EstDuration: estDuration,
	}, nil
}

// Interval is a task's half-open scheduled span.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Interval returns the task's half-open scheduled interval. Only
// meaningful for TypeScheduled tasks.
func (t Task) Interval() Interval {
	return Interval{Start: t.StartDateTime, End: t.EndDateTime}
}

// WithEnd returns a copy of t with EndDateTime and Duration recomputed from
// the given end instant. Used by cascade shifting and late completion.
func (t Task) WithEnd(end time.Time) Task {
	t.EndDateTime = end
	t.Duration = int(end.Sub(t.StartDateTime).Minutes())
	return t
}

// WithStart returns a copy of t shifted to a new start, preserving Duration.
func (t Task) WithStart(start time.Time) Task {
	t.StartDateTime = start
	t.EndDateTime = start.Add(time.Duration(t.Duration) * time.Minute)
	return t
}
