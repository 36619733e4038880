package apperrors

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil error", nil, ""},
		{"simple error", errors.New("something went wrong"), "Error: something went wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.err); got != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, got, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("failed to load %s", "database")
	want := "Error: failed to load database"
	if got != want {
		t.Errorf("Formatf = %q, want %q", got, want)
	}
}

func TestTypedErrorsSatisfyError(t *testing.T) {
	var err error

	err = NewValidation("description cannot be empty")
	if err.Error() != "description cannot be empty" {
		t.Errorf("ValidationError.Error() = %q", err.Error())
	}

	err = NewConflictPolicy("cascade blocked by completed task %q", "Lunch")
	if err.Error() != `cascade blocked by completed task "Lunch"` {
		t.Errorf("ConflictPolicyError.Error() = %q", err.Error())
	}

	err = NewPrecondition("task %s no longer exists", "abc123")
	if err.Error() != "task abc123 no longer exists" {
		t.Errorf("PreconditionError.Error() = %q", err.Error())
	}

	err = NewNoOp("no completed tasks to delete")
	if err.Error() != "no completed tasks to delete" {
		t.Errorf("NoOpError.Error() = %q", err.Error())
	}
}
