package suggestion

import (
	"testing"
	"time"

	"github.com/iconix/fortudo/internal/models"
	"github.com/iconix/fortudo/internal/store"
)

func at(hhmm string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2025-01-15 "+hhmm)
	if err != nil {
		panic(err)
	}
	return t
}

func TestGetSuggestedStartTimeEmptyStoreRoundsUpNow(t *testing.T) {
	s := store.New()
	got := GetSuggestedStartTime(s, at("09:12"))
	if got != "09:15" {
		t.Errorf("expected 09:15, got %s", got)
	}
}

func TestGetSuggestedStartTimeUsesLatestIncompleteEnd(t *testing.T) {
	s := store.New()
	start := at("09:00")
	s.Upsert(models.Task{
		ID: "a", Type: models.TypeScheduled, Status: models.StatusIncomplete,
		StartDateTime: start, EndDateTime: start.Add(60 * time.Minute), Duration: 60,
	})
	later := at("13:00")
	s.Upsert(models.Task{
		ID: "b", Type: models.TypeScheduled, Status: models.StatusIncomplete,
		StartDateTime: later, EndDateTime: later.Add(30 * time.Minute), Duration: 30,
	})

	got := GetSuggestedStartTime(s, at("08:00"))
	if got != "13:30" {
		t.Errorf("expected 13:30 (latest incomplete end), got %s", got)
	}
}

func TestGetSuggestedStartTimeIgnoresCompletedTasks(t *testing.T) {
	s := store.New()
	later := at("15:00")
	s.Upsert(models.Task{
		ID: "done", Type: models.TypeScheduled, Status: models.StatusCompleted,
		StartDateTime: later, EndDateTime: later.Add(30 * time.Minute), Duration: 30,
	})
	got := GetSuggestedStartTime(s, at("08:00"))
	if got != "08:00" {
		t.Errorf("expected fallback to now rounded up, got %s", got)
	}
}

func TestTrackerStateTransitions(t *testing.T) {
	var tr TrackerState
	if tr.ShouldRewrite("09:00", "2025-01-15") {
		t.Error("untracked state should never rewrite")
	}

	tr = tr.OnSuggestion("09:00", "2025-01-15")
	if !tr.ShouldRewrite("09:30", "2025-01-15") {
		t.Error("expected rewrite when tracked value changes on same day")
	}
	if tr.ShouldRewrite("09:00", "2025-01-15") {
		t.Error("expected no rewrite when value is unchanged")
	}
	if !tr.ShouldRewrite("09:00", "2025-01-16") {
		t.Error("expected rewrite when local date rolls over")
	}

	tr = tr.OnUserEdit()
	if tr.Tracking {
		t.Error("expected untracked after user edit")
	}
	if tr.ShouldRewrite("10:00", "2025-01-15") {
		t.Error("expected no rewrite after user edit regardless of value")
	}
}
