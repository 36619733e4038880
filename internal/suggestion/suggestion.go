// Package suggestion computes the next suggested scheduled-task start time
// from current store state and the wall clock (spec.md §4.7), plus the
// small state machine that tracks whether the UI's suggested-start field
// should keep auto-advancing or has been overridden by the user
// (spec.md §9).
package suggestion

import (
	"time"

	"github.com/iconix/fortudo/internal/models"
	"github.com/iconix/fortudo/internal/store"
	"github.com/iconix/fortudo/internal/timemath"
)

// GetSuggestedStartTime returns the natural "after my last task" value: the
// maximum endDateTime among incomplete scheduled tasks, or now rounded up
// to the next 5 minutes if there are none.
func GetSuggestedStartTime(s *store.Store, now time.Time) string {
	var maxEnd time.Time
	found := false
	for _, t := range s.GetAll() {
		if t.Type != models.TypeScheduled || t.Status != models.StatusIncomplete {
			continue
		}
		if !found || t.EndDateTime.After(maxEnd) {
			maxEnd = t.EndDateTime
			found = true
		}
	}
	if found {
		return timemath.HHMM(maxEnd)
	}
	return timemath.HHMM(timemath.RoundUpNext5(now))
}

// TrackerState models the suggested-start field's tracking state machine:
// untracked, or tracking(lastValue, lastLocalDate). It belongs to the TUI
// layer, not the store, but is specified here alongside the computation it
// tracks.
type TrackerState struct {
	Tracking      bool
	LastValue     string
	LastLocalDate string
}

// OnUserEdit transitions to untracked: once the user types into the
// suggested-start field, it stops auto-advancing.
func (t TrackerState) OnUserEdit() TrackerState {
	return TrackerState{}
}

// OnSuggestion transitions to tracking the given value on the given local
// date, called whenever the UI writes a fresh suggestion into the field.
func (t TrackerState) OnSuggestion(value, localDate string) TrackerState {
	return TrackerState{Tracking: true, LastValue: value, LastLocalDate: localDate}
}

// ShouldRewrite reports whether a newly computed suggestion should replace
// the field's current contents: true if the local date has rolled over, or
// the suggestion's value has changed, but only while still tracking.
func (t TrackerState) ShouldRewrite(newValue, localDate string) bool {
	if !t.Tracking {
		return false
	}
	if localDate != t.LastLocalDate {
		return true
	}
	return newValue != t.LastValue
}
