// Package scheduler implements the RescheduleEngine described by spec.md
// §4.4 — the core of fortudo: overlap detection, cascade shift, gap
// discovery, and the locked-task boundary search. It is pure with respect
// to the store: every function takes a task snapshot and returns a
// proposed plan or an error, never mutating anything itself.
package scheduler

import (
	"sort"
	"time"

	"github.com/iconix/fortudo/internal/apperrors"
	"github.com/iconix/fortudo/internal/logger"
	"github.com/iconix/fortudo/internal/models"
	"github.com/iconix/fortudo/internal/timemath"
)

// OverlapResult partitions the tasks whose interval intersects a candidate
// interval into the three categories spec.md §4.4 distinguishes, each in
// start order.
type OverlapResult struct {
	Locked    []models.Task
	Unlocked  []models.Task
	Completed []models.Task
}

func toInterval(t models.Task) timemath.Interval {
	return timemath.Interval{Start: t.StartDateTime, End: t.EndDateTime}
}

func byStart(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].StartDateTime.Before(tasks[j].StartDateTime)
	})
}

// DetectOverlaps returns the ordered subsets of tasks whose scheduled
// interval intersects candidate's, partitioned by locked/unlocked/
// completed. Tasks sharing candidate's id are excluded (a candidate
// already present in the store does not overlap itself). Editing tasks are
// excluded only from the Unlocked bucket, per spec.md §4.4.
func DetectOverlaps(candidate models.Task, tasks []models.Task) OverlapResult {
	candIv := toInterval(candidate)
	var result OverlapResult
	for _, t := range tasks {
		if t.Type != models.TypeScheduled || t.ID == candidate.ID {
			continue
		}
		if !timemath.Overlaps(candIv, toInterval(t)) {
			continue
		}
		switch {
		case t.Status == models.StatusCompleted:
			result.Completed = append(result.Completed, t)
		case t.Locked:
			result.Locked = append(result.Locked, t)
		default:
			if t.Editing {
				continue
			}
			result.Unlocked = append(result.Unlocked, t)
		}
	}
	byStart(result.Locked)
	byStart(result.Unlocked)
	byStart(result.Completed)
	return result
}

// IsRunningLate reports whether now is strictly past task's scheduled end.
func IsRunningLate(task models.Task, now time.Time) bool {
	return now.After(task.EndDateTime)
}

// IsCurrentlyActive reports whether now falls within task's scheduled
// half-open interval.
func IsCurrentlyActive(task models.Task, now time.Time) bool {
	return !now.Before(task.StartDateTime) && now.Before(task.EndDateTime)
}

// FindActiveRunningConflict looks for an incomplete, unlocked, non-editing
// scheduled task that is currently active at now and whose interval
// strictly contains candidateStart — the precondition for
// ADJUST_RUNNING_TASK in spec.md §4.6.
func FindActiveRunningConflict(candidateStart time.Time, tasks []models.Task, now time.Time) (models.Task, bool) {
	for _, t := range tasks {
		if t.Type != models.TypeScheduled || t.Status == models.StatusCompleted || t.Locked || t.Editing {
			continue
		}
		if !IsCurrentlyActive(t, now) {
			continue
		}
		if candidateStart.After(t.StartDateTime) && candidateStart.Before(t.EndDateTime) {
			return t, true
		}
	}
	return models.Task{}, false
}

// barriers returns the locked and completed scheduled tasks (other than
// excludeID) in start order — the intervals a candidate or a cascaded task
// may never be placed across.
func barriers(tasks []models.Task, excludeID string) []models.Task {
	var out []models.Task
	for _, t := range tasks {
		if t.Type != models.TypeScheduled || t.ID == excludeID {
			continue
		}
		if t.Locked || t.Status == models.StatusCompleted {
			out = append(out, t)
		}
	}
	byStart(out)
	return out
}

// FindEarliestFeasibleStart walks the locked+completed barrier intervals
// forward from start, returning the earliest s* >= start such that
// [s*, s*+duration) intersects none of them. This is the
// RESCHEDULE_NEEDS_SHIFT_DUE_TO_LOCKED payload computation of spec.md
// §4.4 step 7.
func FindEarliestFeasibleStart(start time.Time, duration int, tasks []models.Task, excludeID string) time.Time {
	bs := barriers(tasks, excludeID)
	s := start
	for iter := 0; iter <= len(bs); iter++ {
		moved := false
		candidate := timemath.Interval{Start: s, End: s.Add(time.Duration(duration) * time.Minute)}
		for _, b := range bs {
			if timemath.Overlaps(candidate, toInterval(b)) {
				if b.EndDateTime.After(s) {
					s = b.EndDateTime
					moved = true
				}
			}
		}
		if !moved {
			break
		}
	}
	return s
}

// Gap describes a positive-length span between two consecutive scheduled
// tasks in start order.
type Gap struct {
	AfterTaskID     string
	Start           time.Time
	End             time.Time
	DurationMinutes int
}

// FindGaps returns the ordered list of gaps between consecutive scheduled
// tasks, per spec.md §4.4.
func FindGaps(tasks []models.Task) []Gap {
	var scheduled []models.Task
	for _, t := range tasks {
		if t.Type == models.TypeScheduled {
			scheduled = append(scheduled, t)
		}
	}
	byStart(scheduled)

	var gaps []Gap
	for i := 0; i+1 < len(scheduled); i++ {
		cur, next := scheduled[i], scheduled[i+1]
		if next.StartDateTime.After(cur.EndDateTime) {
			gaps = append(gaps, Gap{
				AfterTaskID:     cur.ID,
				Start:           cur.EndDateTime,
				End:             next.StartDateTime,
				DurationMinutes: int(next.StartDateTime.Sub(cur.EndDateTime).Minutes()),
			})
		}
	}
	return gaps
}

// Cascade computes the proposed shift plan for placing candidate at its
// already-fixed interval, per spec.md §4.4 steps 1-6. It does not check
// whether a locked task intersects candidate's own interval (that case is
// step 7, which ops' conflict analysis resolves via
// FindEarliestFeasibleStart before calling Cascade). others is the store's
// task list; a task with candidate's id is skipped, so others may include
// candidate's prior version.
//
// Returns a ConflictPolicyError if the cascade would be forced across a
// completed task's immovable interval.
func Cascade(candidate models.Task, others []models.Task) ([]models.ShiftedTask, error) {
	var movable, locked, completed []models.Task
	for _, t := range others {
		if t.Type != models.TypeScheduled || t.ID == candidate.ID {
			continue
		}
		switch {
		case t.Status == models.StatusCompleted:
			completed = append(completed, t)
		case t.Locked:
			locked = append(locked, t)
		case t.Editing:
			continue // excluded entirely per invariant 6
		default:
			movable = append(movable, t)
		}
	}
	byStart(movable)
	byStart(locked)
	byStart(completed)

	cursor := candidate.EndDateTime
	var shifts []models.ShiftedTask

	for _, t := range movable {
		if !t.StartDateTime.Before(cursor) {
			break // T.start >= cursor: later tasks unaffected, stop walking
		}

		newStart := cursor
		duration := time.Duration(t.Duration) * time.Minute
		newEnd := newStart.Add(duration)

		// Jump over any locked task the proposed placement would cross.
		for iter := 0; iter <= len(locked); iter++ {
			moved := false
			iv := timemath.Interval{Start: newStart, End: newEnd}
			for _, l := range locked {
				if timemath.Overlaps(iv, toInterval(l)) {
					if l.EndDateTime.After(newStart) {
						newStart = l.EndDateTime
						newEnd = newStart.Add(duration)
						moved = true
					}
				}
			}
			if !moved {
				break
			}
		}

		finalIv := timemath.Interval{Start: newStart, End: newEnd}
		for _, c := range completed {
			if timemath.Overlaps(finalIv, toInterval(c)) {
				logger.Debug("cascade blocked by completed task", "task", c.ID, "description", c.Description)
				return nil, apperrors.NewConflictPolicy(
					"cannot reschedule %q: it would collide with completed task %q, which cannot move",
					t.Description, c.Description,
				)
			}
		}

		shifts = append(shifts, models.ShiftedTask{TaskID: t.ID, NewStart: newStart, NewEnd: newEnd})
		logger.Debug("cascade shift", "task", t.ID, "newStart", timemath.HHMM(newStart), "newEnd", timemath.HHMM(newEnd))
		cursor = newEnd
	}

	return shifts, nil
}
