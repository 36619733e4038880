package scheduler

import (
	"testing"
	"time"

	"github.com/iconix/fortudo/internal/models"
)

func at(hhmm string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2025-01-15 "+hhmm)
	if err != nil {
		panic(err)
	}
	return t
}

func scheduled(id, start string, durMin int) models.Task {
	s := at(start)
	return models.Task{
		ID:            id,
		Type:          models.TypeScheduled,
		Description:   id,
		Status:        models.StatusIncomplete,
		StartDateTime: s,
		EndDateTime:   s.Add(time.Duration(durMin) * time.Minute),
		Duration:      durMin,
	}
}

func locked(id, start string, durMin int) models.Task {
	t := scheduled(id, start, durMin)
	t.Locked = true
	return t
}

func completed(id, start string, durMin int) models.Task {
	t := scheduled(id, start, durMin)
	t.Status = models.StatusCompleted
	return t
}

func editing(id, start string, durMin int) models.Task {
	t := scheduled(id, start, durMin)
	t.Editing = true
	return t
}

func shiftFor(shifts []models.ShiftedTask, id string) (models.ShiftedTask, bool) {
	for _, s := range shifts {
		if s.TaskID == id {
			return s, true
		}
	}
	return models.ShiftedTask{}, false
}

// Scenario A: cascade on insert. T1{10:00-11:00}, T2{11:00-12:00},
// T3{12:00-13:00}; inserting New{09:00-10:30} pushes all three back to
// back with New, each preserving duration.
func TestCascadeScenarioA_InsertPushesChain(t *testing.T) {
	newTask := scheduled("new", "09:00", 90) // 09:00-10:30
	others := []models.Task{
		scheduled("t1", "10:00", 60),
		scheduled("t2", "11:00", 60),
		scheduled("t3", "12:00", 60),
	}

	shifts, err := Cascade(newTask, others)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shifts) != 3 {
		t.Fatalf("expected 3 shifts, got %d", len(shifts))
	}

	t1, _ := shiftFor(shifts, "t1")
	if !t1.NewStart.Equal(at("10:30")) || !t1.NewEnd.Equal(at("11:30")) {
		t.Errorf("t1 expected 10:30-11:30, got %s-%s", t1.NewStart, t1.NewEnd)
	}
	t2, _ := shiftFor(shifts, "t2")
	if !t2.NewStart.Equal(at("11:30")) || !t2.NewEnd.Equal(at("12:30")) {
		t.Errorf("t2 expected 11:30-12:30, got %s-%s", t2.NewStart, t2.NewEnd)
	}
	t3, _ := shiftFor(shifts, "t3")
	if !t3.NewStart.Equal(at("12:30")) || !t3.NewEnd.Equal(at("13:30")) {
		t.Errorf("t3 expected 12:30-13:30, got %s-%s", t3.NewStart, t3.NewEnd)
	}
}

// Scenario B: late completion cascade. Completing T1 late pushes its end
// out, and downstream unlocked tasks cascade the same way an insert would;
// modeled here as a candidate with T1's id occupying the extended interval.
func TestCascadeScenarioB_LateCompletionPushesDownstream(t *testing.T) {
	t1Extended := scheduled("t1", "09:00", 90) // originally 09:00-10:00, ran to 10:30
	others := []models.Task{
		scheduled("t2", "10:00", 30),
	}
	shifts, err := Cascade(t1Extended, others)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t2, ok := shiftFor(shifts, "t2")
	if !ok {
		t.Fatal("expected t2 to be shifted")
	}
	if !t2.NewStart.Equal(at("10:30")) || !t2.NewEnd.Equal(at("11:00")) {
		t.Errorf("t2 expected 10:30-11:00, got %s-%s", t2.NewStart, t2.NewEnd)
	}
}

// Scenario C: lock barrier. A locked task blocks cascade from crossing it;
// displaced tasks jump to the locked task's end instead of landing on it.
func TestCascadeScenarioC_JumpsOverLockedTask(t *testing.T) {
	newTask := scheduled("new", "09:00", 90) // 09:00-10:30
	others := []models.Task{
		locked("lk", "10:30", 30), // 10:30-11:00, immovable
		scheduled("t1", "10:00", 60),
	}
	shifts, err := Cascade(newTask, others)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t1, ok := shiftFor(shifts, "t1")
	if !ok {
		t.Fatal("expected t1 to be shifted")
	}
	if !t1.NewStart.Equal(at("11:00")) || !t1.NewEnd.Equal(at("12:00")) {
		t.Errorf("t1 expected to jump past locked task to 11:00-12:00, got %s-%s", t1.NewStart, t1.NewEnd)
	}
}

// Scenario D: a task mid-edit is excluded entirely from cascade, neither
// shifted itself nor treated as a barrier other tasks must route around.
func TestCascadeScenarioD_EditingTaskIgnored(t *testing.T) {
	newTask := scheduled("new", "09:00", 90) // 09:00-10:30
	others := []models.Task{
		editing("ed", "10:00", 60),
		scheduled("t1", "10:00", 60),
	}
	shifts, err := Cascade(newTask, others)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := shiftFor(shifts, "ed"); ok {
		t.Error("editing task must not appear in the shift plan")
	}
	t1, ok := shiftFor(shifts, "t1")
	if !ok || !t1.NewStart.Equal(at("10:30")) {
		t.Errorf("t1 expected shifted to 10:30 right after new, not routed around the editing task, got %+v ok=%v", t1, ok)
	}
}

// Scenario E: cascade blocked without a truncate option. A completed task
// cannot be displaced; Cascade must fail hard rather than silently skip it.
func TestCascadeScenarioE_BlockedByCompletedTask(t *testing.T) {
	newTask := scheduled("new", "09:00", 90) // 09:00-10:30
	others := []models.Task{
		scheduled("t1", "10:00", 60),
		completed("done", "11:00", 30), // 11:00-11:30, immovable
	}
	_, err := Cascade(newTask, others)
	if err == nil {
		t.Fatal("expected cascade to fail when forced across a completed task")
	}
}

// Scenario F: idempotent deny. Re-running the same cascade computation
// against the same inputs produces the same plan; Cascade is pure.
func TestCascadeScenarioF_Idempotent(t *testing.T) {
	newTask := scheduled("new", "09:00", 90)
	others := []models.Task{
		scheduled("t1", "10:00", 60),
		scheduled("t2", "11:00", 60),
	}
	first, err1 := Cascade(newTask, others)
	second, err2 := Cascade(newTask, others)
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if len(first) != len(second) {
		t.Fatalf("expected identical plan length, got %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("expected identical shift at %d, got %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestCascadeStopsOnceTaskStartsAfterCursor(t *testing.T) {
	newTask := scheduled("new", "09:00", 30) // 09:00-09:30
	others := []models.Task{
		scheduled("t1", "10:00", 60), // starts after cursor, untouched
	}
	shifts, err := Cascade(newTask, others)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shifts) != 0 {
		t.Errorf("expected no shifts when no overlap, got %+v", shifts)
	}
}

func TestDetectOverlapsPartitionsByCategory(t *testing.T) {
	candidate := scheduled("c", "09:00", 120) // 09:00-11:00
	tasks := []models.Task{
		candidate,
		locked("lk", "09:30", 30),
		completed("done", "10:00", 30),
		scheduled("free", "10:30", 30),
		scheduled("outside", "12:00", 30),
		editing("edit", "09:15", 15),
	}
	result := DetectOverlaps(candidate, tasks)
	if len(result.Locked) != 1 || result.Locked[0].ID != "lk" {
		t.Errorf("expected locked=[lk], got %+v", result.Locked)
	}
	if len(result.Completed) != 1 || result.Completed[0].ID != "done" {
		t.Errorf("expected completed=[done], got %+v", result.Completed)
	}
	if len(result.Unlocked) != 1 || result.Unlocked[0].ID != "free" {
		t.Errorf("expected unlocked=[free] (editing excluded), got %+v", result.Unlocked)
	}
}

func TestDetectOverlapsBackToBackIsNotOverlap(t *testing.T) {
	candidate := scheduled("c", "09:00", 60) // 09:00-10:00
	tasks := []models.Task{candidate, scheduled("next", "10:00", 60)}
	result := DetectOverlaps(candidate, tasks)
	if len(result.Unlocked) != 0 {
		t.Errorf("expected no overlap for back-to-back tasks, got %+v", result.Unlocked)
	}
}

func TestFindEarliestFeasibleStartWalksPastBarriers(t *testing.T) {
	tasks := []models.Task{
		locked("lk1", "09:00", 60),     // 09:00-10:00
		completed("done", "10:00", 30), // 10:00-10:30
	}
	got := FindEarliestFeasibleStart(at("09:00"), 45, tasks, "")
	if !got.Equal(at("10:30")) {
		t.Errorf("expected earliest feasible start 10:30, got %s", got)
	}
}

func TestFindEarliestFeasibleStartNoBarrier(t *testing.T) {
	got := FindEarliestFeasibleStart(at("09:00"), 30, nil, "")
	if !got.Equal(at("09:00")) {
		t.Errorf("expected unchanged start when no barriers, got %s", got)
	}
}

func TestFindGapsBetweenConsecutiveScheduledTasks(t *testing.T) {
	tasks := []models.Task{
		scheduled("a", "09:00", 60), // 09:00-10:00
		scheduled("b", "10:30", 60), // 10:30-11:30, 30m gap
		scheduled("c", "11:30", 60), // back to back, no gap
	}
	gaps := FindGaps(tasks)
	if len(gaps) != 1 {
		t.Fatalf("expected 1 gap, got %d", len(gaps))
	}
	if gaps[0].AfterTaskID != "a" || gaps[0].DurationMinutes != 30 {
		t.Errorf("expected 30m gap after a, got %+v", gaps[0])
	}
}

func TestIsRunningLateAndIsCurrentlyActive(t *testing.T) {
	task := scheduled("a", "09:00", 60) // 09:00-10:00
	if IsRunningLate(task, at("09:30")) {
		t.Error("expected not late before end")
	}
	if !IsRunningLate(task, at("10:01")) {
		t.Error("expected late after end")
	}
	if !IsCurrentlyActive(task, at("09:00")) {
		t.Error("expected active at start instant (inclusive)")
	}
	if IsCurrentlyActive(task, at("10:00")) {
		t.Error("expected inactive at end instant (exclusive)")
	}
}

func TestFindActiveRunningConflict(t *testing.T) {
	running := scheduled("a", "09:00", 60) // 09:00-10:00
	tasks := []models.Task{running}
	conflict, ok := FindActiveRunningConflict(at("09:30"), tasks, at("09:30"))
	if !ok || conflict.ID != "a" {
		t.Errorf("expected conflict with a, got %+v ok=%v", conflict, ok)
	}
	if _, ok := FindActiveRunningConflict(at("09:00"), tasks, at("09:30")); ok {
		t.Error("candidate start equal to running task's own start should not conflict")
	}
}
