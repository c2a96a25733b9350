package domain

import (
	"testing"
	"time"
)

func TestEnqueueIsIdempotent(t *testing.T) {
	var q PendingQueue

	if !q.Enqueue(PendingAssignment{QuizID: "quiz-a", AssignedAt: base}) {
		t.Fatal("first enqueue should change the queue")
	}
	if q.Enqueue(PendingAssignment{QuizID: "quiz-a", AssignedAt: base.Add(time.Hour)}) {
		t.Fatal("second enqueue of the same quiz should be a no-op")
	}
	if len(q) != 1 {
		t.Fatalf("queue length = %d, want 1", len(q))
	}
}

func TestAssignRejectsCompletedQuiz(t *testing.T) {
	user := &User{
		CompletedQuizzes: []CompletedQuiz{{QuizID: "done", CompletedAt: base}},
	}
	if user.Assign(PendingAssignment{QuizID: "done", AssignedAt: base}) {
		t.Fatal("completed quiz should not re-enter the queue")
	}
	if !user.Assign(PendingAssignment{QuizID: "fresh", AssignedAt: base}) {
		t.Fatal("new quiz should be assignable")
	}
}

func TestHeadPicksEarliestEligible(t *testing.T) {
	q := PendingQueue{
		{QuizID: "third", AssignedAt: base.Add(2 * time.Minute)},
		{QuizID: "first", AssignedAt: base},
		{QuizID: "second", AssignedAt: base.Add(time.Minute)},
	}

	all := func(string) bool { return true }
	head, ok := q.Head(all)
	if !ok || head.QuizID != "first" {
		t.Fatalf("head = %+v, want first", head)
	}

	// If the earliest becomes ineligible, the next eligible one surfaces.
	skipFirst := func(id string) bool { return id != "first" }
	head, ok = q.Head(skipFirst)
	if !ok || head.QuizID != "second" {
		t.Fatalf("head with first filtered = %+v, want second", head)
	}

	none := func(string) bool { return false }
	if _, ok := q.Head(none); ok {
		t.Fatal("head with nothing eligible should report none")
	}
}

func TestHeadBreaksTiesByInsertionOrder(t *testing.T) {
	q := PendingQueue{
		{QuizID: "inserted-first", AssignedAt: base},
		{QuizID: "inserted-second", AssignedAt: base},
	}
	head, ok := q.Head(func(string) bool { return true })
	if !ok || head.QuizID != "inserted-first" {
		t.Fatalf("head = %+v, want inserted-first on equal timestamps", head)
	}
}

func TestRemove(t *testing.T) {
	q := PendingQueue{
		{QuizID: "a", AssignedAt: base},
		{QuizID: "b", AssignedAt: base.Add(time.Minute)},
	}

	removed, ok := q.Remove("a")
	if !ok || removed.QuizID != "a" {
		t.Fatalf("remove = %+v ok=%v, want quiz a", removed, ok)
	}
	if q.Contains("a") || !q.Contains("b") {
		t.Fatalf("queue after remove = %+v", q)
	}

	if _, ok := q.Remove("a"); ok {
		t.Fatal("removing an absent quiz should report not found")
	}
}
