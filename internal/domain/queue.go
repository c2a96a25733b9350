package domain

// PendingQueue holds a user's assigned-but-not-completed quizzes. Entries are
// ordered by AssignedAt when read, regardless of how the backing store laid
// them out; ties keep insertion order.
type PendingQueue []PendingAssignment

// Contains reports whether the quiz is already queued.
func (q PendingQueue) Contains(quizID string) bool {
	for _, a := range q {
		if a.QuizID == quizID {
			return true
		}
	}
	return false
}

// Enqueue appends the assignment. Re-assigning a quiz that is already queued
// is a no-op; the return value reports whether the queue changed.
func (q *PendingQueue) Enqueue(a PendingAssignment) bool {
	if q.Contains(a.QuizID) {
		return false
	}
	*q = append(*q, a)
	return true
}

// Head returns the pending assignment with the earliest AssignedAt among
// those the filter accepts. A false result means nothing is currently
// surfaceable, which is a normal state, not an error.
func (q PendingQueue) Head(eligible func(quizID string) bool) (PendingAssignment, bool) {
	var head PendingAssignment
	found := false
	for _, a := range q {
		if !eligible(a.QuizID) {
			continue
		}
		// Strict Before keeps insertion order on equal timestamps.
		if !found || a.AssignedAt.Before(head.AssignedAt) {
			head = a
			found = true
		}
	}
	return head, found
}

// Remove deletes the assignment for quizID, preserving the order of the rest.
// The second return is false when no such assignment exists, which callers
// treat as an already-dequeued (not-found) condition.
func (q *PendingQueue) Remove(quizID string) (PendingAssignment, bool) {
	for i, a := range *q {
		if a.QuizID == quizID {
			*q = append((*q)[:i], (*q)[i+1:]...)
			return a, true
		}
	}
	return PendingAssignment{}, false
}

// Assign enqueues onto the user's queue unless the quiz is already pending or
// already completed (one-shot quizzes never re-enter the queue).
func (u *User) Assign(a PendingAssignment) bool {
	if u.HasCompleted(a.QuizID) {
		return false
	}
	return u.PendingQuizzes.Enqueue(a)
}
