package domain

import "time"

// DelayDuration converts an interval trigger's (amount, unit) pair into a
// time.Duration. Unknown units and non-positive amounts yield zero, which
// makes the trigger due immediately rather than never.
func DelayDuration(amount int, unit DelayUnit) time.Duration {
	if amount <= 0 {
		return 0
	}
	switch unit {
	case DelayMinutes:
		return time.Duration(amount) * time.Minute
	case DelayHours:
		return time.Duration(amount) * time.Hour
	case DelayDays:
		return time.Duration(amount) * 24 * time.Hour
	default:
		return 0
	}
}

// TriggerReference returns the reference point R for an interval trigger:
// the user's first or last completion depending on the quiz's StartFrom,
// falling back to account creation for users with no completions yet.
func TriggerReference(q Quiz, u *User) time.Time {
	if q.TriggerStartFrom == StartFromFirstQuiz {
		if first, ok := u.FirstCompletedAt(); ok {
			return first
		}
	} else {
		if last, ok := u.LastCompletedAt(); ok {
			return last
		}
	}
	return u.CreatedAt
}

// TriggerDue reports whether an interval-triggered quiz has crossed its due
// threshold for the user. Quizzes without an interval trigger are never due.
func TriggerDue(q Quiz, u *User, now time.Time) bool {
	if q.TriggerType != TriggerTimeInterval {
		return false
	}
	threshold := TriggerReference(q, u).Add(DelayDuration(q.TriggerDelayAmount, q.TriggerDelayUnit))
	return !now.Before(threshold)
}
