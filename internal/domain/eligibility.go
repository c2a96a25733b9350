package domain

// WithinTimeFrame reads the user's externally-maintained time-frame flag.
// A user with no time frame at all counts as outside.
func WithinTimeFrame(u *User) bool {
	if u == nil || u.TimeFrame == nil {
		return false
	}
	return u.TimeFrame.IsWithinTimeFrame
}

// Eligible decides whether the quiz may currently be surfaced to the user.
// It is total: every (quiz, user) pair maps to a definite boolean.
func Eligible(q Quiz, u *User) bool {
	if !q.IsActive {
		return false
	}
	switch q.TimeFrameHandling {
	case AllUsers:
		return true
	case RespectTimeFrame:
		return WithinTimeFrame(u)
	case OutsideTimeFrameOnly:
		return !WithinTimeFrame(u)
	default:
		// Unknown policies fail closed.
		return false
	}
}
