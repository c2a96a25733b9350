package domain

import "time"

// TriggerType controls how a quiz enters a user's pending queue.
type TriggerType string

const (
	// TriggerAdminAssignment quizzes only enter a queue via explicit assignment.
	TriggerAdminAssignment TriggerType = "ADMIN_ASSIGNMENT"
	// TriggerTimeInterval quizzes additionally become due once a delay has
	// elapsed since a reference completion.
	TriggerTimeInterval TriggerType = "TIME_INTERVAL"
)

// TriggerStartFrom selects the reference point for interval triggers.
type TriggerStartFrom string

const (
	StartFromFirstQuiz TriggerStartFrom = "FIRST_QUIZ"
	StartFromLastQuiz  TriggerStartFrom = "LAST_QUIZ"
)

// DelayUnit is the unit of an interval trigger's delay amount.
type DelayUnit string

const (
	DelayMinutes DelayUnit = "minutes"
	DelayHours   DelayUnit = "hours"
	DelayDays    DelayUnit = "days"
)

// TimeFrameHandling gates quiz eligibility on the user's time-frame state.
type TimeFrameHandling string

const (
	AllUsers             TimeFrameHandling = "ALL_USERS"
	RespectTimeFrame     TimeFrameHandling = "RESPECT_TIMEFRAME"
	OutsideTimeFrameOnly TimeFrameHandling = "OUTSIDE_TIMEFRAME_ONLY"
)

// DefaultCompletionMessage is shown when a quiz has no completion message of its own.
const DefaultCompletionMessage = "Thanks for completing the quiz! Your answers have been recorded."

// SystemActor marks assignments created by the trigger scheduler rather than an admin.
const SystemActor = "system"

// Option represents a possible answer for a question.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question models a single quiz question. Questions with no options accept
// free-text answers.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options,omitempty"`
}

// Quiz is the full quiz document, including its scheduling policy.
type Quiz struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	Questions          []Question        `json:"questions"`
	IsActive           bool              `json:"isActive"`
	CompletionMessage  string            `json:"completionMessage,omitempty"`
	TriggerType        TriggerType       `json:"triggerType"`
	TriggerStartFrom   TriggerStartFrom  `json:"triggerStartFrom,omitempty"`
	TriggerDelayAmount int               `json:"triggerDelayAmount,omitempty"`
	TriggerDelayUnit   DelayUnit         `json:"triggerDelayUnit,omitempty"`
	TimeFrameHandling  TimeFrameHandling `json:"timeFrameHandling"`
}

// TimeFrame is the admin-controlled activity window. The flag is maintained
// externally; this service only reads it.
type TimeFrame struct {
	IsWithinTimeFrame bool      `json:"isWithinTimeFrame"`
	TimeFrameStart    time.Time `json:"timeFrameStart,omitempty"`
	TimeFrameEnd      time.Time `json:"timeFrameEnd,omitempty"`
}

// PendingAssignment is the join record between a user and a not-yet-completed
// quiz. AssignedAt is the primary ordering key of the queue.
type PendingAssignment struct {
	QuizID     string    `json:"quizId"`
	AssignedAt time.Time `json:"assignedAt"`
	AssignedBy string    `json:"assignedBy"`
}

// CompletedQuiz records a successful submission.
type CompletedQuiz struct {
	QuizID      string    `json:"quizId"`
	CompletedAt time.Time `json:"completedAt"`
}

// User is the per-user scheduling state. TimeFrame may be nil for accounts
// that were never given a window; eligibility treats that as outside.
type User struct {
	ID               string          `json:"id"`
	CreatedAt        time.Time       `json:"createdAt"`
	TimeFrame        *TimeFrame      `json:"timeFrame,omitempty"`
	PendingQuizzes   PendingQueue    `json:"pendingQuizzes"`
	CompletedQuizzes []CompletedQuiz `json:"completedQuizzes,omitempty"`
}

// HasCompleted reports whether the user has ever completed the quiz.
func (u *User) HasCompleted(quizID string) bool {
	for _, c := range u.CompletedQuizzes {
		if c.QuizID == quizID {
			return true
		}
	}
	return false
}

// FirstCompletedAt returns the timestamp of the user's earliest completion.
func (u *User) FirstCompletedAt() (time.Time, bool) {
	var first time.Time
	found := false
	for _, c := range u.CompletedQuizzes {
		if !found || c.CompletedAt.Before(first) {
			first = c.CompletedAt
			found = true
		}
	}
	return first, found
}

// LastCompletedAt returns the timestamp of the user's most recent completion.
func (u *User) LastCompletedAt() (time.Time, bool) {
	var last time.Time
	found := false
	for _, c := range u.CompletedQuizzes {
		if !found || c.CompletedAt.After(last) {
			last = c.CompletedAt
			found = true
		}
	}
	return last, found
}

// Answer is a single submitted answer. Either OptionID or TextAnswer is set.
type Answer struct {
	QuestionID string `json:"questionId"`
	OptionID   string `json:"optionId,omitempty"`
	TextAnswer string `json:"textAnswer,omitempty"`
}

// SubmissionResult is returned to the client after a successful submission.
type SubmissionResult struct {
	Message           string `json:"message"`
	CompletionMessage string `json:"completionMessage"`
}
