package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitquiz-service/internal/domain"
)

// UserRepository abstracts per-user scheduling state (in-memory, Postgres, etc).
// UpdateUser applies fn as an atomic read-modify-write on a single user's
// record; fn reports whether it changed the user so unchanged reads skip the
// write. Two concurrent updates for the same user must serialize: the second
// fn runs against the first one's result.
type UserRepository interface {
	GetUser(ctx context.Context, userID string) (domain.User, error)
	UpdateUser(ctx context.Context, userID string, fn func(u *domain.User) (bool, error)) (domain.User, error)
}

// QuizRepository loads quiz documents (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	// ListIntervalQuizzes returns every quiz with a TIME_INTERVAL trigger;
	// the scheduler pass scans these on each resolution call.
	ListIntervalQuizzes(ctx context.Context) ([]domain.Quiz, error)
}

// AnswerRecorder persists submitted answers. The answer payload is opaque to
// the scheduling core beyond validation against the question set.
type AnswerRecorder interface {
	RecordAnswers(ctx context.Context, userID, quizID string, answers []domain.Answer, submittedAt time.Time) error
}

// QuizService resolves "what quiz should this user see now" and processes
// submissions and assignments.
type QuizService struct {
	users   UserRepository
	quizzes QuizRepository
	answers AnswerRecorder
	hub     *watchHub
	now     func() time.Time
}

func NewQuizService(users UserRepository, quizzes QuizRepository, answers AnswerRecorder) *QuizService {
	return NewQuizServiceWithClock(users, quizzes, answers, time.Now)
}

// NewQuizServiceWithClock allows deterministic timestamps in tests.
func NewQuizServiceWithClock(users UserRepository, quizzes QuizRepository, answers AnswerRecorder, now func() time.Time) *QuizService {
	return &QuizService{
		users:   users,
		quizzes: quizzes,
		answers: answers,
		hub:     newWatchHub(),
		now:     now,
	}
}

// GetActiveQuiz runs the lazy trigger pass for the user, then returns the
// earliest currently-eligible pending quiz. ok=false means no active quiz,
// which is a normal terminal state rather than an error.
func (s *QuizService) GetActiveQuiz(ctx context.Context, userID string) (domain.Quiz, bool, error) {
	auto, err := s.quizzes.ListIntervalQuizzes(ctx)
	if err != nil {
		return domain.Quiz{}, false, err
	}
	now := s.now()

	user, err := s.users.UpdateUser(ctx, userID, func(u *domain.User) (bool, error) {
		return runTriggerPass(u, auto, now), nil
	})
	if err != nil {
		return domain.Quiz{}, false, err
	}
	return s.headQuiz(ctx, &user)
}

// SubmitAnswers validates that quizID is the user's currently resolvable quiz,
// records the answers, dequeues the assignment and marks the quiz completed,
// all as one per-user transition. A concurrent duplicate submit loses the
// race and gets ErrNothingToSubmit.
func (s *QuizService) SubmitAnswers(ctx context.Context, userID, quizID string, answers []domain.Answer) (domain.SubmissionResult, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.SubmissionResult{}, err
	}
	if err := validateAnswers(quiz, answers); err != nil {
		return domain.SubmissionResult{}, err
	}

	auto, err := s.quizzes.ListIntervalQuizzes(ctx)
	if err != nil {
		return domain.SubmissionResult{}, err
	}
	now := s.now()

	// Reject before touching the answer store. The same check runs again
	// inside the atomic update; this one only keeps rejected submissions from
	// leaving answer sheets behind.
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return domain.SubmissionResult{}, err
	}
	runTriggerPass(&user, auto, now)
	if err := s.checkCurrent(ctx, &user, quizID); err != nil {
		return domain.SubmissionResult{}, err
	}

	if err := s.answers.RecordAnswers(ctx, userID, quizID, answers, now); err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("record answers: %w", err)
	}

	_, err = s.users.UpdateUser(ctx, userID, func(u *domain.User) (bool, error) {
		runTriggerPass(u, auto, now)
		if err := s.checkCurrent(ctx, u, quizID); err != nil {
			return false, err
		}
		u.PendingQuizzes.Remove(quizID)
		u.CompletedQuizzes = append(u.CompletedQuizzes, domain.CompletedQuiz{QuizID: quizID, CompletedAt: now})
		return true, nil
	})
	if err != nil {
		return domain.SubmissionResult{}, err
	}

	s.publish(ctx, userID)

	completion := quiz.CompletionMessage
	if completion == "" {
		completion = domain.DefaultCompletionMessage
	}
	return domain.SubmissionResult{
		Message:           "answers submitted",
		CompletionMessage: completion,
	}, nil
}

// AssignQuiz is the admin-assignment entrypoint. Assigning a quiz the user
// already has pending or completed is a silent no-op.
func (s *QuizService) AssignQuiz(ctx context.Context, userID, quizID, assignedBy string) error {
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return err
	}
	now := s.now()

	_, err := s.users.UpdateUser(ctx, userID, func(u *domain.User) (bool, error) {
		return u.Assign(domain.PendingAssignment{
			QuizID:     quizID,
			AssignedAt: now,
			AssignedBy: assignedBy,
		}), nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, userID)
	return nil
}

// WatchActiveQuiz returns a channel receiving active-quiz updates for the
// user, starting with the current resolution. The caller must invoke the
// returned cancel function to avoid leaks.
func (s *QuizService) WatchActiveQuiz(ctx context.Context, userID string) (<-chan ActiveQuizUpdate, func(), error) {
	quiz, ok, err := s.GetActiveQuiz(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.hub.subscribe(userID)
	ch <- updateFor(userID, quiz, ok)
	return ch, cancel, nil
}

// publish re-resolves the user's active quiz and fans it out to watchers.
// Resolution errors are swallowed here: watch updates are best-effort and the
// mutation that prompted them has already succeeded.
func (s *QuizService) publish(ctx context.Context, userID string) {
	if !s.hub.hasWatchers(userID) {
		return
	}
	quiz, ok, err := s.GetActiveQuiz(ctx, userID)
	if err != nil {
		return
	}
	s.hub.broadcast(userID, updateFor(userID, quiz, ok))
}

// runTriggerPass enqueues every interval quiz that is due, eligible, and not
// already pending or completed. Reports whether the queue changed.
func runTriggerPass(u *domain.User, auto []domain.Quiz, now time.Time) bool {
	changed := false
	for _, q := range auto {
		if u.PendingQuizzes.Contains(q.ID) || u.HasCompleted(q.ID) {
			continue
		}
		if !domain.TriggerDue(q, u, now) || !domain.Eligible(q, u) {
			continue
		}
		if u.PendingQuizzes.Enqueue(domain.PendingAssignment{
			QuizID:     q.ID,
			AssignedAt: now,
			AssignedBy: domain.SystemActor,
		}) {
			changed = true
		}
	}
	return changed
}

// checkCurrent verifies that quizID is the quiz the user would be shown right
// now: pending, and the earliest eligible assignment in the queue.
func (s *QuizService) checkCurrent(ctx context.Context, u *domain.User, quizID string) error {
	if !u.PendingQuizzes.Contains(quizID) {
		return domain.ErrNothingToSubmit
	}
	head, ok, err := s.headQuiz(ctx, u)
	if err != nil {
		return err
	}
	if !ok || head.ID != quizID {
		return fmt.Errorf("%w: quiz %q is not the user's current quiz", domain.ErrInvalidSubmission, quizID)
	}
	return nil
}

// headQuiz resolves the user's current quiz: the earliest pending assignment
// whose quiz is still eligible under the user's present time-frame state.
// Assignments whose quiz document no longer exists are skipped.
func (s *QuizService) headQuiz(ctx context.Context, u *domain.User) (domain.Quiz, bool, error) {
	docs := make(map[string]domain.Quiz, len(u.PendingQuizzes))
	for _, a := range u.PendingQuizzes {
		quiz, err := s.quizzes.GetQuiz(ctx, a.QuizID)
		if errors.Is(err, domain.ErrQuizNotFound) {
			continue
		}
		if err != nil {
			return domain.Quiz{}, false, err
		}
		docs[a.QuizID] = quiz
	}

	head, ok := u.PendingQuizzes.Head(func(quizID string) bool {
		quiz, loaded := docs[quizID]
		return loaded && domain.Eligible(quiz, u)
	})
	if !ok {
		return domain.Quiz{}, false, nil
	}
	return docs[head.QuizID], true, nil
}

// validateAnswers checks the submission against the quiz's question set:
// every question answered exactly once, option answers referencing real
// options, free-text questions carrying a non-empty text answer.
func validateAnswers(quiz domain.Quiz, answers []domain.Answer) error {
	byQuestion := make(map[string]domain.Answer, len(answers))
	for _, a := range answers {
		if _, dup := byQuestion[a.QuestionID]; dup {
			return fmt.Errorf("%w: question %q answered more than once", domain.ErrInvalidSubmission, a.QuestionID)
		}
		byQuestion[a.QuestionID] = a
	}

	questions := make(map[string]domain.Question, len(quiz.Questions))
	for _, question := range quiz.Questions {
		questions[question.ID] = question
	}
	for id := range byQuestion {
		if _, ok := questions[id]; !ok {
			return fmt.Errorf("%w: unknown question %q", domain.ErrInvalidSubmission, id)
		}
	}

	for _, question := range quiz.Questions {
		answer, ok := byQuestion[question.ID]
		if !ok {
			return fmt.Errorf("%w: question %q not answered", domain.ErrInvalidSubmission, question.ID)
		}
		if len(question.Options) == 0 {
			if answer.TextAnswer == "" {
				return fmt.Errorf("%w: question %q requires a text answer", domain.ErrInvalidSubmission, question.ID)
			}
			continue
		}
		if !hasOption(question, answer.OptionID) {
			return fmt.Errorf("%w: question %q has no option %q", domain.ErrInvalidSubmission, question.ID, answer.OptionID)
		}
	}
	return nil
}

func hasOption(question domain.Question, optionID string) bool {
	for _, opt := range question.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}
