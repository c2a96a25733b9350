package memory

import (
	"context"
	"sync"
	"time"

	"fitquiz-service/internal/domain"
)

// AnswerRecord is one submitted answer sheet.
type AnswerRecord struct {
	UserID      string
	QuizID      string
	Answers     []domain.Answer
	SubmittedAt time.Time
}

// AnswerStore keeps answer sheets in memory, last write wins per (user, quiz).
// Matches the upsert semantics of the Postgres store so retries stay harmless.
type AnswerStore struct {
	mu      sync.Mutex
	records map[answerKey]AnswerRecord
}

type answerKey struct {
	userID string
	quizID string
}

func NewAnswerStore() *AnswerStore {
	return &AnswerStore{records: make(map[answerKey]AnswerRecord)}
}

func (s *AnswerStore) RecordAnswers(_ context.Context, userID, quizID string, answers []domain.Answer, submittedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[answerKey{userID: userID, quizID: quizID}] = AnswerRecord{
		UserID:      userID,
		QuizID:      quizID,
		Answers:     append([]domain.Answer(nil), answers...),
		SubmittedAt: submittedAt,
	}
	return nil
}

// Get returns the recorded sheet for (userID, quizID), if any.
func (s *AnswerStore) Get(userID, quizID string) (AnswerRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[answerKey{userID: userID, quizID: quizID}]
	return record, ok
}
