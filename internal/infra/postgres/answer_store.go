package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fitquiz-service/internal/domain"
	"github.com/uptrace/bun"
)

// AnswerRow is the persisted answer sheet for one (user, quiz) pair.
type AnswerRow struct {
	bun.BaseModel `bun:"table:quiz_answers"`

	UserID      string    `bun:"user_id,pk"`
	QuizID      string    `bun:"quiz_id,pk"`
	Answers     []byte    `bun:"answers,type:jsonb"`
	SubmittedAt time.Time `bun:"submitted_at"`
}

// AnswerStore writes answer sheets through bun. The upsert keyed on
// (user_id, quiz_id) makes retried submissions overwrite rather than
// duplicate, keeping the submit path idempotent-safe.
type AnswerStore struct {
	db *bun.DB
}

func NewAnswerStore(db *bun.DB) *AnswerStore {
	return &AnswerStore{db: db}
}

func (s *AnswerStore) RecordAnswers(ctx context.Context, userID, quizID string, answers []domain.Answer, submittedAt time.Time) error {
	raw, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	row := &AnswerRow{
		UserID:      userID,
		QuizID:      quizID,
		Answers:     raw,
		SubmittedAt: submittedAt,
	}
	_, err = s.db.NewInsert().
		Model(row).
		On("CONFLICT (user_id, quiz_id) DO UPDATE").
		Set("answers = EXCLUDED.answers").
		Set("submitted_at = EXCLUDED.submitted_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert answers: %w", err)
	}
	return nil
}
