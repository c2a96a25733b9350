package memory

import (
	"context"
	"testing"
	"time"

	"fitquiz-service/internal/domain"
)

func TestQuizRepositoryCaches(t *testing.T) {
	source := &countingSource{
		QuizSource: NewStaticQuizSource(map[string]domain.Quiz{
			"quiz-1": sampleQuiz(),
		}),
	}
	repo := NewQuizRepository(source, time.Minute)

	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if source.loads != 1 {
		t.Fatalf("expected source loaded once, got %d", source.loads)
	}

	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if source.loads != 1 {
		t.Fatalf("expected cache hit, source loads %d", source.loads)
	}
}

func TestQuizRepositoryCachesIntervalListing(t *testing.T) {
	source := &countingSource{
		QuizSource: NewStaticQuizSource(map[string]domain.Quiz{
			"weekly": intervalQuiz(),
		}),
	}
	repo := NewQuizRepository(source, time.Minute)

	quizzes, err := repo.ListIntervalQuizzes(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(quizzes) != 1 || quizzes[0].ID != "weekly" {
		t.Fatalf("listing = %+v, want weekly", quizzes)
	}

	if _, err := repo.ListIntervalQuizzes(context.Background()); err != nil {
		t.Fatalf("list 2: %v", err)
	}
	if source.lists != 1 {
		t.Fatalf("expected listing cached, source lists %d", source.lists)
	}
}

func TestQuizRepositoryInvalidate(t *testing.T) {
	static := NewStaticQuizSource(map[string]domain.Quiz{"quiz-1": sampleQuiz()})
	source := &countingSource{QuizSource: static}
	repo := NewQuizRepository(source, time.Minute)

	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}

	updated := sampleQuiz()
	updated.Name = "renamed"
	static.Put(updated)
	repo.Invalidate("quiz-1")

	quiz, err := repo.GetQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get quiz after invalidate: %v", err)
	}
	if quiz.Name != "renamed" {
		t.Fatalf("quiz name = %q, want renamed", quiz.Name)
	}
	if source.loads != 2 {
		t.Fatalf("expected reload after invalidate, source loads %d", source.loads)
	}
}

type countingSource struct {
	QuizSource
	loads int
	lists int
}

func (s *countingSource) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	s.loads++
	return s.QuizSource.LoadQuiz(ctx, quizID)
}

func (s *countingSource) LoadIntervalQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	s.lists++
	return s.QuizSource.LoadIntervalQuizzes(ctx)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:       "quiz-1",
		Name:     "Check-in",
		IsActive: true,
		Questions: []domain.Question{
			{ID: "q1", Prompt: "How was your week?", Options: []domain.Option{
				{ID: "o1", Text: "Good"},
				{ID: "o2", Text: "Rough"},
			}},
		},
		TriggerType:       domain.TriggerAdminAssignment,
		TimeFrameHandling: domain.AllUsers,
	}
}

func intervalQuiz() domain.Quiz {
	quiz := sampleQuiz()
	quiz.ID = "weekly"
	quiz.TriggerType = domain.TriggerTimeInterval
	quiz.TriggerStartFrom = domain.StartFromLastQuiz
	quiz.TriggerDelayAmount = 7
	quiz.TriggerDelayUnit = domain.DelayDays
	return quiz
}
