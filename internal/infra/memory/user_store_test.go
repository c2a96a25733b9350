package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fitquiz-service/internal/domain"
)

func TestUserStoreUnknownUser(t *testing.T) {
	store := NewUserStore()
	if _, err := store.GetUser(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
	_, err := store.UpdateUser(context.Background(), "ghost", func(u *domain.User) (bool, error) { return false, nil })
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("update err = %v, want ErrUserNotFound", err)
	}
}

func TestUserStoreErrorAbortsUpdate(t *testing.T) {
	store := NewUserStore()
	store.Seed(domain.User{ID: "u1"})

	boom := errors.New("boom")
	_, err := store.UpdateUser(context.Background(), "u1", func(u *domain.User) (bool, error) {
		u.PendingQuizzes.Enqueue(domain.PendingAssignment{QuizID: "q"})
		return true, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	user, err := store.GetUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if len(user.PendingQuizzes) != 0 {
		t.Fatal("failed update must not persist")
	}
}

func TestUserStoreSerializesConcurrentUpdates(t *testing.T) {
	store := NewUserStore()
	store.Seed(domain.User{ID: "u1"})

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, _ = store.UpdateUser(context.Background(), "u1", func(u *domain.User) (bool, error) {
				u.CompletedQuizzes = append(u.CompletedQuizzes, domain.CompletedQuiz{
					QuizID:      "q",
					CompletedAt: time.Now(),
				})
				return true, nil
			})
		}()
	}
	wg.Wait()

	user, err := store.GetUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if len(user.CompletedQuizzes) != workers {
		t.Fatalf("completed count = %d, want %d (lost update)", len(user.CompletedQuizzes), workers)
	}
}

func TestUserStoreReturnsCopies(t *testing.T) {
	store := NewUserStore()
	store.Seed(domain.User{
		ID:             "u1",
		PendingQuizzes: domain.PendingQueue{{QuizID: "a"}},
	})

	user, err := store.GetUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	user.PendingQuizzes[0].QuizID = "mutated"

	fresh, _ := store.GetUser(context.Background(), "u1")
	if fresh.PendingQuizzes[0].QuizID != "a" {
		t.Fatal("caller mutation leaked into the store")
	}
}
