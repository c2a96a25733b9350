package memory

import (
	"context"
	"sync"

	"fitquiz-service/internal/domain"
)

// UserStore is an in-memory implementation of app.UserRepository. A per-user
// mutex gives UpdateUser the atomic read-modify-write the scheduling core
// requires: concurrent updates for one user serialize, users never contend
// with each other.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*userRecord
}

type userRecord struct {
	mu   sync.Mutex
	user domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*userRecord)}
}

// Seed inserts or replaces a user record. Used by tests and the demo server.
func (s *UserStore) Seed(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = &userRecord{user: cloneUser(user)}
}

func (s *UserStore) GetUser(_ context.Context, userID string) (domain.User, error) {
	record, ok := s.record(userID)
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	record.mu.Lock()
	defer record.mu.Unlock()
	return cloneUser(record.user), nil
}

func (s *UserStore) UpdateUser(_ context.Context, userID string, fn func(u *domain.User) (bool, error)) (domain.User, error) {
	record, ok := s.record(userID)
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}

	record.mu.Lock()
	defer record.mu.Unlock()

	working := cloneUser(record.user)
	changed, err := fn(&working)
	if err != nil {
		return domain.User{}, err
	}
	if changed {
		record.user = cloneUser(working)
	}
	return working, nil
}

func (s *UserStore) record(userID string) (*userRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.users[userID]
	return record, ok
}

// cloneUser deep-copies the slices so callers cannot alias stored state.
func cloneUser(u domain.User) domain.User {
	out := u
	if u.TimeFrame != nil {
		tf := *u.TimeFrame
		out.TimeFrame = &tf
	}
	out.PendingQuizzes = append(domain.PendingQueue(nil), u.PendingQuizzes...)
	out.CompletedQuizzes = append([]domain.CompletedQuiz(nil), u.CompletedQuizzes...)
	return out
}
