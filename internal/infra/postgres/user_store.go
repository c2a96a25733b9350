package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fitquiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// updateAttempts bounds the compare-and-swap retry loop. Contention is per
// user (two tabs, a double-submit), so a handful of attempts is plenty.
const updateAttempts = 5

// ErrUpdateConflict is returned when the optimistic update loses the race
// more times than the retry budget allows.
var ErrUpdateConflict = errors.New("user update conflict")

// UserStore keeps each user's scheduling state as a single JSONB document
// with a version column. UpdateUser re-reads, applies fn, and writes back
// guarded by the version, giving the atomic per-user read-modify-write the
// scheduling core requires without cross-user locking.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) GetUser(ctx context.Context, userID string) (domain.User, error) {
	user, _, err := s.load(ctx, userID)
	return user, err
}

func (s *UserStore) UpdateUser(ctx context.Context, userID string, fn func(u *domain.User) (bool, error)) (domain.User, error) {
	for attempt := 0; attempt < updateAttempts; attempt++ {
		user, version, err := s.load(ctx, userID)
		if err != nil {
			return domain.User{}, err
		}

		changed, err := fn(&user)
		if err != nil {
			return domain.User{}, err
		}
		if !changed {
			return user, nil
		}

		raw, err := json.Marshal(user)
		if err != nil {
			return domain.User{}, fmt.Errorf("marshal user: %w", err)
		}
		tag, err := s.pool.Exec(ctx,
			`UPDATE users SET data=$2, version=version+1 WHERE id=$1 AND version=$3`,
			userID, raw, version)
		if err != nil {
			return domain.User{}, fmt.Errorf("update user: %w", err)
		}
		if tag.RowsAffected() == 1 {
			return user, nil
		}
		// Lost the race; reload and run fn against the winner's state.
	}
	return domain.User{}, fmt.Errorf("%w: user %s", ErrUpdateConflict, userID)
}

// SeedUser inserts or replaces a user document. Used by migrations seeding
// and integration tests; production user creation lives in the CRM.
func (s *UserStore) SeedUser(ctx context.Context, user domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO users (id, data, version) VALUES ($1, $2, 0)
		 ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data, version=users.version+1`,
		user.ID, raw)
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	return nil
}

func (s *UserStore) load(ctx context.Context, userID string) (domain.User, int64, error) {
	var raw []byte
	var version int64
	err := s.pool.QueryRow(ctx, `SELECT data, version FROM users WHERE id=$1`, userID).Scan(&raw, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, 0, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, 0, fmt.Errorf("load user: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return domain.User{}, 0, fmt.Errorf("unmarshal user: %w", err)
	}
	user.ID = userID
	return user, version, nil
}
