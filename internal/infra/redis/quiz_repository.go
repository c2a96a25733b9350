package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"fitquiz-service/internal/domain"
	"fitquiz-service/internal/infra/memory"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuizRepository caches full quiz documents in Redis and falls back to a
// source on cache miss. Documents are stored as:
//
//	SET quiz:{quizID}:doc  {json}        EX ttl
//	SET quizzes:interval   {json array}  EX ttl
//
// The interval listing is cached as one value because the trigger pass reads
// it on every resolution call.
type QuizRepository struct {
	client *redis.Client
	source memory.QuizSource
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuizRepository(client *redis.Client, source memory.QuizSource, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	key := docKey(quizID)

	if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var quiz domain.Quiz
		if err := json.Unmarshal(raw, &quiz); err == nil {
			return quiz, nil
		}
		// Corrupt cache entries fall through to a reload.
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
			var quiz domain.Quiz
			if err := json.Unmarshal(raw, &quiz); err == nil {
				return quiz, nil
			}
		}

		quiz, err := r.source.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		r.fill(ctx, key, quiz)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (r *QuizRepository) ListIntervalQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	if raw, err := r.client.Get(ctx, intervalKey).Bytes(); err == nil {
		var quizzes []domain.Quiz
		if err := json.Unmarshal(raw, &quizzes); err == nil {
			return quizzes, nil
		}
	}

	result, err, _ := r.sf.Do(intervalKey, func() (interface{}, error) {
		if raw, err := r.client.Get(ctx, intervalKey).Bytes(); err == nil {
			var quizzes []domain.Quiz
			if err := json.Unmarshal(raw, &quizzes); err == nil {
				return quizzes, nil
			}
		}

		quizzes, err := r.source.LoadIntervalQuizzes(ctx)
		if err != nil {
			return nil, err
		}
		r.fill(ctx, intervalKey, quizzes)
		return quizzes, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Quiz), nil
}

// Invalidate drops the cached document and interval listing so admin edits
// take effect before the TTL runs out.
func (r *QuizRepository) Invalidate(ctx context.Context, quizID string) {
	_ = r.client.Del(ctx, docKey(quizID), intervalKey).Err()
}

// fill writes a cache entry, best-effort: a Redis hiccup must not fail the read path.
func (r *QuizRepository) fill(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
}

func docKey(quizID string) string {
	return "quiz:" + quizID + ":doc"
}

const intervalKey = "quizzes:interval"

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
