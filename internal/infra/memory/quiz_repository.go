package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"fitquiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuizSource fetches quiz documents from a backing store (e.g., Postgres).
type QuizSource interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	LoadIntervalQuizzes(ctx context.Context) ([]domain.Quiz, error)
}

// intervalKey is the singleflight/cache key for the interval quiz listing.
const intervalKey = "!interval-quizzes"

// QuizRepository caches quiz documents with TTL to avoid hitting the backing
// store on every resolution call.
type QuizRepository struct {
	source QuizSource
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	cache     map[string]cachedQuiz
	intervals cachedList
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

type cachedList struct {
	quizzes   []domain.Quiz
	expiresAt time.Time
}

func NewQuizRepository(source QuizSource, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuiz),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[quizID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.quiz, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[quizID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.quiz, nil
		}
		r.mu.RUnlock()

		quiz, err := r.source.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}

		r.mu.Lock()
		r.cache[quizID] = cachedQuiz{quiz: quiz, expiresAt: now.Add(r.ttlWithJitter())}
		r.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (r *QuizRepository) ListIntervalQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	now := r.clock()

	r.mu.RLock()
	if r.intervals.expiresAt.After(now) {
		quizzes := r.intervals.quizzes
		r.mu.RUnlock()
		return quizzes, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(intervalKey, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if r.intervals.expiresAt.After(now) {
			quizzes := r.intervals.quizzes
			r.mu.RUnlock()
			return quizzes, nil
		}
		r.mu.RUnlock()

		quizzes, err := r.source.LoadIntervalQuizzes(ctx)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.intervals = cachedList{quizzes: quizzes, expiresAt: now.Add(r.ttlWithJitter())}
		r.mu.Unlock()
		return quizzes, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Quiz), nil
}

// Invalidate drops the cached document so admin edits take effect before the
// TTL runs out. The interval listing is dropped too since trigger fields may
// have changed.
func (r *QuizRepository) Invalidate(quizID string) {
	r.mu.Lock()
	delete(r.cache, quizID)
	r.intervals = cachedList{}
	r.mu.Unlock()
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticQuizSource is a map-backed source for tests and the no-database demo mode.
type StaticQuizSource struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
}

func NewStaticQuizSource(quizzes map[string]domain.Quiz) *StaticQuizSource {
	if quizzes == nil {
		quizzes = make(map[string]domain.Quiz)
	}
	return &StaticQuizSource{quizzes: quizzes}
}

func (s *StaticQuizSource) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if quiz, ok := s.quizzes[quizID]; ok {
		return quiz, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (s *StaticQuizSource) LoadIntervalQuizzes(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Quiz
	for _, quiz := range s.quizzes {
		if quiz.TriggerType == domain.TriggerTimeInterval {
			out = append(out, quiz)
		}
	}
	return out, nil
}

// Put inserts or replaces a quiz document.
func (s *StaticQuizSource) Put(quiz domain.Quiz) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = quiz
}
