package app

import (
	"sync"

	"fitquiz-service/internal/domain"
)

// ActiveQuizUpdate tells a watcher what the user's current quiz is, if any.
type ActiveQuizUpdate struct {
	UserID  string       `json:"userId"`
	HasQuiz bool         `json:"hasQuiz"`
	Quiz    *domain.Quiz `json:"quiz,omitempty"`
}

func updateFor(userID string, quiz domain.Quiz, ok bool) ActiveQuizUpdate {
	update := ActiveQuizUpdate{UserID: userID, HasQuiz: ok}
	if ok {
		update.Quiz = &quiz
	}
	return update
}

// watchHub fans active-quiz updates out to per-user subscribers.
type watchHub struct {
	mu       sync.RWMutex
	watchers map[string]map[chan ActiveQuizUpdate]struct{}
}

func newWatchHub() *watchHub {
	return &watchHub{watchers: make(map[string]map[chan ActiveQuizUpdate]struct{})}
}

func (h *watchHub) subscribe(userID string) (chan ActiveQuizUpdate, func()) {
	ch := make(chan ActiveQuizUpdate, 8)

	h.mu.Lock()
	if h.watchers[userID] == nil {
		h.watchers[userID] = make(map[chan ActiveQuizUpdate]struct{})
	}
	h.watchers[userID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.watchers[userID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(h.watchers, userID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

func (h *watchHub) hasWatchers(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers[userID]) > 0
}

func (h *watchHub) broadcast(userID string, update ActiveQuizUpdate) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.watchers[userID] {
		select {
		case ch <- update:
		default:
			// Slow watchers drop the stale update rather than block the sender.
			select {
			case <-ch:
			default:
			}
			ch <- update
		}
	}
}
