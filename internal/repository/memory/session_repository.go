package memory

import (
	"ai-interview-be/pkg/interview/state"
	"time"

	"github.com/patrickmn/go-cache"
)

// SessionRepository is the ephemeral in-process state store. It backs the
// pipeline when redis is unreachable, at the cost of losing sessions on
// restart.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Interview sessions idle out after 2 hours; expired entries are purged
	// every 10 minutes
	c := cache.New(2*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *state.State) {
	r.cache.Set(session.ThreadID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(threadID string) (*state.State, bool) {
	if x, found := r.cache.Get(threadID); found {
		return x.(*state.State), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(threadID string) {
	r.cache.Delete(threadID)
}
