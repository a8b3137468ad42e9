package session

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ai-interview-be/internal/repository/memory"
	"ai-interview-be/pkg/interview/state"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "interview:session:"
	sessionTTL = 24 * time.Hour
)

// Manager persists interview state per thread id. Redis is the primary store;
// when it is unreachable the manager degrades to the in-process repository so
// a turn never fails on storage. Degraded sessions simply lose cross-restart
// durability.
type Manager struct {
	rdb      *redis.Client
	fallback *memory.SessionRepository
	logger   *log.Logger
}

// NewManager creates a session manager. rdb may be nil to run purely
// in-memory (tests, local development without redis).
func NewManager(rdb *redis.Client, fallback *memory.SessionRepository, logger *log.Logger) *Manager {
	return &Manager{rdb: rdb, fallback: fallback, logger: logger}
}

// Load returns the session for threadID, or a fresh default if none exists.
func (m *Manager) Load(ctx context.Context, threadID, topic string) *state.State {
	if m.rdb != nil {
		raw, err := m.rdb.Get(ctx, keyPrefix+threadID).Bytes()
		switch {
		case err == nil:
			var s state.State
			if err := json.Unmarshal(raw, &s); err == nil {
				return &s
			}
			m.logger.Printf("[SESSION] Corrupt record for %s, starting fresh: %v", threadID, err)
		case err == redis.Nil:
			// no record yet, fall through to the fallback check
		default:
			m.logger.Printf("[SESSION] Redis unavailable, using in-memory state: %v", err)
		}
	}

	if s, found := m.fallback.Get(threadID); found {
		return s
	}
	return state.New(threadID, topic)
}

// Save persists the session. Write-through to the fallback keeps the degraded
// path warm in case redis drops mid-session.
func (m *Manager) Save(ctx context.Context, s *state.State) {
	m.fallback.Save(s)

	if m.rdb == nil {
		return
	}
	raw, err := json.Marshal(s)
	if err != nil {
		m.logger.Printf("[SESSION] Marshal failed for %s: %v", s.ThreadID, err)
		return
	}
	if err := m.rdb.Set(ctx, keyPrefix+s.ThreadID, raw, sessionTTL).Err(); err != nil {
		m.logger.Printf("[SESSION] Redis save failed for %s (in-memory copy kept): %v", s.ThreadID, err)
	}
}

// Delete removes the session from both stores.
func (m *Manager) Delete(ctx context.Context, threadID string) {
	m.fallback.Delete(threadID)
	if m.rdb != nil {
		if err := m.rdb.Del(ctx, keyPrefix+threadID).Err(); err != nil {
			m.logger.Printf("[SESSION] Redis delete failed for %s: %v", threadID, err)
		}
	}
}
