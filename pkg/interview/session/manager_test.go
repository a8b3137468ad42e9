package session

import (
	"context"
	"io"
	"log"
	"testing"

	"ai-interview-be/internal/repository/memory"
	"ai-interview-be/pkg/interview/state"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func newInMemoryManager() *Manager {
	return NewManager(nil, memory.NewSessionRepository(), log.New(io.Discard, "", 0))
}

func TestLoad_FreshSession(t *testing.T) {
	m := newInMemoryManager()

	s := m.Load(context.Background(), "thread-1", "Redis Internals")
	assert.Equal(t, "thread-1", s.ThreadID)
	assert.Equal(t, "Redis Internals", s.Topic)
	assert.Equal(t, state.TrustScoreStart, s.TrustScore)
}

func TestSaveThenLoad_RoundTrip(t *testing.T) {
	m := newInMemoryManager()
	ctx := context.Background()

	s := m.Load(ctx, "thread-2", "SQL")
	s.ApplyTrustDelta(-20)
	s.AppendMessage(state.RoleCandidate, "hello")
	m.Save(ctx, s)

	loaded := m.Load(ctx, "thread-2", "")
	assert.Equal(t, 30, loaded.TrustScore)
	assert.Len(t, loaded.Messages, 1)
	assert.Equal(t, "SQL", loaded.Topic)
}

func TestDelete_RemovesSession(t *testing.T) {
	m := newInMemoryManager()
	ctx := context.Background()

	s := m.Load(ctx, "thread-3", "Go")
	s.ApplyTrustDelta(10)
	m.Save(ctx, s)

	m.Delete(ctx, "thread-3")

	fresh := m.Load(ctx, "thread-3", "Go")
	assert.Equal(t, state.TrustScoreStart, fresh.TrustScore)
	assert.Empty(t, fresh.Messages)
}

func TestLoad_UnreachableRedisDegradesToMemory(t *testing.T) {
	// Nothing listens on this port; every redis call errors out
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	m := NewManager(rdb, memory.NewSessionRepository(), log.New(io.Discard, "", 0))
	ctx := context.Background()

	s := m.Load(ctx, "thread-4", "Networking")
	s.ApplyTrustDelta(5)
	m.Save(ctx, s)

	loaded := m.Load(ctx, "thread-4", "")
	assert.Equal(t, 55, loaded.TrustScore, "the write-through copy must survive redis being down")
}
