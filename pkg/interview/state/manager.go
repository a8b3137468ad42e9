package state

import (
	"log"
)

// Manager handles session state transitions
type Manager struct {
	logger *log.Logger
}

// NewManager creates a new state manager
func NewManager(logger *log.Logger) *Manager {
	return &Manager{logger: logger}
}

// TransitionToHardcore forces the session into Hardcore mode. The transition
// is one-way: only an explicit session reset returns it to Standard.
func (m *Manager) TransitionToHardcore(s *State) {
	if s.Difficulty == DifficultyHardcore {
		return
	}
	s.Difficulty = DifficultyHardcore
	m.logger.Printf("[STATE] Transitioned to HARDCORE (trust: %d)", s.TrustScore)
}

// Restart wipes the session back to its initial values, keeping the thread id
// and topic. This is the only path that lowers difficulty.
func (m *Manager) Restart(s *State) {
	fresh := New(s.ThreadID, s.Topic)
	*s = *fresh
	m.logger.Printf("[STATE] Session restarted: %s", s.ThreadID)
}
