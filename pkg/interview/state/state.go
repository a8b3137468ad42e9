package state

// Message roles. "directive" messages carry instructions from internal stages to
// the response composer; they are never shown to the candidate directly.
const (
	RoleCandidate   = "candidate"
	RoleInterviewer = "interviewer"
	RoleDirective   = "directive"
)

// Difficulty modes
const (
	DifficultyStandard = "Standard"
	DifficultyHardcore = "Hardcore"
)

// SandboxOutputMarker prefixes every sandbox transcript appended to the
// conversation, so downstream stages can recognize system-produced output.
const SandboxOutputMarker = "SYSTEM_SANDBOX_OUTPUT"

// Trust score bounds and starting value
const (
	TrustScoreMin   = 0
	TrustScoreMax   = 100
	TrustScoreStart = 50
)

// Message is a single conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// State is the per-thread interview session record.
//
// Merge semantics are part of the contract: Messages is append-only (use
// AppendMessage, never reassign), every other field is plain overwrite. The
// pipeline executor is the only writer; stages report results and the executor
// folds them in.
type State struct {
	ThreadID string    `json:"thread_id"`
	Topic    string    `json:"topic"` // immutable after creation
	Messages []Message `json:"messages"`

	Difficulty string `json:"difficulty_level"` // Standard | Hardcore
	TrustScore int    `json:"trust_score"`      // clamped to [0,100]

	ShadowCritique string `json:"shadow_critique"`
	RedTeamFlag    string `json:"red_team_flag"` // "None" or "FLAG: <reason>"
	PivotTriggered bool   `json:"pivot_triggered"`

	CodeOutput          string `json:"code_output"`
	ConsecutiveFailures int    `json:"consecutive_failures"`
	BurnoutRisk         bool   `json:"is_burnout_risk"`

	// Supplied by the frontend forensics collector (keystrokes, paste counts).
	// Read-only to the pipeline.
	BehavioralMetrics map[string]float64 `json:"behavioral_metrics,omitempty"`
}

// New creates a fresh session record with the documented defaults.
func New(threadID, topic string) *State {
	if topic == "" {
		topic = "General Engineering"
	}
	return &State{
		ThreadID:    threadID,
		Topic:       topic,
		Difficulty:  DifficultyStandard,
		TrustScore:  TrustScoreStart,
		RedTeamFlag: "None",
	}
}

// AppendMessage adds a turn to the conversation history.
func (s *State) AppendMessage(role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
}

// ApplyTrustDelta adds delta to the trust score, clamped to [0,100].
func (s *State) ApplyTrustDelta(delta int) {
	s.TrustScore = clamp(s.TrustScore+delta, TrustScoreMin, TrustScoreMax)
}

// LastMessage returns the most recent message, or nil if the history is empty.
func (s *State) LastMessage() *Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return &s.Messages[len(s.Messages)-1]
}

// LastCandidateMessage scans backward for the most recent candidate turn.
// Stages use this instead of LastMessage because directives or sandbox output
// may have been appended after the candidate spoke.
func (s *State) LastCandidateMessage() *Message {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleCandidate {
			return &s.Messages[i]
		}
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
