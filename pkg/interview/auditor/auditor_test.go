package auditor

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"ai-interview-be/pkg/interview/state"
	"ai-interview-be/pkg/llm"

	"github.com/stretchr/testify/assert"
)

// fakeProvider returns a canned reply (or error) and records the last prompt.
type fakeProvider struct {
	reply      string
	err        error
	lastPrompt string
}

func (f *fakeProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.reply, f.err
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.lastPrompt = prompt
	return f.reply, f.err
}

func newTestAuditor(p llm.LLMProvider) *Auditor {
	return NewAuditor(p, log.New(io.Discard, "", 0))
}

func TestReview_WellFormedReply(t *testing.T) {
	provider := &fakeProvider{reply: "SCORE_CHANGE: -10 | CRITIQUE: Too vague, buzzwords only."}
	a := newTestAuditor(provider)

	s := state.New("t", "Kubernetes")
	s.AppendMessage(state.RoleCandidate, "We leverage cloud-native synergies.")

	r := a.Review(context.Background(), s)
	assert.False(t, r.Skipped)
	assert.Equal(t, -10, r.Delta)
	assert.Equal(t, "Too vague, buzzwords only.", r.Critique)

	// The prompt must carry the topic and the answer under evaluation
	assert.Contains(t, provider.lastPrompt, "Kubernetes")
	assert.Contains(t, provider.lastPrompt, "We leverage cloud-native synergies.")
	assert.Contains(t, provider.lastPrompt, "SCORE_CHANGE")
}

func TestReview_MalformedReplyDegradesToZero(t *testing.T) {
	cases := []struct {
		name  string
		reply string
	}{
		{"free text", "Honestly the answer seemed fine to me."},
		{"missing separator", "SCORE_CHANGE: -10 CRITIQUE: vague"},
		{"non-numeric score", "SCORE_CHANGE: minus ten | CRITIQUE: vague"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := newTestAuditor(&fakeProvider{reply: tc.reply})
			s := state.New("t", "")
			s.AppendMessage(state.RoleCandidate, "some answer")

			r := a.Review(context.Background(), s)
			assert.False(t, r.Skipped)
			assert.Equal(t, 0, r.Delta)
			assert.NotEmpty(t, r.Critique)
		})
	}
}

func TestReview_EmptyCritiqueGetsPlaceholder(t *testing.T) {
	a := newTestAuditor(&fakeProvider{reply: "SCORE_CHANGE: 2 | CRITIQUE:"})
	s := state.New("t", "")
	s.AppendMessage(state.RoleCandidate, "answer")

	r := a.Review(context.Background(), s)
	assert.Equal(t, 2, r.Delta)
	assert.Equal(t, "No critique.", r.Critique)
}

func TestReview_OracleErrorIsNeutral(t *testing.T) {
	a := newTestAuditor(&fakeProvider{err: errors.New("connection refused")})
	s := state.New("t", "")
	s.AppendMessage(state.RoleCandidate, "answer")

	r := a.Review(context.Background(), s)
	assert.False(t, r.Skipped)
	assert.Equal(t, 0, r.Delta)
	assert.Equal(t, "Auditor Silent (API Error)", r.Critique)
}

func TestReview_SkipsWhenLastMessageIsNotCandidate(t *testing.T) {
	a := newTestAuditor(&fakeProvider{reply: "SCORE_CHANGE: -20 | CRITIQUE: wrong"})

	s := state.New("t", "")
	s.AppendMessage(state.RoleCandidate, "answer")
	s.AppendMessage(state.RoleInterviewer, "next question")

	r := a.Review(context.Background(), s)
	assert.True(t, r.Skipped)
}

func TestReview_SkipsEmptyHistoryAndBlankMessages(t *testing.T) {
	a := newTestAuditor(&fakeProvider{reply: "SCORE_CHANGE: -20 | CRITIQUE: wrong"})

	empty := state.New("t", "")
	assert.True(t, a.Review(context.Background(), empty).Skipped)

	blank := state.New("t", "")
	blank.AppendMessage(state.RoleCandidate, "   ")
	assert.True(t, a.Review(context.Background(), blank).Skipped)
}
