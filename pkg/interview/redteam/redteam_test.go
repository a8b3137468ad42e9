package redteam

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

type fakeProvider struct {
	reply       string
	err         error
	lastHistory []llm.Message
}

func (f *fakeProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.lastHistory = history
	return f.reply, f.err
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.reply, f.err
}

func newTestReviewer(p llm.LLMProvider) *Reviewer {
	return NewReviewer(p, log.New(io.Discard, "", 0))
}

func codeTurnState() *state.State {
	s := state.New("t", "Python")
	s.AppendMessage(state.RoleCandidate, "Here:\n```python\nimport pandas as pd\ndef solution(n):\n    return pd.Series([n]).sum()\n```")
	s.AppendMessage(state.RoleDirective, state.SandboxOutputMarker+":\nCode (python) Execution Result:\n0")
	return s
}

func TestInspect_FlagsOverEngineering(t *testing.T) {
	provider := &fakeProvider{reply: "FLAG: pandas used to sum a single integer."}
	r := newTestReviewer(provider)

	v := r.Inspect(context.Background(), codeTurnState())
	assert.False(t, v.Skipped)
	assert.True(t, v.Flagged)
	assert.Contains(t, v.Flag, "FLAG:")

	// The oracle sees both the code and the sandbox transcript
	if assert.Len(t, provider.lastHistory, 2) {
		assert.Equal(t, "system", provider.lastHistory[0].Role)
		assert.Contains(t, provider.lastHistory[1].Content, "import pandas")
		assert.Contains(t, provider.lastHistory[1].Content, state.SandboxOutputMarker)
	}
}

func TestInspect_PassIsNotFlagged(t *testing.T) {
	r := newTestReviewer(&fakeProvider{reply: "PASS"})

	v := r.Inspect(context.Background(), codeTurnState())
	assert.False(t, v.Skipped)
	assert.False(t, v.Flagged)
	assert.Equal(t, "None", v.Flag)
}

func TestInspect_SkipsWithoutSandboxOutput(t *testing.T) {
	r := newTestReviewer(&fakeProvider{reply: "FLAG: whatever"})

	s := state.New("t", "")
	s.AppendMessage(state.RoleCandidate, "```python\nx=1\n```")

	v := r.Inspect(context.Background(), s)
	assert.True(t, v.Skipped)
}

func TestInspect_SkipsWithoutCodeBlock(t *testing.T) {
	r := newTestReviewer(&fakeProvider{reply: "FLAG: whatever"})

	s := state.New("t", "")
	s.AppendMessage(state.RoleCandidate, "I would use a hash map.")
	s.AppendMessage(state.RoleDirective, state.SandboxOutputMarker+":\nstale output")

	v := r.Inspect(context.Background(), s)
	assert.True(t, v.Skipped)
}

func TestInspect_OracleErrorPassesByDefault(t *testing.T) {
	r := newTestReviewer(&fakeProvider{err: errors.New("timeout")})

	v := r.Inspect(context.Background(), codeTurnState())
	assert.False(t, v.Skipped)
	assert.False(t, v.Flagged)
	assert.Equal(t, "None", v.Flag)
}
