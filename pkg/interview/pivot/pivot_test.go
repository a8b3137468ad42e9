package pivot

import (
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestAgent() *Agent {
	return NewAgent(log.New(io.Discard, "", 0))
}

func TestEvaluate_TrustThreshold(t *testing.T) {
	agent := newTestAgent()

	assert.True(t, agent.Evaluate(39, "Solid answer.").Triggered)
	assert.False(t, agent.Evaluate(40, "Solid answer.").Triggered, "threshold is strict")
	assert.False(t, agent.Evaluate(100, "Solid answer.").Triggered)
}

func TestEvaluate_CritiqueKeywords(t *testing.T) {
	agent := newTestAgent()

	assert.True(t, agent.Evaluate(80, "Too Vague, no specifics.").Triggered)
	assert.True(t, agent.Evaluate(80, "Pure BUZZWORD bingo.").Triggered)
	assert.False(t, agent.Evaluate(80, "Correct but shallow.").Triggered)
}

func TestEvaluate_DirectiveCarriesCritique(t *testing.T) {
	agent := newTestAgent()

	d := agent.Evaluate(30, "Answer was vague.")
	assert.True(t, d.Triggered)
	assert.Contains(t, d.Directive, "[SYSTEM INTERVENTION]")
	assert.Contains(t, d.Directive, "Answer was vague.")
	assert.Contains(t, d.Directive, "Hardcore Drill")
	assert.Contains(t, d.Directive, "BROKEN code snippet")
}

func TestEvaluate_NoTriggerReturnsEmptyDecision(t *testing.T) {
	agent := newTestAgent()

	d := agent.Evaluate(75, "Deep, insightful answer.")
	assert.False(t, d.Triggered)
	assert.Empty(t, d.Directive)
}
