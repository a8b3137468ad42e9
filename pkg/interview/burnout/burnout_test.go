package burnout

import (
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestGuard() *Guard {
	return NewGuard(log.New(io.Discard, "", 0))
}

func TestEvaluate_SuccessResetsStreak(t *testing.T) {
	guard := newTestGuard()

	out := guard.Evaluate("Test Run: Input(0) -> 0", 1)
	assert.Equal(t, RouteContinue, out.Route)
	assert.Equal(t, 0, out.Failures)
}

func TestEvaluate_EmptyOutputIsNotFailure(t *testing.T) {
	guard := newTestGuard()

	// A chat-only turn carries no transcript and must not touch the streak
	out := guard.Evaluate("", 1)
	assert.Equal(t, RouteContinue, out.Route)
	assert.Equal(t, 0, out.Failures)
}

func TestEvaluate_FailureStateMachine(t *testing.T) {
	guard := newTestGuard()
	transcript := "Traceback (most recent call last):\n  File \"main.py\", line 2"

	first := guard.Evaluate(transcript, 0)
	assert.Equal(t, RouteRetry, first.Route)
	assert.Equal(t, 1, first.Failures)

	second := guard.Evaluate(transcript, first.Failures)
	assert.Equal(t, RouteRetry, second.Route)
	assert.Equal(t, 2, second.Failures)

	third := guard.Evaluate(transcript, second.Failures)
	assert.Equal(t, RouteIntervene, third.Route)
	assert.Equal(t, 0, third.Failures, "intervention resets the streak")
}

func TestEvaluate_FailureSignatures(t *testing.T) {
	guard := newTestGuard()

	cases := []struct {
		name    string
		output  string
		failure bool
	}{
		{"traceback", "Traceback (most recent call last):", true},
		{"error marker", "Error: You must define a function named 'solution'.", true},
		{"failed test", "FAIL: expected 0, got 1", true},
		{"clean run", "42", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := guard.Evaluate(tc.output, 0)
			if tc.failure {
				assert.Equal(t, RouteRetry, out.Route)
			} else {
				assert.Equal(t, RouteContinue, out.Route)
			}
		})
	}
}
