package burnout

import (
	"log"
	"strings"
)

// Route is the guard's decision for the rest of the turn.
type Route string

const (
	// RouteContinue: no failure observed, proceed normally.
	RouteContinue Route = "continue"
	// RouteRetry: execution failed but the streak is short; the composer
	// keeps its standard tone and prompts for another attempt.
	RouteRetry Route = "retry"
	// RouteIntervene: the streak crossed the threshold; the composer must
	// switch to a supportive, non-technical tone.
	RouteIntervene Route = "intervene"
)

// DefaultThreshold is the consecutive-failure count at which the next failure
// triggers an intervention (0→1→2→fire).
const DefaultThreshold = 2

// InterventionDirective is injected for the composer when the guard fires.
const InterventionDirective = "SYSTEM OVERRIDE: The candidate is failing repeatedly and likely frustrated. " +
	"STOP asking technical questions. " +
	"Instead: 1. Acknowledge the difficulty. 2. Suggest a 5-minute break. " +
	"3. Offer to switch to a simpler topic or show the solution. " +
	"Be empathetic, not judgmental."

// Guard watches for repeated execution failures and pulls the interview out
// of its technical groove before the candidate burns out.
type Guard struct {
	threshold int
	logger    *log.Logger
}

func NewGuard(logger *log.Logger) *Guard {
	return &Guard{threshold: DefaultThreshold, logger: logger}
}

// Outcome carries the route and the updated failure counter. The counter is
// reset by both success and intervention; only a short failure streak
// increments it.
type Outcome struct {
	Route    Route
	Failures int
}

// Evaluate runs one step of the failure state machine against the latest
// sandbox transcript.
func (g *Guard) Evaluate(codeOutput string, failures int) Outcome {
	if !isFailure(codeOutput) {
		return Outcome{Route: RouteContinue, Failures: 0}
	}

	if failures >= g.threshold {
		g.logger.Printf("[BURNOUT] Intervention fired after %d consecutive failures", failures+1)
		return Outcome{Route: RouteIntervene, Failures: 0}
	}

	g.logger.Printf("[BURNOUT] Failure observed (streak: %d)", failures+1)
	return Outcome{Route: RouteRetry, Failures: failures + 1}
}

// isFailure looks for the failure signatures a sandbox transcript can carry:
// a traceback, an explicit error marker, or a failed test.
func isFailure(output string) bool {
	if output == "" {
		return false
	}
	return strings.Contains(output, "Traceback") ||
		strings.Contains(output, "Error:") ||
		strings.Contains(output, "FAIL")
}
