package pivot

import (
	"fmt"
	"log"
	"strings"
)

// Trust score below this forces Hardcore mode regardless of critique content.
const triggerThreshold = 40

// Decision is the escalation verdict for the current turn.
type Decision struct {
	Triggered bool
	// Directive is appended to the conversation as a system directive when
	// the pivot fires, instructing the composer to run a broken-code drill.
	Directive string
}

// Agent decides whether the interview pivots into Hardcore mode. It is a pure
// function of the trust score and the auditor's critique; no oracle call.
type Agent struct {
	logger *log.Logger
}

func NewAgent(logger *log.Logger) *Agent {
	return &Agent{logger: logger}
}

// Evaluate checks the escalation condition: trust below the threshold, or the
// auditor flagging the answer as vague/buzzwordy.
func (a *Agent) Evaluate(trustScore int, critique string) Decision {
	lowered := strings.ToLower(critique)
	triggered := trustScore < triggerThreshold ||
		strings.Contains(lowered, "vague") ||
		strings.Contains(lowered, "buzzword")

	if !triggered {
		return Decision{}
	}

	a.logger.Printf("[PIVOT] Escalating to Hardcore (trust: %d)", trustScore)

	directive := fmt.Sprintf(
		"[SYSTEM INTERVENTION]: The previous answer was flagged as weak ('%s'). "+
			"Switching mode to 'Hardcore Drill'. "+
			"INSTRUCTION TO INTERVIEWER: Ignore pleasantries. "+
			"Present a BROKEN code snippet related to the topic and demand an immediate fix.",
		critique,
	)

	return Decision{Triggered: true, Directive: directive}
}
