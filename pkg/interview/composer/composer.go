package composer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-interview-be/pkg/interview/state"
	"ai-interview-be/pkg/llm"
)

// FallbackReply is returned when the oracle itself cannot be reached. It is
// the only caller-visible failure the pipeline is allowed to produce.
const FallbackReply = "I'm having trouble formulating my next question. Give me a moment and we'll pick this back up."

// Composer is the lead interviewer. It deterministically assembles a persona
// prompt from every signal the earlier stages accumulated, then makes the
// single oracle call whose reply goes back to the candidate.
type Composer struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewComposer(llmProvider llm.LLMProvider, logger *log.Logger) *Composer {
	return &Composer{llmProvider: llmProvider, logger: logger}
}

// Respond builds the system instruction and invokes the oracle over the
// candidate/interviewer history. Directives from earlier stages this turn are
// folded into the instruction; prior system-role content is stripped from the
// history so instructions never accumulate across turns.
func (c *Composer) Respond(ctx context.Context, s *state.State) string {
	instruction := c.buildInstruction(s)

	conversation := make([]llm.Message, 0, len(s.Messages)+1)
	conversation = append(conversation, llm.Message{Role: "system", Content: instruction})
	for _, msg := range s.Messages {
		switch msg.Role {
		case state.RoleCandidate:
			conversation = append(conversation, llm.Message{Role: "user", Content: msg.Content})
		case state.RoleInterviewer:
			conversation = append(conversation, llm.Message{Role: "assistant", Content: msg.Content})
		case state.RoleDirective:
			// Sandbox transcripts stay visible to the oracle as user-side
			// context; pure stage directives were already folded into the
			// instruction above.
			if strings.Contains(msg.Content, state.SandboxOutputMarker) {
				conversation = append(conversation, llm.Message{Role: "user", Content: msg.Content})
			}
		}
	}

	reply, err := c.llmProvider.Chat(ctx, conversation, llm.WithTemperature(0.6))
	if err != nil {
		c.logger.Printf("[COMPOSER] Oracle call failed: %v", err)
		return FallbackReply
	}
	return strings.TrimSpace(reply)
}

func (c *Composer) buildInstruction(s *state.State) string {
	var persona strings.Builder

	persona.WriteString(fmt.Sprintf("You are a Lead Technical Interviewer. Topic: %s.\n", s.Topic))
	persona.WriteString(fmt.Sprintf("Current Trust Score: %d/100.\n", s.TrustScore))
	persona.WriteString(fmt.Sprintf("Difficulty Mode: %s.\n", strings.ToUpper(s.Difficulty)))

	if s.Difficulty == state.DifficultyHardcore {
		persona.WriteString("MODE: RUTHLESS. The candidate is failing. Do not be polite. Drill into their specific weaknesses.\n")
	} else {
		persona.WriteString("MODE: Professional but skeptical.\n")
	}

	// Attack vectors, in priority order: a red-team flag trumps everything,
	// a vague-answer critique is the fallback.
	if strings.Contains(s.RedTeamFlag, "FLAG:") {
		persona.WriteString(fmt.Sprintf(
			"\n[CRITICAL]: The Red Team flagged their code: '%s'. "+
				"Ignore everything else. DEMAND they explain why they wrote such bloated code.\n",
			s.RedTeamFlag,
		))
	} else if strings.Contains(strings.ToLower(s.ShadowCritique), "vague") {
		persona.WriteString(
			"\n[FEEDBACK]: The Auditor noted the last answer was vague. " +
				"Ask a specific follow-up question that requires exact syntax or implementation details.\n",
		)
	}

	if last := s.LastMessage(); last != nil && strings.Contains(last.Content, state.SandboxOutputMarker) {
		persona.WriteString("\n[OBSERVATION]: The candidate just ran code. Review the 'SYSTEM_SANDBOX_OUTPUT' above. If it failed, ask them to fix it.\n")
	}

	// Directives injected after the candidate's latest message (pivot drill,
	// burnout intervention) are consumed here, in the turn that produced
	// them.
	for _, d := range currentTurnDirectives(s) {
		persona.WriteString("\n")
		persona.WriteString(d)
		persona.WriteString("\n")
	}

	return persona.String()
}

// currentTurnDirectives returns directive messages appended after the most
// recent candidate turn, excluding sandbox transcripts.
func currentTurnDirectives(s *state.State) []string {
	var directives []string
	for i := len(s.Messages) - 1; i >= 0; i-- {
		msg := s.Messages[i]
		if msg.Role == state.RoleCandidate {
			break
		}
		if msg.Role == state.RoleDirective && !strings.Contains(msg.Content, state.SandboxOutputMarker) {
			directives = append([]string{msg.Content}, directives...)
		}
	}
	return directives
}
