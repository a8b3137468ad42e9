package auditor

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"ai-interview-be/pkg/interview/state"
	"ai-interview-be/pkg/llm"
)

// Review is the auditor's verdict on the candidate's latest answer. Skipped
// means the stage did not fire and the state must not change.
type Review struct {
	Delta    int
	Critique string
	Skipped  bool
}

// Auditor silently scores every candidate answer and produces the critique
// that drives escalation. It never addresses the candidate itself.
type Auditor struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewAuditor(llmProvider llm.LLMProvider, logger *log.Logger) *Auditor {
	return &Auditor{llmProvider: llmProvider, logger: logger}
}

// Review scores the most recent candidate message. Fires only when the latest
// message in the history is a non-empty candidate turn; anything else is a
// no-op.
func (a *Auditor) Review(ctx context.Context, s *state.State) Review {
	last := s.LastMessage()
	if last == nil || last.Role != state.RoleCandidate || strings.TrimSpace(last.Content) == "" {
		return Review{Skipped: true}
	}

	prompt := a.buildPrompt(s.Topic, last.Content)

	// Temperature 0 keeps the scoring as stable as an LLM judge gets
	reply, err := a.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		a.logger.Printf("[AUDITOR] Oracle unreachable, degrading: %v", err)
		return Review{Delta: 0, Critique: "Auditor Silent (API Error)"}
	}

	delta, critique := parseReview(reply)
	a.logger.Printf("[AUDITOR] Score change: %+d (%s)", delta, truncate(critique, 60))
	return Review{Delta: delta, Critique: critique}
}

func (a *Auditor) buildPrompt(topic, answer string) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("You are a silent Technical Auditor evaluating a candidate on %s. ", topic))
	prompt.WriteString(fmt.Sprintf("Analyze their latest answer: '%s'.\n\n", answer))
	prompt.WriteString("SCORING RULES:\n")
	prompt.WriteString("- If the answer is vague/buzzwords -> Score Change: -10\n")
	prompt.WriteString("- If the answer is factually wrong -> Score Change: -20\n")
	prompt.WriteString("- If the answer is correct but shallow -> Score Change: +2\n")
	prompt.WriteString("- If the answer is deep/insightful -> Score Change: +5\n\n")
	prompt.WriteString("Output format: 'SCORE_CHANGE: <int> | CRITIQUE: <short text>'")

	return prompt.String()
}

// parseReview extracts the delta and critique from the oracle reply. The
// oracle usually conforms to the requested shape but is not trusted to:
// malformed output degrades to delta 0 with the raw reply as critique.
func parseReview(reply string) (int, string) {
	content := strings.TrimSpace(reply)

	if !strings.Contains(content, "SCORE_CHANGE:") {
		return 0, content
	}
	parts := strings.SplitN(content, "|", 2)
	if len(parts) != 2 {
		return 0, content
	}

	scorePart := strings.TrimSpace(strings.Replace(parts[0], "SCORE_CHANGE:", "", 1))
	critique := strings.TrimSpace(strings.Replace(parts[1], "CRITIQUE:", "", 1))

	delta, err := strconv.Atoi(scorePart)
	if err != nil {
		return 0, content
	}
	if critique == "" {
		critique = "No critique."
	}
	return delta, critique
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
