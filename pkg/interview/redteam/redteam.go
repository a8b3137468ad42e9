package redteam

import (
	"context"
	"log"
	"strings"

	"ai-interview-be/pkg/interview/state"
	"ai-interview-be/pkg/llm"
)

// TrustPenalty is applied when code is flagged as over-engineered.
const TrustPenalty = 15

// Verdict is the code review outcome. Skipped means the turn had no executed
// code for the reviewer to look at.
type Verdict struct {
	Flagged bool
	Flag    string // "None" or "FLAG: <reason>"
	Skipped bool
}

// Reviewer is the adversarial code reviewer. It only activates when the turn
// produced both a candidate code block and a sandbox transcript, and it hunts
// for one thing: over-engineering in code that otherwise passes.
type Reviewer struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewReviewer(llmProvider llm.LLMProvider, logger *log.Logger) *Reviewer {
	return &Reviewer{llmProvider: llmProvider, logger: logger}
}

// Inspect scans the history backward for the most recent sandbox output and
// the candidate code that produced it, then asks the oracle for a PASS/FLAG
// classification.
func (r *Reviewer) Inspect(ctx context.Context, s *state.State) Verdict {
	var sandboxOutput, codeSnippet string

	for i := len(s.Messages) - 1; i >= 0; i-- {
		msg := s.Messages[i]
		if sandboxOutput == "" && strings.Contains(msg.Content, state.SandboxOutputMarker) {
			sandboxOutput = msg.Content
		}
		if msg.Role == state.RoleCandidate && strings.Contains(msg.Content, "```") {
			codeSnippet = msg.Content
			break
		}
	}

	if sandboxOutput == "" || codeSnippet == "" {
		return Verdict{Skipped: true}
	}

	history := []llm.Message{
		{Role: "system", Content: reviewInstruction},
		{Role: "system", Content: "--- CODE ---\n" + codeSnippet + "\n\n--- OUTPUT ---\n" + sandboxOutput},
	}

	reply, err := r.llmProvider.Chat(ctx, history, llm.WithTemperature(0.0))
	if err != nil {
		// A silent reviewer beats a broken turn
		r.logger.Printf("[REDTEAM] Oracle unreachable, passing by default: %v", err)
		return Verdict{Flag: "None"}
	}

	content := strings.TrimSpace(reply)
	if strings.Contains(content, "FLAG:") {
		r.logger.Printf("[REDTEAM] Over-engineering flagged: %s", content)
		return Verdict{Flagged: true, Flag: content}
	}

	return Verdict{Flag: "None"}
}

const reviewInstruction = "You are a Senior Staff Engineer conducting a code review. " +
	"Analyze the Candidate's Code and the Sandbox Output.\n" +
	"GOAL: Detect 'Over-Engineering' or 'AI-Generated Bloat'.\n\n" +
	"CRITERIA:\n" +
	"1. Did they use a heavy library (pandas/numpy) for a simple list task?\n" +
	"2. Did they add 5 layers of abstraction (Classes, Factories) for a simple script?\n" +
	"3. Is the code confusingly verbose?\n\n" +
	"OUTPUT strictly:\n" +
	"'PASS' -> If code is pragmatic.\n" +
	"'FLAG: <Reason>' -> If over-engineered."
