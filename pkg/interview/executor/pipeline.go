package executor

import (
	"context"
	"log"
	"strings"
	"sync"

	"ai-interview-be/pkg/interview/auditor"
	"ai-interview-be/pkg/interview/burnout"
	"ai-interview-be/pkg/interview/composer"
	"ai-interview-be/pkg/interview/pivot"
	"ai-interview-be/pkg/interview/redteam"
	"ai-interview-be/pkg/interview/sandbox"
	"ai-interview-be/pkg/interview/session"
	"ai-interview-be/pkg/interview/state"
	"ai-interview-be/pkg/llm"
)

// Pipeline orchestrates one interview turn through the fixed stage graph:
//
//	auditor → pivot → (code present? sandbox : skip) → [if code ran] red team
//	→ burnout guard → composer
//
// The topology is fixed at build time, so the branching is plain control
// flow. The pipeline is the only writer of session state: stages hand back
// result values and ExecuteTurn folds them in, appending to the message log
// and overwriting scalar fields.
type Pipeline struct {
	auditor    *auditor.Auditor
	pivotAgent *pivot.Agent
	sandboxCli *sandbox.Client
	reviewer   *redteam.Reviewer
	guard      *burnout.Guard
	composer   *composer.Composer
	sessions   *session.Manager
	states     *state.Manager
	logger     *log.Logger

	// threadLocks serializes turns per thread id. Distinct threads run
	// concurrently; a single thread's turns must not, or trust/failure
	// counters race.
	threadLocks sync.Map
}

// NewPipeline wires the stage graph. Every stage gets the oracle injected so
// tests can swap in a canned provider.
func NewPipeline(
	llmProvider llm.LLMProvider,
	sandboxCli *sandbox.Client,
	sessions *session.Manager,
	logger *log.Logger,
) *Pipeline {
	return &Pipeline{
		auditor:    auditor.NewAuditor(llmProvider, logger),
		pivotAgent: pivot.NewAgent(logger),
		sandboxCli: sandboxCli,
		reviewer:   redteam.NewReviewer(llmProvider, logger),
		guard:      burnout.NewGuard(logger),
		composer:   composer.NewComposer(llmProvider, logger),
		sessions:   sessions,
		states:     state.NewManager(logger),
		logger:     logger,
	}
}

// TurnInput is one inbound candidate turn.
type TurnInput struct {
	ThreadID string
	Message  string
	Topic    string
	// DeclaredDifficulty seeds brand-new sessions only; it never lowers an
	// escalated session.
	DeclaredDifficulty string
	BehavioralMetrics  map[string]float64
}

// TurnResult is what the pipeline hands back to the transport layer.
type TurnResult struct {
	Reply string
	Route burnout.Route
	State *state.State
}

// ExecuteTurn runs the full stage graph exactly once for one candidate turn.
// It never returns an error for stage failures; every stage degrades to a
// neutral value and the turn still yields a reply.
func (p *Pipeline) ExecuteTurn(ctx context.Context, in TurnInput) *TurnResult {
	unlock := p.lockThread(in.ThreadID)
	defer unlock()

	s := p.sessions.Load(ctx, in.ThreadID, in.Topic)

	if len(s.Messages) == 0 && in.DeclaredDifficulty == state.DifficultyHardcore {
		p.states.TransitionToHardcore(s)
	}

	// Frontend forensics ride along read-only; the pipeline never edits them
	if in.BehavioralMetrics != nil {
		s.BehavioralMetrics = in.BehavioralMetrics
	}

	// The transcript is per turn; stale output must not feed the guard
	s.CodeOutput = ""

	s.AppendMessage(state.RoleCandidate, in.Message)

	// ── Stage 1: Shadow Auditor ──
	review := p.auditor.Review(ctx, s)
	if !review.Skipped {
		s.ApplyTrustDelta(review.Delta)
		s.ShadowCritique = review.Critique
	}

	// ── Stage 2: Pivot ──
	decision := p.pivotAgent.Evaluate(s.TrustScore, s.ShadowCritique)
	s.PivotTriggered = decision.Triggered
	if decision.Triggered {
		p.states.TransitionToHardcore(s)
		s.AppendMessage(state.RoleDirective, decision.Directive)
	}

	// ── Stage 3: Sandbox (only when the candidate submitted code) ──
	codeRan := false
	if last := s.LastCandidateMessage(); last != nil && strings.Contains(last.Content, "```") {
		codeRan = p.runCodeBlocks(ctx, s, last.Content)
	}

	// ── Stage 4: Red Team (only on executed code) ──
	if codeRan {
		verdict := p.reviewer.Inspect(ctx, s)
		if !verdict.Skipped {
			s.RedTeamFlag = verdict.Flag
			if verdict.Flagged {
				s.ApplyTrustDelta(-redteam.TrustPenalty)
			}
		}
	}

	// ── Stage 5: Burnout Guard ──
	outcome := p.guard.Evaluate(s.CodeOutput, s.ConsecutiveFailures)
	s.ConsecutiveFailures = outcome.Failures
	s.BurnoutRisk = outcome.Route == burnout.RouteIntervene
	if outcome.Route == burnout.RouteIntervene {
		s.AppendMessage(state.RoleDirective, burnout.InterventionDirective)
	}

	// ── Stage 6: Composer ──
	reply := p.composer.Respond(ctx, s)
	s.AppendMessage(state.RoleInterviewer, reply)

	p.sessions.Save(ctx, s)

	return &TurnResult{Reply: reply, Route: outcome.Route, State: s}
}

// runCodeBlocks executes every fenced block independently and appends the
// concatenated results as a sandbox-output message. Linter-blocked blocks are
// reported to the candidate but never become execution output: CodeOutput
// carries sandbox transcripts only, and stays empty when everything was
// blocked. Returns whether any block actually reached the sandbox.
func (p *Pipeline) runCodeBlocks(ctx context.Context, s *state.State, content string) bool {
	blocks := sandbox.ExtractCodeBlocks(content)
	if len(blocks) == 0 {
		return false
	}

	runTests := s.Difficulty == state.DifficultyHardcore

	executed := false
	reported := make([]string, 0, len(blocks))
	transcripts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		p.logger.Printf("[PIPELINE] Running %s block (adversarial: %t)", block.Language, runTests)
		res := p.sandboxCli.Execute(ctx, block.Language, block.Code, runTests, s.Topic)
		labeled := "Code (" + block.Language + ") Execution Result:\n" + res.Output
		reported = append(reported, labeled)
		if !res.Blocked {
			executed = true
			transcripts = append(transcripts, labeled)
		}
	}

	s.CodeOutput = strings.Join(transcripts, "\n\n")
	s.AppendMessage(state.RoleDirective, state.SandboxOutputMarker+":\n"+strings.Join(reported, "\n\n"))
	return executed
}

// Snapshot returns the current session state for a thread without running a
// turn.
func (p *Pipeline) Snapshot(ctx context.Context, threadID string) *state.State {
	unlock := p.lockThread(threadID)
	defer unlock()
	return p.sessions.Load(ctx, threadID, "")
}

// Reset restarts a session in place. This is the only legal way back from
// Hardcore to Standard difficulty.
func (p *Pipeline) Reset(ctx context.Context, threadID string) *state.State {
	unlock := p.lockThread(threadID)
	defer unlock()

	s := p.sessions.Load(ctx, threadID, "")
	p.states.Restart(s)
	p.sessions.Save(ctx, s)
	return s
}

func (p *Pipeline) lockThread(threadID string) func() {
	v, _ := p.threadLocks.LoadOrStore(threadID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
