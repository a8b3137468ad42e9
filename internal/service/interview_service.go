package service

import (
	"context"
	"encoding/json"

	"ai-interview-be/internal/dto"
	"ai-interview-be/internal/pkg/logger"
	"ai-interview-be/internal/repository/contract"
	"ai-interview-be/pkg/events"
	"ai-interview-be/pkg/interview/executor"
	"ai-interview-be/pkg/interview/sandbox"
	pktNats "ai-interview-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IInterviewService interface {
	SendTurn(ctx context.Context, req *dto.SendTurnRequest) (*dto.SendTurnResponse, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*dto.SessionSnapshotResponse, error)
	ResetSession(ctx context.Context, sessionID uuid.UUID) (*dto.SessionSnapshotResponse, error)
	ListTurns(ctx context.Context, sessionID uuid.UUID) (*dto.TurnHistoryResponse, error)
	ExecuteCode(ctx context.Context, req *dto.ExecuteCodeRequest) (*dto.ExecuteCodeResponse, error)
}

type interviewService struct {
	pipeline   *executor.Pipeline
	sandboxCli *sandbox.Client
	pubSub     *gochannel.GoChannel
	natsPub    *pktNats.Publisher               // optional external mirror, may be nil
	turnRepo   contract.InterviewTurnRepository // optional ledger reads, may be nil
	turnTopic  string
	log        logger.ILogger
}

func NewInterviewService(
	pipeline *executor.Pipeline,
	sandboxCli *sandbox.Client,
	pubSub *gochannel.GoChannel,
	natsPub *pktNats.Publisher,
	turnRepo contract.InterviewTurnRepository,
	turnTopic string,
	log logger.ILogger,
) IInterviewService {
	return &interviewService{
		pipeline:   pipeline,
		sandboxCli: sandboxCli,
		pubSub:     pubSub,
		natsPub:    natsPub,
		turnRepo:   turnRepo,
		turnTopic:  turnTopic,
		log:        log,
	}
}

// SendTurn runs one candidate turn through the pipeline and emits the audit
// event. A missing session id starts a new interview thread.
func (s *interviewService) SendTurn(ctx context.Context, req *dto.SendTurnRequest) (*dto.SendTurnResponse, error) {
	sessionID := uuid.New()
	if req.SessionId != nil {
		sessionID = *req.SessionId
	}

	result := s.pipeline.ExecuteTurn(ctx, executor.TurnInput{
		ThreadID:           sessionID.String(),
		Message:            req.Message,
		Topic:              req.Topic,
		DeclaredDifficulty: req.DeclaredDifficulty,
		BehavioralMetrics:  req.Metrics,
	})

	st := result.State
	s.publishTurnCompleted(ctx, req.Message, result)

	s.log.Info("interview", "Turn completed", map[string]interface{}{
		"session_id":  sessionID.String(),
		"trust_score": st.TrustScore,
		"difficulty":  st.Difficulty,
		"route":       string(result.Route),
	})

	return &dto.SendTurnResponse{
		SessionId:      sessionID,
		Reply:          result.Reply,
		TrustScore:     st.TrustScore,
		Difficulty:     st.Difficulty,
		PivotTriggered: st.PivotTriggered,
		ShadowCritique: st.ShadowCritique,
		RedTeamFlag:    st.RedTeamFlag,
		BurnoutRisk:    st.BurnoutRisk,
	}, nil
}

func (s *interviewService) GetSession(ctx context.Context, sessionID uuid.UUID) (*dto.SessionSnapshotResponse, error) {
	st := s.pipeline.Snapshot(ctx, sessionID.String())
	return snapshotDTO(sessionID, st.Topic, st.Difficulty, st.TrustScore, st.ConsecutiveFailures, len(st.Messages), st.PivotTriggered), nil
}

func (s *interviewService) ResetSession(ctx context.Context, sessionID uuid.UUID) (*dto.SessionSnapshotResponse, error) {
	st := s.pipeline.Reset(ctx, sessionID.String())
	s.log.Info("interview", "Session reset", map[string]interface{}{"session_id": sessionID.String()})
	return snapshotDTO(sessionID, st.Topic, st.Difficulty, st.TrustScore, st.ConsecutiveFailures, len(st.Messages), st.PivotTriggered), nil
}

// ListTurns reads the persisted trust ledger for a session. Requires a
// database; stateless deployments get a 404 since nothing was ever logged.
func (s *interviewService) ListTurns(ctx context.Context, sessionID uuid.UUID) (*dto.TurnHistoryResponse, error) {
	if s.turnRepo == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "turn ledger is not enabled on this deployment")
	}

	turns, err := s.turnRepo.FindAllByThreadId(ctx, sessionID.String())
	if err != nil {
		return nil, err
	}
	total, err := s.turnRepo.CountByThreadId(ctx, sessionID.String())
	if err != nil {
		return nil, err
	}

	records := make([]dto.TurnRecordResponse, 0, len(turns))
	for _, t := range turns {
		records = append(records, dto.TurnRecordResponse{
			Topic:          t.Topic,
			CandidateInput: t.CandidateInput,
			Reply:          t.Reply,
			TrustScore:     t.TrustScore,
			Difficulty:     t.Difficulty,
			RedTeamFlag:    t.RedTeamFlag,
			PivotTriggered: t.PivotTriggered,
		})
	}

	return &dto.TurnHistoryResponse{SessionId: sessionID, Total: total, Turns: records}, nil
}

// ExecuteCode runs a standalone submission through the lint+sandbox path,
// outside any interview thread. Used by the challenge verifier.
func (s *interviewService) ExecuteCode(ctx context.Context, req *dto.ExecuteCodeRequest) (*dto.ExecuteCodeResponse, error) {
	res := s.sandboxCli.Execute(ctx, req.Language, req.Code, req.RunTests, req.Topic)
	return &dto.ExecuteCodeResponse{Output: res.Output}, nil
}

// publishTurnCompleted emits the trust-ledger event on the in-process bus and
// mirrors it to NATS when a broker is configured. Neither failure blocks the
// turn.
func (s *interviewService) publishTurnCompleted(ctx context.Context, candidateInput string, result *executor.TurnResult) {
	st := result.State
	event := events.NewInterviewTurnCompleted(
		st.ThreadID,
		st.Topic,
		candidateInput,
		result.Reply,
		st.ShadowCritique,
		st.Difficulty,
		st.RedTeamFlag,
		st.TrustScore,
		st.PivotTriggered,
		st.BehavioralMetrics,
	)

	payload, err := json.Marshal(event.Payload())
	if err != nil {
		s.log.Error("interview", "Failed to marshal turn event", map[string]interface{}{"error": err.Error()})
		return
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	if err := s.pubSub.Publish(s.turnTopic, msg); err != nil {
		s.log.Error("interview", "Failed to publish turn event", map[string]interface{}{"error": err.Error()})
	}

	if s.natsPub != nil {
		if err := s.natsPub.Publish(ctx, event); err != nil {
			s.log.Warn("interview", "NATS mirror publish failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

func snapshotDTO(id uuid.UUID, topic, difficulty string, trust, failures, msgCount int, pivot bool) *dto.SessionSnapshotResponse {
	return &dto.SessionSnapshotResponse{
		SessionId:           id,
		Topic:               topic,
		Difficulty:          difficulty,
		TrustScore:          trust,
		ConsecutiveFailures: failures,
		MessageCount:        msgCount,
		PivotTriggered:      pivot,
	}
}
