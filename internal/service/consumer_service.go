// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"log"

	"ai-interview-be/internal/dto"
	"ai-interview-be/internal/entity"
	"ai-interview-be/internal/repository/contract"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/datatypes"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains turn-completed events and writes them into the
// interview_turns ledger. Persistence failures never reach the interview
// path; at worst a turn goes unlogged.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	turnRepo  contract.InterviewTurnRepository
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	turnRepo contract.InterviewTurnRepository,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		turnRepo:  turnRepo,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.InterviewTurnMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal turn event: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if cs.turnRepo == nil {
		// No database configured; the ledger runs stateless
		msg.Ack()
		return
	}

	var metrics datatypes.JSON
	if len(payload.Metrics) > 0 {
		if raw, err := json.Marshal(payload.Metrics); err == nil {
			metrics = raw
		}
	}

	turn := &entity.InterviewTurn{
		ThreadId:       payload.ThreadId,
		Topic:          payload.Topic,
		CandidateInput: payload.CandidateInput,
		Reply:          payload.Reply,
		ShadowCritique: payload.ShadowCritique,
		RedTeamFlag:    payload.RedTeamFlag,
		TrustScore:     payload.TrustScore,
		Difficulty:     payload.Difficulty,
		PivotTriggered: payload.PivotTriggered,
		Metrics:        metrics,
	}

	if err := cs.turnRepo.Create(ctx, turn); err != nil {
		log.Printf("[ERROR] Failed to persist turn for thread %s: %v", payload.ThreadId, err)
		msg.Nack() // Nack for retriable errors
		return
	}

	log.Printf("[INFO] Turn logged for thread %s (trust: %d)", payload.ThreadId, payload.TrustScore)
	msg.Ack()
}
