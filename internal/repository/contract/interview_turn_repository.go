package contract

import (
	"context"

	"ai-interview-be/internal/entity"
)

type InterviewTurnRepository interface {
	Create(ctx context.Context, turn *entity.InterviewTurn) error
	FindAllByThreadId(ctx context.Context, threadID string) ([]*entity.InterviewTurn, error)
	CountByThreadId(ctx context.Context, threadID string) (int64, error)
}
