package implementation

import (
	"context"

	"ai-interview-be/internal/entity"
	"ai-interview-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InterviewTurnRepositoryImpl struct {
	db *gorm.DB
}

func NewInterviewTurnRepository(db *gorm.DB) contract.InterviewTurnRepository {
	return &InterviewTurnRepositoryImpl{db: db}
}

func (r *InterviewTurnRepositoryImpl) Create(ctx context.Context, turn *entity.InterviewTurn) error {
	if turn.Id == uuid.Nil {
		turn.Id = uuid.New()
	}
	return r.db.WithContext(ctx).Create(turn).Error
}

func (r *InterviewTurnRepositoryImpl) FindAllByThreadId(ctx context.Context, threadID string) ([]*entity.InterviewTurn, error) {
	var turns []*entity.InterviewTurn
	err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at ASC").
		Find(&turns).Error
	if err != nil {
		return nil, err
	}
	return turns, nil
}

func (r *InterviewTurnRepositoryImpl) CountByThreadId(ctx context.Context, threadID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.InterviewTurn{}).
		Where("thread_id = ?", threadID).
		Count(&count).Error
	return count, err
}
