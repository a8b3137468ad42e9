package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// InterviewTurn is one persisted row of the trust ledger: everything the
// pipeline knew about a single completed turn.
type InterviewTurn struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ThreadId       string    `gorm:"index"`
	Topic          string
	CandidateInput string
	Reply          string
	ShadowCritique string
	RedTeamFlag    string
	TrustScore     int
	Difficulty     string
	PivotTriggered bool
	Metrics        datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time
}
