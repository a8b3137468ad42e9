package dto

import (
	"github.com/google/uuid"
)

type SendTurnRequest struct {
	SessionId *uuid.UUID `json:"session_id,omitempty"`
	Message   string     `json:"message" validate:"required"`
	Topic     string     `json:"topic"`
	// Seeds the difficulty of a new session; ignored once a session exists.
	DeclaredDifficulty string             `json:"declared_difficulty,omitempty" validate:"omitempty,oneof=Standard Hardcore"`
	Metrics            map[string]float64 `json:"behavioral_metrics,omitempty"`
}

type SendTurnResponse struct {
	SessionId      uuid.UUID `json:"session_id"`
	Reply          string    `json:"reply"`
	TrustScore     int       `json:"trust_score"`
	Difficulty     string    `json:"difficulty"`
	PivotTriggered bool      `json:"pivot_triggered"`
	ShadowCritique string    `json:"shadow_critique,omitempty"`
	RedTeamFlag    string    `json:"red_team_flag,omitempty"`
	BurnoutRisk    bool      `json:"burnout_risk"`
}

type SessionSnapshotResponse struct {
	SessionId           uuid.UUID `json:"session_id"`
	Topic               string    `json:"topic"`
	Difficulty          string    `json:"difficulty"`
	TrustScore          int       `json:"trust_score"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	MessageCount        int       `json:"message_count"`
	PivotTriggered      bool      `json:"pivot_triggered"`
}

type TurnRecordResponse struct {
	Topic          string `json:"topic"`
	CandidateInput string `json:"candidate_input"`
	Reply          string `json:"reply"`
	TrustScore     int    `json:"trust_score"`
	Difficulty     string `json:"difficulty"`
	RedTeamFlag    string `json:"red_team_flag,omitempty"`
	PivotTriggered bool   `json:"pivot_triggered"`
}

type TurnHistoryResponse struct {
	SessionId uuid.UUID            `json:"session_id"`
	Total     int64                `json:"total"`
	Turns     []TurnRecordResponse `json:"turns"`
}

type ExecuteCodeRequest struct {
	Language string `json:"language" validate:"required"`
	Code     string `json:"code" validate:"required"`
	RunTests bool   `json:"run_tests"`
	Topic    string `json:"topic"`
}

type ExecuteCodeResponse struct {
	Output string `json:"output"`
}
