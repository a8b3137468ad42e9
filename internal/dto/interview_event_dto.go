package dto

// InterviewTurnMessage is the wire shape of the turn-completed event consumed
// by the persistence worker.
type InterviewTurnMessage struct {
	ThreadId       string             `json:"thread_id"`
	Topic          string             `json:"topic"`
	CandidateInput string             `json:"candidate_input"`
	Reply          string             `json:"reply"`
	ShadowCritique string             `json:"shadow_critique"`
	Difficulty     string             `json:"difficulty"`
	RedTeamFlag    string             `json:"red_team_flag"`
	TrustScore     int                `json:"trust_score"`
	PivotTriggered bool               `json:"pivot_triggered"`
	Metrics        map[string]float64 `json:"behavioral_metrics,omitempty"`
}
