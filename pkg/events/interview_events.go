package events

import "time"

const TypeInterviewTurnCompleted = "INTERVIEW_TURN_COMPLETED"

// NewInterviewTurnCompleted builds the audit event emitted after every
// completed interview turn. Consumers persist it as the trust ledger.
func NewInterviewTurnCompleted(threadID, topic, candidateInput, reply, critique, difficulty, redTeamFlag string, trustScore int, pivotTriggered bool, metrics map[string]float64) Event {
	return BaseEvent{
		Type: TypeInterviewTurnCompleted,
		Data: map[string]interface{}{
			"thread_id":          threadID,
			"topic":              topic,
			"candidate_input":    candidateInput,
			"reply":              reply,
			"shadow_critique":    critique,
			"difficulty":         difficulty,
			"red_team_flag":      redTeamFlag,
			"trust_score":        trustScore,
			"pivot_triggered":    pivotTriggered,
			"behavioral_metrics": metrics,
		},
		OccurredAt: time.Now().UTC(),
	}
}
