package orchestrateturn

import "dialogue-orchestrator/internal/models"

type Input struct {
	UserID    string              `json:"userId"`
	Utterance string              `json:"utterance"`
	History   models.Conversation `json:"history,omitempty"`
}

type Output struct {
	Reply  string                     `json:"reply"`
	Result models.OrchestrationResult `json:"result"`
}
