package clarifier

import "dialogue-orchestrator/internal/models"

type Input struct {
	Utterance string              `json:"utterance"`
	History   models.Conversation `json:"history,omitempty"`
	Entities  models.Entities     `json:"entities"`
}

// Marker names one kind of ambiguity found in an utterance.
type Marker string

const (
	MarkerVague             Marker = "vague_request"
	MarkerMissingRestaurant Marker = "missing_restaurant"
	MarkerMissingItems      Marker = "missing_items"
	MarkerVagueQuantity     Marker = "vague_quantity"
	MarkerDanglingPronoun   Marker = "dangling_pronoun"
)

type Output struct {
	Response  string   `json:"response"`
	Markers   []Marker `json:"markers,omitempty"`
	Questions []string `json:"questions"`
}

const GenericPrompt = "I need a little more detail. Which restaurant or dish do you have in mind?"
