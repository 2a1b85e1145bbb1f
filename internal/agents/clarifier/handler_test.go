package clarifier

import (
	"context"
	"testing"

	"dialogue-orchestrator/internal/common/logger"
	"dialogue-orchestrator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name           string
		input          *Input
		wantMarkers    []Marker
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name:        "unsure what to order",
			input:       &Input{Utterance: "I'm not sure what to order"},
			wantMarkers: []Marker{MarkerVague, MarkerMissingRestaurant},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Contains(t, output.Response, "What are you in the mood for?")
				assert.Contains(t, output.Response, "Which restaurant")
			},
		},
		{
			name:        "vague quantity with a known restaurant",
			input:       &Input{Utterance: "get me some from paradise, idk", Entities: models.Entities{Restaurant: "paradise"}},
			wantMarkers: []Marker{MarkerVague, MarkerVagueQuantity},
		},
		{
			name:        "dangling pronoun without history",
			input:       &Input{Utterance: "i want that one"},
			wantMarkers: []Marker{MarkerDanglingPronoun, MarkerMissingRestaurant, MarkerMissingItems},
		},
		{
			name: "pronoun with history is not dangling",
			input: &Input{
				Utterance: "i want that one",
				History:   models.Conversation{{Role: models.RoleAssistant, Content: "Try the Chicken Biryani."}},
			},
			wantMarkers: []Marker{MarkerMissingRestaurant, MarkerMissingItems},
		},
		{
			name:        "no marker gives the generic prompt",
			input:       &Input{Utterance: "confusing stuff happening"},
			wantMarkers: nil,
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, GenericPrompt, output.Response)
				assert.Equal(t, []string{GenericPrompt}, output.Questions)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(LoadConfig(), logger.NewNoOpLogger())
			output, err := h.Execute(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMarkers, output.Markers)
			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}

func TestHandler_Execute_CapsQuestions(t *testing.T) {
	h := NewHandler(&Config{MaxQuestions: 2}, logger.NewNoOpLogger())
	output, err := h.Execute(context.Background(), &Input{Utterance: "i want a few of those"})
	require.NoError(t, err)
	assert.Len(t, output.Questions, 2)
	assert.Len(t, output.Markers, 2)
}
