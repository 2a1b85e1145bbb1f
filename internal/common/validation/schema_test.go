package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ChatRequest(t *testing.T) {
	tests := []struct {
		name      string
		doc       map[string]interface{}
		wantValid bool
		wantField string
	}{
		{
			name: "valid request",
			doc: map[string]interface{}{
				"userId": "u-1",
				"messages": []interface{}{
					map[string]interface{}{"role": "user", "content": "hi"},
				},
			},
			wantValid: true,
		},
		{
			name: "missing user id",
			doc: map[string]interface{}{
				"messages": []interface{}{
					map[string]interface{}{"role": "user", "content": "hi"},
				},
			},
			wantValid: false,
			wantField: "(root)",
		},
		{
			name: "empty messages",
			doc: map[string]interface{}{
				"userId":   "u-1",
				"messages": []interface{}{},
			},
			wantValid: false,
			wantField: "messages",
		},
		{
			name: "unknown role",
			doc: map[string]interface{}{
				"userId": "u-1",
				"messages": []interface{}{
					map[string]interface{}{"role": "system", "content": "hi"},
				},
			},
			wantValid: false,
			wantField: "messages.0.role",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(ChatRequestSchema, tt.doc)
			require.NotNil(t, result)
			assert.Equal(t, tt.wantValid, result.Valid)
			if !tt.wantValid {
				require.NotEmpty(t, result.Errors)
				assert.Equal(t, tt.wantField, result.Errors[0].Field)
				assert.NotEmpty(t, result.Error())
			}
		})
	}
}

func TestValidate_OrchestrateTurnAcceptsStruct(t *testing.T) {
	type turn struct {
		UserID    string `json:"userId"`
		Utterance string `json:"utterance"`
	}

	result := Validate(OrchestrateTurnSchema, turn{UserID: "u-1", Utterance: "show my cart"})
	assert.True(t, result.Valid)

	result = Validate(OrchestrateTurnSchema, turn{UserID: "u-1"})
	assert.False(t, result.Valid)
}

func TestMustCompile_PanicsOnMalformedSchema(t *testing.T) {
	assert.Panics(t, func() {
		MustCompile("broken", `{"type": `)
	})
}
