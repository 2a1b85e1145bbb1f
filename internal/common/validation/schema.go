package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error joins the individual failures into one message.
func (r *ValidationResult) Error() string {
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(parts, "; ")
}

// Schema is a compiled JSON schema.
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

func (s *Schema) Name() string {
	return s.name
}

// MustCompile parses a JSON schema document. It is meant for package-level
// schemas, so a malformed document panics.
func MustCompile(name, document string) *Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(document))
	if err != nil {
		panic(fmt.Sprintf("validation: schema %s: %v", name, err))
	}
	return &Schema{name: name, schema: compiled}
}

// Validate checks doc, any Go value that marshals to JSON, against schema.
func Validate(schema *Schema, doc interface{}) *ValidationResult {
	result, err := schema.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: err.Error(),
				Code:    "INVALID_DOCUMENT",
			}},
		}
	}
	if result.Valid() {
		return &ValidationResult{Valid: true}
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
			Code:    strings.ToUpper(e.Type()),
		})
	}
	return &ValidationResult{Valid: false, Errors: errs}
}

var ChatRequestSchema = MustCompile("chat-request", `{
	"type": "object",
	"required": ["userId", "messages"],
	"properties": {
		"userId": {"type": "string", "minLength": 1, "maxLength": 128},
		"messages": {
			"type": "array",
			"minItems": 1,
			"maxItems": 200,
			"items": {
				"type": "object",
				"required": ["role", "content"],
				"properties": {
					"role": {"type": "string", "enum": ["user", "assistant"]},
					"content": {"type": "string", "maxLength": 4000}
				}
			}
		}
	}
}`)

var OrchestrateTurnSchema = MustCompile("orchestrate-turn", `{
	"type": "object",
	"required": ["userId", "utterance"],
	"properties": {
		"userId": {"type": "string", "minLength": 1},
		"utterance": {"type": "string", "minLength": 1, "maxLength": 4000},
		"history": {
			"type": ["array", "null"],
			"items": {
				"type": "object",
				"required": ["role", "content"],
				"properties": {
					"role": {"type": "string", "enum": ["user", "assistant"]},
					"content": {"type": "string"}
				}
			}
		}
	}
}`)
