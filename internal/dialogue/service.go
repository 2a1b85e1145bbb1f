// Package dialogue runs one conversational turn end to end: the supervisor
// first, then the open-ended chat capability when the supervisor defers.
package dialogue

import (
	"context"
	"errors"
	"fmt"

	"dialogue-orchestrator/internal/chat"
	commonerrors "dialogue-orchestrator/internal/common/errors"
	"dialogue-orchestrator/internal/common/logger"
	"dialogue-orchestrator/internal/common/metrics"
	"dialogue-orchestrator/internal/models"
)

const (
	fallbackOK       = "ok"
	fallbackFailed   = "failed"
	fallbackDisabled = "disabled"

	msgChatDisabled = "I'm best at food! Try \"recommend something\", \"show my cart\" or \"order 2 biryanis from Paradise\"."
)

var (
	ErrInvalidConversation = errors.New("INVALID_CONVERSATION")
	ErrChatFallbackFailed  = errors.New("CHAT_FALLBACK_FAILED")
)

// Orchestrator is the part of the supervisor the service depends on.
type Orchestrator interface {
	Orchestrate(ctx context.Context, utterance string, history models.Conversation, userID string) models.OrchestrationResult
}

// Turn is one assistant reply and the structured result behind it.
type Turn struct {
	Reply  string                     `json:"reply"`
	Result models.OrchestrationResult `json:"result"`
}

type Service struct {
	supervisor Orchestrator
	chat       chat.Completer
	logger     logger.Logger
}

// NewService wires the supervisor to a chat backend. completer may be nil, in
// which case deferred turns get a fixed steering reply.
func NewService(supervisor Orchestrator, completer chat.Completer, log logger.Logger) *Service {
	return &Service{
		supervisor: supervisor,
		chat:       completer,
		logger:     log.WithFields(map[string]interface{}{"component": "dialogue"}),
	}
}

// Respond answers the last message of conversation, which must come from the
// user. Everything before it is passed as history.
func (s *Service) Respond(ctx context.Context, userID string, conversation models.Conversation) (*Turn, error) {
	if len(conversation) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConversation, commonerrors.NewInvalidRequestError("messages must not be empty"))
	}
	last := conversation[len(conversation)-1]
	if last.Role != models.RoleUser {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConversation, commonerrors.NewInvalidRequestError("last message must have role user"))
	}
	return s.Turn(ctx, userID, last.Content, conversation[:len(conversation)-1])
}

// Turn orchestrates utterance against history. A chat failure is returned
// so the transport can report it; supervisor failures never are.
func (s *Service) Turn(ctx context.Context, userID, utterance string, history models.Conversation) (*Turn, error) {
	result := s.supervisor.Orchestrate(ctx, utterance, history, userID)
	if !result.NeedsChatFallback() {
		return &Turn{Reply: result.Response, Result: result}, nil
	}

	if s.chat == nil {
		metrics.ChatFallbacks.WithLabelValues(fallbackDisabled).Inc()
		result.Response = msgChatDisabled
		return &Turn{Reply: msgChatDisabled, Result: result}, nil
	}

	full := history.Append(models.Message{Role: models.RoleUser, Content: utterance})
	reply, err := s.chat.Complete(ctx, full)
	if err != nil {
		metrics.ChatFallbacks.WithLabelValues(fallbackFailed).Inc()
		s.logger.Error("chat fallback failed", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("%w: %w", ErrChatFallbackFailed, err)
	}

	metrics.ChatFallbacks.WithLabelValues(fallbackOK).Inc()
	result.Response = reply
	return &Turn{Reply: reply, Result: result}, nil
}
