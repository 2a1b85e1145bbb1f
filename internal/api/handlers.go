package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	commonerrors "dialogue-orchestrator/internal/common/errors"
	"dialogue-orchestrator/internal/common/validation"
	"dialogue-orchestrator/internal/dialogue"
	"dialogue-orchestrator/internal/models"

	"github.com/labstack/echo/v4"
)

const maxBodyBytes = 1 << 20

type ChatRequest struct {
	UserID   string           `json:"userId"`
	Messages []models.Message `json:"messages"`
}

type ChatResponse struct {
	Role    models.Role                `json:"role"`
	Content string                     `json:"content"`
	Result  models.OrchestrationResult `json:"result"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string                       `json:"code"`
	Message string                       `json:"message"`
	Details []validation.ValidationError `json:"details,omitempty"`
}

func errorJSON(c echo.Context, status int, code commonerrors.ErrorCode, message string) error {
	return c.JSON(status, ErrorResponse{Error: ErrorBody{Code: string(code), Message: message}})
}

func (s *Server) chat(c echo.Context) error {
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, commonerrors.ErrCodeInvalidRequest, "could not read request body")
	}

	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return errorJSON(c, http.StatusBadRequest, commonerrors.ErrCodeInvalidRequest, "request body must be JSON")
	}
	if result := validation.Validate(validation.ChatRequestSchema, doc); !result.Valid {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrorBody{
			Code:    string(commonerrors.ErrCodeInvalidRequest),
			Message: "invalid chat request",
			Details: result.Errors,
		}})
	}

	var req ChatRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return errorJSON(c, http.StatusBadRequest, commonerrors.ErrCodeInvalidRequest, "invalid chat request")
	}
	if req.Messages[len(req.Messages)-1].Role != models.RoleUser {
		return errorJSON(c, http.StatusBadRequest, commonerrors.ErrCodeInvalidRequest, "the last message must come from the user")
	}

	if !s.limiter.Allow(req.UserID) {
		limited := commonerrors.NewRateLimitedError(req.UserID)
		return errorJSON(c, http.StatusTooManyRequests, limited.Code, "too many messages, please slow down")
	}

	ctx := c.Request().Context()
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	turn, err := s.deps.Dialogue.Respond(ctx, req.UserID, models.Conversation(req.Messages))
	switch {
	case errors.Is(err, dialogue.ErrChatFallbackFailed):
		return errorJSON(c, http.StatusBadGateway, commonerrors.ErrCodeChatCompletionFailed,
			"Sorry, I couldn't come up with a reply right now. Please try again.")
	case errors.Is(err, dialogue.ErrInvalidConversation):
		return errorJSON(c, http.StatusBadRequest, commonerrors.ErrCodeInvalidRequest, err.Error())
	case err != nil:
		s.logger.Error("chat turn failed", map[string]interface{}{
			"userId": req.UserID,
			"error":  err.Error(),
		})
		return errorJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "something went wrong")
	}

	return c.JSON(http.StatusOK, ChatResponse{
		Role:    models.RoleAssistant,
		Content: turn.Reply,
		Result:  turn.Result,
	})
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ready(c echo.Context) error {
	checks := make(map[string]string, len(s.deps.Ready))
	status := http.StatusOK
	for name, p := range s.deps.Ready {
		if err := p.Ping(c.Request().Context()); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	return c.JSON(status, map[string]interface{}{"status": state, "checks": checks})
}
