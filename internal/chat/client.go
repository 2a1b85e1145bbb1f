// Package chat is the open-ended conversation fallback. It forwards the
// conversation to an OpenAI-compatible completion endpoint.
package chat

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	commonerrors "dialogue-orchestrator/internal/common/errors"
	commonhttp "dialogue-orchestrator/internal/common/http"
	"dialogue-orchestrator/internal/common/logger"
	"dialogue-orchestrator/internal/models"

	"github.com/sashabaranov/go-openai"
)

const Name = "chat"

var (
	ErrChatCompletionFailed = errors.New("CHAT_COMPLETION_FAILED")
	ErrChatTimeout          = errors.New("CHAT_TIMEOUT")
)

// Completer is what the dialogue service needs from a chat backend.
type Completer interface {
	Complete(ctx context.Context, history models.Conversation) (string, error)
}

type Client struct {
	config         *Config
	client         *openai.Client
	catalogSummary string
	logger         logger.Logger
}

func NewClient(cfg *Config, catalogSummary string, log logger.Logger) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = commonhttp.NewClient(cfg.Timeout, commonhttp.DefaultUserAgent)
	return &Client{
		config:         cfg,
		client:         openai.NewClientWithConfig(clientConfig),
		catalogSummary: catalogSummary,
		logger:         log.WithFields(map[string]interface{}{"component": Name}),
	}
}

// Complete sends the system prompt, the catalog summary and the whole
// history, and returns the first choice.
func (c *Client) Complete(ctx context.Context, history models.Conversation) (string, error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model:       c.config.Model,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
		Messages:    c.buildMessages(history),
	}

	c.logger.Debug("requesting chat completion", map[string]interface{}{
		"model":    req.Model,
		"messages": len(req.Messages),
	})

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
			(errors.As(err, &netErr) && netErr.Timeout()) {
			return "", fmt.Errorf("%w: %v", ErrChatTimeout, commonerrors.NewChatTimeoutError())
		}
		return "", fmt.Errorf("%w: %v", ErrChatCompletionFailed, commonerrors.NewChatCompletionFailedError(err))
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: %v", ErrChatCompletionFailed,
			commonerrors.NewChatCompletionFailedError(errors.New("no choices in response")))
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	c.logger.Info("chat completion received", map[string]interface{}{
		"model":            resp.Model,
		"promptTokens":     resp.Usage.PromptTokens,
		"completionTokens": resp.Usage.CompletionTokens,
	})
	return content, nil
}

func (c *Client) buildMessages(history models.Conversation) []openai.ChatCompletionMessage {
	system := c.config.SystemPrompt
	if c.catalogSummary != "" {
		system += "\n\n" + c.catalogSummary
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, msg := range history {
		role := openai.ChatMessageRoleUser
		if msg.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}
	return messages
}
