package orchestrateturn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dialogue-orchestrator/internal/chat"
	"dialogue-orchestrator/internal/common/camunda"
	"dialogue-orchestrator/internal/common/config"
	commonerrors "dialogue-orchestrator/internal/common/errors"
	"dialogue-orchestrator/internal/common/logger"
	"dialogue-orchestrator/internal/common/metrics"
	"dialogue-orchestrator/internal/common/validation"
	"dialogue-orchestrator/internal/dialogue"
	"dialogue-orchestrator/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "orchestrate-turn"

// TurnRunner runs one dialogue turn.
type TurnRunner interface {
	Turn(ctx context.Context, userID, utterance string, history models.Conversation) (*dialogue.Turn, error)
}

type Handler struct {
	config       *Config
	dialogue     TurnRunner
	camunda      *camunda.Client
	errorHandler *commonerrors.ErrorHandler
	logger       logger.Logger
	worker       *camunda.CamundaWorker
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Dialogue     TurnRunner
	Camunda      *camunda.Client
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Dialogue == nil {
		return nil, fmt.Errorf("%s: dialogue service is required", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:       cfg,
		dialogue:     opts.Dialogue,
		camunda:      opts.Camunda,
		errorHandler: commonerrors.NewErrorHandler(log),
		logger:       log,
	}, nil
}

// Handle completes or fails the job itself, so it only returns nil.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(commonerrors.AsStandardError(err).Code)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return nil
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(commonerrors.AsStandardError(err).Code)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return nil
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	return nil
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, commonerrors.NewInvalidRequestError(fmt.Sprintf("failed to parse job variables: %v", err))
	}

	result := validation.Validate(validation.OrchestrateTurnSchema, variables)
	if !result.Valid {
		return nil, commonerrors.NewInvalidRequestError(result.Error())
	}

	var input Input
	if err := job.GetVariablesAs(&input); err != nil {
		return nil, commonerrors.NewInvalidRequestError(fmt.Sprintf("failed to decode job variables: %v", err))
	}
	return &input, nil
}

// Execute runs the turn. Only a failed chat fallback is an error; the
// supervisor degrades every other failure into a reply.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	turn, err := h.dialogue.Turn(ctx, input.UserID, input.Utterance, input.History)
	if err != nil {
		return nil, convertToStandardError(err)
	}
	return &Output{Reply: turn.Reply, Result: turn.Result}, nil
}

func convertToStandardError(err error) *commonerrors.StandardError {
	var stdErr *commonerrors.StandardError
	switch {
	case errors.As(err, &stdErr):
		return stdErr
	case errors.Is(err, chat.ErrChatTimeout), errors.Is(err, context.DeadlineExceeded):
		return commonerrors.NewChatTimeoutError()
	case errors.Is(err, dialogue.ErrInvalidConversation):
		return commonerrors.NewInvalidRequestError(err.Error())
	}
	return commonerrors.NewChatCompletionFailedError(err)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	send := func(ctx context.Context) (interface{}, error) { return request.Send(ctx) }
	if h.camunda != nil {
		_, err = h.camunda.ExecuteWithRetry(ctx, send, "complete-job")
	} else {
		_, err = send(ctx)
	}
	if err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}
	h.logger.Info("turn completed", map[string]interface{}{
		"jobKey":     job.GetKey(),
		"resultType": output.Result.Type,
	})
}

// Register opens the job worker. A disabled worker is skipped.
func (h *Handler) Register() error {
	if !h.config.Enabled {
		h.logger.Info("worker is disabled, skipping registration", nil)
		return nil
	}
	if h.camunda == nil {
		return fmt.Errorf("%s: camunda client is required to register", TaskType)
	}
	h.worker = camunda.NewWorker(h.camunda.GetClient(), TaskType, h.config.MaxJobsActive, h.config.Timeout, h, h.logger)
	return nil
}

func (h *Handler) Stop() {
	if h.worker != nil {
		h.worker.Stop()
	}
}

func (h *Handler) GetTaskType() string {
	return TaskType
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}
