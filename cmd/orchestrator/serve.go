package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"dialogue-orchestrator/internal/api"
	"dialogue-orchestrator/internal/common/camunda"
	"dialogue-orchestrator/internal/common/config"
	orchestrateturn "dialogue-orchestrator/internal/workers/dialogue/orchestrate-turn"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat API and, when camunda is enabled, the orchestrate-turn worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx, cfg, cfg.Logging.Output)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	if a.cfg.Camunda.Enabled && config.IsWorkerEnabled(a.cfg, orchestrateturn.TaskType) {
		handler, err := a.registerWorker()
		if err != nil {
			return err
		}
		defer handler.Stop()
	}

	server := api.NewServer(a.cfg.Server, api.Dependencies{
		Dialogue: a.dialogue,
		Ready:    a.ready,
	}, a.log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("shutting down", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *app) registerWorker() (*orchestrateturn.Handler, error) {
	var client *camunda.Client
	err := retryWithBackoff(func() error {
		var err error
		client, err = camunda.NewClient(a.cfg.Camunda)
		return err
	}, 10, 2*time.Second, a.zap, "Zeebe client initialization")
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)
	a.ready["camunda"] = pingFunc(client.HealthCheck)

	handler, err := orchestrateturn.NewHandler(orchestrateturn.HandlerOptions{
		AppConfig: a.cfg,
		Dialogue:  a.dialogue,
		Camunda:   client,
		Logger:    a.log,
	})
	if err != nil {
		return nil, err
	}
	if err := handler.Register(); err != nil {
		return nil, err
	}
	a.log.Info("worker registered", map[string]interface{}{
		"taskType": handler.GetTaskType(),
		"enabled":  handler.IsEnabled(),
	})
	return handler, nil
}
