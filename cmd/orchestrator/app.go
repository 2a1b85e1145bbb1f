package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"dialogue-orchestrator/internal/api"
	"dialogue-orchestrator/internal/chat"
	"dialogue-orchestrator/internal/common/aws"
	"dialogue-orchestrator/internal/common/config"
	"dialogue-orchestrator/internal/common/database"
	"dialogue-orchestrator/internal/common/logger"
	"dialogue-orchestrator/internal/common/observability"
	"dialogue-orchestrator/internal/dialogue"
	"dialogue-orchestrator/internal/notify"
	"dialogue-orchestrator/internal/store"
	"dialogue-orchestrator/internal/store/memstore"
	"dialogue-orchestrator/internal/store/postgres"
	"dialogue-orchestrator/internal/store/search"
	"dialogue-orchestrator/internal/supervisor"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app is the component graph both subcommands run on.
type app struct {
	cfg      *config.Config
	zap      *zap.Logger
	log      logger.Logger
	obs      *observability.Observability
	store    store.Store
	dialogue *dialogue.Service
	ready    map[string]api.Pinger
	closers  []func() error
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func loadConfig(cmd *cobra.Command, v *viper.Viper) (*config.Config, error) {
	if env, _ := cmd.Flags().GetString("env"); env != "" {
		if err := os.Setenv("APP_ENVIRONMENT", env); err != nil {
			return nil, err
		}
	}
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.LoadWith(v)
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	// Flags win over the explicit file too.
	if driver := v.GetString("store.driver"); driver != "" {
		cfg.Store.Driver = driver
	}
	if level := v.GetString("logging.level"); level != "" {
		cfg.Logging.Level = level
	}
	return cfg, nil
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func buildApp(ctx context.Context, cfg *config.Config, output string) (*app, error) {
	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, output)
	a := &app{
		cfg:   cfg,
		zap:   zapLog,
		log:   logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{"service": cfg.App.Name}),
		obs:   observability.New(cfg.App.Name),
		ready: map[string]api.Pinger{},
	}

	if err := a.openStore(ctx); err != nil {
		a.Close()
		return nil, err
	}

	opts := supervisor.Options{
		MemoryCacheTTL: config.GetDuration(cfg.Dialogue.MemoryCacheTTL),
		QueryCacheTTL:  config.GetDuration(cfg.Dialogue.QueryCacheTTL),
		Observability:  a.obs,
	}

	if cfg.Database.Redis.Enabled {
		var rc *database.RedisClient
		err := retryWithBackoff(func() error {
			var err error
			rc, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rc.Ping(ctx)
		}, 5, time.Second, zapLog, "Redis connection")
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, rc.Close)
		a.ready["redis"] = rc
		opts.Cache = rc.GetClient()
	}

	if cfg.Database.Elasticsearch.Enabled {
		searcher, err := a.openSearch(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
		opts.Searcher = searcher
	}

	notifier, err := a.openNotifier(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	opts.Notifier = notifier

	sup := supervisor.Assemble(ctx, a.store, supervisor.Config{
		DisplayLimit:        cfg.Dialogue.DisplayLimit,
		UsualsLimit:         cfg.Dialogue.UsualsLimit,
		MenuLimit:           cfg.Dialogue.MenuLimit,
		RecommendationLimit: cfg.Dialogue.RecommendationLimit,
	}, opts, a.log)

	var completer chat.Completer
	if cfg.Chat.Enabled {
		summary, err := chat.BuildCatalogSummary(ctx, a.store)
		if err != nil {
			a.log.Warn("catalog summary unavailable, chat runs without it", map[string]interface{}{
				"error": err.Error(),
			})
		}
		completer = chat.NewClient(chat.FromAppConfig(cfg.Chat), summary, a.log)
	}
	a.dialogue = dialogue.NewService(sup, completer, a.log)
	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.Store.Driver {
	case config.StoreDriverPostgres:
		var pg *database.PostgresClient
		err := retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(a.cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 10, 2*time.Second, a.zap, "PostgreSQL connection")
		if err != nil {
			return err
		}
		a.closers = append(a.closers, pg.Close)

		st := postgres.New(pg.GetDB())
		if err := st.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}
		if a.cfg.Store.SeedDemo {
			if err := st.SeedDemo(ctx); err != nil {
				return fmt.Errorf("seed postgres: %w", err)
			}
		}
		a.store = st
	default:
		a.store = memstore.New().Seed()
	}
	a.ready["store"] = a.store
	a.log.Info("store ready", map[string]interface{}{"driver": a.cfg.Store.Driver})
	return nil
}

func (a *app) openSearch(ctx context.Context) (*search.Searcher, error) {
	esCfg := a.cfg.Database.Elasticsearch
	var es *database.ElasticsearchClient
	err := retryWithBackoff(func() error {
		var err error
		es, err = database.NewElasticsearch(esCfg)
		if err != nil {
			return err
		}
		return es.Ping(ctx)
	}, 5, 2*time.Second, a.zap, "Elasticsearch connection")
	if err != nil {
		return nil, err
	}
	a.ready["elasticsearch"] = es

	searcher := search.NewSearcher(es.Client, esCfg.RestaurantsIndex, esCfg.MenuItemsIndex, a.log)
	if err := searcher.IndexCatalog(ctx, a.store); err != nil {
		// Queries fall back to the store when search fails.
		a.log.Warn("catalog indexing failed", map[string]interface{}{"error": err.Error()})
	}
	return searcher, nil
}

func (a *app) openNotifier(ctx context.Context) (notify.Notifier, error) {
	n := a.cfg.Notifications
	if !n.Enabled() {
		return notify.Disabled{}, nil
	}

	var sesClient notify.SESService
	if n.Email.Enabled {
		c, err := aws.NewSESClient(ctx, n.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("create ses client: %w", err)
		}
		sesClient = c
	}
	var snsClient notify.SNSService
	if n.SMS.Enabled {
		c, err := aws.NewSNSClient(ctx, n.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("create sns client: %w", err)
		}
		snsClient = c
	}

	return notify.NewService(&notify.Config{
		EmailEnabled: n.Email.Enabled,
		SMSEnabled:   n.SMS.Enabled,
		FromEmail:    n.Email.FromEmail,
		SenderID:     n.SMS.SenderID,
		Timeout:      10 * time.Second,
	}, a.store, sesClient, snsClient, a.log), nil
}

// Close releases connections in reverse open order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	a.obs.Shutdown()
	_ = a.zap.Sync()
}
