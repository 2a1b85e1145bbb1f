package supervisor

import (
	"context"
	"math/rand"
	"time"

	"dialogue-orchestrator/internal/agents/cart"
	"dialogue-orchestrator/internal/agents/clarifier"
	"dialogue-orchestrator/internal/agents/delivery"
	"dialogue-orchestrator/internal/agents/order"
	"dialogue-orchestrator/internal/agents/query"
	"dialogue-orchestrator/internal/agents/wishlist"
	"dialogue-orchestrator/internal/common/logger"
	"dialogue-orchestrator/internal/common/observability"
	"dialogue-orchestrator/internal/extractor"
	"dialogue-orchestrator/internal/memory"
	"dialogue-orchestrator/internal/notify"
	"dialogue-orchestrator/internal/profile"
	"dialogue-orchestrator/internal/recommendation"
	"dialogue-orchestrator/internal/store"

	"github.com/redis/go-redis/v9"
)

// Options are the optional collaborators Assemble wires in. Every field may
// be left zero.
type Options struct {
	Searcher       query.Searcher
	Cache          *redis.Client
	MemoryCacheTTL time.Duration
	QueryCacheTTL  time.Duration
	Notifier       notify.Notifier
	// Lexicon overrides the vocabulary read from the catalog.
	Lexicon       *extractor.Lexicon
	Rand          *rand.Rand
	Now           func() time.Time
	Observability *observability.Observability
}

// Assemble builds a supervisor with every agent bound to st. A catalog that
// cannot be read degrades to the default vocabulary.
func Assemble(ctx context.Context, st store.Store, cfg Config, opts Options, log logger.Logger) *Supervisor {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	var lex extractor.Lexicon
	if opts.Lexicon != nil {
		lex = *opts.Lexicon
	} else {
		var err error
		lex, err = extractor.LexiconFromCatalog(ctx, st)
		if err != nil {
			log.Warn("catalog vocabulary unavailable, using defaults", map[string]interface{}{
				"error": err.Error(),
			})
			lex = extractor.DefaultLexicon()
		}
	}

	memOpts := []memory.Option{memory.WithClock(opts.Now)}
	if opts.Cache != nil {
		memOpts = append(memOpts, memory.WithCache(opts.Cache, opts.MemoryCacheTTL))
	}
	mem := memory.NewStore(st, log, memOpts...)
	profiles := profile.NewBuilder(mem, st, log)
	engine := recommendation.NewEngine(st, st, profiles, log).WithClock(opts.Now)

	queryConfig := query.LoadConfig()
	if opts.QueryCacheTTL > 0 {
		queryConfig.CacheTTL = opts.QueryCacheTTL
	}

	deps := Dependencies{
		Extractor:   extractor.New(lex),
		Catalog:     st,
		Carts:       st,
		Memory:      mem,
		Profiles:    profiles,
		Recommender: engine,

		Order: order.NewHandler(order.LoadConfig(), order.Dependencies{
			Catalog:  st,
			Carts:    st,
			Orders:   st,
			Memory:   mem,
			Notifier: opts.Notifier,
			Now:      opts.Now,
		}, log),
		Cart: cart.NewHandler(cart.LoadConfig(), cart.Dependencies{
			Carts:   st,
			Catalog: st,
			Memory:  mem,
			Now:     opts.Now,
		}, log),
		Wishlist: wishlist.NewHandler(wishlist.LoadConfig(), wishlist.Dependencies{
			Wishlists: st,
			Catalog:   st,
			Now:       opts.Now,
		}, log),
		Delivery: delivery.NewHandler(delivery.LoadConfig(), st, opts.Now, log),
		Query: query.NewHandler(queryConfig, query.Dependencies{
			Catalog:  st,
			Searcher: opts.Searcher,
			Cache:    opts.Cache,
		}, log),
		Clarifier: clarifier.NewHandler(clarifier.LoadConfig(), log),

		Observability: opts.Observability,
		Rand:          opts.Rand,
	}
	return New(deps, cfg, log)
}
