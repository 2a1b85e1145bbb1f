// Package query answers free-form catalog lookups. Restaurants and menu
// items are fetched concurrently from the search index when one is wired,
// falling back to catalog substring filters.
package query

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	commonerrors "dialogue-orchestrator/internal/common/errors"
	"dialogue-orchestrator/internal/common/logger"
	"dialogue-orchestrator/internal/extractor"
	"dialogue-orchestrator/internal/models"
	"dialogue-orchestrator/internal/store"
	"dialogue-orchestrator/internal/utility"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	Name = "query"
)

var (
	ErrQueryFailed = errors.New("QUERY_FAILED")
)

// Searcher is a free-text index over the catalog.
type Searcher interface {
	SearchRestaurants(ctx context.Context, query string, limit int) ([]models.Restaurant, error)
	SearchMenuItems(ctx context.Context, query string, limit int) ([]models.MenuItem, error)
}

type Dependencies struct {
	Catalog  store.Catalog
	Searcher Searcher
	Cache    *redis.Client
}

type Handler struct {
	config *Config
	deps   Dependencies
	logger logger.Logger
}

func NewHandler(config *Config, deps Dependencies, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		deps:   deps,
		logger: log.WithFields(map[string]interface{}{"agent": Name}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrQueryFailed
	}
	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	cacheKey := CacheKey(input)
	if out, ok := h.cached(ctx, cacheKey); ok {
		return out, nil
	}

	var (
		out *Output
		err error
	)
	if input.Restaurant != "" {
		out, err = h.restaurantMenu(ctx, input)
	} else {
		out, err = h.search(ctx, input)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, commonerrors.NewCatalogUnavailableError(err))
	}
	out.Response = h.render(out, input)

	h.store(ctx, cacheKey, out)

	h.logger.Info("query answered", map[string]interface{}{
		"type":        out.Type,
		"terms":       out.Terms,
		"source":      out.Source,
		"restaurants": len(out.Restaurants),
		"menuItems":   len(out.MenuItems),
	})
	return out, nil
}

func (h *Handler) restaurantMenu(ctx context.Context, input *Input) (*Output, error) {
	out := &Output{Source: SourceCatalog}
	restaurant, err := h.deps.Catalog.FindRestaurantByName(ctx, input.Restaurant)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			out.Type = models.ResultNotFound
			return out, nil
		}
		return nil, err
	}
	out.Restaurant = restaurant

	items, err := h.deps.Catalog.ListMenuItems(ctx, store.MenuFilter{
		RestaurantID: restaurant.ID,
		Category:     input.Category,
		Vegetarian:   input.Vegetarian,
		MaxPrice:     input.MaxPrice,
	})
	if err != nil {
		return nil, err
	}
	out.Type = models.ResultMenu
	out.MenuItems = items
	return out, nil
}

func (h *Handler) search(ctx context.Context, input *Input) (*Output, error) {
	terms := SearchTerms(input.Utterance)
	out := &Output{Terms: terms, Source: SourceCatalog}

	var (
		restaurants []models.Restaurant
		items       []models.MenuItem
		fromIndex   [2]bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		restaurants, fromIndex[0], err = h.findRestaurants(gctx, terms, input.Cuisine)
		return err
	})
	g.Go(func() error {
		var err error
		items, fromIndex[1], err = h.findMenuItems(gctx, terms, input)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if fromIndex[0] || fromIndex[1] {
		out.Source = SourceSearch
	}

	out.Restaurants = restaurants
	out.MenuItems = items
	if wantsRestaurants(input.Utterance) || (len(items) == 0 && len(restaurants) > 0) {
		out.Type = models.ResultRestaurants
	} else {
		out.Type = models.ResultMenuItems
	}
	return out, nil
}

func (h *Handler) findRestaurants(ctx context.Context, terms, cuisine string) ([]models.Restaurant, bool, error) {
	q := strings.TrimSpace(cuisine)
	if q == "" {
		q = terms
	}
	if h.deps.Searcher != nil && q != "" {
		found, err := h.deps.Searcher.SearchRestaurants(ctx, q, h.config.SearchLimit)
		if err == nil {
			return found, true, nil
		}
		h.logger.Warn("restaurant search failed, falling back to catalog", map[string]interface{}{
			"query": q,
			"error": commonerrors.NewSearchQueryFailedError("restaurants", err),
		})
	}

	if cuisine != "" {
		found, err := h.deps.Catalog.ListRestaurants(ctx, store.RestaurantFilter{Cuisine: cuisine})
		return found, false, err
	}
	if terms == "" {
		found, err := h.deps.Catalog.ListRestaurants(ctx, store.RestaurantFilter{})
		return found, false, err
	}
	found, err := h.deps.Catalog.ListRestaurants(ctx, store.RestaurantFilter{NameContains: terms})
	if err != nil || len(found) > 0 {
		return found, false, err
	}
	found, err = h.deps.Catalog.ListRestaurants(ctx, store.RestaurantFilter{Cuisine: terms})
	return found, false, err
}

func (h *Handler) findMenuItems(ctx context.Context, terms string, input *Input) ([]models.MenuItem, bool, error) {
	criteria := utility.Criteria{
		Category:      input.Category,
		MaxPrice:      input.MaxPrice,
		Vegetarian:    input.Vegetarian,
		AvailableOnly: true,
	}

	if h.deps.Searcher != nil && terms != "" {
		found, err := h.deps.Searcher.SearchMenuItems(ctx, terms, h.config.SearchLimit)
		if err == nil {
			return utility.Filter(found, criteria), true, nil
		}
		h.logger.Warn("menu search failed, falling back to catalog", map[string]interface{}{
			"query": terms,
			"error": commonerrors.NewSearchQueryFailedError("menu_items", err),
		})
	}

	filter := store.MenuFilter{
		NameContains:  terms,
		Category:      input.Category,
		Vegetarian:    input.Vegetarian,
		MaxPrice:      input.MaxPrice,
		AvailableOnly: true,
	}
	found, err := h.deps.Catalog.ListMenuItems(ctx, filter)
	if err != nil || len(found) > 0 || terms == "" {
		return found, false, err
	}
	filter.NameContains = ""
	if filter.Category == "" {
		filter.Category = terms
	}
	found, err = h.deps.Catalog.ListMenuItems(ctx, filter)
	return found, false, err
}

func (h *Handler) cached(ctx context.Context, key string) (*Output, bool) {
	if h.deps.Cache == nil {
		return nil, false
	}
	val, err := h.deps.Cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			h.logger.Warn("query cache read failed", map[string]interface{}{"error": err})
		}
		return nil, false
	}
	var out Output
	if err := json.Unmarshal([]byte(val), &out); err != nil {
		return nil, false
	}
	out.Source = SourceCache
	return &out, true
}

func (h *Handler) store(ctx context.Context, key string, out *Output) {
	if h.deps.Cache == nil {
		return
	}
	data, err := json.Marshal(out)
	if err != nil {
		return
	}
	if err := h.deps.Cache.Set(ctx, key, data, h.config.CacheTTL).Err(); err != nil {
		h.logger.Warn("query cache write failed", map[string]interface{}{"error": err})
	}
}

// CacheKey is "query:" plus a digest of everything that shapes the answer.
// The user id is left out so identical lookups share an entry.
func CacheKey(input *Input) string {
	keyed := *input
	keyed.UserID = ""
	keyed.Utterance = extractor.Normalize(input.Utterance)
	data, _ := json.Marshal(keyed)
	sum := sha256.Sum256(data)
	return "query:" + hex.EncodeToString(sum[:])
}

var stopWords = map[string]bool{
	"show": true, "me": true, "list": true, "find": true, "search": true, "browse": true, "look": true,
	"looking": true, "for": true, "do": true, "does": true, "you": true, "have": true, "any": true, "the": true,
	"a": true, "an": true, "some": true, "what": true, "which": true, "is": true, "are": true, "there": true,
	"menu": true, "dish": true, "dishes": true, "food": true, "item": true, "items": true, "option": true,
	"options": true, "restaurant": true, "restaurants": true, "place": true, "places": true, "where": true,
	"can": true, "i": true, "get": true, "near": true, "please": true, "all": true, "your": true, "serve": true,
	"serves": true, "serving": true, "got": true, "available": true, "of": true, "in": true, "to": true,
	"with": true, "veg": true, "vegetarian": true, "vegan": true, "non-veg": true, "nonveg": true, "under": true,
	"below": true, "less": true, "than": true, "rs": true, "inr": true, "rupees": true, "that": true, "good": true,
	"and": true, "or": true, "sell": true, "sells": true, "offer": true, "offers": true, "us": true, "we": true,
}

// SearchTerms strips lookup phrasing, prices and dietary words from an
// utterance and singularizes what is left.
func SearchTerms(utterance string) string {
	text := extractor.Normalize(utterance)
	var kept []string
	for _, word := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == ',' || r == '?' || r == '!' || r == '.'
	}) {
		if stopWords[word] || strings.ContainsAny(word, "0123456789₹$") {
			continue
		}
		kept = append(kept, extractor.Singularize(word))
	}
	return strings.Join(kept, " ")
}

func wantsRestaurants(utterance string) bool {
	text := extractor.Normalize(utterance)
	for _, w := range []string{"restaurant", "place", "where can i", "who serves", "who has"} {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func (h *Handler) render(out *Output, input *Input) string {
	limit := h.config.DisplayLimit
	var b strings.Builder

	switch out.Type {
	case models.ResultNotFound:
		return fmt.Sprintf("I couldn't find a restaurant called %q. Try another name, or ask me to list restaurants.", input.Restaurant)

	case models.ResultMenu:
		if len(out.MenuItems) == 0 {
			return fmt.Sprintf("%s is listed, but its menu isn't available yet.", out.Restaurant.Name)
		}
		fmt.Fprintf(&b, "Here's the menu at %s:", out.Restaurant.Name)
		writeItems(&b, out.MenuItems, limit)

	case models.ResultRestaurants:
		if len(out.Restaurants) == 0 {
			return fmt.Sprintf("I couldn't find any restaurants matching %q.", describe(out.Terms, input))
		}
		b.WriteString("Here are some restaurants:")
		for i, r := range out.Restaurants {
			if i >= limit {
				break
			}
			fmt.Fprintf(&b, "\n%d. %s (%s) - %.1f★, %d min, ₹%.0f delivery", i+1, r.Name, r.Cuisine, r.Rating, r.DeliveryTimeMinutes, r.DeliveryFee)
		}

	default:
		if len(out.MenuItems) == 0 {
			return fmt.Sprintf("I couldn't find anything matching %q. Try a different dish or restaurant.", describe(out.Terms, input))
		}
		b.WriteString("Here's what I found:")
		writeItems(&b, out.MenuItems, limit)
	}
	return b.String()
}

func writeItems(b *strings.Builder, items []models.MenuItem, limit int) {
	for i, item := range items {
		if i >= limit {
			fmt.Fprintf(b, "\n...and %d more", len(items)-limit)
			break
		}
		veg := ""
		if item.IsVegetarian {
			veg = " (veg)"
		}
		fmt.Fprintf(b, "\n%d. %s%s - ₹%.0f", i+1, item.Name, veg, item.Price)
	}
}

func describe(terms string, input *Input) string {
	if terms != "" {
		return terms
	}
	return strings.TrimSpace(input.Utterance)
}
