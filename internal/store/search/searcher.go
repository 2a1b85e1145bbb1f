// Package search is free-text catalog search on Elasticsearch.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	commonerrors "dialogue-orchestrator/internal/common/errors"
	"dialogue-orchestrator/internal/common/logger"
	"dialogue-orchestrator/internal/models"
	"dialogue-orchestrator/internal/store"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const (
	DefaultRestaurantsIndex = "restaurants"
	DefaultMenuItemsIndex   = "menu_items"

	maxResults = 50
)

var (
	ErrSearchQueryFailed = errors.New("SEARCH_QUERY_FAILED")
	ErrSearchTimeout     = errors.New("SEARCH_TIMEOUT")
	ErrIndexingFailed    = errors.New("INDEXING_FAILED")
)

type Searcher struct {
	client           *elasticsearch.Client
	restaurantsIndex string
	menuItemsIndex   string
	logger           logger.Logger
}

func NewSearcher(client *elasticsearch.Client, restaurantsIndex, menuItemsIndex string, log logger.Logger) *Searcher {
	if restaurantsIndex == "" {
		restaurantsIndex = DefaultRestaurantsIndex
	}
	if menuItemsIndex == "" {
		menuItemsIndex = DefaultMenuItemsIndex
	}
	return &Searcher{
		client:           client,
		restaurantsIndex: restaurantsIndex,
		menuItemsIndex:   menuItemsIndex,
		logger:           log.WithFields(map[string]interface{}{"component": "search"}),
	}
}

type searchResponse[T any] struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Score  float64 `json:"_score"`
			Source T       `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *Searcher) SearchRestaurants(ctx context.Context, query string, limit int) ([]models.Restaurant, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^3", "cuisine^2"},
				"type":      "best_fields",
				"fuzziness": "AUTO",
			},
		},
	}
	return runSearch[models.Restaurant](ctx, s, s.restaurantsIndex, body, limit)
}

// SearchMenuItems only returns available dishes.
func (s *Searcher) SearchMenuItems(ctx context.Context, query string, limit int) ([]models.MenuItem, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []interface{}{
					map[string]interface{}{
						"multi_match": map[string]interface{}{
							"query":     query,
							"fields":    []string{"name^3", "category^2", "description"},
							"type":      "best_fields",
							"fuzziness": "AUTO",
						},
					},
				},
				"filter": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"available": true}},
				},
			},
		},
	}
	return runSearch[models.MenuItem](ctx, s, s.menuItemsIndex, body, limit)
}

func runSearch[T any](ctx context.Context, s *Searcher, index string, body map[string]interface{}, limit int) ([]T, error) {
	if limit <= 0 || limit > maxResults {
		limit = maxResults
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, commonerrors.NewSearchQueryFailedError(index, err))
	}

	req := esapi.SearchRequest{
		Index: []string{index},
		Body:  bytes.NewReader(payload),
		Size:  &limit,
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: %v", ErrSearchTimeout, commonerrors.NewSearchTimeoutError(index))
		}
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, commonerrors.NewSearchQueryFailedError(index, err))
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed,
			commonerrors.NewSearchQueryFailedError(index, errors.New(res.String())))
	}

	var parsed searchResponse[T]
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, commonerrors.NewSearchQueryFailedError(index, err))
	}

	out := make([]T, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		out = append(out, hit.Source)
	}
	s.logger.Debug("search completed", map[string]interface{}{
		"index":     index,
		"totalHits": parsed.Hits.Total.Value,
		"returned":  len(out),
		"took":      parsed.Took,
	})
	return out, nil
}

// IndexCatalog copies every restaurant and menu item from catalog into the
// search indexes. Documents are keyed by ID, so re-running it is safe.
func (s *Searcher) IndexCatalog(ctx context.Context, catalog store.Catalog) error {
	restaurants, err := catalog.ListRestaurants(ctx, store.RestaurantFilter{})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexingFailed, err)
	}
	items, err := catalog.ListMenuItems(ctx, store.MenuFilter{})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexingFailed, err)
	}

	for _, r := range restaurants {
		if err := s.index(ctx, s.restaurantsIndex, r.ID, r); err != nil {
			return err
		}
	}
	for _, item := range items {
		if err := s.index(ctx, s.menuItemsIndex, item.ID, item); err != nil {
			return err
		}
	}

	res, err := s.client.Indices.Refresh(
		s.client.Indices.Refresh.WithContext(ctx),
		s.client.Indices.Refresh.WithIndex(s.restaurantsIndex, s.menuItemsIndex),
	)
	if err != nil {
		return fmt.Errorf("%w: refresh: %v", ErrIndexingFailed, err)
	}
	res.Body.Close()

	s.logger.Info("catalog indexed", map[string]interface{}{
		"restaurants": len(restaurants),
		"menuItems":   len(items),
	})
	return nil
}

func (s *Searcher) index(ctx context.Context, index, id string, doc interface{}) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexingFailed, err)
	}
	req := esapi.IndexRequest{
		Index:      index,
		DocumentID: id,
		Body:       strings.NewReader(string(payload)),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("%w: %s/%s: %v", ErrIndexingFailed, index, id, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("%w: %s/%s: %s", ErrIndexingFailed, index, id, res.String())
	}
	return nil
}
