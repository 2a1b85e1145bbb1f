package wishlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	commonerrors "dialogue-orchestrator/internal/common/errors"
	"dialogue-orchestrator/internal/common/logger"
	"dialogue-orchestrator/internal/models"
	"dialogue-orchestrator/internal/store"
	"dialogue-orchestrator/internal/utility"
)

const (
	Name = "wishlist"
)

var (
	ErrWishlistUpdateFailed = errors.New("WISHLIST_UPDATE_FAILED")
	ErrMissingUser          = errors.New("MISSING_USER")
)

type Dependencies struct {
	Wishlists store.Wishlists
	Catalog   store.Catalog
	Now       func() time.Time
}

type Handler struct {
	config *Config
	deps   Dependencies
	logger logger.Logger
}

func NewHandler(config *Config, deps Dependencies, log logger.Logger) *Handler {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Handler{
		config: config,
		deps:   deps,
		logger: log.WithFields(map[string]interface{}{"agent": Name}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.UserID == "" {
		return nil, ErrMissingUser
	}
	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	out := &Output{Action: input.Action}

	var err error
	switch input.Action {
	case models.ActionAdd:
		err = h.add(ctx, input, out)
	case models.ActionRemove:
		err = h.remove(ctx, input, out)
	default:
		out.Action = models.ActionNone
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWishlistUpdateFailed, commonerrors.NewWishlistUpdateFailedError(err))
	}

	items, err := h.deps.Wishlists.ListWishlist(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWishlistUpdateFailed, commonerrors.NewWishlistUpdateFailedError(err))
	}
	out.Items = items
	out.Response = h.render(out)

	h.logger.Info("wishlist processed", map[string]interface{}{
		"userId":  input.UserID,
		"action":  out.Action,
		"items":   len(items),
		"changed": len(out.Changed),
	})
	return out, nil
}

// add is idempotent: saving an item twice leaves one entry.
func (h *Handler) add(ctx context.Context, input *Input, out *Output) error {
	if len(input.Items) == 0 {
		return nil
	}
	menu, err := h.deps.Catalog.ListMenuItems(ctx, store.MenuFilter{RestaurantID: input.RestaurantID})
	if err != nil {
		return err
	}
	for _, mention := range input.Items {
		item, ok := utility.MatchItem(menu, mention.Name)
		if !ok {
			out.Unmatched = append(out.Unmatched, mention.Name)
			continue
		}
		err := h.deps.Wishlists.AddWishlistItem(ctx, models.WishlistItem{
			UserID:       input.UserID,
			MenuItemID:   item.ID,
			RestaurantID: item.RestaurantID,
			Name:         item.Name,
			AddedAt:      h.deps.Now(),
		})
		if err != nil {
			return err
		}
		out.Changed = append(out.Changed, item.Name)
	}
	return nil
}

func (h *Handler) remove(ctx context.Context, input *Input, out *Output) error {
	items, err := h.deps.Wishlists.ListWishlist(ctx, input.UserID)
	if err != nil {
		return err
	}
	names := make([]string, len(items))
	for i, w := range items {
		names[i] = w.Name
	}
	for _, mention := range input.Items {
		i := utility.MatchName(names, mention.Name)
		if i < 0 {
			out.Unmatched = append(out.Unmatched, mention.Name)
			continue
		}
		if err := h.deps.Wishlists.RemoveWishlistItem(ctx, input.UserID, items[i].MenuItemID); err != nil {
			return err
		}
		out.Changed = append(out.Changed, items[i].Name)
	}
	return nil
}

func (h *Handler) render(out *Output) string {
	var b strings.Builder
	if len(out.Changed) > 0 {
		switch out.Action {
		case models.ActionAdd:
			fmt.Fprintf(&b, "Saved %s to your wishlist.", strings.Join(out.Changed, ", "))
		case models.ActionRemove:
			fmt.Fprintf(&b, "Removed %s from your wishlist.", strings.Join(out.Changed, ", "))
		}
	}
	if len(out.Unmatched) > 0 {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "I couldn't find %s.", strings.Join(out.Unmatched, ", "))
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}

	if len(out.Items) == 0 {
		b.WriteString("Your wishlist is empty.")
		return b.String()
	}
	b.WriteString("Your wishlist:")
	for i, w := range out.Items {
		if h.config.DisplayLimit > 0 && i >= h.config.DisplayLimit {
			fmt.Fprintf(&b, "\n...and %d more", len(out.Items)-h.config.DisplayLimit)
			break
		}
		fmt.Fprintf(&b, "\n%d. %s", i+1, w.Name)
	}
	return b.String()
}
