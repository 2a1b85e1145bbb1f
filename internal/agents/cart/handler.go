// Package cart implements the cart task agent: add, remove, update and
// clear lines, or list the current contents.
package cart

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
	Name = "cart"
)

var (
	ErrCartUpdateFailed = errors.New("CART_UPDATE_FAILED")
	ErrMissingUser      = errors.New("MISSING_USER")
)

// MemoryWriter records the cart snapshot after a mutation.
type MemoryWriter interface {
	SetJSON(ctx context.Context, userID string, kind models.MemoryKind, key string, v interface{}) error
}

type Dependencies struct {
	Carts   store.Carts
	Catalog store.Catalog
	Memory  MemoryWriter
	Now     func() time.Time
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
	case models.ActionUpdate:
		err = h.update(ctx, input, out)
	case models.ActionClear:
		if err = h.deps.Carts.ClearCart(ctx, input.UserID); err == nil {
			out.Changed = []string{"all items"}
		}
	default:
		out.Action = models.ActionNone
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCartUpdateFailed, commonerrors.NewCartUpdateFailedError(err))
	}

	lines, err := h.deps.Carts.ListCart(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCartUpdateFailed, commonerrors.NewCartUpdateFailedError(err))
	}
	out.Lines = lines
	out.Total = models.CartTotal(lines)

	if out.Action.IsMutation() {
		h.snapshot(ctx, input.UserID, lines)
	}

	out.Response = h.render(out)

	h.logger.Info("cart processed", map[string]interface{}{
		"userId":    input.UserID,
		"action":    out.Action,
		"lines":     len(lines),
		"changed":   len(out.Changed),
		"unmatched": len(out.Unmatched),
	})
	return out, nil
}

func (h *Handler) add(ctx context.Context, input *Input, out *Output) error {
	if len(input.Items) == 0 {
		return nil
	}
	menu, err := h.deps.Catalog.ListMenuItems(ctx, store.MenuFilter{
		RestaurantID:  input.RestaurantID,
		AvailableOnly: true,
	})
	if err != nil {
		return err
	}

	for _, mention := range input.Items {
		item, ok := utility.MatchItem(menu, mention.Name)
		if !ok {
			out.Unmatched = append(out.Unmatched, mention.Name)
			continue
		}
		qty := mention.Quantity
		if qty <= 0 {
			qty = 1
		}
		if err := AddLine(ctx, h.deps.Carts, input.UserID, item, qty); err != nil {
			return err
		}
		out.Changed = append(out.Changed, fmt.Sprintf("%d x %s", qty, item.Name))
	}
	return nil
}

// AddLine increments the user's line for item by qty, creating it when
// absent. The read and the write are not atomic; concurrent increments on the
// same line resolve last-write-wins.
func AddLine(ctx context.Context, carts store.Carts, userID string, item models.MenuItem, qty int) error {
	existing, err := carts.GetCartLine(ctx, userID, item.ID)
	if err != nil {
		return err
	}
	line := models.CartLine{
		UserID:       userID,
		MenuItemID:   item.ID,
		RestaurantID: item.RestaurantID,
		Name:         item.Name,
		Price:        item.Price,
		Quantity:     qty,
	}
	if existing != nil {
		line.Quantity += existing.Quantity
	}
	return carts.UpsertCartLine(ctx, line)
}

func (h *Handler) remove(ctx context.Context, input *Input, out *Output) error {
	lines, err := h.deps.Carts.ListCart(ctx, input.UserID)
	if err != nil {
		return err
	}
	for _, mention := range input.Items {
		line, ok := matchLine(lines, mention.Name)
		if !ok {
			out.Unmatched = append(out.Unmatched, mention.Name)
			continue
		}
		if err := h.deps.Carts.RemoveCartLine(ctx, input.UserID, line.MenuItemID); err != nil {
			return err
		}
		out.Changed = append(out.Changed, line.Name)
	}
	return nil
}

func (h *Handler) update(ctx context.Context, input *Input, out *Output) error {
	lines, err := h.deps.Carts.ListCart(ctx, input.UserID)
	if err != nil {
		return err
	}
	for _, mention := range input.Items {
		line, ok := matchLine(lines, mention.Name)
		if !ok {
			out.Unmatched = append(out.Unmatched, mention.Name)
			continue
		}
		if mention.Quantity <= 0 {
			if err := h.deps.Carts.RemoveCartLine(ctx, input.UserID, line.MenuItemID); err != nil {
				return err
			}
			out.Changed = append(out.Changed, line.Name)
			continue
		}
		line.Quantity = mention.Quantity
		if err := h.deps.Carts.UpsertCartLine(ctx, line); err != nil {
			return err
		}
		out.Changed = append(out.Changed, fmt.Sprintf("%d x %s", line.Quantity, line.Name))
	}
	return nil
}

func matchLine(lines []models.CartLine, mention string) (models.CartLine, bool) {
	names := make([]string, len(lines))
	for i, l := range lines {
		names[i] = l.Name
	}
	if i := utility.MatchName(names, mention); i >= 0 {
		return lines[i], true
	}
	return models.CartLine{}, false
}

// NewSnapshot summarizes lines for the cart_state memory entry.
func NewSnapshot(lines []models.CartLine, at time.Time) models.CartSnapshot {
	snap := models.CartSnapshot{
		Lines:     len(lines),
		Total:     models.CartTotal(lines),
		UpdatedAt: at,
	}
	for _, l := range lines {
		snap.Items += l.Quantity
	}
	return snap
}

func (h *Handler) snapshot(ctx context.Context, userID string, lines []models.CartLine) {
	if h.deps.Memory == nil {
		return
	}
	snap := NewSnapshot(lines, h.deps.Now())
	if err := h.deps.Memory.SetJSON(ctx, userID, models.MemoryCartState, models.CartStateKey, snap); err != nil {
		h.logger.Warn("cart snapshot not saved", map[string]interface{}{
			"userId": userID,
			"error":  err,
		})
	}
}

func (h *Handler) render(out *Output) string {
	var b strings.Builder
	switch out.Action {
	case models.ActionAdd, models.ActionUpdate:
		if len(out.Changed) > 0 {
			fmt.Fprintf(&b, "Updated your cart: %s.", strings.Join(out.Changed, ", "))
		}
	case models.ActionRemove:
		if len(out.Changed) > 0 {
			fmt.Fprintf(&b, "Removed %s from your cart.", strings.Join(out.Changed, ", "))
		}
	case models.ActionClear:
		return "Your cart is now empty."
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
	b.WriteString(RenderLines(out.Lines, h.config.DisplayLimit))
	return b.String()
}

// RenderLines is the numbered cart listing shared with checkout prompts.
func RenderLines(lines []models.CartLine, limit int) string {
	if len(lines) == 0 {
		return "Your cart is empty."
	}
	var b strings.Builder
	b.WriteString("Your cart:")
	for i, l := range lines {
		if limit > 0 && i >= limit {
			fmt.Fprintf(&b, "\n...and %d more", len(lines)-limit)
			break
		}
		fmt.Fprintf(&b, "\n%d. %s x%d - ₹%.0f", i+1, l.Name, l.Quantity, l.Subtotal())
	}
	fmt.Fprintf(&b, "\nTotal: ₹%.0f", models.CartTotal(lines))
	return b.String()
}
