package order

import (
	"fmt"
	"strings"

	"dialogue-orchestrator/internal/models"
)

const (
	msgNeedRestaurant = "Which restaurant would you like to order from? You can say something like \"order 2 biryanis from Paradise\"."
	msgEmptyCart      = "Your cart is empty. Tell me what you'd like and where from, and I'll add it."
	msgReplayNoMatch  = "None of the items from your last order are available right now. Want me to suggest something similar?"
)

func (h *Handler) render(out *Output) string {
	switch out.Outcome {
	case OutcomeNeedRestaurant:
		if len(out.Unmatched) > 0 {
			return fmt.Sprintf("I couldn't find %s on any menu. %s", strings.Join(out.Unmatched, ", "), msgNeedRestaurant)
		}
		return msgNeedRestaurant
	case OutcomeRestaurantUnknown:
		return fmt.Sprintf("I couldn't find a restaurant called %q. Which restaurant would you like to order from?", out.Unmatched[0])
	case OutcomeNoMenu:
		return fmt.Sprintf("%s is listed, but its menu isn't available yet.", out.Restaurant.Name)
	case OutcomeMenu:
		return fmt.Sprintf("Here's the menu at %s. What would you like?\n%s", out.Restaurant.Name, RenderMenu(out.Menu, h.config.MenuLimit))
	case OutcomeAdded, OutcomePartial:
		var b strings.Builder
		fmt.Fprintf(&b, "Added %s%s to your cart.", joinMatched(out.Matched), fromRestaurant(out.Restaurant))
		if out.Outcome == OutcomePartial {
			fmt.Fprintf(&b, " I couldn't find %s", strings.Join(out.Unmatched, ", "))
			if out.Restaurant != nil {
				fmt.Fprintf(&b, " at %s. Here's what they have:\n%s", out.Restaurant.Name, RenderMenu(out.Menu, h.config.MenuLimit))
			} else {
				b.WriteString(".")
			}
		}
		return b.String()
	case OutcomeNoMatch:
		if len(out.Menu) > 0 && out.Restaurant != nil {
			return fmt.Sprintf("I couldn't find %s at %s. Here's the menu:\n%s",
				strings.Join(out.Unmatched, ", "), out.Restaurant.Name, RenderMenu(out.Menu, h.config.MenuLimit))
		}
		return msgReplayNoMatch
	case OutcomeEmptyCart:
		return msgEmptyCart
	case OutcomePending:
		var b strings.Builder
		fmt.Fprintf(&b, "Almost there! Your order from %s comes to ₹%.0f.", out.Draft.RestaurantName, out.Draft.Total)
		if len(out.Unmatched) > 0 {
			fmt.Fprintf(&b, " %s isn't available anymore, so I left it out.", strings.Join(out.Unmatched, ", "))
		}
		b.WriteString(" Where should I deliver it? Say \"deliver to\" followed by your address.")
		return b.String()
	case OutcomePlaced:
		var b strings.Builder
		b.WriteString("Order placed!")
		for _, o := range out.Orders {
			fmt.Fprintf(&b, "\n%s order #%s for ₹%.0f will be delivered to %s.", o.RestaurantName, shortID(o.ID), o.Total, o.Address)
		}
		if len(out.Unmatched) > 0 {
			fmt.Fprintf(&b, "\n%s isn't available anymore, so I left it out.", strings.Join(out.Unmatched, ", "))
		}
		return b.String()
	}
	return ""
}

// RenderMenu is a numbered menu listing capped at limit entries.
func RenderMenu(items []models.MenuItem, limit int) string {
	var b strings.Builder
	for i, item := range items {
		if limit > 0 && i >= limit {
			fmt.Fprintf(&b, "\n...and %d more", len(items)-limit)
			break
		}
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s - ₹%.0f", i+1, item.Name, item.Price)
		if item.IsVegetarian {
			b.WriteString(" (veg)")
		}
	}
	return b.String()
}

func joinMatched(lines []models.CartLine) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = fmt.Sprintf("%d x %s", l.Quantity, l.Name)
	}
	return strings.Join(parts, ", ")
}

func fromRestaurant(r *models.Restaurant) string {
	if r == nil {
		return ""
	}
	return " from " + r.Name
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
