package postgres

import (
	"context"

	"dialogue-orchestrator/internal/models"
)

const cartColumns = `user_id, menu_item_id, restaurant_id, name, price, quantity`

func scanCartLine(row rowScanner) (models.CartLine, error) {
	var l models.CartLine
	err := row.Scan(&l.UserID, &l.MenuItemID, &l.RestaurantID, &l.Name, &l.Price, &l.Quantity)
	return l, err
}

func (s *Store) ListCart(ctx context.Context, userID string) ([]models.CartLine, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+cartColumns+` FROM cart_lines WHERE user_id = $1 ORDER BY seq`, userID)
	if err != nil {
		return nil, queryError("list_cart", err)
	}
	defer rows.Close()

	var out []models.CartLine
	for rows.Next() {
		l, err := scanCartLine(rows)
		if err != nil {
			return nil, queryError("list_cart", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("list_cart", err)
	}
	return out, nil
}

func (s *Store) GetCartLine(ctx context.Context, userID, menuItemID string) (*models.CartLine, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+cartColumns+` FROM cart_lines WHERE user_id = $1 AND menu_item_id = $2`, userID, menuItemID)
	l, err := scanCartLine(row)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, queryError("get_cart_line", err)
	}
	return &l, nil
}

// UpsertCartLine replaces the line for (user, item). Concurrent writers
// never duplicate a line; the last write wins.
func (s *Store) UpsertCartLine(ctx context.Context, line models.CartLine) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cart_lines (`+cartColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, menu_item_id) DO UPDATE SET
			restaurant_id = EXCLUDED.restaurant_id,
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			quantity = EXCLUDED.quantity`,
		line.UserID, line.MenuItemID, line.RestaurantID, line.Name, line.Price, line.Quantity)
	if err != nil {
		return queryError("upsert_cart_line", err)
	}
	return nil
}

func (s *Store) RemoveCartLine(ctx context.Context, userID, menuItemID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM cart_lines WHERE user_id = $1 AND menu_item_id = $2`, userID, menuItemID); err != nil {
		return queryError("remove_cart_line", err)
	}
	return nil
}

func (s *Store) ClearCart(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE user_id = $1`, userID); err != nil {
		return queryError("clear_cart", err)
	}
	return nil
}

func (s *Store) ListWishlist(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, menu_item_id, restaurant_id, name, added_at
		FROM wishlist_items
		WHERE user_id = $1
		ORDER BY seq`, userID)
	if err != nil {
		return nil, queryError("list_wishlist", err)
	}
	defer rows.Close()

	var out []models.WishlistItem
	for rows.Next() {
		var w models.WishlistItem
		if err := rows.Scan(&w.UserID, &w.MenuItemID, &w.RestaurantID, &w.Name, &w.AddedAt); err != nil {
			return nil, queryError("list_wishlist", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("list_wishlist", err)
	}
	return out, nil
}

// AddWishlistItem is idempotent per (user, item).
func (s *Store) AddWishlistItem(ctx context.Context, item models.WishlistItem) error {
	if item.AddedAt.IsZero() {
		item.AddedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wishlist_items (user_id, menu_item_id, restaurant_id, name, added_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, menu_item_id) DO NOTHING`,
		item.UserID, item.MenuItemID, item.RestaurantID, item.Name, item.AddedAt)
	if err != nil {
		return queryError("add_wishlist_item", err)
	}
	return nil
}

func (s *Store) RemoveWishlistItem(ctx context.Context, userID, menuItemID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM wishlist_items WHERE user_id = $1 AND menu_item_id = $2`, userID, menuItemID); err != nil {
		return queryError("remove_wishlist_item", err)
	}
	return nil
}
