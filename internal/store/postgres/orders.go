package postgres

import (
	"context"
	"time"

	"dialogue-orchestrator/internal/models"

	"github.com/lib/pq"
)

const orderColumns = `id, user_id, restaurant_id, restaurant_name, cuisine, status, total, address, placed_at`

func scanOrder(row rowScanner) (models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.UserID, &o.RestaurantID, &o.RestaurantName, &o.Cuisine, &o.Status, &o.Total, &o.Address, &o.PlacedAt)
	return o, err
}

func (s *Store) CreateOrder(ctx context.Context, order models.Order) error {
	if order.PlacedAt.IsZero() {
		order.PlacedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		order.ID, order.UserID, order.RestaurantID, order.RestaurantName, order.Cuisine,
		string(order.Status), order.Total, order.Address, order.PlacedAt)
	if err != nil {
		return queryError("create_order", err)
	}
	return nil
}

// AddOrderItems inserts every item in one transaction.
func (s *Store) AddOrderItems(ctx context.Context, orderID string, items []models.OrderItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return queryError("add_order_items", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, menu_item_id, name, quantity, price)
			VALUES ($1, $2, $3, $4, $5)`,
			orderID, item.MenuItemID, item.Name, item.Quantity, item.Price); err != nil {
			return queryError("add_order_items", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return queryError("add_order_items", err)
	}
	return nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, string(status), orderID)
	if err != nil {
		return queryError("update_order_status", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return queryError("update_order_status", err)
	}
	if n == 0 {
		return notFound("order %s", orderID)
	}
	return nil
}

// GetOrder matches the ID case-insensitively, since users type it back.
func (s *Store) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE lower(id) = lower($1)`, orderID)
	o, err := scanOrder(row)
	if isNoRows(err) {
		return nil, notFound("order %s", orderID)
	}
	if err != nil {
		return nil, queryError("get_order", err)
	}

	items, err := s.orderItems(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return &o, nil
}

func (s *Store) ListOrders(ctx context.Context, userID string, limit int) ([]models.Order, error) {
	c := conditions{args: []interface{}{userID}}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY placed_at DESC, seq DESC`+c.limit(limit), c.args...)
	if err != nil {
		return nil, queryError("list_orders", err)
	}
	defer rows.Close()

	var (
		out []models.Order
		ids []string
	)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, queryError("list_orders", err)
		}
		out = append(out, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("list_orders", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	items, err := s.orderItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = items[out[i].ID]
	}
	return out, nil
}

func (s *Store) orderItems(ctx context.Context, orderIDs []string) (map[string][]models.OrderItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT order_id, menu_item_id, name, quantity, price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY seq`, pq.Array(orderIDs))
	if err != nil {
		return nil, queryError("list_order_items", err)
	}
	defer rows.Close()

	out := make(map[string][]models.OrderItem, len(orderIDs))
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.OrderID, &item.MenuItemID, &item.Name, &item.Quantity, &item.Price); err != nil {
			return nil, queryError("list_order_items", err)
		}
		out[item.OrderID] = append(out[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("list_order_items", err)
	}
	return out, nil
}

const orderLineQuery = `
	SELECT o.id, o.user_id, oi.menu_item_id, oi.name, COALESCE(m.category, ''),
	       o.restaurant_id, o.restaurant_name, oi.quantity, oi.price, o.placed_at
	FROM order_items oi
	JOIN orders o ON o.id = oi.order_id
	LEFT JOIN menu_items m ON m.id = oi.menu_item_id`

func (s *Store) ListOrderLines(ctx context.Context, userID string, limit int) ([]models.OrderLine, error) {
	c := conditions{args: []interface{}{userID}}
	query := orderLineQuery + `
	WHERE o.user_id = $1
	ORDER BY o.placed_at DESC, o.seq DESC, oi.seq` + c.limit(limit)
	return s.queryOrderLines(ctx, "list_order_lines", query, c.args...)
}

func (s *Store) ListOrderLinesSince(ctx context.Context, since time.Time) ([]models.OrderLine, error) {
	query := orderLineQuery + `
	WHERE o.placed_at >= $1
	ORDER BY o.placed_at, o.seq, oi.seq`
	return s.queryOrderLines(ctx, "list_order_lines_since", query, since)
}

func (s *Store) queryOrderLines(ctx context.Context, name, query string, args ...interface{}) ([]models.OrderLine, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryError(name, err)
	}
	defer rows.Close()

	var out []models.OrderLine
	for rows.Next() {
		var l models.OrderLine
		if err := rows.Scan(&l.OrderID, &l.UserID, &l.MenuItemID, &l.Name, &l.Category,
			&l.RestaurantID, &l.RestaurantName, &l.Quantity, &l.Price, &l.OrderedAt); err != nil {
			return nil, queryError(name, err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(name, err)
	}
	return out, nil
}
