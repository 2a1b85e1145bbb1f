package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"dialogue-orchestrator/internal/models"
	"dialogue-orchestrator/internal/store"

	"github.com/lib/pq"
)

const (
	restaurantColumns = `id, name, cuisine, rating, delivery_time_minutes, delivery_fee, min_order`
	menuItemColumns   = `id, restaurant_id, name, description, price, category, rating, is_vegetarian, spice_level, calories, allergens, available`
)

// conditions accumulates WHERE clauses with positional placeholders.
type conditions struct {
	clauses []string
	args    []interface{}
}

func (c *conditions) add(clause string, arg interface{}) {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, fmt.Sprintf(clause, len(c.args)))
}

func (c *conditions) addRaw(clause string) {
	c.clauses = append(c.clauses, clause)
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

func (c *conditions) limit(n int) string {
	if n <= 0 {
		return ""
	}
	c.args = append(c.args, n)
	return fmt.Sprintf(" LIMIT $%d", len(c.args))
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRestaurant(row rowScanner) (models.Restaurant, error) {
	var r models.Restaurant
	err := row.Scan(&r.ID, &r.Name, &r.Cuisine, &r.Rating, &r.DeliveryTimeMinutes, &r.DeliveryFee, &r.MinOrder)
	return r, err
}

func scanMenuItem(row rowScanner) (models.MenuItem, error) {
	var (
		item      models.MenuItem
		spice     sql.NullInt64
		calories  sql.NullInt64
		allergens pq.StringArray
	)
	err := row.Scan(&item.ID, &item.RestaurantID, &item.Name, &item.Description, &item.Price,
		&item.Category, &item.Rating, &item.IsVegetarian, &spice, &calories, &allergens, &item.Available)
	if err != nil {
		return item, err
	}
	if spice.Valid {
		v := int(spice.Int64)
		item.SpiceLevel = &v
	}
	if calories.Valid {
		v := int(calories.Int64)
		item.Calories = &v
	}
	if len(allergens) > 0 {
		item.Allergens = []string(allergens)
	}
	return item, nil
}

func (s *Store) ListRestaurants(ctx context.Context, filter store.RestaurantFilter) ([]models.Restaurant, error) {
	var c conditions
	if filter.NameContains != "" {
		c.add("name ILIKE '%%' || $%d || '%%'", filter.NameContains)
	}
	if filter.Cuisine != "" {
		c.add("cuisine ILIKE '%%' || $%d || '%%'", filter.Cuisine)
	}
	if filter.MinRating > 0 {
		c.add("rating >= $%d", filter.MinRating)
	}
	query := `SELECT ` + restaurantColumns + ` FROM restaurants` + c.where() + ` ORDER BY seq` + c.limit(filter.Limit)

	rows, err := s.db.QueryContext(ctx, query, c.args...)
	if err != nil {
		return nil, queryError("list_restaurants", err)
	}
	defer rows.Close()

	var out []models.Restaurant
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, queryError("list_restaurants", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("list_restaurants", err)
	}
	return out, nil
}

func (s *Store) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1`, id)
	r, err := scanRestaurant(row)
	if isNoRows(err) {
		return nil, notFound("restaurant %s", id)
	}
	if err != nil {
		return nil, queryError("get_restaurant", err)
	}
	return &r, nil
}

// FindRestaurantByName prefers an exact case-insensitive match and falls
// back to substring matching in either direction.
func (s *Store) FindRestaurantByName(ctx context.Context, name string) (*models.Restaurant, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+restaurantColumns+`
		FROM restaurants
		WHERE lower(name) = lower($1)
		   OR strpos(lower(name), lower($1)) > 0
		   OR strpos(lower($1), lower(name)) > 0
		ORDER BY (lower(name) = lower($1)) DESC, seq
		LIMIT 1`, name)
	r, err := scanRestaurant(row)
	if isNoRows(err) {
		return nil, notFound("restaurant %q", name)
	}
	if err != nil {
		return nil, queryError("find_restaurant_by_name", err)
	}
	return &r, nil
}

var menuOrderColumns = map[string]string{
	"price":  "price",
	"rating": "rating",
	"name":   "name",
}

func (s *Store) ListMenuItems(ctx context.Context, filter store.MenuFilter) ([]models.MenuItem, error) {
	var c conditions
	if filter.RestaurantID != "" {
		c.add("restaurant_id = $%d", filter.RestaurantID)
	}
	if filter.NameContains != "" {
		c.add("name ILIKE '%%' || $%d || '%%'", filter.NameContains)
	}
	if filter.Category != "" {
		c.add("category ILIKE '%%' || $%d || '%%'", filter.Category)
	}
	if filter.MaxPrice != nil {
		c.add("price <= $%d", *filter.MaxPrice)
	}
	if filter.MinRating > 0 {
		c.add("rating >= $%d", filter.MinRating)
	}
	if filter.Vegetarian != nil {
		c.add("is_vegetarian = $%d", *filter.Vegetarian)
	}
	if filter.MaxSpice != nil {
		c.add("(spice_level IS NULL OR spice_level <= $%d)", *filter.MaxSpice)
	}
	if filter.AvailableOnly {
		c.addRaw("available")
	}

	order := " ORDER BY seq"
	if col, ok := menuOrderColumns[filter.OrderBy]; ok {
		dir := "ASC"
		if filter.Descending {
			dir = "DESC"
		}
		order = fmt.Sprintf(" ORDER BY %s %s, seq", col, dir)
	}
	query := `SELECT ` + menuItemColumns + ` FROM menu_items` + c.where() + order + c.limit(filter.Limit)

	rows, err := s.db.QueryContext(ctx, query, c.args...)
	if err != nil {
		return nil, queryError("list_menu_items", err)
	}
	defer rows.Close()

	var out []models.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, queryError("list_menu_items", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("list_menu_items", err)
	}
	return out, nil
}

func (s *Store) GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+menuItemColumns+` FROM menu_items WHERE id = $1`, id)
	item, err := scanMenuItem(row)
	if isNoRows(err) {
		return nil, notFound("menu item %s", id)
	}
	if err != nil {
		return nil, queryError("get_menu_item", err)
	}
	return &item, nil
}

// UpsertRestaurant and UpsertMenuItem load catalog data, typically from the
// demo seed.
func (s *Store) UpsertRestaurant(ctx context.Context, r models.Restaurant) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO restaurants (`+restaurantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			cuisine = EXCLUDED.cuisine,
			rating = EXCLUDED.rating,
			delivery_time_minutes = EXCLUDED.delivery_time_minutes,
			delivery_fee = EXCLUDED.delivery_fee,
			min_order = EXCLUDED.min_order`,
		r.ID, r.Name, r.Cuisine, r.Rating, r.DeliveryTimeMinutes, r.DeliveryFee, r.MinOrder)
	if err != nil {
		return queryError("upsert_restaurant", err)
	}
	return nil
}

func (s *Store) UpsertMenuItem(ctx context.Context, item models.MenuItem) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO menu_items (`+menuItemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			restaurant_id = EXCLUDED.restaurant_id,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			category = EXCLUDED.category,
			rating = EXCLUDED.rating,
			is_vegetarian = EXCLUDED.is_vegetarian,
			spice_level = EXCLUDED.spice_level,
			calories = EXCLUDED.calories,
			allergens = EXCLUDED.allergens,
			available = EXCLUDED.available`,
		item.ID, item.RestaurantID, item.Name, item.Description, item.Price, item.Category, item.Rating,
		item.IsVegetarian, nullInt(item.SpiceLevel), nullInt(item.Calories), pq.Array(allergenList(item.Allergens)), item.Available)
	if err != nil {
		return queryError("upsert_menu_item", err)
	}
	return nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

// allergenList keeps the column NOT NULL; pq encodes a nil slice as NULL.
func allergenList(a []string) []string {
	if a == nil {
		return []string{}
	}
	return a
}

// SeedDemo upserts the demo catalog.
func (s *Store) SeedDemo(ctx context.Context) error {
	restaurants, items := store.DemoCatalog()
	for _, r := range restaurants {
		if err := s.UpsertRestaurant(ctx, r); err != nil {
			return err
		}
	}
	for _, item := range items {
		if err := s.UpsertMenuItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}
