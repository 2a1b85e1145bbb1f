package postgres

// seq columns keep catalog listing order stable across queries.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS restaurants (
		seq                   BIGSERIAL,
		id                    TEXT PRIMARY KEY,
		name                  TEXT NOT NULL,
		cuisine               TEXT NOT NULL DEFAULT '',
		rating                DOUBLE PRECISION NOT NULL DEFAULT 0,
		delivery_time_minutes INTEGER NOT NULL DEFAULT 0,
		delivery_fee          DOUBLE PRECISION NOT NULL DEFAULT 0,
		min_order             DOUBLE PRECISION NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS menu_items (
		seq           BIGSERIAL,
		id            TEXT PRIMARY KEY,
		restaurant_id TEXT NOT NULL REFERENCES restaurants(id),
		name          TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		price         DOUBLE PRECISION NOT NULL,
		category      TEXT NOT NULL DEFAULT '',
		rating        DOUBLE PRECISION NOT NULL DEFAULT 0,
		is_vegetarian BOOLEAN NOT NULL DEFAULT FALSE,
		spice_level   INTEGER,
		calories      INTEGER,
		allergens     TEXT[] NOT NULL DEFAULT '{}',
		available     BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS cart_lines (
		seq           BIGSERIAL,
		user_id       TEXT NOT NULL,
		menu_item_id  TEXT NOT NULL,
		restaurant_id TEXT NOT NULL,
		name          TEXT NOT NULL,
		price         DOUBLE PRECISION NOT NULL,
		quantity      INTEGER NOT NULL,
		PRIMARY KEY (user_id, menu_item_id)
	)`,
	`CREATE TABLE IF NOT EXISTS wishlist_items (
		seq           BIGSERIAL,
		user_id       TEXT NOT NULL,
		menu_item_id  TEXT NOT NULL,
		restaurant_id TEXT NOT NULL,
		name          TEXT NOT NULL,
		added_at      TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, menu_item_id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		seq             BIGSERIAL,
		id              TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL,
		restaurant_id   TEXT NOT NULL,
		restaurant_name TEXT NOT NULL,
		cuisine         TEXT NOT NULL DEFAULT '',
		status          TEXT NOT NULL,
		total           DOUBLE PRECISION NOT NULL,
		address         TEXT NOT NULL,
		placed_at       TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS orders_user_placed_idx ON orders (user_id, placed_at DESC)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		seq          BIGSERIAL,
		order_id     TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		menu_item_id TEXT NOT NULL,
		name         TEXT NOT NULL,
		quantity     INTEGER NOT NULL,
		price        DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_memory (
		user_id    TEXT NOT NULL,
		kind       TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, kind, key)
	)`,
	`CREATE TABLE IF NOT EXISTS user_contacts (
		user_id TEXT PRIMARY KEY,
		email   TEXT NOT NULL DEFAULT '',
		phone   TEXT NOT NULL DEFAULT ''
	)`,
}
