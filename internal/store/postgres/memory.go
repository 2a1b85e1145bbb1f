package postgres

import (
	"context"

	"dialogue-orchestrator/internal/models"
)

func (s *Store) ListMemory(ctx context.Context, userID string) ([]models.MemoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, kind, key, value, updated_at
		FROM user_memory
		WHERE user_id = $1
		ORDER BY updated_at, kind, key`, userID)
	if err != nil {
		return nil, queryError("list_memory", err)
	}
	defer rows.Close()

	var out []models.MemoryEntry
	for rows.Next() {
		var e models.MemoryEntry
		if err := rows.Scan(&e.UserID, &e.Kind, &e.Key, &e.Value, &e.UpdatedAt); err != nil {
			return nil, queryError("list_memory", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("list_memory", err)
	}
	return out, nil
}

func (s *Store) UpsertMemory(ctx context.Context, entry models.MemoryEntry) error {
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_memory (user_id, kind, key, value, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, kind, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at`,
		entry.UserID, string(entry.Kind), entry.Key, entry.Value, entry.UpdatedAt)
	if err != nil {
		return queryError("upsert_memory", err)
	}
	return nil
}

func (s *Store) DeleteMemoryKind(ctx context.Context, userID string, kind models.MemoryKind) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM user_memory WHERE user_id = $1 AND kind = $2`, userID, string(kind)); err != nil {
		return queryError("delete_memory_kind", err)
	}
	return nil
}

func (s *Store) GetContact(ctx context.Context, userID string) (*models.Contact, error) {
	var c models.Contact
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, email, phone FROM user_contacts WHERE user_id = $1`, userID).
		Scan(&c.UserID, &c.Email, &c.Phone)
	if isNoRows(err) {
		return nil, notFound("contact %s", userID)
	}
	if err != nil {
		return nil, queryError("get_contact", err)
	}
	return &c, nil
}

// UpsertContact stores where order confirmations go.
func (s *Store) UpsertContact(ctx context.Context, c models.Contact) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_contacts (user_id, email, phone)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET email = EXCLUDED.email, phone = EXCLUDED.phone`,
		c.UserID, c.Email, c.Phone)
	if err != nil {
		return queryError("upsert_contact", err)
	}
	return nil
}
