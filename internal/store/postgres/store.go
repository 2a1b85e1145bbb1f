// Package postgres implements the data-access capability on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	commonerrors "dialogue-orchestrator/internal/common/errors"
	"dialogue-orchestrator/internal/store"
)

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return commonerrors.NewDatabaseConnectionFailedError(err)
	}
	return nil
}

// Migrate creates the schema when it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return queryError("migrate", err)
		}
	}
	return nil
}

func queryError(name string, err error) error {
	return commonerrors.NewQueryExecutionFailedError(name, err)
}

func notFound(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", store.ErrNotFound, fmt.Sprintf(format, args...))
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

var _ store.Store = (*Store)(nil)
