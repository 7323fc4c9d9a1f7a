// Package repo holds the PostgreSQL implementations of the domain stores.
// Every query lives in internal/sqlinline and carries a --sql marker that the
// SQL runner logs.
package repo

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"pawshearts/internal/adapter/repo/migrations"
	"pawshearts/internal/domain"
	"pawshearts/internal/infra"
	"pawshearts/internal/infra/migrate"
)

// Store bundles the PostgreSQL repositories into a domain.Store.
type Store struct {
	*LedgerRepositoryPG
	*CommissionRepositoryPG
	*PinRepositoryPG
	closeFn func()
}

// NewStore builds the repositories on db and seeds the ledger row. closeFn,
// when non-nil, releases the underlying pool on Close.
func NewStore(ctx context.Context, db infra.Transactor, seed domain.ImpactLedger, closeFn func()) (*Store, error) {
	s := &Store{
		LedgerRepositoryPG:     NewLedgerRepository(db),
		CommissionRepositoryPG: NewCommissionRepository(db),
		PinRepositoryPG:        NewPinRepository(db),
		closeFn:                closeFn,
	}
	if err := s.EnsureSeed(ctx, seed); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// Migrate applies the embedded schema to the database at databaseURL.
func Migrate(ctx context.Context, databaseURL string) error {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return migrate.Apply(ctx, db, migrations.FS, ".", migrate.Postgres)
}

var _ domain.Store = (*Store)(nil)
