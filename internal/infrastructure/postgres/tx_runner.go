package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Almacen-api/internal/application/allocator"
	"github.com/jhoicas/Almacen-api/internal/application/ledger"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/undo"
)

var (
	_ ledger.TxRunner    = (*TxRunner)(nil)
	_ allocator.TxRunner = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
	undo repository.UndoStore
}

// TxOption configura el runner.
type TxOption func(*TxRunner)

// WithUndoStore sustituye la tabla compaction_undo por otra ranura (p. ej. Redis).
// Esa ranura queda fuera de la transacción: sus escrituras se publican después del commit.
func WithUndoStore(u repository.UndoStore) TxOption {
	return func(r *TxRunner) { r.undo = u }
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool, opts ...TxOption) *TxRunner {
	r := &TxRunner{pool: pool}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewRepos arma el conjunto de repositorios sobre un Querier (pool o tx).
func NewRepos(q Querier) repository.Repos {
	return repository.Repos{
		Products:   NewProductRepository(q),
		Warehouses: NewWarehouseRepository(q),
		Locations:  NewLocationRepository(q),
		Audit:      NewAuditLogRepository(q),
		Orders:     NewWithdrawalOrderRepository(q),
		Returns:    NewProductReturnRepository(q),
		Undo:       NewUndoRepository(q),
	}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repository.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := NewRepos(tx)
	var staged *undo.Staged
	if r.undo != nil {
		staged = undo.Stage(r.undo)
		repos.Undo = staged
	}

	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	if staged != nil {
		return staged.Flush(ctx)
	}
	return nil
}
