package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.UndoStore = (*UndoRepo)(nil)

// UndoRepo ranura de deshacer por sesión en la tabla compaction_undo (UNDO_STORE=database).
// Al compartir la transacción, el registro se confirma o descarta junto con los movimientos.
type UndoRepo struct {
	q Querier
}

// NewUndoRepository construye el adaptador. Acepta pool o tx (Querier).
func NewUndoRepository(q Querier) *UndoRepo {
	return &UndoRepo{q: q}
}

// Get devuelve el registro de la sesión o (nil, nil).
func (r *UndoRepo) Get(ctx context.Context, sessionID string) (*entity.CompactionUndo, error) {
	var u entity.CompactionUndo
	err := r.q.QueryRow(ctx, `
		SELECT kind, idx, warehouse_id, entries, created_at
		FROM compaction_undo WHERE session_id = $1`, sessionID,
	).Scan(&u.Kind, &u.Index, &u.WarehouseID, &u.Entries, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get undo record: %w", err)
	}
	return &u, nil
}

// Put reemplaza el registro de la sesión.
func (r *UndoRepo) Put(ctx context.Context, sessionID string, record *entity.CompactionUndo) error {
	entries := record.Entries
	if entries == nil {
		entries = []entity.UndoEntry{}
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO compaction_undo (session_id, kind, idx, warehouse_id, entries, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_id) DO UPDATE
		SET kind = EXCLUDED.kind, idx = EXCLUDED.idx, warehouse_id = EXCLUDED.warehouse_id,
		    entries = EXCLUDED.entries, created_at = EXCLUDED.created_at`,
		sessionID, record.Kind, record.Index, record.WarehouseID, entries, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("put undo record: %w", err)
	}
	return nil
}

// Delete vacía la ranura de la sesión.
func (r *UndoRepo) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM compaction_undo WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("delete undo record: %w", err)
	}
	return nil
}
