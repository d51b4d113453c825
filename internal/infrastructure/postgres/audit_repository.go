package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

// AuditLogRepo bitácora de auditoría: solo inserción.
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository construye el adaptador. Acepta pool o tx (Querier).
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

// Create inserta una entrada.
func (r *AuditLogRepo) Create(ctx context.Context, e *entity.AuditLog) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT INTO audit_logs (id, action, product_id, product_number, quantity_before, quantity_after, quantity_change, notes, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.Action, e.ProductID, e.ProductNumber, e.QuantityBefore, e.QuantityAfter,
		e.QuantityChange, e.Notes, e.User, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// ListByProduct entradas del producto en orden cronológico.
func (r *AuditLogRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.AuditLog, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, action, product_id, product_number, quantity_before, quantity_after, quantity_change, notes, actor, created_at
		FROM audit_logs WHERE product_id = $1 ORDER BY created_at, id`, productID)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuditLog
	for rows.Next() {
		var e entity.AuditLog
		if err := rows.Scan(
			&e.ID, &e.Action, &e.ProductID, &e.ProductNumber, &e.QuantityBefore, &e.QuantityAfter,
			&e.QuantityChange, &e.Notes, &e.User, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
