package repository

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// AuditLogRepository bitácora de solo inserción.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *entity.AuditLog) error
	ListByProduct(ctx context.Context, productID string) ([]*entity.AuditLog, error)
}
