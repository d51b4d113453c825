package repository

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// WithdrawalOrderRepository órdenes de retiro (solo inserción).
// Create devuelve domain.ErrDuplicate si el número de orden ya existe.
type WithdrawalOrderRepository interface {
	Create(ctx context.Context, order *entity.WithdrawalOrder) error
	GetByNumber(ctx context.Context, orderNumber string) (*entity.WithdrawalOrder, error)
	// ListRecent órdenes más recientes primero.
	ListRecent(ctx context.Context, limit int) ([]*entity.WithdrawalOrder, error)
}

// ProductReturnRepository devoluciones (solo inserción).
// Create devuelve domain.ErrDuplicate si el número de devolución ya existe.
type ProductReturnRepository interface {
	Create(ctx context.Context, ret *entity.ProductReturn) error
}
