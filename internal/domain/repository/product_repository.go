package repository

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID y GetForUpdate devuelven (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// ListByNumbers lectura sin bloqueo; los números inexistentes simplemente no aparecen.
	ListByNumbers(ctx context.Context, numbers []string) ([]*entity.Product, error)
	// LockByNumbers bloquea las filas en orden lexicográfico de product_number.
	// Es el único orden de bloqueo de productos permitido: evita interbloqueos entre lotes.
	LockByNumbers(ctx context.Context, numbers []string) ([]*entity.Product, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Product, error)
	// ListByLocations productos que referencian alguna de las celdas dadas.
	ListByLocations(ctx context.Context, locationIDs []string) ([]*entity.Product, error)
	UpdateQuantity(ctx context.Context, id string, quantity int) error
	UpdateLocation(ctx context.Context, id string, locationID *string) error
}
