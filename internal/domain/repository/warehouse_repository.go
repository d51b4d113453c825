package repository

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// WarehouseRepository define el puerto de persistencia para Warehouse (DIP).
// GetByID y GetForUpdate devuelven (nil, nil) si la bodega no existe.
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *entity.Warehouse) error
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
	// GetForUpdate bloquea la bodega; toda operación del asignador lo llama primero
	// para serializar los cambios de cuadrícula por bodega.
	GetForUpdate(ctx context.Context, id string) (*entity.Warehouse, error)
	UpdateGridSize(ctx context.Context, id string, rows, columns int) error
	List(ctx context.Context) ([]*entity.Warehouse, error)
}
