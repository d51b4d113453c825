package repository

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// LocationRepository puerto de las celdas de la cuadrícula.
// GetByID y GetByPosition devuelven (nil, nil) si la celda no existe.
type LocationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	GetByPosition(ctx context.Context, warehouseID string, row, column int) (*entity.Location, error)
	// ListByRow celdas de la fila ordenadas por columna.
	ListByRow(ctx context.Context, warehouseID string, row int) ([]*entity.Location, error)
	// ListByColumn celdas de la columna ordenadas por fila.
	ListByColumn(ctx context.Context, warehouseID string, column int) ([]*entity.Location, error)
	ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.Location, error)
	// EnsureCells crea las celdas faltantes del rectángulo rows × columns y devuelve cuántas creó.
	EnsureCells(ctx context.Context, warehouseID string, rows, columns int) (int, error)
}
