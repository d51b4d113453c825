package repository

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// UndoStore ranura única de deshacer por sesión; la última escritura gana.
// Get devuelve (nil, nil) si la sesión no tiene registro.
type UndoStore interface {
	Get(ctx context.Context, sessionID string) (*entity.CompactionUndo, error)
	Put(ctx context.Context, sessionID string, record *entity.CompactionUndo) error
	Delete(ctx context.Context, sessionID string) error
}
