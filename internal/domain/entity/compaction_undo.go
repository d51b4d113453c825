package entity

import "time"

// Tipos de operación que dejan registro de deshacer.
const (
	UndoKindRow    = "row"
	UndoKindColumn = "column"
)

// UndoEntry ubicación previa de un producto movido. LocationID nil = no tenía ubicación.
type UndoEntry struct {
	ProductID  string  `json:"product_id"`
	LocationID *string `json:"location_id"`
}

// CompactionUndo registro de un solo nivel para revertir la última compactación o movimiento en cascada.
type CompactionUndo struct {
	Kind        string      `json:"type"`
	Index       int         `json:"id"`
	WarehouseID string      `json:"warehouse_id"`
	Entries     []UndoEntry `json:"data"`
	CreatedAt   time.Time   `json:"timestamp"`
}

// Empty indica que no hay nada que restaurar.
func (u *CompactionUndo) Empty() bool {
	return u == nil || len(u.Entries) == 0
}
