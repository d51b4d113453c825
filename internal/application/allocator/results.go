package allocator

import "github.com/jhoicas/Almacen-api/internal/domain/entity"

// CellMove cambio de celda de un producto, con las celdas en formato "R<fila>C<columna>".
type CellMove struct {
	ProductID     string `json:"product_id"`
	ProductNumber string `json:"product_number"`
	From          string `json:"from"`
	To            string `json:"to"`
}

// AssignResult resultado de Assign. NoChange: el producto ya estaba en esa celda (o sin ubicación).
type AssignResult struct {
	CellMove
	NoChange bool `json:"no_change"`
}

// CompactionResult resultado de CompactRow / CompactColumn.
type CompactionResult struct {
	WarehouseID string     `json:"warehouse_id"`
	Kind        string     `json:"type"`
	Index       int        `json:"index"`
	Moves       []CellMove `json:"moves"`
}

// MoveResult resultado de Move. Shifted son los productos desplazados por la cascada
// o por el cierre de hueco, en el orden en que se escribieron.
type MoveResult struct {
	CellMove
	Shifted   []CellMove `json:"shifted"`
	RowsAdded int        `json:"rows_added"`
	NoChange  bool       `json:"no_change"`
}

// RevertResult resultado de deshacer la última compactación o movimiento.
type RevertResult struct {
	WarehouseID string     `json:"warehouse_id"`
	Kind        string     `json:"type"`
	Index       int        `json:"index"`
	Restored    []CellMove `json:"restored"`
	Skipped     int        `json:"skipped"`
}

// CellView celda de la vista de cuadrícula.
type CellView struct {
	LocationID string          `json:"location_id"`
	Row        int             `json:"row"`
	Column     int             `json:"column"`
	Label      string          `json:"label"`
	Products   []ProductInCell `json:"products"`
}

// ProductInCell producto ubicado en una celda.
type ProductInCell struct {
	ID            string `json:"id"`
	ProductNumber string `json:"product_number"`
	Name          string `json:"name"`
	Quantity      int    `json:"quantity"`
}

// GridView vista de solo lectura de la cuadrícula de una bodega.
type GridView struct {
	Warehouse *entity.Warehouse
	Cells     []CellView
}

// Cell celda en (row, column) o nil.
func (g *GridView) Cell(row, column int) *CellView {
	for i := range g.Cells {
		if g.Cells[i].Row == row && g.Cells[i].Column == column {
			return &g.Cells[i]
		}
	}
	return nil
}
