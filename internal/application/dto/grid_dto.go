package dto

import "time"

// WarehouseResponse bodega con su extensión de cuadrícula.
type WarehouseResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	RowsCount    int       `json:"rows_count"`
	ColumnsCount int       `json:"columns_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateWarehouseRequest body para POST /api/warehouses.
type CreateWarehouseRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Rows        int    `json:"rows"`
	Columns     int    `json:"columns"`
}

// GrowGridRequest body para agregar filas o columnas.
type GrowGridRequest struct {
	Count int `json:"count"`
}

// MoveProductRequest body para mover un producto con cascada.
type MoveProductRequest struct {
	NewLocation string `json:"new_location"` // "R<fila>C<columna>"
}

// AssignLocationRequest body para PUT /api/products/:id/location. null desvincula.
type AssignLocationRequest struct {
	LocationID *string `json:"location_id"`
}

// SyncCellsResponse resultado de sincronizar celdas.
type SyncCellsResponse struct {
	Created int `json:"created"`
}

// CellProductResponse producto ubicado en una celda.
type CellProductResponse struct {
	ID            string `json:"id"`
	ProductNumber string `json:"product_number"`
	Name          string `json:"name"`
	Quantity      int    `json:"quantity"`
}

// CellResponse celda de la cuadrícula.
type CellResponse struct {
	LocationID string                `json:"location_id"`
	Row        int                   `json:"row"`
	Column     int                   `json:"column"`
	Label      string                `json:"label"`
	Products   []CellProductResponse `json:"products"`
}

// GridResponse vista de la cuadrícula.
type GridResponse struct {
	Warehouse WarehouseResponse `json:"warehouse"`
	Cells     []CellResponse    `json:"cells"`
}
