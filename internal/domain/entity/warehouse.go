package entity

import (
	"fmt"
	"time"
)

// Warehouse representa una bodega con su cuadrícula de ubicaciones (filas × columnas).
type Warehouse struct {
	ID           string
	Name         string
	Description  string
	RowsCount    int
	ColumnsCount int
	CreatedAt    time.Time
}

// Location es una celda (fila, columna) de la cuadrícula de una bodega.
// La regla de un producto por celda la impone el asignador, no el esquema.
type Location struct {
	ID          string
	WarehouseID string
	Row         int
	Column      int
	Notes       string
	IsActive    bool
}

// Label devuelve la referencia textual de la celda, por ejemplo "R3C2".
func (l *Location) Label() string {
	if l == nil {
		return "sin ubicación"
	}
	return fmt.Sprintf("R%dC%d", l.Row, l.Column)
}
