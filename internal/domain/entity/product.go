package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo.
// Quantity solo la modifica el libro de retiros; LocationID solo el asignador de la cuadrícula.
type Product struct {
	ID            string
	ProductNumber string // clave única, sensible a mayúsculas
	Name          string
	Category      string
	Quantity      int
	LocationID    *string          // nil = sin ubicación
	Price         *decimal.Decimal // precio opcional
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasLocation indica si el producto ocupa alguna celda.
func (p *Product) HasLocation() bool {
	return p.LocationID != nil && *p.LocationID != ""
}

// InLocation indica si el producto ocupa exactamente la celda dada.
func (p *Product) InLocation(locationID string) bool {
	return p.HasLocation() && *p.LocationID == locationID
}
