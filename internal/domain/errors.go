package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrZeroQuantity      = errors.New("cantidad requerida")
	ErrEmptyBatch        = errors.New("no se indicó ningún producto")
	ErrCellOccupied      = errors.New("la ubicación está ocupada por otro producto")
	ErrColumnFull        = errors.New("la columna está llena")
	ErrNothingToUndo     = errors.New("no hay ninguna operación para deshacer")
	ErrInvalidCellRef    = errors.New("formato de ubicación inválido")
)

// InvalidItem describe una línea de un lote que no pudo interpretarse.
type InvalidItem struct {
	Index         int    `json:"index"`
	ProductNumber string `json:"number"`
	Quantity      string `json:"quantity"`
	Reason        string `json:"reason"`
}

// InvalidInputError agrupa todas las líneas mal formadas de un lote.
type InvalidInputError struct {
	Items []InvalidItem
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %d línea(s) con datos inválidos", ErrInvalidInput.Error(), len(e.Items))
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// ZeroQuantityError indica los productos cuya cantidad agregada no es positiva.
type ZeroQuantityError struct {
	ProductNumbers []string
}

func (e *ZeroQuantityError) Error() string {
	return fmt.Sprintf("se debe indicar la cantidad de: %s", strings.Join(e.ProductNumbers, ", "))
}

func (e *ZeroQuantityError) Unwrap() error { return ErrZeroQuantity }

// MissingProductsError indica los números de producto que no existen en el catálogo.
type MissingProductsError struct {
	ProductNumbers []string
}

func (e *MissingProductsError) Error() string {
	return fmt.Sprintf("productos no encontrados: %s", strings.Join(e.ProductNumbers, ", "))
}

func (e *MissingProductsError) Unwrap() error { return ErrNotFound }

// Shortfall cantidad disponible frente a la solicitada para un producto.
type Shortfall struct {
	ProductNumber string `json:"number"`
	Available     int    `json:"available"`
	Requested     int    `json:"requested"`
}

// InsufficientStockError agrupa los faltantes de un lote de retiro.
type InsufficientStockError struct {
	Items []Shortfall
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Items))
	for _, s := range e.Items {
		parts = append(parts, fmt.Sprintf("%s (disponible %d, solicitado %d)", s.ProductNumber, s.Available, s.Requested))
	}
	return fmt.Sprintf("%s: %s", ErrInsufficientStock.Error(), strings.Join(parts, "; "))
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// CellOccupiedError la celda destino ya contiene otro producto.
type CellOccupiedError struct {
	Cell          string
	ProductNumber string
}

func (e *CellOccupiedError) Error() string {
	return fmt.Sprintf("la ubicación %s está ocupada por el producto %s", e.Cell, e.ProductNumber)
}

func (e *CellOccupiedError) Unwrap() error { return ErrCellOccupied }

// CapacityError la columna destino no admite más productos.
type CapacityError struct {
	Column   int
	Rows     int
	Occupied int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("la columna C%d está llena: %d productos, filas disponibles: %d", e.Column, e.Occupied, e.Rows)
}

func (e *CapacityError) Unwrap() error { return ErrColumnFull }
