package grid

import "sort"

// Occupant producto ubicado en una fila de la columna analizada.
type Occupant struct {
	ProductID string
	Row       int
}

// Shift desplazamiento vertical de un producto dentro de su columna.
type Shift struct {
	ProductID string
	FromRow   int
	ToRow     int
}

// PlanCascade calcula el desplazamiento de la cadena de ocupantes con fila >= targetRow
// (el producto que se mueve ya debe venir excluido). Cada ocupante baja una fila.
// Los desplazamientos se devuelven de abajo hacia arriba para que ninguna celda destino esté
// ocupada en el momento de escribir. lastRow es la fila más alta que necesita la cadena
// (0 si no hay cadena).
func PlanCascade(occupants []Occupant, targetRow int) (shifts []Shift, lastRow int) {
	chain := make([]Occupant, 0, len(occupants))
	for _, o := range occupants {
		if o.Row >= targetRow {
			chain = append(chain, o)
		}
	}
	sortOccupants(chain)
	for i := len(chain) - 1; i >= 0; i-- {
		o := chain[i]
		shifts = append(shifts, Shift{ProductID: o.ProductID, FromRow: o.Row, ToRow: o.Row + 1})
		if o.Row+1 > lastRow {
			lastRow = o.Row + 1
		}
	}
	return shifts, lastRow
}

// PlanGapClose cierra el hueco que deja un movimiento hacia abajo dentro de la misma columna
// sin colisión: los ocupantes estrictamente entre oldRow y newRow suben una fila, en orden
// ascendente (la celda de arriba siempre quedó libre en el paso anterior).
func PlanGapClose(occupants []Occupant, oldRow, newRow int) []Shift {
	if oldRow >= newRow {
		return nil
	}
	between := make([]Occupant, 0, len(occupants))
	for _, o := range occupants {
		if o.Row > oldRow && o.Row < newRow {
			between = append(between, o)
		}
	}
	sortOccupants(between)
	shifts := make([]Shift, 0, len(between))
	for _, o := range between {
		shifts = append(shifts, Shift{ProductID: o.ProductID, FromRow: o.Row, ToRow: o.Row - 1})
	}
	return shifts
}

// ColumnFull indica si la columna ya tiene tantos productos como filas.
func ColumnFull(occupied, rows int) bool {
	return occupied >= rows
}

func sortOccupants(list []Occupant) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Row != list[j].Row {
			return list[i].Row < list[j].Row
		}
		return list[i].ProductID < list[j].ProductID
	})
}
