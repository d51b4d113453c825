package grid

// Slot una celda de la línea (fila o columna) a compactar con los productos que la referencian.
// Una celda ocupada es una unidad de contenido: todos sus productos se mueven juntos.
type Slot struct {
	LocationID string
	ProductIDs []string
}

// Move reasignación de un producto de una celda a otra.
type Move struct {
	ProductID string
	From      string
	To        string
}

// PlanCompaction recibe las celdas de una línea en orden creciente y devuelve los movimientos
// que llevan cada unidad de contenido al prefijo de la línea, conservando el orden relativo.
// Las celdas posteriores a la última unidad quedan vacías. Los productos que ya están en su
// destino no generan movimiento.
func PlanCompaction(slots []Slot) []Move {
	var moves []Move
	next := 0
	for _, s := range slots {
		if len(s.ProductIDs) == 0 {
			continue
		}
		target := slots[next].LocationID
		next++
		if target == s.LocationID {
			continue
		}
		for _, pid := range s.ProductIDs {
			moves = append(moves, Move{ProductID: pid, From: s.LocationID, To: target})
		}
	}
	return moves
}
