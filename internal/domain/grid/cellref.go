// Package grid contiene la planificación pura de la cuadrícula de bodega:
// referencias de celda, compactación de filas/columnas, desplazamiento en cascada.
// No toca persistencia; el asignador aplica los planes dentro de una transacción.
package grid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jhoicas/Almacen-api/internal/domain"
)

var cellRefPattern = regexp.MustCompile(`^R(\d+)C(\d+)$`)

// CellRef referencia textual de una celda: "R<fila>C<columna>", ambos desde 1.
type CellRef struct {
	Row    int
	Column int
}

// ParseCellRef interpreta "R15C4" (se toleran espacios y minúsculas).
func ParseCellRef(s string) (CellRef, error) {
	m := cellRefPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return CellRef{}, fmt.Errorf("%w: %q", domain.ErrInvalidCellRef, s)
	}
	row, errRow := strconv.Atoi(m[1])
	col, errCol := strconv.Atoi(m[2])
	if errRow != nil || errCol != nil || row < 1 || col < 1 {
		return CellRef{}, fmt.Errorf("%w: %q", domain.ErrInvalidCellRef, s)
	}
	return CellRef{Row: row, Column: col}, nil
}

func (c CellRef) String() string {
	return fmt.Sprintf("R%dC%d", c.Row, c.Column)
}
