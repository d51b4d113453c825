package inventory

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/jhoicas/Almacen-api/internal/domain"
)

// Line línea cruda de un lote: número de producto y cantidad tal como llegó ("" = sin cantidad).
type Line struct {
	ProductNumber string
	Quantity      string
}

// Batch lote agregado por número de producto. Numbers va en orden lexicográfico,
// que es también el orden de bloqueo de filas.
type Batch struct {
	Numbers    []string
	Quantities map[string]int
}

// Total suma de todas las cantidades del lote.
func (b Batch) Total() int {
	total := 0
	for _, q := range b.Quantities {
		total += q
	}
	return total
}

// NonPositive devuelve, en orden, los números cuya cantidad agregada es <= 0.
func (b Batch) NonPositive() []string {
	var out []string
	for _, n := range b.Numbers {
		if b.Quantities[n] <= 0 {
			out = append(out, n)
		}
	}
	return out
}

// AggregateWithdrawal valida y agrega las líneas de un retiro.
// Cantidad vacía cuenta como 0; cantidades no numéricas o negativas son inválidas.
// Los números repetidos se suman. No rechaza cantidades en cero: eso lo decide el caso de uso.
func AggregateWithdrawal(lines []Line) (Batch, error) {
	return aggregate(lines, true)
}

// AggregateRestock valida y agrega las líneas de una devolución: toda cantidad debe ser > 0.
func AggregateRestock(lines []Line) (Batch, error) {
	return aggregate(lines, false)
}

func aggregate(lines []Line, blankIsZero bool) (Batch, error) {
	if len(lines) == 0 {
		return Batch{}, domain.ErrEmptyBatch
	}
	quantities := make(map[string]int, len(lines))
	var invalid []domain.InvalidItem
	for i, line := range lines {
		number := strings.TrimSpace(line.ProductNumber)
		raw := strings.TrimSpace(line.Quantity)
		if number == "" {
			invalid = append(invalid, domain.InvalidItem{Index: i, ProductNumber: line.ProductNumber, Quantity: line.Quantity, Reason: "número de producto vacío"})
			continue
		}
		qty, reason := parseQuantity(raw, blankIsZero)
		if reason != "" {
			invalid = append(invalid, domain.InvalidItem{Index: i, ProductNumber: number, Quantity: line.Quantity, Reason: reason})
			continue
		}
		if qty > math.MaxInt-quantities[number] {
			invalid = append(invalid, domain.InvalidItem{Index: i, ProductNumber: number, Quantity: line.Quantity, Reason: "cantidad fuera de rango"})
			continue
		}
		quantities[number] += qty
	}
	if len(invalid) > 0 {
		return Batch{}, &domain.InvalidInputError{Items: invalid}
	}
	numbers := make([]string, 0, len(quantities))
	for n := range quantities {
		numbers = append(numbers, n)
	}
	sort.Strings(numbers)
	return Batch{Numbers: numbers, Quantities: quantities}, nil
}

func parseQuantity(raw string, blankIsZero bool) (int, string) {
	if raw == "" {
		if blankIsZero {
			return 0, ""
		}
		return 0, "cantidad requerida"
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, "cantidad no es un entero"
	}
	if n < 0 {
		return 0, "cantidad negativa"
	}
	if n == 0 && !blankIsZero {
		return 0, "cantidad debe ser mayor que cero"
	}
	return n, ""
}
