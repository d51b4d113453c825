package allocator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var (
	ana    = Caller{User: "ana", SessionID: "sess-ana"}
	fixedT = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
)

type gridFixture struct {
	t        *testing.T
	store    *memory.Store
	alloc    *Allocator
	wh       *entity.Warehouse
	products map[string]*entity.Product
}

func newGrid(t *testing.T, rows, columns int) *gridFixture {
	t.Helper()
	store := memory.New()
	alloc := New(store, WithClock(func() time.Time { return fixedT }))
	wh, err := alloc.CreateWarehouse(context.Background(), CreateWarehouseInput{Name: "Principal", Rows: rows, Columns: columns})
	require.NoError(t, err)
	return &gridFixture{t: t, store: store, alloc: alloc, wh: wh, products: map[string]*entity.Product{}}
}

func (f *gridFixture) cell(row, column int) *entity.Location {
	f.t.Helper()
	l, err := f.store.Repos().Locations.GetByPosition(context.Background(), f.wh.ID, row, column)
	require.NoError(f.t, err)
	require.NotNil(f.t, l, "celda R%dC%d", row, column)
	return l
}

// place crea el producto (si no existe) y lo ubica directamente en la celda, sin pasar por el asignador.
func (f *gridFixture) place(number string, row, column int) *entity.Product {
	f.t.Helper()
	ctx := context.Background()
	p, ok := f.products[number]
	if !ok {
		p = &entity.Product{ProductNumber: number, Name: "Producto " + number, Quantity: 1}
		require.NoError(f.t, f.store.Repos().Products.Create(ctx, p))
		f.products[number] = p
	}
	if row > 0 {
		loc := f.cell(row, column)
		require.NoError(f.t, f.store.Repos().Products.UpdateLocation(ctx, p.ID, &loc.ID))
	}
	return p
}

func (f *gridFixture) at(number string) string {
	f.t.Helper()
	ctx := context.Background()
	p, err := f.store.Repos().Products.GetByID(ctx, f.products[number].ID)
	require.NoError(f.t, err)
	if !p.HasLocation() {
		return ""
	}
	l, err := f.store.Repos().Locations.GetByID(ctx, *p.LocationID)
	require.NoError(f.t, err)
	return l.Label()
}

func (f *gridFixture) rows() int {
	f.t.Helper()
	wh, err := f.store.Repos().Warehouses.GetByID(context.Background(), f.wh.ID)
	require.NoError(f.t, err)
	return wh.RowsCount
}

func (f *gridFixture) audit(number string) []*entity.AuditLog {
	f.t.Helper()
	list, err := f.store.Repos().Audit.ListByProduct(context.Background(), f.products[number].ID)
	require.NoError(f.t, err)
	return list
}

func (f *gridFixture) undo(session string) *entity.CompactionUndo {
	f.t.Helper()
	u, err := f.store.Repos().Undo.Get(context.Background(), session)
	require.NoError(f.t, err)
	return u
}

// ──────────────────────────────────────────────────────────────────────────────
// Compactación y deshacer
// ──────────────────────────────────────────────────────────────────────────────

func TestCompactColumn_LlenaHuecosYRevierte(t *testing.T) {
	f := newGrid(t, 5, 2)
	f.place("P1", 1, 1)
	f.place("P3", 3, 1)
	f.place("P5", 5, 1)
	ctx := context.Background()

	res, err := f.alloc.CompactColumn(ctx, ana, f.wh.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, []CellMove{
		{ProductID: f.products["P3"].ID, ProductNumber: "P3", From: "R3C1", To: "R2C1"},
		{ProductID: f.products["P5"].ID, ProductNumber: "P5", From: "R5C1", To: "R3C1"},
	}, res.Moves)
	assert.Equal(t, "R1C1", f.at("P1"))
	assert.Equal(t, "R2C1", f.at("P3"))
	assert.Equal(t, "R3C1", f.at("P5"))

	rec := f.undo(ana.SessionKey())
	require.NotNil(t, rec)
	assert.Equal(t, entity.UndoKindColumn, rec.Kind)
	assert.Equal(t, 1, rec.Index)
	assert.Len(t, rec.Entries, 2, "solo los productos movidos")

	entries := f.audit("P5")
	require.Len(t, entries, 1)
	assert.Equal(t, entity.AuditLocationAssigned, entries[0].Action)
	assert.Nil(t, entries[0].QuantityBefore)
	assert.Equal(t, "ana", entries[0].User)

	rev, err := f.alloc.RevertLastCompaction(ctx, ana)
	require.NoError(t, err)
	assert.Len(t, rev.Restored, 2)
	assert.Equal(t, "R1C1", f.at("P1"))
	assert.Equal(t, "R3C1", f.at("P3"))
	assert.Equal(t, "R5C1", f.at("P5"))
	assert.Nil(t, f.undo(ana.SessionKey()), "la ranura queda vacía")

	_, err = f.alloc.RevertLastCompaction(ctx, ana)
	assert.ErrorIs(t, err, domain.ErrNothingToUndo)
}

func TestCompactRow_CeldaConVariosProductos(t *testing.T) {
	f := newGrid(t, 2, 4)
	f.place("A", 1, 3)
	f.place("B", 1, 3)
	f.place("C", 1, 4)

	res, err := f.alloc.CompactRow(context.Background(), ana, f.wh.ID, 1)
	require.NoError(t, err)
	assert.Len(t, res.Moves, 3)
	assert.Equal(t, "R1C1", f.at("A"))
	assert.Equal(t, "R1C1", f.at("B"), "la unidad de contenido se mueve junta")
	assert.Equal(t, "R1C2", f.at("C"))
}

func TestCompact_SinMovimientosSobrescribeRanura(t *testing.T) {
	f := newGrid(t, 3, 1)
	f.place("A", 3, 1)
	ctx := context.Background()

	_, err := f.alloc.CompactColumn(ctx, ana, f.wh.ID, 1)
	require.NoError(t, err)
	require.NotEmpty(t, f.undo(ana.SessionKey()).Entries)

	res, err := f.alloc.CompactColumn(ctx, ana, f.wh.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, res.Moves)
	assert.True(t, f.undo(ana.SessionKey()).Empty(), "el registro vacío reemplaza al anterior")

	_, err = f.alloc.RevertLastCompaction(ctx, ana)
	assert.ErrorIs(t, err, domain.ErrNothingToUndo)
	assert.Equal(t, "R1C1", f.at("A"))
}

func TestCompact_IndiceFueraDeRango(t *testing.T) {
	f := newGrid(t, 3, 3)
	_, err := f.alloc.CompactRow(context.Background(), ana, f.wh.ID, 4)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.alloc.CompactColumn(context.Background(), ana, "no-existe", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRevert_RanuraPorSesion(t *testing.T) {
	f := newGrid(t, 3, 1)
	f.place("A", 3, 1)
	ctx := context.Background()
	luis := Caller{User: "luis"}

	_, err := f.alloc.CompactColumn(ctx, ana, f.wh.ID, 1)
	require.NoError(t, err)
	_, err = f.alloc.RevertLastCompaction(ctx, luis)
	assert.ErrorIs(t, err, domain.ErrNothingToUndo, "otra sesión no ve el registro")
	assert.Equal(t, "R1C1", f.at("A"))
}

func TestRevert_CeldaOcupadaPorOtroProducto(t *testing.T) {
	f := newGrid(t, 3, 2)
	f.place("A", 3, 1)
	ctx := context.Background()

	_, err := f.alloc.CompactColumn(ctx, ana, f.wh.ID, 1)
	require.NoError(t, err)
	f.place("X", 3, 1) // alguien ocupa la celda original

	_, err = f.alloc.RevertLastCompaction(ctx, ana)
	var occ *domain.CellOccupiedError
	require.True(t, errors.As(err, &occ))
	assert.Equal(t, "R3C1", occ.Cell)
	assert.Equal(t, "X", occ.ProductNumber)
	assert.Equal(t, "R1C1", f.at("A"), "no se restaura nada")
	assert.NotNil(t, f.undo(ana.SessionKey()), "el registro se conserva")
}

func TestRevert_ErrorAlConsultarCeldaSePropaga(t *testing.T) {
	f := newGrid(t, 3, 2)
	f.place("A", 3, 1)
	ctx := context.Background()

	_, err := f.alloc.CompactColumn(ctx, ana, f.wh.ID, 1)
	require.NoError(t, err)
	f.place("X", 3, 1)
	boom := errors.New("conexión perdida")
	f.store.FailNext("locations.GetByID", boom)

	_, err = f.alloc.RevertLastCompaction(ctx, ana)
	require.ErrorIs(t, err, boom)
	var occ *domain.CellOccupiedError
	assert.False(t, errors.As(err, &occ), "la falla de consulta no se reporta como celda ocupada")
	assert.Equal(t, "R1C1", f.at("A"))
	assert.NotNil(t, f.undo(ana.SessionKey()), "el registro se conserva")
}

func TestRevert_RanuraExternaSobreviveAFallaDeTransaccion(t *testing.T) {
	ctx := context.Background()
	external := memory.New()
	store := memory.New(memory.WithUndoStore(external.Repos().Undo))
	f := &gridFixture{t: t, store: store, alloc: New(store, WithClock(func() time.Time { return fixedT })), products: map[string]*entity.Product{}}
	wh, err := f.alloc.CreateWarehouse(ctx, CreateWarehouseInput{Name: "Principal", Rows: 3, Columns: 1})
	require.NoError(t, err)
	f.wh = wh
	f.place("A", 3, 1)

	_, err = f.alloc.CompactColumn(ctx, ana, wh.ID, 1)
	require.NoError(t, err)
	boom := errors.New("conexión perdida")
	store.FailNext("audit.Create", boom)

	_, err = f.alloc.RevertLastCompaction(ctx, ana)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "R1C1", f.at("A"))
	kept, err := external.Repos().Undo.Get(ctx, ana.SessionKey())
	require.NoError(t, err)
	assert.False(t, kept.Empty(), "el registro sigue disponible para reintentar")

	res, err := f.alloc.RevertLastCompaction(ctx, ana)
	require.NoError(t, err)
	assert.Len(t, res.Restored, 1)
	assert.Equal(t, "R3C1", f.at("A"))
	gone, err := external.Repos().Undo.Get(ctx, ana.SessionKey())
	require.NoError(t, err)
	assert.Nil(t, gone)
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimiento con cascada
// ──────────────────────────────────────────────────────────────────────────────

func TestMove_CascadaCreceFilasExactas(t *testing.T) {
	f := newGrid(t, 4, 2)
	f.place("A", 2, 1)
	f.place("B", 3, 1)
	f.place("C", 4, 1)
	f.place("X", 1, 2)
	ctx := context.Background()

	res, err := f.alloc.Move(ctx, ana, f.wh.ID, f.products["X"].ID, "r2c1")
	require.NoError(t, err)

	assert.Equal(t, "R2C1", f.at("X"))
	assert.Equal(t, "R3C1", f.at("A"))
	assert.Equal(t, "R4C1", f.at("B"))
	assert.Equal(t, "R5C1", f.at("C"))
	assert.Equal(t, 5, f.rows(), "exactamente una fila nueva")
	assert.Equal(t, 1, res.RowsAdded)
	require.Len(t, res.Shifted, 3)
	assert.Equal(t, "C", res.Shifted[0].ProductNumber, "de abajo hacia arriba")
	assert.Equal(t, "R1C2", res.From)

	notes := f.audit("A")
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Notes, "reordenamiento automático")
	assert.Contains(t, f.audit("X")[0].Notes, "movimiento manual")

	rec := f.undo(ana.SessionKey())
	assert.Equal(t, entity.UndoKindColumn, rec.Kind)
	assert.Equal(t, 1, rec.Index)
	assert.Len(t, rec.Entries, 4)

	_, err = f.alloc.RevertLastCompaction(ctx, ana)
	require.NoError(t, err)
	assert.Equal(t, "R1C2", f.at("X"))
	assert.Equal(t, "R2C1", f.at("A"))
	assert.Equal(t, "R3C1", f.at("B"))
	assert.Equal(t, "R4C1", f.at("C"))
}

func TestMove_CadenaConHuecoNoCreceDeMas(t *testing.T) {
	f := newGrid(t, 5, 2)
	f.place("A", 1, 1)
	f.place("B", 4, 1)
	f.place("X", 1, 2)

	res, err := f.alloc.Move(context.Background(), ana, f.wh.ID, f.products["X"].ID, "R1C1")
	require.NoError(t, err)
	assert.Equal(t, "R2C1", f.at("A"))
	assert.Equal(t, "R5C1", f.at("B"))
	assert.Equal(t, 0, res.RowsAdded)
	assert.Equal(t, 5, f.rows())
}

func TestMove_FilaDestinoFueraDeLaCuadricula(t *testing.T) {
	f := newGrid(t, 2, 2)
	f.place("X", 1, 1)

	res, err := f.alloc.Move(context.Background(), ana, f.wh.ID, f.products["X"].ID, "R4C2")
	require.NoError(t, err)
	assert.Equal(t, "R4C2", f.at("X"))
	assert.Equal(t, 4, f.rows())
	assert.Equal(t, 2, res.RowsAdded)
	f.cell(4, 1) // la fila nueva tiene todas sus columnas
}

func TestMove_ColumnaLlenaSinCambios(t *testing.T) {
	f := newGrid(t, 3, 2)
	f.place("A", 1, 1)
	f.place("B", 1, 1) // dato heredado: dos productos en una celda
	f.place("C", 2, 1)
	f.place("X", 1, 2)

	_, err := f.alloc.Move(context.Background(), ana, f.wh.ID, f.products["X"].ID, "R3C1")
	var capErr *domain.CapacityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, 1, capErr.Column)
	assert.Equal(t, 3, capErr.Rows)
	assert.Equal(t, 3, capErr.Occupied)

	assert.Equal(t, "R1C2", f.at("X"))
	assert.Equal(t, 3, f.rows())
	assert.Empty(t, f.audit("X"))
	assert.Nil(t, f.undo(ana.SessionKey()))
}

func TestMove_MismaColumnaNoSeRechazaPorCapacidad(t *testing.T) {
	f := newGrid(t, 3, 1)
	f.place("A", 1, 1)
	f.place("B", 1, 1)
	f.place("C", 2, 1)

	_, err := f.alloc.Move(context.Background(), ana, f.wh.ID, f.products["C"].ID, "R3C1")
	require.NoError(t, err)
	assert.Equal(t, "R3C1", f.at("C"))
}

func TestMove_MismaCeldaNoEscribe(t *testing.T) {
	f := newGrid(t, 3, 1)
	f.place("A", 2, 1)

	res, err := f.alloc.Move(context.Background(), ana, f.wh.ID, f.products["A"].ID, "R2C1")
	require.NoError(t, err)
	assert.True(t, res.NoChange)
	assert.Empty(t, f.audit("A"))
	assert.Nil(t, f.undo(ana.SessionKey()))
}

func TestMove_MismaColumnaHaciaAbajoCierraHueco(t *testing.T) {
	f := newGrid(t, 6, 1)
	f.place("M", 2, 1)
	f.place("A", 3, 1)
	f.place("B", 4, 1)

	res, err := f.alloc.Move(context.Background(), ana, f.wh.ID, f.products["M"].ID, "R5C1")
	require.NoError(t, err)
	assert.Equal(t, "R5C1", f.at("M"))
	assert.Equal(t, "R2C1", f.at("A"))
	assert.Equal(t, "R3C1", f.at("B"))
	require.Len(t, res.Shifted, 2)
	assert.Equal(t, "A", res.Shifted[0].ProductNumber, "en orden ascendente")
}

func TestMove_ReferenciaInvalida(t *testing.T) {
	f := newGrid(t, 3, 2)
	f.place("A", 1, 1)
	ctx := context.Background()

	_, err := f.alloc.Move(ctx, ana, f.wh.ID, f.products["A"].ID, "fila 2")
	assert.ErrorIs(t, err, domain.ErrInvalidCellRef)
	_, err = f.alloc.Move(ctx, ana, f.wh.ID, f.products["A"].ID, "R1C3")
	assert.ErrorIs(t, err, domain.ErrInvalidCellRef, "columna fuera de la cuadrícula")
	_, err = f.alloc.Move(ctx, ana, f.wh.ID, "no-existe", "R1C1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMove_FallaDePersistenciaRevierteCascada(t *testing.T) {
	f := newGrid(t, 2, 2)
	f.place("A", 1, 1)
	f.place("B", 2, 1)
	f.place("X", 1, 2)
	boom := errors.New("conexión perdida")
	f.store.FailNext("audit.Create", nil, boom)

	_, err := f.alloc.Move(context.Background(), ana, f.wh.ID, f.products["X"].ID, "R1C1")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "R1C1", f.at("A"))
	assert.Equal(t, "R2C1", f.at("B"))
	assert.Equal(t, "R1C2", f.at("X"))
	assert.Equal(t, 2, f.rows(), "el crecimiento también se revierte")
	assert.Empty(t, f.audit("B"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Asignación
// ──────────────────────────────────────────────────────────────────────────────

func TestAssign_CeldaOcupadaSeRechaza(t *testing.T) {
	f := newGrid(t, 2, 2)
	f.place("A", 1, 1)
	x := f.place("X", 0, 0)

	_, err := f.alloc.Assign(context.Background(), ana, x.ID, &f.cell(1, 1).ID)
	var occ *domain.CellOccupiedError
	require.True(t, errors.As(err, &occ))
	assert.Equal(t, "A", occ.ProductNumber)
	assert.Equal(t, "", f.at("X"))
}

func TestAssign_AsignaYDesvincula(t *testing.T) {
	f := newGrid(t, 2, 2)
	x := f.place("X", 0, 0)
	ctx := context.Background()

	res, err := f.alloc.Assign(ctx, ana, x.ID, &f.cell(2, 2).ID)
	require.NoError(t, err)
	assert.Equal(t, "sin ubicación", res.From)
	assert.Equal(t, "R2C2", res.To)
	assert.Equal(t, "R2C2", f.at("X"))

	res, err = f.alloc.Assign(ctx, ana, x.ID, &f.cell(2, 2).ID)
	require.NoError(t, err)
	assert.True(t, res.NoChange)

	_, err = f.alloc.Assign(ctx, ana, x.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "", f.at("X"))

	entries := f.audit("X")
	require.Len(t, entries, 3)
	assert.Equal(t, entity.AuditLocationAssigned, entries[0].Action)
	assert.Contains(t, entries[1].Notes, "sin cambios")
	assert.Equal(t, entity.AuditLocationRemoved, entries[2].Action)

	res, err = f.alloc.Assign(ctx, ana, x.ID, nil)
	require.NoError(t, err)
	assert.True(t, res.NoChange, "desvincular sin ubicación no escribe")
	assert.Len(t, f.audit("X"), 3)
}

// ──────────────────────────────────────────────────────────────────────────────
// Distribución de la cuadrícula
// ──────────────────────────────────────────────────────────────────────────────

func TestLayout_AgregaFilasYColumnas(t *testing.T) {
	f := newGrid(t, 2, 2)
	ctx := context.Background()

	wh, err := f.alloc.AddRows(ctx, f.wh.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, wh.RowsCount)
	wh, err = f.alloc.AddColumns(ctx, f.wh.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, wh.ColumnsCount)

	view, err := f.alloc.Grid(ctx, f.wh.ID)
	require.NoError(t, err)
	assert.Len(t, view.Cells, 15)
	assert.NotNil(t, view.Cell(5, 3))

	_, err = f.alloc.AddRows(ctx, f.wh.ID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.alloc.AddColumns(ctx, f.wh.ID, MaxGrowth+1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLayout_SincronizaCeldasFaltantes(t *testing.T) {
	f := newGrid(t, 2, 2)
	ctx := context.Background()
	require.NoError(t, f.store.Repos().Warehouses.UpdateGridSize(ctx, f.wh.ID, 3, 2))

	n, err := f.alloc.SyncCells(ctx, f.wh.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = f.alloc.SyncCells(ctx, f.wh.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestGrid_MuestraProductos(t *testing.T) {
	f := newGrid(t, 2, 2)
	f.place("A", 2, 1)

	view, err := f.alloc.Grid(context.Background(), f.wh.ID)
	require.NoError(t, err)
	c := view.Cell(2, 1)
	require.NotNil(t, c)
	require.Len(t, c.Products, 1)
	assert.Equal(t, "A", c.Products[0].ProductNumber)
	assert.Empty(t, view.Cell(1, 1).Products)

	_, err = f.alloc.Grid(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateWarehouse_Validacion(t *testing.T) {
	alloc := New(memory.New())
	_, err := alloc.CreateWarehouse(context.Background(), CreateWarehouseInput{Name: " ", Rows: 1, Columns: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = alloc.CreateWarehouse(context.Background(), CreateWarehouseInput{Name: "B", Rows: 0, Columns: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
