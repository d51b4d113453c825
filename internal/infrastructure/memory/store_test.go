package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

func seedProduct(t *testing.T, s *Store, number string, qty int) *entity.Product {
	t.Helper()
	p := &entity.Product{ProductNumber: number, Name: "Producto " + number, Quantity: qty}
	require.NoError(t, s.Repos().Products.Create(context.Background(), p))
	return p
}

func TestRun_ErrorDescartaCambios(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := seedProduct(t, s, "A-1", 10)

	boom := errors.New("boom")
	err := s.Run(ctx, func(r repository.Repos) error {
		require.NoError(t, r.Products.UpdateQuantity(ctx, p.ID, 3))
		require.NoError(t, r.Audit.Create(ctx, entity.NewQuantityAudit(entity.AuditQuantityTaken, p, 10, 3, "", "Guest", p.CreatedAt)))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Repos().Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Quantity, "la cantidad no debe cambiar tras el rollback")
	audit, err := s.Repos().Audit.ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, audit)
}

func TestRun_ConfirmaCambios(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := seedProduct(t, s, "A-1", 10)

	require.NoError(t, s.Run(ctx, func(r repository.Repos) error {
		return r.Products.UpdateQuantity(ctx, p.ID, 4)
	}))
	got, _ := s.Repos().Products.GetByID(ctx, p.ID)
	assert.Equal(t, 4, got.Quantity)
}

func TestRun_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := New().Run(ctx, func(repository.Repos) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestFailNext_UnaFallaPorLlamada(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.FailNext("orders.Create", domain.ErrDuplicate)

	first := s.Repos().Orders.Create(ctx, &entity.WithdrawalOrder{OrderNumber: "ORD-1"})
	second := s.Repos().Orders.Create(ctx, &entity.WithdrawalOrder{OrderNumber: "ORD-1"})
	third := s.Repos().Orders.Create(ctx, &entity.WithdrawalOrder{OrderNumber: "ORD-1"})

	assert.ErrorIs(t, first, domain.ErrDuplicate, "falla inyectada")
	assert.NoError(t, second)
	assert.ErrorIs(t, third, domain.ErrDuplicate, "número de orden repetido")
}

func TestProductos_NumeroDuplicado(t *testing.T) {
	s := New()
	seedProduct(t, s, "A-1", 1)
	err := s.Repos().Products.Create(context.Background(), &entity.Product{ProductNumber: "A-1"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestLockByNumbers_OrdenLexicografico(t *testing.T) {
	s := New()
	seedProduct(t, s, "C", 1)
	seedProduct(t, s, "A", 1)
	seedProduct(t, s, "B", 1)

	list, err := s.Repos().Products.LockByNumbers(context.Background(), []string{"C", "A", "X"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].ProductNumber)
	assert.Equal(t, "C", list[1].ProductNumber)
}

func TestEnsureCells_CompletaRectangulo(t *testing.T) {
	ctx := context.Background()
	s := New()
	locs := s.Repos().Locations

	n, err := locs.EnsureCells(ctx, "w1", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	n, err = locs.EnsureCells(ctx, "w1", 3, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "solo crea la fila que falta")

	col, err := locs.ListByColumn(ctx, "w1", 2)
	require.NoError(t, err)
	require.Len(t, col, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{col[0].Row, col[1].Row, col[2].Row})
}

func TestUndo_UltimaEscrituraGana(t *testing.T) {
	ctx := context.Background()
	u := New().Repos().Undo

	got, err := u.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, u.Put(ctx, "s1", &entity.CompactionUndo{Kind: entity.UndoKindRow, Index: 1}))
	require.NoError(t, u.Put(ctx, "s1", &entity.CompactionUndo{Kind: entity.UndoKindColumn, Index: 2}))
	got, err = u.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, entity.UndoKindColumn, got.Kind)
	assert.Equal(t, 2, got.Index)

	require.NoError(t, u.Delete(ctx, "s1"))
	got, _ = u.Get(ctx, "s1")
	assert.Nil(t, got)
}

func TestWithUndoStore_RollbackNoTocaLaRanuraExterna(t *testing.T) {
	ctx := context.Background()
	external := New()
	slot := external.Repos().Undo
	require.NoError(t, slot.Put(ctx, "s1", &entity.CompactionUndo{Kind: entity.UndoKindColumn, Index: 1}))
	s := New(WithUndoStore(slot))

	boom := errors.New("boom")
	err := s.Run(ctx, func(r repository.Repos) error {
		require.NoError(t, r.Undo.Delete(ctx, "s1"))
		require.NoError(t, r.Undo.Put(ctx, "s2", &entity.CompactionUndo{Kind: entity.UndoKindRow, Index: 2}))
		got, err := r.Undo.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Nil(t, got, "dentro de la transacción se ve el borrado")
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := slot.Get(ctx, "s1")
	require.NoError(t, err)
	assert.NotNil(t, got, "el borrado no se publica si la transacción falla")
	got, err = slot.Get(ctx, "s2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestWithUndoStore_PublicaTrasConfirmar(t *testing.T) {
	ctx := context.Background()
	external := New()
	slot := external.Repos().Undo
	s := New(WithUndoStore(slot))
	p := seedProduct(t, s, "A-1", 1)

	require.NoError(t, s.Run(ctx, func(r repository.Repos) error {
		require.NoError(t, r.Products.UpdateQuantity(ctx, p.ID, 5))
		return r.Undo.Put(ctx, "s1", &entity.CompactionUndo{Kind: entity.UndoKindRow, Index: 3})
	}))
	got, err := slot.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.Index)

	// Si la publicación falla, los cambios del almacén ya quedaron confirmados y se informa el error.
	boom := errors.New("redis caído")
	external.FailNext("undo.Put", boom)
	err = s.Run(ctx, func(r repository.Repos) error {
		require.NoError(t, r.Products.UpdateQuantity(ctx, p.ID, 7))
		return r.Undo.Put(ctx, "s1", &entity.CompactionUndo{Kind: entity.UndoKindRow, Index: 4})
	})
	require.ErrorIs(t, err, boom)
	saved, err := s.Repos().Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, saved.Quantity)
}
