package undo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

type mapStore struct {
	records map[string]*entity.CompactionUndo
	putErr  error
	calls   []string
}

func newMapStore() *mapStore {
	return &mapStore{records: map[string]*entity.CompactionUndo{}}
}

func (m *mapStore) Get(_ context.Context, id string) (*entity.CompactionUndo, error) {
	return m.records[id], nil
}

func (m *mapStore) Put(_ context.Context, id string, r *entity.CompactionUndo) error {
	m.calls = append(m.calls, "put:"+id)
	if m.putErr != nil {
		return m.putErr
	}
	m.records[id] = r
	return nil
}

func (m *mapStore) Delete(_ context.Context, id string) error {
	m.calls = append(m.calls, "delete:"+id)
	delete(m.records, id)
	return nil
}

func record(index int, product string) *entity.CompactionUndo {
	return &entity.CompactionUndo{
		Kind:    entity.UndoKindColumn,
		Index:   index,
		Entries: []entity.UndoEntry{{ProductID: product}},
	}
}

func TestStaged_NoPublicaAntesDeFlush(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	store.records["s-1"] = record(1, "a")
	staged := Stage(store)

	require.NoError(t, staged.Put(ctx, "s-2", record(2, "b")))
	require.NoError(t, staged.Delete(ctx, "s-1"))

	assert.Empty(t, store.calls, "nada llega a la ranura externa")
	assert.NotNil(t, store.records["s-1"])

	got, err := staged.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Nil(t, got, "el borrado pendiente se ve dentro de la transacción")
	got, err = staged.Get(ctx, "s-2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Index)
}

func TestStaged_LeeDeLaRanuraSinPendientes(t *testing.T) {
	store := newMapStore()
	store.records["s-1"] = record(4, "a")

	got, err := Stage(store).Get(context.Background(), "s-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 4, got.Index)
}

func TestStaged_FlushAplicaUltimaEscrituraPorSesion(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	store.records["s-1"] = record(1, "a")
	staged := Stage(store)

	require.NoError(t, staged.Delete(ctx, "s-1"))
	require.NoError(t, staged.Put(ctx, "s-2", record(2, "b")))
	require.NoError(t, staged.Put(ctx, "s-2", record(3, "c")))

	require.NoError(t, staged.Flush(ctx))
	assert.Equal(t, []string{"delete:s-1", "put:s-2"}, store.calls)
	assert.Nil(t, store.records["s-1"])
	assert.Equal(t, 3, store.records["s-2"].Index)

	require.NoError(t, staged.Flush(ctx))
	assert.Len(t, store.calls, 2, "un segundo Flush no repite escrituras")
}

func TestStaged_CopiaElRegistro(t *testing.T) {
	ctx := context.Background()
	staged := Stage(newMapStore())
	r := record(1, "a")
	require.NoError(t, staged.Put(ctx, "s-1", r))
	r.Entries[0].ProductID = "cambiado"

	got, err := staged.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "a", got.Entries[0].ProductID)
}

func TestStaged_FlushReportaFalla(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	store.putErr = errors.New("redis caído")
	staged := Stage(store)
	require.NoError(t, staged.Put(ctx, "s-1", record(1, "a")))

	err := staged.Flush(ctx)
	require.ErrorIs(t, err, store.putErr)
	assert.Contains(t, err.Error(), "s-1")
}
