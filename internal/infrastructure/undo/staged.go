// Package undo adapta una ranura de deshacer externa (Redis) a la semántica transaccional:
// las escrituras hechas dentro de una transacción solo se publican después del commit.
package undo

import (
	"context"
	"fmt"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.UndoStore = (*Staged)(nil)

// Staged acumula Put/Delete en memoria y lee primero lo acumulado. Un valor nil en pending
// es un borrado pendiente. No es seguro para uso concurrente: vive lo que dura una transacción.
type Staged struct {
	store   repository.UndoStore
	pending map[string]*entity.CompactionUndo
	order   []string
}

// Stage envuelve store para una transacción.
func Stage(store repository.UndoStore) *Staged {
	return &Staged{store: store, pending: map[string]*entity.CompactionUndo{}}
}

func (s *Staged) Get(ctx context.Context, sessionID string) (*entity.CompactionUndo, error) {
	if record, ok := s.pending[sessionID]; ok {
		return clone(record), nil
	}
	return s.store.Get(ctx, sessionID)
}

func (s *Staged) Put(_ context.Context, sessionID string, record *entity.CompactionUndo) error {
	s.stage(sessionID, clone(record))
	return nil
}

func (s *Staged) Delete(_ context.Context, sessionID string) error {
	s.stage(sessionID, nil)
	return nil
}

// Flush publica lo acumulado en el orden en que se escribió cada sesión. Se llama tras el commit.
func (s *Staged) Flush(ctx context.Context) error {
	for _, sessionID := range s.order {
		var err error
		if record := s.pending[sessionID]; record != nil {
			err = s.store.Put(ctx, sessionID, record)
		} else {
			err = s.store.Delete(ctx, sessionID)
		}
		if err != nil {
			return fmt.Errorf("publicar registro de deshacer de %s: %w", sessionID, err)
		}
	}
	s.pending = map[string]*entity.CompactionUndo{}
	s.order = nil
	return nil
}

func (s *Staged) stage(sessionID string, record *entity.CompactionUndo) {
	if _, ok := s.pending[sessionID]; !ok {
		s.order = append(s.order, sessionID)
	}
	s.pending[sessionID] = record
}

func clone(record *entity.CompactionUndo) *entity.CompactionUndo {
	if record == nil {
		return nil
	}
	c := *record
	c.Entries = append([]entity.UndoEntry(nil), record.Entries...)
	return &c
}
