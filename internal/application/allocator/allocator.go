// Package allocator implementa el asignador de la cuadrícula de bodegas: asignación de celdas,
// compactación de filas/columnas, movimiento con desplazamiento en cascada y deshacer de un nivel.
// Cada operación corre en una transacción que primero bloquea la fila de la bodega, de modo que
// las operaciones sobre una misma bodega quedan serializadas.
package allocator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// TxRunner ejecuta una función dentro de una transacción con repositorios atados a ella.
type TxRunner interface {
	Run(ctx context.Context, fn func(repository.Repos) error) error
}

// Metrics puerto de métricas del asignador.
type Metrics interface {
	ObserveGridOperation(operation, outcome string, moved int)
}

type nopMetrics struct{}

func (nopMetrics) ObserveGridOperation(string, string, int) {}

// Caller identidad de quien invoca: User para la bitácora, SessionID para la ranura de deshacer.
type Caller struct {
	User      string
	SessionID string
}

// Actor usuario para la bitácora ("Guest" si no hay).
func (c Caller) Actor() string {
	if c.User == "" {
		return entity.GuestActor
	}
	return c.User
}

// SessionKey clave de la ranura de deshacer; sin sesión se usa el actor.
func (c Caller) SessionKey() string {
	if c.SessionID != "" {
		return c.SessionID
	}
	return c.Actor()
}

// Allocator casos de uso de la cuadrícula.
type Allocator struct {
	txRunner TxRunner
	log      *logger.Logger
	metrics  Metrics
	tracer   trace.Tracer
	now      func() time.Time
}

// Option configura el Allocator.
type Option func(*Allocator)

// WithLogger logger del asignador (componente "allocator").
func WithLogger(l *logger.Logger) Option {
	return func(a *Allocator) { a.log = l.Component("allocator") }
}

// WithMetrics colector de métricas.
func WithMetrics(m Metrics) Option {
	return func(a *Allocator) { a.metrics = m }
}

// WithClock reloj para marcas de tiempo.
func WithClock(now func() time.Time) Option {
	return func(a *Allocator) { a.now = now }
}

// New construye el asignador.
func New(txRunner TxRunner, opts ...Option) *Allocator {
	a := &Allocator{
		txRunner: txRunner,
		log:      logger.Nop(),
		metrics:  nopMetrics{},
		tracer:   otel.Tracer("almacen/allocator"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// run abre la transacción con span y métricas. fn devuelve cuántos productos movió.
func (a *Allocator) run(ctx context.Context, op string, fn func(ctx context.Context, r repository.Repos) (int, error)) error {
	ctx, span := a.tracer.Start(ctx, "allocator."+op)
	defer span.End()

	moved := 0
	err := a.txRunner.Run(ctx, func(r repository.Repos) error {
		var err error
		moved, err = fn(ctx, r)
		return err
	})
	if err != nil {
		moved = 0
	}
	a.metrics.ObserveGridOperation(op, outcome(err), moved)
	span.SetAttributes(attribute.Int("grid.moved", moved))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome(err))
		if outcome(err) == "error" {
			a.log.Error().Err(err).Str("operation", op).Msg("operación de cuadrícula fallida")
		}
	}
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidCellRef):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrCellOccupied):
		return "occupied"
	case errors.Is(err, domain.ErrColumnFull):
		return "column_full"
	case errors.Is(err, domain.ErrNothingToUndo):
		return "nothing_to_undo"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}

// lockWarehouse primer paso de toda transacción del asignador.
func lockWarehouse(ctx context.Context, r repository.Repos, id string) (*entity.Warehouse, error) {
	wh, err := r.Warehouses.GetForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("bloquear bodega: %w", err)
	}
	if wh == nil {
		return nil, fmt.Errorf("bodega %s: %w", id, domain.ErrNotFound)
	}
	return wh, nil
}

// growRows extiende la bodega hasta rows filas, creando las celdas de todas las columnas.
func growRows(ctx context.Context, r repository.Repos, wh *entity.Warehouse, rows int) (int, error) {
	if rows <= wh.RowsCount {
		return 0, nil
	}
	added := rows - wh.RowsCount
	if err := r.Warehouses.UpdateGridSize(ctx, wh.ID, rows, wh.ColumnsCount); err != nil {
		return 0, fmt.Errorf("ampliar filas: %w", err)
	}
	if _, err := r.Locations.EnsureCells(ctx, wh.ID, rows, wh.ColumnsCount); err != nil {
		return 0, fmt.Errorf("crear celdas: %w", err)
	}
	wh.RowsCount = rows
	return added, nil
}

func locationAudit(p *entity.Product, notes, user string, now time.Time) *entity.AuditLog {
	return entity.NewLocationAudit(entity.AuditLocationAssigned, p, notes, user, now)
}

func indexLocations(list []*entity.Location) map[string]*entity.Location {
	m := make(map[string]*entity.Location, len(list))
	for _, l := range list {
		m[l.ID] = l
	}
	return m
}

func locationIDs(list []*entity.Location) []string {
	ids := make([]string, 0, len(list))
	for _, l := range list {
		ids = append(ids, l.ID)
	}
	return ids
}

func ptr(s string) *string { return &s }
