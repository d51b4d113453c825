// Package memory implementa los puertos de persistencia en memoria con transacciones
// por copia: Run clona el estado, ejecuta el callback y solo publica la copia si no hubo error.
// Se usa en pruebas y con STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/undo"
)

type state struct {
	products   map[string]*entity.Product
	warehouses map[string]*entity.Warehouse
	locations  map[string]*entity.Location
	audit      []*entity.AuditLog
	orders     []*entity.WithdrawalOrder
	returns    []*entity.ProductReturn
	undo       map[string]*entity.CompactionUndo
}

func newState() *state {
	return &state{
		products:   map[string]*entity.Product{},
		warehouses: map[string]*entity.Warehouse{},
		locations:  map[string]*entity.Location{},
		undo:       map[string]*entity.CompactionUndo{},
	}
}

// clone copia profunda de todo lo mutable; auditoría, órdenes y registros de deshacer son inmutables.
func (s *state) clone() *state {
	c := &state{
		products:   make(map[string]*entity.Product, len(s.products)),
		warehouses: make(map[string]*entity.Warehouse, len(s.warehouses)),
		locations:  make(map[string]*entity.Location, len(s.locations)),
		audit:      append([]*entity.AuditLog(nil), s.audit...),
		orders:     append([]*entity.WithdrawalOrder(nil), s.orders...),
		returns:    append([]*entity.ProductReturn(nil), s.returns...),
		undo:       make(map[string]*entity.CompactionUndo, len(s.undo)),
	}
	for k, v := range s.products {
		c.products[k] = copyProduct(v)
	}
	for k, v := range s.warehouses {
		w := *v
		c.warehouses[k] = &w
	}
	for k, v := range s.locations {
		l := *v
		c.locations[k] = &l
	}
	for k, v := range s.undo {
		c.undo[k] = v
	}
	return c
}

// Store almacén en memoria. Las transacciones se serializan con un único candado,
// lo que cubre tanto el bloqueo de filas de productos como el de bodega.
type Store struct {
	mu     sync.Mutex
	st     *state
	undo   repository.UndoStore
	faults *faults
}

// Option configura el Store.
type Option func(*Store)

// WithUndoStore reemplaza la ranura de deshacer en memoria (por ejemplo por Redis).
// Dentro de Run las escrituras a esa ranura se publican solo si la transacción se confirma.
func WithUndoStore(u repository.UndoStore) Option {
	return func(s *Store) { s.undo = u }
}

// New crea un Store vacío.
func New(opts ...Option) *Store {
	s := &Store{st: newState(), faults: newFaults()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run ejecuta fn dentro de una transacción: cualquier error descarta todos los cambios.
func (s *Store) Run(ctx context.Context, fn func(repository.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	repos := s.repos(work)
	var staged *undo.Staged
	if s.undo != nil {
		staged = undo.Stage(s.undo)
		repos.Undo = staged
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	if staged != nil {
		// Los cambios ya están confirmados; solo falta publicar la ranura externa.
		return staged.Flush(ctx)
	}
	return nil
}

// Repos repositorios fuera de transacción: cada llamada lee o escribe el estado confirmado.
func (s *Store) Repos() repository.Repos {
	return s.repos(nil)
}

// FailNext hace que las próximas llamadas a op devuelvan los errores dados, uno por llamada.
// op tiene la forma "<repositorio>.<Método>", por ejemplo "orders.Create".
func (s *Store) FailNext(op string, errs ...error) {
	s.faults.push(op, errs...)
}

func (s *Store) repos(tx *state) repository.Repos {
	b := base{store: s, tx: tx}
	r := repository.Repos{
		Products:   &productRepo{b},
		Warehouses: &warehouseRepo{b},
		Locations:  &locationRepo{b},
		Audit:      &auditRepo{b},
		Orders:     &orderRepo{b},
		Returns:    &returnRepo{b},
		Undo:       &undoRepo{b},
	}
	if s.undo != nil {
		r.Undo = s.undo
	}
	return r
}

// base resuelve sobre qué estado opera un repositorio.
type base struct {
	store *Store
	tx    *state
}

func (b base) do(op string, fn func(st *state) error) error {
	if err := b.store.faults.pop(op); err != nil {
		return err
	}
	if b.tx != nil {
		return fn(b.tx)
	}
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	return fn(b.store.st)
}

type faults struct {
	mu    sync.Mutex
	queue map[string][]error
}

func newFaults() *faults {
	return &faults{queue: map[string][]error{}}
}

func (f *faults) push(op string, errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue[op] = append(f.queue[op], errs...)
}

func (f *faults) pop(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := f.queue[op]
	if len(q) == 0 {
		return nil
	}
	f.queue[op] = q[1:]
	return q[0]
}

func copyProduct(p *entity.Product) *entity.Product {
	c := *p
	if p.LocationID != nil {
		id := *p.LocationID
		c.LocationID = &id
	}
	if p.Price != nil {
		price := *p.Price
		c.Price = &price
	}
	return &c
}
