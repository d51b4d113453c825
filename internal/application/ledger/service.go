// Package ledger implementa el libro de retiros: lotes de descuento de stock y devoluciones,
// cada uno en una sola transacción con bitácora y documento generado.
package ledger

import (
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/inventory"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// maxNumberAttempts reintentos ante colisión del número de documento.
const maxNumberAttempts = 5

// Service casos de uso del libro de retiros.
type Service struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository // lectura sin bloqueo para la prevalidación
	log         *logger.Logger
	metrics     Metrics
	tracer      trace.Tracer
	now         func() time.Time
	newNumber   func(prefix string, now time.Time) (string, error)
}

// Option configura el Service.
type Option func(*Service)

// WithLogger logger del servicio (componente "ledger").
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l.Component("ledger") }
}

// WithMetrics colector de métricas; por defecto no registra nada.
func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock reloj usado para marcas de tiempo y números de documento.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithNumberGenerator reemplaza el generador de números de documento.
func WithNumberGenerator(fn func(prefix string, now time.Time) (string, error)) Option {
	return func(s *Service) { s.newNumber = fn }
}

// NewService construye el servicio.
func NewService(txRunner TxRunner, productRepo repository.ProductRepository, opts ...Option) *Service {
	s := &Service{
		txRunner:    txRunner,
		productRepo: productRepo,
		log:         logger.Nop(),
		metrics:     nopMetrics{},
		tracer:      otel.Tracer("almacen/ledger"),
		now:         time.Now,
		newNumber:   inventory.DocumentNumber,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func actorOrGuest(user string) string {
	if user == "" {
		return entity.GuestActor
	}
	return user
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func indexByNumber(list []*entity.Product) map[string]*entity.Product {
	m := make(map[string]*entity.Product, len(list))
	for _, p := range list {
		m[p.ProductNumber] = p
	}
	return m
}

func missingNumbers(numbers []string, byNumber map[string]*entity.Product) []string {
	var missing []string
	for _, n := range numbers {
		if _, ok := byNumber[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing
}

// outcome etiqueta de métrica para el resultado de una operación.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrEmptyBatch):
		return "invalid"
	case errors.Is(err, domain.ErrZeroQuantity):
		return "zero_quantity"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	default:
		return "error"
	}
}

// isBusinessError errores esperados que no se registran como fallas internas.
func isBusinessError(err error) bool {
	return outcome(err) != "error"
}
