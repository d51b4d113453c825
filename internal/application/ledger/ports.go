package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Garantiza atomicidad del libro: descuentos, bitácora y orden se confirman juntos o no se confirman.
type TxRunner interface {
	Run(ctx context.Context, fn func(repository.Repos) error) error
}

// Metrics puerto de métricas del libro. outcome: "ok", "invalid", "zero_quantity",
// "not_found", "insufficient_stock", "error".
type Metrics interface {
	ObserveWithdrawal(outcome string, elapsed time.Duration)
	ObserveReturn(outcome string)
}

type nopMetrics struct{}

func (nopMetrics) ObserveWithdrawal(string, time.Duration) {}
func (nopMetrics) ObserveReturn(string)                    {}
