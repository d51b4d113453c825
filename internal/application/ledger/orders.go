package ledger

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

const (
	defaultOrderLimit = 50
	maxOrderLimit     = 500
)

// RecentOrders órdenes de retiro más recientes primero (limit <= 0 usa 50, máximo 500).
func (s *Service) RecentOrders(ctx context.Context, limit int) ([]*entity.WithdrawalOrder, error) {
	switch {
	case limit <= 0:
		limit = defaultOrderLimit
	case limit > maxOrderLimit:
		limit = maxOrderLimit
	}
	var list []*entity.WithdrawalOrder
	err := s.txRunner.Run(ctx, func(r repository.Repos) error {
		var err error
		list, err = r.Orders.ListRecent(ctx, limit)
		return err
	})
	return list, err
}
