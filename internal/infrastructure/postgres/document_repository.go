package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var (
	_ repository.WithdrawalOrderRepository = (*WithdrawalOrderRepo)(nil)
	_ repository.ProductReturnRepository   = (*ProductReturnRepo)(nil)
)

// WithdrawalOrderRepo órdenes de retiro; las líneas se guardan como JSONB.
type WithdrawalOrderRepo struct {
	q Querier
}

// NewWithdrawalOrderRepository construye el adaptador. Acepta pool o tx (Querier).
func NewWithdrawalOrderRepository(q Querier) *WithdrawalOrderRepo {
	return &WithdrawalOrderRepo{q: q}
}

// Create inserta la orden. Un order_number repetido devuelve domain.ErrDuplicate.
func (r *WithdrawalOrderRepo) Create(ctx context.Context, o *entity.WithdrawalOrder) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	lines := o.Lines
	if lines == nil {
		lines = []entity.WithdrawalLine{}
	}
	query := `
		INSERT INTO withdrawal_orders (id, order_number, lines, total_products, total_quantities, recipient_name, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.OrderNumber, lines, o.TotalProducts, o.TotalQuantities,
		nullIfEmpty(o.RecipientName), o.User, o.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert withdrawal order: %w", err)
	}
	return nil
}

const orderColumns = `id, order_number, lines, total_products, total_quantities, recipient_name, actor, created_at`

// GetByNumber obtiene una orden por número.
func (r *WithdrawalOrderRepo) GetByNumber(ctx context.Context, orderNumber string) (*entity.WithdrawalOrder, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM withdrawal_orders WHERE order_number = $1`, orderNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get withdrawal order: %w", err)
	}
	return o, nil
}

// ListRecent órdenes más recientes primero. limit <= 0 devuelve todas (LIMIT NULL).
func (r *WithdrawalOrderRepo) ListRecent(ctx context.Context, limit int) ([]*entity.WithdrawalOrder, error) {
	var max *int
	if limit > 0 {
		max = &limit
	}
	rows, err := r.q.Query(ctx, `SELECT `+orderColumns+` FROM withdrawal_orders ORDER BY created_at DESC, order_number DESC LIMIT $1`, max)
	if err != nil {
		return nil, fmt.Errorf("list withdrawal orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.WithdrawalOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan withdrawal order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func scanOrder(row pgx.Row) (*entity.WithdrawalOrder, error) {
	var o entity.WithdrawalOrder
	if err := row.Scan(
		&o.ID, &o.OrderNumber, &o.Lines, &o.TotalProducts, &o.TotalQuantities,
		&o.RecipientName, &o.User, &o.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &o, nil
}

// ProductReturnRepo devoluciones; las líneas se guardan como JSONB.
type ProductReturnRepo struct {
	q Querier
}

// NewProductReturnRepository construye el adaptador. Acepta pool o tx (Querier).
func NewProductReturnRepository(q Querier) *ProductReturnRepo {
	return &ProductReturnRepo{q: q}
}

// Create inserta la devolución. Un return_number repetido devuelve domain.ErrDuplicate.
func (r *ProductReturnRepo) Create(ctx context.Context, ret *entity.ProductReturn) error {
	if ret.ID == "" {
		ret.ID = uuid.New().String()
	}
	lines := ret.Lines
	if lines == nil {
		lines = []entity.ReturnLine{}
	}
	query := `
		INSERT INTO product_returns (id, return_number, lines, total_products, total_quantities, return_reason, returned_by, notes, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		ret.ID, ret.ReturnNumber, lines, ret.TotalProducts, ret.TotalQuantities,
		nullIfEmpty(ret.ReturnReason), nullIfEmpty(ret.ReturnedBy), nullIfEmpty(ret.Notes), ret.User, ret.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product return: %w", err)
	}
	return nil
}
