package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

const locationColumns = `id, warehouse_id, row_num, col_num, notes, is_active`

// LocationRepo celdas de la cuadrícula sobre PostgreSQL.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador. Acepta pool o tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

// GetByID obtiene una celda por ID.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	return r.getOne(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, id)
}

// GetByPosition obtiene la celda (row, column) de la bodega.
func (r *LocationRepo) GetByPosition(ctx context.Context, warehouseID string, row, column int) (*entity.Location, error) {
	return r.getOne(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE warehouse_id = $1 AND row_num = $2 AND col_num = $3`,
		warehouseID, row, column)
}

func (r *LocationRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Location, error) {
	l, err := scanLocation(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return l, nil
}

// ListByRow celdas de la fila ordenadas por columna.
func (r *LocationRepo) ListByRow(ctx context.Context, warehouseID string, row int) ([]*entity.Location, error) {
	return r.list(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE warehouse_id = $1 AND row_num = $2 ORDER BY col_num`,
		warehouseID, row)
}

// ListByColumn celdas de la columna ordenadas por fila.
func (r *LocationRepo) ListByColumn(ctx context.Context, warehouseID string, column int) ([]*entity.Location, error) {
	return r.list(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE warehouse_id = $1 AND col_num = $2 ORDER BY row_num`,
		warehouseID, column)
}

// ListByWarehouse todas las celdas en orden (fila, columna).
func (r *LocationRepo) ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.Location, error) {
	return r.list(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE warehouse_id = $1 ORDER BY row_num, col_num`,
		warehouseID)
}

func (r *LocationRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Location, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// EnsureCells inserta las celdas faltantes del rectángulo; las existentes quedan intactas.
func (r *LocationRepo) EnsureCells(ctx context.Context, warehouseID string, rows, columns int) (int, error) {
	if rows < 1 || columns < 1 {
		return 0, nil
	}
	cmd, err := r.q.Exec(ctx, `
		INSERT INTO locations (id, warehouse_id, row_num, col_num)
		SELECT gen_random_uuid()::text, $1, r, c
		FROM generate_series(1, $2::int) AS r, generate_series(1, $3::int) AS c
		ON CONFLICT (warehouse_id, row_num, col_num) DO NOTHING`,
		warehouseID, rows, columns)
	if err != nil {
		return 0, fmt.Errorf("ensure cells: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}

func scanLocation(row pgx.Row) (*entity.Location, error) {
	var l entity.Location
	if err := row.Scan(&l.ID, &l.WarehouseID, &l.Row, &l.Column, &l.Notes, &l.IsActive); err != nil {
		return nil, err
	}
	return &l, nil
}
