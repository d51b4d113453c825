package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo implementación del puerto WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para bodegas.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

// Create persiste una nueva bodega.
func (r *WarehouseRepo) Create(ctx context.Context, warehouse *entity.Warehouse) error {
	if warehouse.ID == "" {
		warehouse.ID = uuid.New().String()
	}
	if warehouse.CreatedAt.IsZero() {
		warehouse.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO warehouses (id, name, description, rows_count, columns_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		warehouse.ID, warehouse.Name, warehouse.Description,
		warehouse.RowsCount, warehouse.ColumnsCount, warehouse.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert warehouse: %w", err)
	}
	return nil
}

// GetByID obtiene una bodega por ID.
func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	return r.getOne(ctx, `
		SELECT id, name, description, rows_count, columns_count, created_at
		FROM warehouses WHERE id = $1`, id)
}

// GetForUpdate obtiene la bodega y bloquea su fila; serializa las operaciones de cuadrícula.
func (r *WarehouseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Warehouse, error) {
	return r.getOne(ctx, `
		SELECT id, name, description, rows_count, columns_count, created_at
		FROM warehouses WHERE id = $1 FOR UPDATE`, id)
}

func (r *WarehouseRepo) getOne(ctx context.Context, query, id string) (*entity.Warehouse, error) {
	var w entity.Warehouse
	err := r.q.QueryRow(ctx, query, id).Scan(
		&w.ID, &w.Name, &w.Description, &w.RowsCount, &w.ColumnsCount, &w.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return &w, nil
}

// UpdateGridSize fija la extensión de la cuadrícula.
func (r *WarehouseRepo) UpdateGridSize(ctx context.Context, id string, rows, columns int) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE warehouses SET rows_count = $2, columns_count = $3 WHERE id = $1`,
		id, rows, columns,
	)
	if err != nil {
		return fmt.Errorf("update warehouse grid: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List todas las bodegas ordenadas por nombre.
func (r *WarehouseRepo) List(ctx context.Context) ([]*entity.Warehouse, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, name, description, rows_count, columns_count, created_at
		FROM warehouses ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()
	var list []*entity.Warehouse
	for rows.Next() {
		var w entity.Warehouse
		if err := rows.Scan(&w.ID, &w.Name, &w.Description, &w.RowsCount, &w.ColumnsCount, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		list = append(list, &w)
	}
	return list, rows.Err()
}
