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

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, product_number, name, category, quantity, location_id, price, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto. Un product_number repetido devuelve domain.ErrDuplicate.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = product.CreatedAt
	}
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.ProductNumber, product.Name, product.Category, product.Quantity,
		nullIfEmpty(product.LocationID), product.Price, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetForUpdate obtiene el producto y bloquea su fila hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

func (r *ProductRepo) getOne(ctx context.Context, query, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// ListByNumbers lectura sin bloqueo, ordenada por product_number.
func (r *ProductRepo) ListByNumbers(ctx context.Context, numbers []string) ([]*entity.Product, error) {
	return r.list(ctx, "list products by number",
		`SELECT `+productColumns+` FROM products WHERE product_number = ANY($1) ORDER BY product_number, id`, numbers)
}

// LockByNumbers bloquea las filas en orden de product_number: el nodo de bloqueo va sobre el ORDER BY.
func (r *ProductRepo) LockByNumbers(ctx context.Context, numbers []string) ([]*entity.Product, error) {
	return r.list(ctx, "lock products by number",
		`SELECT `+productColumns+` FROM products WHERE product_number = ANY($1) ORDER BY product_number, id FOR UPDATE`, numbers)
}

// ListByIDs productos existentes entre los IDs dados.
func (r *ProductRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Product, error) {
	return r.list(ctx, "list products by id",
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1) ORDER BY product_number, id`, ids)
}

// ListByLocations productos ubicados en alguna de las celdas dadas.
func (r *ProductRepo) ListByLocations(ctx context.Context, locationIDs []string) ([]*entity.Product, error) {
	return r.list(ctx, "list products by location",
		`SELECT `+productColumns+` FROM products WHERE location_id = ANY($1) ORDER BY product_number, id`, locationIDs)
}

func (r *ProductRepo) list(ctx context.Context, op, query string, keys []string) ([]*entity.Product, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, query, keys)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// UpdateQuantity fija la cantidad. domain.ErrNotFound si el producto no existe.
func (r *ProductRepo) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	cmd, err := r.q.Exec(ctx, `UPDATE products SET quantity = $2, updated_at = now() WHERE id = $1`, id, quantity)
	if err != nil {
		return fmt.Errorf("update product quantity: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateLocation fija o limpia (nil) la celda del producto.
func (r *ProductRepo) UpdateLocation(ctx context.Context, id string, locationID *string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE products SET location_id = $2, updated_at = now() WHERE id = $1`, id, nullIfEmpty(locationID))
	if err != nil {
		return fmt.Errorf("update product location: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(
		&p.ID, &p.ProductNumber, &p.Name, &p.Category, &p.Quantity,
		&p.LocationID, &p.Price, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
