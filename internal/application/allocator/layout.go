package allocator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// MaxGrowth máximo de filas o columnas que se agregan en una sola operación.
const MaxGrowth = 50

// CreateWarehouseInput datos de una bodega nueva.
type CreateWarehouseInput struct {
	Name        string
	Description string
	Rows        int
	Columns     int
}

// CreateWarehouse crea la bodega con todas sus celdas.
func (a *Allocator) CreateWarehouse(ctx context.Context, in CreateWarehouseInput) (*entity.Warehouse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
	}
	if in.Rows < 1 || in.Columns < 1 {
		return nil, fmt.Errorf("%w: filas y columnas deben ser mayores que cero", domain.ErrInvalidInput)
	}
	wh := &entity.Warehouse{
		ID:           uuid.New().String(),
		Name:         name,
		Description:  in.Description,
		RowsCount:    in.Rows,
		ColumnsCount: in.Columns,
		CreatedAt:    a.now(),
	}
	err := a.run(ctx, "create_warehouse", func(ctx context.Context, r repository.Repos) (int, error) {
		if err := r.Warehouses.Create(ctx, wh); err != nil {
			return 0, fmt.Errorf("crear bodega: %w", err)
		}
		if _, err := r.Locations.EnsureCells(ctx, wh.ID, wh.RowsCount, wh.ColumnsCount); err != nil {
			return 0, fmt.Errorf("crear celdas: %w", err)
		}
		return 0, nil
	})
	if err != nil {
		return nil, err
	}
	a.log.Info().Str("warehouse", wh.ID).Int("rows", wh.RowsCount).Int("columns", wh.ColumnsCount).Msg("bodega creada")
	return wh, nil
}

// Warehouses lista las bodegas.
func (a *Allocator) Warehouses(ctx context.Context) ([]*entity.Warehouse, error) {
	var list []*entity.Warehouse
	err := a.txRunner.Run(ctx, func(r repository.Repos) error {
		var err error
		list, err = r.Warehouses.List(ctx)
		return err
	})
	return list, err
}

// AddRows agrega count filas (1..50) con todas sus columnas.
func (a *Allocator) AddRows(ctx context.Context, warehouseID string, count int) (*entity.Warehouse, error) {
	if err := checkGrowth(count); err != nil {
		return nil, err
	}
	var wh *entity.Warehouse
	err := a.run(ctx, "add_rows", func(ctx context.Context, r repository.Repos) (int, error) {
		var err error
		if wh, err = lockWarehouse(ctx, r, warehouseID); err != nil {
			return 0, err
		}
		_, err = growRows(ctx, r, wh, wh.RowsCount+count)
		return 0, err
	})
	if err != nil {
		return nil, err
	}
	return wh, nil
}

// AddColumns agrega count columnas (1..50) con todas sus filas.
func (a *Allocator) AddColumns(ctx context.Context, warehouseID string, count int) (*entity.Warehouse, error) {
	if err := checkGrowth(count); err != nil {
		return nil, err
	}
	var wh *entity.Warehouse
	err := a.run(ctx, "add_columns", func(ctx context.Context, r repository.Repos) (int, error) {
		var err error
		if wh, err = lockWarehouse(ctx, r, warehouseID); err != nil {
			return 0, err
		}
		columns := wh.ColumnsCount + count
		if err := r.Warehouses.UpdateGridSize(ctx, wh.ID, wh.RowsCount, columns); err != nil {
			return 0, fmt.Errorf("ampliar columnas: %w", err)
		}
		if _, err := r.Locations.EnsureCells(ctx, wh.ID, wh.RowsCount, columns); err != nil {
			return 0, fmt.Errorf("crear celdas: %w", err)
		}
		wh.ColumnsCount = columns
		return 0, nil
	})
	if err != nil {
		return nil, err
	}
	return wh, nil
}

// SyncCells crea las celdas que falten en el rectángulo filas × columnas y devuelve cuántas creó.
func (a *Allocator) SyncCells(ctx context.Context, warehouseID string) (int, error) {
	created := 0
	err := a.run(ctx, "sync_cells", func(ctx context.Context, r repository.Repos) (int, error) {
		wh, err := lockWarehouse(ctx, r, warehouseID)
		if err != nil {
			return 0, err
		}
		if created, err = r.Locations.EnsureCells(ctx, wh.ID, wh.RowsCount, wh.ColumnsCount); err != nil {
			return 0, fmt.Errorf("crear celdas: %w", err)
		}
		return 0, nil
	})
	if err != nil {
		return 0, err
	}
	if created > 0 {
		a.log.Info().Str("warehouse", warehouseID).Int("created", created).Msg("celdas sincronizadas")
	}
	return created, nil
}

// Grid vista de la cuadrícula: extensión y cada celda con sus productos. No bloquea.
func (a *Allocator) Grid(ctx context.Context, warehouseID string) (*GridView, error) {
	var view *GridView
	err := a.txRunner.Run(ctx, func(r repository.Repos) error {
		wh, err := r.Warehouses.GetByID(ctx, warehouseID)
		if err != nil {
			return fmt.Errorf("consultar bodega: %w", err)
		}
		if wh == nil {
			return fmt.Errorf("bodega %s: %w", warehouseID, domain.ErrNotFound)
		}
		cells, err := r.Locations.ListByWarehouse(ctx, wh.ID)
		if err != nil {
			return fmt.Errorf("consultar celdas: %w", err)
		}
		products, err := r.Products.ListByLocations(ctx, locationIDs(cells))
		if err != nil {
			return fmt.Errorf("consultar productos: %w", err)
		}
		inCell := make(map[string][]ProductInCell, len(products))
		for _, p := range products {
			inCell[*p.LocationID] = append(inCell[*p.LocationID], ProductInCell{ID: p.ID, ProductNumber: p.ProductNumber, Name: p.Name, Quantity: p.Quantity})
		}
		view = &GridView{Warehouse: wh, Cells: make([]CellView, 0, len(cells))}
		for _, c := range cells {
			view.Cells = append(view.Cells, CellView{
				LocationID: c.ID,
				Row:        c.Row,
				Column:     c.Column,
				Label:      c.Label(),
				Products:   inCell[c.ID],
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func checkGrowth(count int) error {
	if count < 1 || count > MaxGrowth {
		return fmt.Errorf("%w: la cantidad debe estar entre 1 y %d", domain.ErrInvalidInput, MaxGrowth)
	}
	return nil
}
