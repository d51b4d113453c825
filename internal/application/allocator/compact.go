package allocator

import (
	"context"
	"fmt"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	gridplan "github.com/jhoicas/Almacen-api/internal/domain/grid"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// CompactRow lleva el contenido de la fila a las primeras columnas, sin huecos.
func (a *Allocator) CompactRow(ctx context.Context, caller Caller, warehouseID string, row int) (*CompactionResult, error) {
	return a.compact(ctx, caller, warehouseID, entity.UndoKindRow, row)
}

// CompactColumn lleva el contenido de la columna a las primeras filas, sin huecos.
func (a *Allocator) CompactColumn(ctx context.Context, caller Caller, warehouseID string, column int) (*CompactionResult, error) {
	return a.compact(ctx, caller, warehouseID, entity.UndoKindColumn, column)
}

func (a *Allocator) compact(ctx context.Context, caller Caller, warehouseID, kind string, index int) (*CompactionResult, error) {
	res := &CompactionResult{WarehouseID: warehouseID, Kind: kind, Index: index}
	err := a.run(ctx, "compact_"+kind, func(ctx context.Context, r repository.Repos) (int, error) {
		wh, err := lockWarehouse(ctx, r, warehouseID)
		if err != nil {
			return 0, err
		}
		var cells []*entity.Location
		switch kind {
		case entity.UndoKindRow:
			if index < 1 || index > wh.RowsCount {
				return 0, fmt.Errorf("%w: la fila %d no existe (1..%d)", domain.ErrInvalidInput, index, wh.RowsCount)
			}
			cells, err = r.Locations.ListByRow(ctx, wh.ID, index)
		default:
			if index < 1 || index > wh.ColumnsCount {
				return 0, fmt.Errorf("%w: la columna %d no existe (1..%d)", domain.ErrInvalidInput, index, wh.ColumnsCount)
			}
			cells, err = r.Locations.ListByColumn(ctx, wh.ID, index)
		}
		if err != nil {
			return 0, fmt.Errorf("consultar celdas: %w", err)
		}

		products, err := r.Products.ListByLocations(ctx, locationIDs(cells))
		if err != nil {
			return 0, fmt.Errorf("consultar productos: %w", err)
		}
		byID := make(map[string]*entity.Product, len(products))
		inCell := make(map[string][]string, len(cells))
		for _, p := range products {
			byID[p.ID] = p
			inCell[*p.LocationID] = append(inCell[*p.LocationID], p.ID)
		}
		slots := make([]gridplan.Slot, 0, len(cells))
		for _, c := range cells {
			slots = append(slots, gridplan.Slot{LocationID: c.ID, ProductIDs: inCell[c.ID]})
		}

		cellsByID := indexLocations(cells)
		now := a.now()
		record := &entity.CompactionUndo{Kind: kind, Index: index, WarehouseID: wh.ID, CreatedAt: now}
		for _, m := range gridplan.PlanCompaction(slots) {
			p := byID[m.ProductID]
			from, to := cellsByID[m.From], cellsByID[m.To]
			if err := r.Products.UpdateLocation(ctx, p.ID, ptr(to.ID)); err != nil {
				return 0, fmt.Errorf("mover producto %s: %w", p.ProductNumber, err)
			}
			notes := fmt.Sprintf("compactación de %s %d: %s → %s", kindLabel(kind), index, from.Label(), to.Label())
			if err := r.Audit.Create(ctx, locationAudit(p, notes, caller.Actor(), now)); err != nil {
				return 0, fmt.Errorf("registrar auditoría: %w", err)
			}
			record.Entries = append(record.Entries, entity.UndoEntry{ProductID: p.ID, LocationID: ptr(from.ID)})
			res.Moves = append(res.Moves, CellMove{ProductID: p.ID, ProductNumber: p.ProductNumber, From: from.Label(), To: to.Label()})
		}

		// El registro reemplaza al anterior aunque no haya movimientos.
		if err := r.Undo.Put(ctx, caller.SessionKey(), record); err != nil {
			return 0, fmt.Errorf("guardar registro de deshacer: %w", err)
		}
		return len(res.Moves), nil
	})
	if err != nil {
		return nil, err
	}
	a.log.Info().Str("warehouse", warehouseID).Str("type", kind).Int("index", index).Int("moved", len(res.Moves)).Msg("compactación aplicada")
	return res, nil
}

func kindLabel(kind string) string {
	if kind == entity.UndoKindRow {
		return "fila"
	}
	return "columna"
}
