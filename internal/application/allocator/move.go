package allocator

import (
	"context"
	"fmt"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	gridplan "github.com/jhoicas/Almacen-api/internal/domain/grid"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// Move ubica el producto en la celda "R<fila>C<columna>" de la bodega.
//   - Si la fila destino no existe, la bodega crece hasta ella.
//   - Destino ocupado: los productos de la columna desde esa fila bajan una fila (de abajo hacia
//     arriba, creciendo la bodega si hace falta) y el producto ocupa la celda liberada.
//   - Destino vacío en otra columna: se rechaza si la columna está llena.
//   - Destino vacío más abajo en la misma columna: los productos intermedios suben una fila.
//
// Las celdas previas de todos los productos movidos quedan como registro de deshacer.
func (a *Allocator) Move(ctx context.Context, caller Caller, warehouseID, productID, cellRef string) (*MoveResult, error) {
	ref, err := gridplan.ParseCellRef(cellRef)
	if err != nil {
		return nil, err
	}
	var res *MoveResult
	err = a.run(ctx, "move", func(ctx context.Context, r repository.Repos) (int, error) {
		wh, err := lockWarehouse(ctx, r, warehouseID)
		if err != nil {
			return 0, err
		}
		if ref.Column > wh.ColumnsCount {
			return 0, fmt.Errorf("%w: la columna %d no existe (1..%d)", domain.ErrInvalidCellRef, ref.Column, wh.ColumnsCount)
		}
		p, err := r.Products.GetForUpdate(ctx, productID)
		if err != nil {
			return 0, fmt.Errorf("bloquear producto: %w", err)
		}
		if p == nil {
			return 0, fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
		}
		var current *entity.Location
		if p.HasLocation() {
			if current, err = r.Locations.GetByID(ctx, *p.LocationID); err != nil {
				return 0, fmt.Errorf("consultar ubicación actual: %w", err)
			}
		}

		res = &MoveResult{CellMove: CellMove{ProductID: p.ID, ProductNumber: p.ProductNumber, From: current.Label(), To: ref.String()}}
		if res.RowsAdded, err = growRows(ctx, r, wh, ref.Row); err != nil {
			return 0, err
		}

		column, err := r.Locations.ListByColumn(ctx, wh.ID, ref.Column)
		if err != nil {
			return 0, fmt.Errorf("consultar columna: %w", err)
		}
		target := cellAtRow(column, ref.Row)
		if target == nil {
			return 0, fmt.Errorf("celda %s: %w", ref, domain.ErrNotFound)
		}
		if p.InLocation(target.ID) {
			res.NoChange = true
			return 0, nil
		}

		occupants, err := columnOccupants(ctx, r, column, p.ID)
		if err != nil {
			return 0, err
		}
		sameColumn := current != nil && current.WarehouseID == wh.ID && current.Column == ref.Column
		targetTaken := false
		for _, o := range occupants {
			if o.Row == ref.Row {
				targetTaken = true
				break
			}
		}

		var shifts []gridplan.Shift
		switch {
		case targetTaken:
			var lastRow int
			shifts, lastRow = gridplan.PlanCascade(occupants, ref.Row)
			added, err := growRows(ctx, r, wh, lastRow)
			if err != nil {
				return 0, err
			}
			if added > 0 {
				res.RowsAdded += added
				if column, err = r.Locations.ListByColumn(ctx, wh.ID, ref.Column); err != nil {
					return 0, fmt.Errorf("consultar columna: %w", err)
				}
			}
		case !sameColumn:
			if gridplan.ColumnFull(len(occupants), wh.RowsCount) {
				return 0, &domain.CapacityError{Column: ref.Column, Rows: wh.RowsCount, Occupied: len(occupants)}
			}
		case current.Row < ref.Row:
			shifts = gridplan.PlanGapClose(occupants, current.Row, ref.Row)
		}

		now := a.now()
		record := &entity.CompactionUndo{Kind: entity.UndoKindColumn, Index: ref.Column, WarehouseID: wh.ID, CreatedAt: now}
		if len(shifts) > 0 {
			ids := make([]string, 0, len(shifts))
			for _, s := range shifts {
				ids = append(ids, s.ProductID)
			}
			shifted, err := r.Products.ListByIDs(ctx, ids)
			if err != nil {
				return 0, fmt.Errorf("consultar productos desplazados: %w", err)
			}
			byID := make(map[string]*entity.Product, len(shifted))
			for _, sp := range shifted {
				byID[sp.ID] = sp
			}
			for _, s := range shifts {
				sp := byID[s.ProductID]
				from, to := cellAtRow(column, s.FromRow), cellAtRow(column, s.ToRow)
				if sp == nil || from == nil || to == nil {
					return 0, fmt.Errorf("%w: la columna cambió durante el desplazamiento", domain.ErrConflict)
				}
				if err := r.Products.UpdateLocation(ctx, sp.ID, ptr(to.ID)); err != nil {
					return 0, fmt.Errorf("desplazar producto %s: %w", sp.ProductNumber, err)
				}
				notes := fmt.Sprintf("reordenamiento automático: %s → %s", from.Label(), to.Label())
				if err := r.Audit.Create(ctx, locationAudit(sp, notes, caller.Actor(), now)); err != nil {
					return 0, fmt.Errorf("registrar auditoría: %w", err)
				}
				record.Entries = append(record.Entries, entity.UndoEntry{ProductID: sp.ID, LocationID: ptr(from.ID)})
				res.Shifted = append(res.Shifted, CellMove{ProductID: sp.ID, ProductNumber: sp.ProductNumber, From: from.Label(), To: to.Label()})
			}
		}

		if err := r.Products.UpdateLocation(ctx, p.ID, ptr(target.ID)); err != nil {
			return 0, fmt.Errorf("mover producto %s: %w", p.ProductNumber, err)
		}
		notes := fmt.Sprintf("movimiento manual: %s → %s", current.Label(), target.Label())
		if err := r.Audit.Create(ctx, locationAudit(p, notes, caller.Actor(), now)); err != nil {
			return 0, fmt.Errorf("registrar auditoría: %w", err)
		}
		record.Entries = append(record.Entries, entity.UndoEntry{ProductID: p.ID, LocationID: p.LocationID})

		if err := r.Undo.Put(ctx, caller.SessionKey(), record); err != nil {
			return 0, fmt.Errorf("guardar registro de deshacer: %w", err)
		}
		return len(record.Entries), nil
	})
	if err != nil {
		return nil, err
	}
	if !res.NoChange {
		a.log.Info().
			Str("warehouse", warehouseID).
			Str("product", res.ProductNumber).
			Str("from", res.From).
			Str("to", res.To).
			Int("shifted", len(res.Shifted)).
			Int("rows_added", res.RowsAdded).
			Msg("producto movido")
	}
	return res, nil
}

// columnOccupants productos ubicados en la columna, excepto exclude.
func columnOccupants(ctx context.Context, r repository.Repos, column []*entity.Location, exclude string) ([]gridplan.Occupant, error) {
	products, err := r.Products.ListByLocations(ctx, locationIDs(column))
	if err != nil {
		return nil, fmt.Errorf("consultar ocupantes: %w", err)
	}
	byID := indexLocations(column)
	out := make([]gridplan.Occupant, 0, len(products))
	for _, p := range products {
		if p.ID == exclude {
			continue
		}
		out = append(out, gridplan.Occupant{ProductID: p.ID, Row: byID[*p.LocationID].Row})
	}
	return out, nil
}

func cellAtRow(column []*entity.Location, row int) *entity.Location {
	for _, c := range column {
		if c.Row == row {
			return c
		}
	}
	return nil
}
