package allocator

import (
	"context"
	"fmt"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// RevertLastCompaction restaura las celdas previas de la última compactación o movimiento en
// cascada de la sesión y vacía la ranura. Los productos eliminados desde entonces se omiten;
// si una celda a restaurar la ocupa un producto ajeno al registro, no se restaura nada.
func (a *Allocator) RevertLastCompaction(ctx context.Context, caller Caller) (*RevertResult, error) {
	var res *RevertResult
	err := a.run(ctx, "revert", func(ctx context.Context, r repository.Repos) (int, error) {
		record, err := r.Undo.Get(ctx, caller.SessionKey())
		if err != nil {
			return 0, fmt.Errorf("leer registro de deshacer: %w", err)
		}
		if record.Empty() {
			return 0, domain.ErrNothingToUndo
		}
		if _, err := lockWarehouse(ctx, r, record.WarehouseID); err != nil {
			return 0, err
		}
		res = &RevertResult{WarehouseID: record.WarehouseID, Kind: record.Kind, Index: record.Index}

		ids := make([]string, 0, len(record.Entries))
		recorded := make(map[string]bool, len(record.Entries))
		for _, e := range record.Entries {
			ids = append(ids, e.ProductID)
			recorded[e.ProductID] = true
		}
		products, err := r.Products.ListByIDs(ctx, ids)
		if err != nil {
			return 0, fmt.Errorf("consultar productos: %w", err)
		}
		byID := make(map[string]*entity.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		locations := map[string]*entity.Location{}
		load := func(id *string) (*entity.Location, error) {
			if id == nil {
				return nil, nil
			}
			if l, ok := locations[*id]; ok {
				return l, nil
			}
			l, err := r.Locations.GetByID(ctx, *id)
			if err != nil {
				return nil, fmt.Errorf("consultar ubicación: %w", err)
			}
			locations[*id] = l
			return l, nil
		}

		type restore struct {
			product  *entity.Product
			from, to *entity.Location
		}
		var plan []restore
		var targets []string
		for _, e := range record.Entries {
			p, ok := byID[e.ProductID]
			if !ok {
				res.Skipped++
				continue
			}
			to, err := load(e.LocationID)
			if err != nil {
				return 0, err
			}
			if e.LocationID != nil && to == nil {
				res.Skipped++ // la celda ya no existe
				continue
			}
			if sameLocation(p.LocationID, e.LocationID) {
				continue
			}
			from, err := load(p.LocationID)
			if err != nil {
				return 0, err
			}
			plan = append(plan, restore{product: p, from: from, to: to})
			if to != nil {
				targets = append(targets, to.ID)
			}
		}

		if len(targets) > 0 {
			occupants, err := r.Products.ListByLocations(ctx, targets)
			if err != nil {
				return 0, fmt.Errorf("consultar ocupantes: %w", err)
			}
			for _, o := range occupants {
				if !recorded[o.ID] {
					cell, err := load(o.LocationID)
					if err != nil {
						return 0, err
					}
					return 0, &domain.CellOccupiedError{Cell: cell.Label(), ProductNumber: o.ProductNumber}
				}
			}
		}

		now := a.now()
		for _, step := range plan {
			var target *string
			if step.to != nil {
				target = ptr(step.to.ID)
			}
			if err := r.Products.UpdateLocation(ctx, step.product.ID, target); err != nil {
				return 0, fmt.Errorf("restaurar producto %s: %w", step.product.ProductNumber, err)
			}
			notes := fmt.Sprintf("deshacer %s %d: %s → %s", kindLabel(record.Kind), record.Index, step.from.Label(), step.to.Label())
			if err := r.Audit.Create(ctx, locationAudit(step.product, notes, caller.Actor(), now)); err != nil {
				return 0, fmt.Errorf("registrar auditoría: %w", err)
			}
			res.Restored = append(res.Restored, CellMove{
				ProductID:     step.product.ID,
				ProductNumber: step.product.ProductNumber,
				From:          step.from.Label(),
				To:            step.to.Label(),
			})
		}

		if err := r.Undo.Delete(ctx, caller.SessionKey()); err != nil {
			return 0, fmt.Errorf("vaciar registro de deshacer: %w", err)
		}
		return len(res.Restored), nil
	})
	if err != nil {
		return nil, err
	}
	a.log.Info().Str("warehouse", res.WarehouseID).Int("restored", len(res.Restored)).Int("skipped", res.Skipped).Msg("operación deshecha")
	return res, nil
}
