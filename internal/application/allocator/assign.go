package allocator

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// Assign ubica el producto en la celda indicada; locationID nil (o vacío) lo deja sin ubicación.
// Rechaza una celda ocupada por otro producto: nunca desplaza.
func (a *Allocator) Assign(ctx context.Context, caller Caller, productID string, locationID *string) (*AssignResult, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: producto requerido", domain.ErrInvalidInput)
	}
	unassign := locationID == nil || *locationID == ""
	var res *AssignResult
	err := a.run(ctx, "assign", func(ctx context.Context, r repository.Repos) (int, error) {
		// Lectura previa para saber qué bodegas bloquear antes de bloquear el producto:
		// el orden bodega → producto es el mismo de las demás operaciones.
		peek, err := r.Products.GetByID(ctx, productID)
		if err != nil {
			return 0, fmt.Errorf("consultar producto: %w", err)
		}
		if peek == nil {
			return 0, fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
		}
		var target *entity.Location
		if !unassign {
			target, err = r.Locations.GetByID(ctx, *locationID)
			if err != nil {
				return 0, fmt.Errorf("consultar ubicación: %w", err)
			}
			if target == nil {
				return 0, fmt.Errorf("ubicación %s: %w", *locationID, domain.ErrNotFound)
			}
		}
		var current *entity.Location
		if peek.HasLocation() {
			if current, err = r.Locations.GetByID(ctx, *peek.LocationID); err != nil {
				return 0, fmt.Errorf("consultar ubicación actual: %w", err)
			}
		}
		if err := lockWarehouses(ctx, r, target, current); err != nil {
			return 0, err
		}

		p, err := r.Products.GetForUpdate(ctx, productID)
		if err != nil {
			return 0, fmt.Errorf("bloquear producto: %w", err)
		}
		if p == nil {
			return 0, fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
		}
		if !sameLocation(p.LocationID, peek.LocationID) {
			return 0, fmt.Errorf("%w: la ubicación del producto cambió durante la operación", domain.ErrConflict)
		}

		res, err = a.assign(ctx, r, caller, p, current, target)
		if err != nil || res.NoChange {
			return 0, err
		}
		return 1, nil
	})
	if err != nil {
		return nil, err
	}
	if !res.NoChange {
		a.log.Info().Str("product", res.ProductNumber).Str("from", res.From).Str("to", res.To).Msg("ubicación asignada")
	}
	return res, nil
}

func (a *Allocator) assign(ctx context.Context, r repository.Repos, caller Caller, p *entity.Product, current, target *entity.Location) (*AssignResult, error) {
	now := a.now()
	res := &AssignResult{CellMove: CellMove{ProductID: p.ID, ProductNumber: p.ProductNumber, From: current.Label(), To: target.Label()}}

	if target == nil {
		if !p.HasLocation() {
			res.NoChange = true
			return res, nil
		}
		if err := r.Products.UpdateLocation(ctx, p.ID, nil); err != nil {
			return nil, fmt.Errorf("quitar ubicación: %w", err)
		}
		notes := fmt.Sprintf("ubicación desvinculada: %s", current.Label())
		if err := r.Audit.Create(ctx, entity.NewLocationAudit(entity.AuditLocationRemoved, p, notes, caller.Actor(), now)); err != nil {
			return nil, fmt.Errorf("registrar auditoría: %w", err)
		}
		return res, nil
	}

	if p.InLocation(target.ID) {
		res.NoChange = true
		notes := fmt.Sprintf("sin cambios: %s", target.Label())
		if err := r.Audit.Create(ctx, locationAudit(p, notes, caller.Actor(), now)); err != nil {
			return nil, fmt.Errorf("registrar auditoría: %w", err)
		}
		return res, nil
	}

	occupants, err := r.Products.ListByLocations(ctx, []string{target.ID})
	if err != nil {
		return nil, fmt.Errorf("consultar ocupantes: %w", err)
	}
	for _, o := range occupants {
		if o.ID != p.ID {
			return nil, &domain.CellOccupiedError{Cell: target.Label(), ProductNumber: o.ProductNumber}
		}
	}

	if err := r.Products.UpdateLocation(ctx, p.ID, ptr(target.ID)); err != nil {
		return nil, fmt.Errorf("asignar ubicación: %w", err)
	}
	notes := fmt.Sprintf("cambio de ubicación: %s → %s", current.Label(), target.Label())
	if err := r.Audit.Create(ctx, locationAudit(p, notes, caller.Actor(), now)); err != nil {
		return nil, fmt.Errorf("registrar auditoría: %w", err)
	}
	return res, nil
}

// lockWarehouses bloquea las bodegas involucradas en orden de ID.
func lockWarehouses(ctx context.Context, r repository.Repos, locations ...*entity.Location) error {
	seen := map[string]bool{}
	var ids []string
	for _, l := range locations {
		if l != nil && !seen[l.WarehouseID] {
			seen[l.WarehouseID] = true
			ids = append(ids, l.WarehouseID)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, err := lockWarehouse(ctx, r, id); err != nil {
			return err
		}
	}
	return nil
}

func sameLocation(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
