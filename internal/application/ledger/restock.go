package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/inventory"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// RestockInput entrada de una devolución: reingreso de stock.
type RestockInput struct {
	Lines        []inventory.Line
	ReturnReason string
	ReturnedBy   string
	Notes        string
	User         string
}

// Restock suma las cantidades devueltas, registra quantity_added por número y crea la devolución.
func (s *Service) Restock(ctx context.Context, in RestockInput) (*entity.ProductReturn, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.Restock")
	defer span.End()

	ret, err := s.restock(ctx, in)
	s.metrics.ObserveReturn(outcome(err))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome(err))
		if !isBusinessError(err) {
			s.log.Error().Err(err).Msg("devolución fallida")
		}
		return nil, err
	}
	span.SetAttributes(attribute.String("return.number", ret.ReturnNumber))
	s.log.Info().
		Str("return", ret.ReturnNumber).
		Int("products", ret.TotalProducts).
		Int("quantities", ret.TotalQuantities).
		Str("user", ret.User).
		Msg("devolución registrada")
	return ret, nil
}

func (s *Service) restock(ctx context.Context, in RestockInput) (*entity.ProductReturn, error) {
	batch, err := inventory.AggregateRestock(in.Lines)
	if err != nil {
		return nil, err
	}
	user := actorOrGuest(in.User)
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		var ret *entity.ProductReturn
		err := s.txRunner.Run(ctx, func(r repository.Repos) error {
			var err error
			ret, err = s.applyRestock(ctx, r, batch, in, user)
			return err
		})
		if errors.Is(err, domain.ErrDuplicate) {
			s.log.Warn().Int("attempt", attempt).Msg("número de devolución repetido, se genera otro")
			continue
		}
		if err != nil {
			return nil, err
		}
		return ret, nil
	}
	return nil, fmt.Errorf("generar número de devolución: %w", domain.ErrDuplicate)
}

func (s *Service) applyRestock(ctx context.Context, r repository.Repos, batch inventory.Batch, in RestockInput, user string) (*entity.ProductReturn, error) {
	locked, err := r.Products.LockByNumbers(ctx, batch.Numbers)
	if err != nil {
		return nil, fmt.Errorf("bloquear productos: %w", err)
	}
	byNumber := indexByNumber(locked)
	if missing := missingNumbers(batch.Numbers, byNumber); len(missing) > 0 {
		return nil, &domain.MissingProductsError{ProductNumbers: missing}
	}

	now := s.now()
	ret := &entity.ProductReturn{
		ID:           uuid.New().String(),
		Lines:        make([]entity.ReturnLine, 0, len(batch.Numbers)),
		ReturnReason: optional(in.ReturnReason),
		ReturnedBy:   optional(in.ReturnedBy),
		Notes:        optional(in.Notes),
		User:         user,
		CreatedAt:    now,
	}
	for _, number := range batch.Numbers {
		p := byNumber[number]
		added := batch.Quantities[number]
		before := p.Quantity
		after := before + added
		if err := r.Products.UpdateQuantity(ctx, p.ID, after); err != nil {
			return nil, fmt.Errorf("reingresar %s: %w", number, err)
		}
		notes := fmt.Sprintf("devolución de %d unidad(es)", added)
		if err := r.Audit.Create(ctx, entity.NewQuantityAudit(entity.AuditQuantityAdded, p, before, after, notes, user, now)); err != nil {
			return nil, fmt.Errorf("registrar auditoría %s: %w", number, err)
		}
		ret.Lines = append(ret.Lines, entity.ReturnLine{
			ProductNumber:    number,
			ProductName:      p.Name,
			QuantityBefore:   before,
			QuantityReturned: added,
			QuantityAfter:    after,
		})
		ret.TotalProducts++
		ret.TotalQuantities += added
	}

	number, err := s.newNumber(inventory.ReturnPrefix, now)
	if err != nil {
		return nil, err
	}
	ret.ReturnNumber = number
	if err := r.Returns.Create(ctx, ret); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("crear devolución: %w", err)
	}
	return ret, nil
}
