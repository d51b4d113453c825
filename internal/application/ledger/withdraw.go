package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/inventory"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// WithdrawalInput entrada de un lote de retiro.
// ConfirmZero confirma como no-op las líneas con cantidad agregada 0 en lugar de rechazarlas.
type WithdrawalInput struct {
	Lines         []inventory.Line
	RecipientName string
	User          string
	ConfirmZero   bool
}

// Withdraw valida el lote completo, bloquea los productos en orden de número, descuenta,
// registra una entrada de bitácora por número y crea la orden de retiro. Todo o nada.
func (s *Service) Withdraw(ctx context.Context, in WithdrawalInput) (*entity.WithdrawalOrder, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "ledger.Withdraw")
	defer span.End()

	order, err := s.withdraw(ctx, in)
	s.metrics.ObserveWithdrawal(outcome(err), time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome(err))
		if !isBusinessError(err) {
			s.log.Error().Err(err).Msg("retiro fallido")
		}
		return nil, err
	}
	span.SetAttributes(
		attribute.String("order.number", order.OrderNumber),
		attribute.Int("order.total_quantities", order.TotalQuantities),
	)
	s.log.Info().
		Str("order", order.OrderNumber).
		Int("products", order.TotalProducts).
		Int("quantities", order.TotalQuantities).
		Str("user", order.User).
		Msg("retiro registrado")
	return order, nil
}

func (s *Service) withdraw(ctx context.Context, in WithdrawalInput) (*entity.WithdrawalOrder, error) {
	batch, err := inventory.AggregateWithdrawal(in.Lines)
	if err != nil {
		return nil, err
	}
	if zero := batch.NonPositive(); len(zero) > 0 && !in.ConfirmZero {
		return nil, &domain.ZeroQuantityError{ProductNumbers: zero}
	}

	// Prevalidación sin bloqueo: rechaza pronto sin abrir transacción.
	current, err := s.productRepo.ListByNumbers(ctx, batch.Numbers)
	if err != nil {
		return nil, fmt.Errorf("consultar productos: %w", err)
	}
	if err := checkAvailability(batch, indexByNumber(current)); err != nil {
		return nil, err
	}

	user := actorOrGuest(in.User)
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		var order *entity.WithdrawalOrder
		err := s.txRunner.Run(ctx, func(r repository.Repos) error {
			var err error
			order, err = s.applyWithdrawal(ctx, r, batch, in.RecipientName, user)
			return err
		})
		if errors.Is(err, domain.ErrDuplicate) {
			s.log.Warn().Int("attempt", attempt).Msg("número de orden repetido, se genera otro")
			continue
		}
		if err != nil {
			return nil, err
		}
		return order, nil
	}
	return nil, fmt.Errorf("generar número de orden: %w", domain.ErrDuplicate)
}

// applyWithdrawal corre dentro de la transacción. Las filas se bloquean en orden lexicográfico
// de número de producto; la validación se repite sobre las filas bloqueadas.
func (s *Service) applyWithdrawal(ctx context.Context, r repository.Repos, batch inventory.Batch, recipient, user string) (*entity.WithdrawalOrder, error) {
	locked, err := r.Products.LockByNumbers(ctx, batch.Numbers)
	if err != nil {
		return nil, fmt.Errorf("bloquear productos: %w", err)
	}
	byNumber := indexByNumber(locked)
	if err := checkAvailability(batch, byNumber); err != nil {
		return nil, err
	}

	now := s.now()
	order := &entity.WithdrawalOrder{
		ID:            uuid.New().String(),
		Lines:         make([]entity.WithdrawalLine, 0, len(batch.Numbers)),
		RecipientName: optional(recipient),
		User:          user,
		CreatedAt:     now,
	}
	for _, number := range batch.Numbers {
		p := byNumber[number]
		requested := batch.Quantities[number]
		before := p.Quantity
		after := before - requested

		notes := "confirmado sin retiro (cantidad 0)"
		if requested > 0 {
			if err := r.Products.UpdateQuantity(ctx, p.ID, after); err != nil {
				return nil, fmt.Errorf("descontar %s: %w", number, err)
			}
			notes = fmt.Sprintf("descuento por lote: %d", requested)
			order.TotalProducts++
			order.TotalQuantities += requested
		}
		if err := r.Audit.Create(ctx, entity.NewQuantityAudit(entity.AuditQuantityTaken, p, before, after, notes, user, now)); err != nil {
			return nil, fmt.Errorf("registrar auditoría %s: %w", number, err)
		}
		order.Lines = append(order.Lines, entity.WithdrawalLine{
			ProductNumber: number,
			Name:          p.Name,
			Category:      p.Category,
			OldQuantity:   before,
			NewQuantity:   after,
			QuantityTaken: requested,
		})
	}

	number, err := s.newNumber(inventory.OrderPrefix, now)
	if err != nil {
		return nil, err
	}
	order.OrderNumber = number
	if err := r.Orders.Create(ctx, order); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("crear orden: %w", err)
	}
	return order, nil
}

// checkAvailability primero los números inexistentes, después los faltantes de stock.
func checkAvailability(batch inventory.Batch, byNumber map[string]*entity.Product) error {
	if missing := missingNumbers(batch.Numbers, byNumber); len(missing) > 0 {
		return &domain.MissingProductsError{ProductNumbers: missing}
	}
	var short []domain.Shortfall
	for _, n := range batch.Numbers {
		p := byNumber[n]
		if requested := batch.Quantities[n]; requested > p.Quantity {
			short = append(short, domain.Shortfall{ProductNumber: n, Available: p.Quantity, Requested: requested})
		}
	}
	if len(short) > 0 {
		return &domain.InsufficientStockError{Items: short}
	}
	return nil
}
