package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/ledger"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/inventory"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// LedgerHandler maneja las peticiones HTTP de retiros y devoluciones.
type LedgerHandler struct {
	svc *ledger.Service
	log *logger.Logger
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(svc *ledger.Service, log *logger.Logger) *LedgerHandler {
	return &LedgerHandler{svc: svc, log: log}
}

// Withdraw godoc
// @Summary      Registrar retiro por lote
// @Tags         withdrawals
// @Accept       json
// @Produce      json
// @Param        body  body  dto.WithdrawalRequest  true  "items [{number, quantity}], recipient_name, confirm_zero"
// @Success      201   {object}  dto.WithdrawalResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/withdrawals [post]
func (h *LedgerHandler) Withdraw(c *fiber.Ctx) error {
	var in dto.WithdrawalRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	order, err := h.svc.Withdraw(c.Context(), ledger.WithdrawalInput{
		Lines:         toLines(in.Items),
		RecipientName: in.RecipientName,
		User:          GetUser(c),
		ConfirmZero:   in.ConfirmZero,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toWithdrawalResponse(order))
}

// ListWithdrawals godoc
// @Summary      Órdenes de retiro recientes
// @Tags         withdrawals
// @Produce      json
// @Param        limit  query  int  false  "Máximo de órdenes (por defecto 50)"
// @Success      200  {array}   dto.WithdrawalResponse
// @Router       /api/withdrawals [get]
func (h *LedgerHandler) ListWithdrawals(c *fiber.Ctx) error {
	orders, err := h.svc.RecentOrders(c.Context(), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.WithdrawalResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toWithdrawalResponse(o))
	}
	return c.JSON(out)
}

// Restock godoc
// @Summary      Registrar devolución (reingreso de stock)
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReturnRequest  true  "items [{number, quantity}], return_reason, returned_by, notes"
// @Success      201   {object}  dto.ReturnResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/returns [post]
func (h *LedgerHandler) Restock(c *fiber.Ctx) error {
	var in dto.ReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	ret, err := h.svc.Restock(c.Context(), ledger.RestockInput{
		Lines:        toLines(in.Items),
		ReturnReason: in.ReturnReason,
		ReturnedBy:   in.ReturnedBy,
		Notes:        in.Notes,
		User:         GetUser(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.ReturnResponse{
		ReturnNumber:    ret.ReturnNumber,
		Products:        make([]dto.ReturnLineResponse, 0, len(ret.Lines)),
		TotalProducts:   ret.TotalProducts,
		TotalQuantities: ret.TotalQuantities,
		ReturnReason:    ret.ReturnReason,
		ReturnedBy:      ret.ReturnedBy,
		Notes:           ret.Notes,
		User:            ret.User,
		CreatedAt:       ret.CreatedAt,
	}
	for _, l := range ret.Lines {
		out.Products = append(out.Products, dto.ReturnLineResponse(l))
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func toLines(items []dto.BatchItemRequest) []inventory.Line {
	lines := make([]inventory.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, inventory.Line{ProductNumber: it.Number, Quantity: string(it.Quantity)})
	}
	return lines
}

func toWithdrawalResponse(o *entity.WithdrawalOrder) dto.WithdrawalResponse {
	out := dto.WithdrawalResponse{
		OrderNumber:     o.OrderNumber,
		Products:        make([]dto.WithdrawalLineResponse, 0, len(o.Lines)),
		TotalProducts:   o.TotalProducts,
		TotalQuantities: o.TotalQuantities,
		RecipientName:   o.RecipientName,
		User:            o.User,
		CreatedAt:       o.CreatedAt,
	}
	for _, l := range o.Lines {
		out.Products = append(out.Products, dto.WithdrawalLineResponse(l))
	}
	return out
}
