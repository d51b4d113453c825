package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// writeError traduce errores de dominio a respuestas HTTP con detalle estructurado.
// Los errores internos se registran y se responden con un mensaje genérico.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var (
		invalid   *domain.InvalidInputError
		zero      *domain.ZeroQuantityError
		missing   *domain.MissingProductsError
		shortfall *domain.InsufficientStockError
		occupied  *domain.CellOccupiedError
		capacity  *domain.CapacityError
	)
	switch {
	case errors.As(err, &invalid):
		return respond(c, fiber.StatusBadRequest, "VALIDATION", err, invalid.Items)
	case errors.As(err, &zero):
		return respond(c, fiber.StatusBadRequest, "ZERO_QUANTITY", err, fiber.Map{"numbers": zero.ProductNumbers})
	case errors.As(err, &missing):
		return respond(c, fiber.StatusNotFound, "NOT_FOUND", err, fiber.Map{"numbers": missing.ProductNumbers})
	case errors.As(err, &shortfall):
		return respond(c, fiber.StatusConflict, "INSUFFICIENT_STOCK", err, shortfall.Items)
	case errors.As(err, &occupied):
		return respond(c, fiber.StatusConflict, "CELL_OCCUPIED", err, fiber.Map{"cell": occupied.Cell, "product_number": occupied.ProductNumber})
	case errors.As(err, &capacity):
		return respond(c, fiber.StatusConflict, "COLUMN_FULL", err, fiber.Map{"column": capacity.Column, "rows": capacity.Rows, "occupied": capacity.Occupied})
	case errors.Is(err, domain.ErrInvalidCellRef):
		return respond(c, fiber.StatusBadRequest, "INVALID_LOCATION", err, nil)
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrEmptyBatch):
		return respond(c, fiber.StatusBadRequest, "VALIDATION", err, nil)
	case errors.Is(err, domain.ErrNotFound):
		return respond(c, fiber.StatusNotFound, "NOT_FOUND", err, nil)
	case errors.Is(err, domain.ErrNothingToUndo):
		return respond(c, fiber.StatusConflict, "NOTHING_TO_UNDO", err, nil)
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicate):
		return respond(c, fiber.StatusConflict, "CONFLICT", err, nil)
	}
	log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno, no se aplicó ningún cambio"})
}

func respond(c *fiber.Ctx, status int, code string, err error, details interface{}) error {
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error(), Details: details})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
