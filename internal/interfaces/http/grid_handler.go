package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/allocator"
	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// GridHandler maneja las peticiones HTTP de bodegas y cuadrícula.
type GridHandler struct {
	alloc *allocator.Allocator
	log   *logger.Logger
}

// NewGridHandler construye el handler.
func NewGridHandler(alloc *allocator.Allocator, log *logger.Logger) *GridHandler {
	return &GridHandler{alloc: alloc, log: log}
}

// CreateWarehouse godoc
// @Summary      Crear bodega con su cuadrícula
// @Tags         warehouses
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateWarehouseRequest  true  "name, rows, columns"
// @Success      201   {object}  dto.WarehouseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/warehouses [post]
func (h *GridHandler) CreateWarehouse(c *fiber.Ctx) error {
	var in dto.CreateWarehouseRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	wh, err := h.alloc.CreateWarehouse(c.Context(), allocator.CreateWarehouseInput{
		Name:        in.Name,
		Description: in.Description,
		Rows:        in.Rows,
		Columns:     in.Columns,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toWarehouseResponse(wh))
}

// ListWarehouses godoc
// @Summary      Listar bodegas
// @Tags         warehouses
// @Produce      json
// @Success      200  {array}  dto.WarehouseResponse
// @Router       /api/warehouses [get]
func (h *GridHandler) ListWarehouses(c *fiber.Ctx) error {
	list, err := h.alloc.Warehouses(c.Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.WarehouseResponse, 0, len(list))
	for _, wh := range list {
		out = append(out, toWarehouseResponse(wh))
	}
	return c.JSON(out)
}

// Grid godoc
// @Summary      Vista de la cuadrícula
// @Tags         warehouses
// @Produce      json
// @Param        id   path  string  true  "ID de la bodega"
// @Success      200  {object}  dto.GridResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/warehouses/{id}/grid [get]
func (h *GridHandler) Grid(c *fiber.Ctx) error {
	view, err := h.alloc.Grid(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.GridResponse{Warehouse: toWarehouseResponse(view.Warehouse), Cells: make([]dto.CellResponse, 0, len(view.Cells))}
	for _, cell := range view.Cells {
		cr := dto.CellResponse{
			LocationID: cell.LocationID,
			Row:        cell.Row,
			Column:     cell.Column,
			Label:      cell.Label,
			Products:   make([]dto.CellProductResponse, 0, len(cell.Products)),
		}
		for _, p := range cell.Products {
			cr.Products = append(cr.Products, dto.CellProductResponse(p))
		}
		out.Cells = append(out.Cells, cr)
	}
	return c.JSON(out)
}

// AddRows godoc
// @Summary      Agregar filas
// @Tags         warehouses
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID de la bodega"
// @Param        body  body  dto.GrowGridRequest  true  "count (1..50)"
// @Success      200   {object}  dto.WarehouseResponse
// @Router       /api/warehouses/{id}/rows [post]
func (h *GridHandler) AddRows(c *fiber.Ctx) error {
	var in dto.GrowGridRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	wh, err := h.alloc.AddRows(c.Context(), c.Params("id"), in.Count)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toWarehouseResponse(wh))
}

// AddColumns godoc
// @Summary      Agregar columnas
// @Tags         warehouses
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID de la bodega"
// @Param        body  body  dto.GrowGridRequest  true  "count (1..50)"
// @Success      200   {object}  dto.WarehouseResponse
// @Router       /api/warehouses/{id}/columns [post]
func (h *GridHandler) AddColumns(c *fiber.Ctx) error {
	var in dto.GrowGridRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	wh, err := h.alloc.AddColumns(c.Context(), c.Params("id"), in.Count)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toWarehouseResponse(wh))
}

// SyncCells godoc
// @Summary      Crear celdas faltantes
// @Tags         warehouses
// @Produce      json
// @Param        id   path  string  true  "ID de la bodega"
// @Success      200  {object}  dto.SyncCellsResponse
// @Router       /api/warehouses/{id}/cells/sync [post]
func (h *GridHandler) SyncCells(c *fiber.Ctx) error {
	n, err := h.alloc.SyncCells(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SyncCellsResponse{Created: n})
}

// CompactRow godoc
// @Summary      Compactar fila
// @Tags         grid
// @Produce      json
// @Param        id   path  string  true  "ID de la bodega"
// @Param        row  path  int     true  "Fila (desde 1)"
// @Success      200  {object}  allocator.CompactionResult
// @Router       /api/warehouses/{id}/rows/{row}/compact [post]
func (h *GridHandler) CompactRow(c *fiber.Ctx) error {
	row, err := c.ParamsInt("row")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fila inválida"})
	}
	res, err := h.alloc.CompactRow(c.Context(), GetCaller(c), c.Params("id"), row)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(res)
}

// CompactColumn godoc
// @Summary      Compactar columna
// @Tags         grid
// @Produce      json
// @Param        id      path  string  true  "ID de la bodega"
// @Param        column  path  int     true  "Columna (desde 1)"
// @Success      200  {object}  allocator.CompactionResult
// @Router       /api/warehouses/{id}/columns/{column}/compact [post]
func (h *GridHandler) CompactColumn(c *fiber.Ctx) error {
	column, err := c.ParamsInt("column")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "columna inválida"})
	}
	res, err := h.alloc.CompactColumn(c.Context(), GetCaller(c), c.Params("id"), column)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(res)
}

// Move godoc
// @Summary      Mover producto con desplazamiento en cascada
// @Tags         grid
// @Accept       json
// @Produce      json
// @Param        id         path  string                  true  "ID de la bodega"
// @Param        productId  path  string                  true  "ID del producto"
// @Param        body       body  dto.MoveProductRequest  true  "new_location R<fila>C<columna>"
// @Success      200   {object}  allocator.MoveResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/warehouses/{id}/products/{productId}/move [post]
func (h *GridHandler) Move(c *fiber.Ctx) error {
	var in dto.MoveProductRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.alloc.Move(c.Context(), GetCaller(c), c.Params("id"), c.Params("productId"), in.NewLocation)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(res)
}

// AssignLocation godoc
// @Summary      Asignar o quitar la ubicación de un producto
// @Tags         grid
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del producto"
// @Param        body  body  dto.AssignLocationRequest  true  "location_id (null = sin ubicación)"
// @Success      200   {object}  allocator.AssignResult
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/location [put]
func (h *GridHandler) AssignLocation(c *fiber.Ctx) error {
	var in dto.AssignLocationRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.alloc.Assign(c.Context(), GetCaller(c), c.Params("id"), in.LocationID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(res)
}

// Undo godoc
// @Summary      Deshacer la última compactación o movimiento de la sesión
// @Tags         grid
// @Produce      json
// @Success      200  {object}  allocator.RevertResult
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/grid/undo [post]
func (h *GridHandler) Undo(c *fiber.Ctx) error {
	res, err := h.alloc.RevertLastCompaction(c.Context(), GetCaller(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(res)
}

func toWarehouseResponse(wh *entity.Warehouse) dto.WarehouseResponse {
	return dto.WarehouseResponse{
		ID:           wh.ID,
		Name:         wh.Name,
		Description:  wh.Description,
		RowsCount:    wh.RowsCount,
		ColumnsCount: wh.ColumnsCount,
		CreatedAt:    wh.CreatedAt,
	}
}
