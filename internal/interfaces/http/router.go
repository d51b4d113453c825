package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/allocator"
	"github.com/jhoicas/Almacen-api/internal/application/ledger"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger    *ledger.Service
	Allocator *allocator.Allocator
	Logger    *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("http")

	api := app.Group("/api", CallerMiddleware())

	// Libro de retiros
	ledgerHandler := NewLedgerHandler(deps.Ledger, log)
	api.Post("/withdrawals", ledgerHandler.Withdraw)
	api.Get("/withdrawals", ledgerHandler.ListWithdrawals)
	api.Post("/returns", ledgerHandler.Restock)

	// Bodegas y cuadrícula
	gridHandler := NewGridHandler(deps.Allocator, log)
	warehouses := api.Group("/warehouses")
	warehouses.Post("/", gridHandler.CreateWarehouse)
	warehouses.Get("/", gridHandler.ListWarehouses)
	warehouses.Get("/:id/grid", gridHandler.Grid)
	warehouses.Post("/:id/rows", gridHandler.AddRows)
	warehouses.Post("/:id/columns", gridHandler.AddColumns)
	warehouses.Post("/:id/cells/sync", gridHandler.SyncCells)
	warehouses.Post("/:id/rows/:row/compact", gridHandler.CompactRow)
	warehouses.Post("/:id/columns/:column/compact", gridHandler.CompactColumn)
	warehouses.Post("/:id/products/:productId/move", gridHandler.Move)

	api.Put("/products/:id/location", gridHandler.AssignLocation)
	api.Post("/grid/undo", gridHandler.Undo)
}
