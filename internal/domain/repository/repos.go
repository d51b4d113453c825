package repository

// Repos agrupa los repositorios atados a una misma transacción.
type Repos struct {
	Products   ProductRepository
	Warehouses WarehouseRepository
	Locations  LocationRepository
	Audit      AuditLogRepository
	Orders     WithdrawalOrderRepository
	Returns    ProductReturnRepository
	Undo       UndoStore
}
