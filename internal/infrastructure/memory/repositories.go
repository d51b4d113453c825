package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository         = (*productRepo)(nil)
	_ repository.WarehouseRepository       = (*warehouseRepo)(nil)
	_ repository.LocationRepository        = (*locationRepo)(nil)
	_ repository.AuditLogRepository        = (*auditRepo)(nil)
	_ repository.WithdrawalOrderRepository = (*orderRepo)(nil)
	_ repository.ProductReturnRepository   = (*returnRepo)(nil)
	_ repository.UndoStore                 = (*undoRepo)(nil)
)

// ──── Productos ────

type productRepo struct{ base }

func (r *productRepo) Create(_ context.Context, product *entity.Product) error {
	return r.do("products.Create", func(st *state) error {
		for _, p := range st.products {
			if p.ProductNumber == product.ProductNumber {
				return domain.ErrDuplicate
			}
		}
		if product.ID == "" {
			product.ID = uuid.New().String()
		}
		if _, ok := st.products[product.ID]; ok {
			return domain.ErrDuplicate
		}
		st.products[product.ID] = copyProduct(product)
		return nil
	})
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.do("products.GetByID", func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = copyProduct(p)
		}
		return nil
	})
	return out, err
}

func (r *productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *productRepo) ListByNumbers(_ context.Context, numbers []string) ([]*entity.Product, error) {
	return r.byNumbers("products.ListByNumbers", numbers)
}

func (r *productRepo) LockByNumbers(_ context.Context, numbers []string) ([]*entity.Product, error) {
	return r.byNumbers("products.LockByNumbers", numbers)
}

func (r *productRepo) byNumbers(op string, numbers []string) ([]*entity.Product, error) {
	wanted := make(map[string]bool, len(numbers))
	for _, n := range numbers {
		wanted[n] = true
	}
	var out []*entity.Product
	err := r.do(op, func(st *state) error {
		for _, p := range st.products {
			if wanted[p.ProductNumber] {
				out = append(out, copyProduct(p))
			}
		}
		return nil
	})
	sortProducts(out)
	return out, err
}

func (r *productRepo) ListByIDs(_ context.Context, ids []string) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.do("products.ListByIDs", func(st *state) error {
		for _, id := range ids {
			if p, ok := st.products[id]; ok {
				out = append(out, copyProduct(p))
			}
		}
		return nil
	})
	sortProducts(out)
	return out, err
}

func (r *productRepo) ListByLocations(_ context.Context, locationIDs []string) ([]*entity.Product, error) {
	wanted := make(map[string]bool, len(locationIDs))
	for _, id := range locationIDs {
		wanted[id] = true
	}
	var out []*entity.Product
	err := r.do("products.ListByLocations", func(st *state) error {
		for _, p := range st.products {
			if p.HasLocation() && wanted[*p.LocationID] {
				out = append(out, copyProduct(p))
			}
		}
		return nil
	})
	sortProducts(out)
	return out, err
}

func (r *productRepo) UpdateQuantity(_ context.Context, id string, quantity int) error {
	return r.do("products.UpdateQuantity", func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		p.Quantity = quantity
		return nil
	})
}

func (r *productRepo) UpdateLocation(_ context.Context, id string, locationID *string) error {
	return r.do("products.UpdateLocation", func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		if locationID == nil {
			p.LocationID = nil
			return nil
		}
		loc := *locationID
		p.LocationID = &loc
		return nil
	})
}

func sortProducts(list []*entity.Product) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].ProductNumber != list[j].ProductNumber {
			return list[i].ProductNumber < list[j].ProductNumber
		}
		return list[i].ID < list[j].ID
	})
}

// ──── Bodegas ────

type warehouseRepo struct{ base }

func (r *warehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	return r.do("warehouses.Create", func(st *state) error {
		if w.ID == "" {
			w.ID = uuid.New().String()
		}
		if _, ok := st.warehouses[w.ID]; ok {
			return domain.ErrDuplicate
		}
		c := *w
		st.warehouses[w.ID] = &c
		return nil
	})
}

func (r *warehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	err := r.do("warehouses.GetByID", func(st *state) error {
		if w, ok := st.warehouses[id]; ok {
			c := *w
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *warehouseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Warehouse, error) {
	return r.GetByID(ctx, id)
}

func (r *warehouseRepo) UpdateGridSize(_ context.Context, id string, rows, columns int) error {
	return r.do("warehouses.UpdateGridSize", func(st *state) error {
		w, ok := st.warehouses[id]
		if !ok {
			return domain.ErrNotFound
		}
		w.RowsCount = rows
		w.ColumnsCount = columns
		return nil
	})
}

func (r *warehouseRepo) List(_ context.Context) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	err := r.do("warehouses.List", func(st *state) error {
		for _, w := range st.warehouses {
			c := *w
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

// ──── Celdas ────

type locationRepo struct{ base }

func (r *locationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	var out *entity.Location
	err := r.do("locations.GetByID", func(st *state) error {
		if l, ok := st.locations[id]; ok {
			c := *l
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *locationRepo) GetByPosition(_ context.Context, warehouseID string, row, column int) (*entity.Location, error) {
	var out *entity.Location
	err := r.do("locations.GetByPosition", func(st *state) error {
		for _, l := range st.locations {
			if l.WarehouseID == warehouseID && l.Row == row && l.Column == column {
				c := *l
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *locationRepo) ListByRow(_ context.Context, warehouseID string, row int) ([]*entity.Location, error) {
	return r.filter("locations.ListByRow", func(l *entity.Location) bool {
		return l.WarehouseID == warehouseID && l.Row == row
	})
}

func (r *locationRepo) ListByColumn(_ context.Context, warehouseID string, column int) ([]*entity.Location, error) {
	return r.filter("locations.ListByColumn", func(l *entity.Location) bool {
		return l.WarehouseID == warehouseID && l.Column == column
	})
}

func (r *locationRepo) ListByWarehouse(_ context.Context, warehouseID string) ([]*entity.Location, error) {
	return r.filter("locations.ListByWarehouse", func(l *entity.Location) bool {
		return l.WarehouseID == warehouseID
	})
}

// filter devuelve las celdas en orden (fila, columna).
func (r *locationRepo) filter(op string, keep func(*entity.Location) bool) ([]*entity.Location, error) {
	var out []*entity.Location
	err := r.do(op, func(st *state) error {
		for _, l := range st.locations {
			if keep(l) {
				c := *l
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Column < out[j].Column
	})
	return out, err
}

func (r *locationRepo) EnsureCells(_ context.Context, warehouseID string, rows, columns int) (int, error) {
	created := 0
	err := r.do("locations.EnsureCells", func(st *state) error {
		existing := make(map[[2]int]bool)
		for _, l := range st.locations {
			if l.WarehouseID == warehouseID {
				existing[[2]int{l.Row, l.Column}] = true
			}
		}
		for row := 1; row <= rows; row++ {
			for col := 1; col <= columns; col++ {
				if existing[[2]int{row, col}] {
					continue
				}
				id := uuid.New().String()
				st.locations[id] = &entity.Location{ID: id, WarehouseID: warehouseID, Row: row, Column: col, IsActive: true}
				created++
			}
		}
		return nil
	})
	return created, err
}

// ──── Auditoría ────

type auditRepo struct{ base }

func (r *auditRepo) Create(_ context.Context, entry *entity.AuditLog) error {
	return r.do("audit.Create", func(st *state) error {
		if entry.ID == "" {
			entry.ID = uuid.New().String()
		}
		c := *entry
		st.audit = append(st.audit, &c)
		return nil
	})
}

func (r *auditRepo) ListByProduct(_ context.Context, productID string) ([]*entity.AuditLog, error) {
	var out []*entity.AuditLog
	err := r.do("audit.ListByProduct", func(st *state) error {
		for _, e := range st.audit {
			if e.ProductID == productID {
				c := *e
				out = append(out, &c)
			}
		}
		return nil
	})
	return out, err
}

// ──── Órdenes y devoluciones ────

type orderRepo struct{ base }

func (r *orderRepo) Create(_ context.Context, order *entity.WithdrawalOrder) error {
	return r.do("orders.Create", func(st *state) error {
		for _, o := range st.orders {
			if o.OrderNumber == order.OrderNumber {
				return domain.ErrDuplicate
			}
		}
		if order.ID == "" {
			order.ID = uuid.New().String()
		}
		c := *order
		c.Lines = append([]entity.WithdrawalLine(nil), order.Lines...)
		st.orders = append(st.orders, &c)
		return nil
	})
}

func (r *orderRepo) GetByNumber(_ context.Context, orderNumber string) (*entity.WithdrawalOrder, error) {
	var out *entity.WithdrawalOrder
	err := r.do("orders.GetByNumber", func(st *state) error {
		for _, o := range st.orders {
			if o.OrderNumber == orderNumber {
				c := *o
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *orderRepo) ListRecent(_ context.Context, limit int) ([]*entity.WithdrawalOrder, error) {
	var out []*entity.WithdrawalOrder
	err := r.do("orders.ListRecent", func(st *state) error {
		for i := len(st.orders) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
			c := *st.orders[i]
			out = append(out, &c)
		}
		return nil
	})
	return out, err
}

type returnRepo struct{ base }

func (r *returnRepo) Create(_ context.Context, ret *entity.ProductReturn) error {
	return r.do("returns.Create", func(st *state) error {
		for _, x := range st.returns {
			if x.ReturnNumber == ret.ReturnNumber {
				return domain.ErrDuplicate
			}
		}
		if ret.ID == "" {
			ret.ID = uuid.New().String()
		}
		c := *ret
		c.Lines = append([]entity.ReturnLine(nil), ret.Lines...)
		st.returns = append(st.returns, &c)
		return nil
	})
}

// ──── Deshacer ────

type undoRepo struct{ base }

func (r *undoRepo) Get(_ context.Context, sessionID string) (*entity.CompactionUndo, error) {
	var out *entity.CompactionUndo
	err := r.do("undo.Get", func(st *state) error {
		if u, ok := st.undo[sessionID]; ok {
			c := *u
			c.Entries = append([]entity.UndoEntry(nil), u.Entries...)
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *undoRepo) Put(_ context.Context, sessionID string, record *entity.CompactionUndo) error {
	return r.do("undo.Put", func(st *state) error {
		c := *record
		c.Entries = append([]entity.UndoEntry(nil), record.Entries...)
		st.undo[sessionID] = &c
		return nil
	})
}

func (r *undoRepo) Delete(_ context.Context, sessionID string) error {
	return r.do("undo.Delete", func(st *state) error {
		delete(st.undo, sessionID)
		return nil
	})
}
