package memory

import (
	"context"
	"time"

	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/ledger"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.SupplierRepository      = (*SupplierRepo)(nil)
	_ repository.SupplyRepository        = (*SupplyRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
)

// ProductRepo productos en memoria. CompanyID se deriva del storage.
type ProductRepo struct{ h handle }

func (st *state) product(id string) (*entity.Product, bool) {
	p, ok := st.products[id]
	if !ok {
		return nil, false
	}
	p.CompanyID = st.storages[p.StorageID].CompanyID
	return &p, true
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.h.do(func(st *state) error {
		if _, ok := st.storages[p.StorageID]; !ok {
			return domain.ErrNotFound
		}
		if _, ok := st.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.h.do(func(st *state) error {
		out, _ = st.product(id)
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetByIDs(_ context.Context, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(ids))
	err := r.h.do(func(st *state) error {
		for _, id := range ids {
			if p, ok := st.product(id); ok {
				out[id] = p
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.h.do(func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Title = p.Title
		cur.PurchasePrice = p.PurchasePrice
		cur.SalePrice = p.SalePrice
		cur.UpdatedAt = p.UpdatedAt
		st.products[p.ID] = cur
		return nil
	})
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	return r.h.do(func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return domain.ErrNotFound
		}
		st.deleteProduct(id)
		return nil
	})
}

func (r *ProductRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Product, error) {
	var list []entity.Product
	err := r.h.do(func(st *state) error {
		for id := range st.products {
			if p, _ := st.product(id); p.CompanyID == companyID {
				list = append(list, *p)
			}
		}
		return nil
	})
	newestFirst(list, func(p entity.Product) (time.Time, string) { return p.CreatedAt, p.ID })
	return pointers(paginate(list, limit, offset)), err
}

func (r *ProductRepo) AdjustQuantity(_ context.Context, productID string, delta int64) (int64, error) {
	var qty int64
	err := r.h.do(func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return domain.ErrNotFound
		}
		next, err := ledger.ApplyTo(p.Quantity, delta)
		if err != nil {
			return err
		}
		p.Quantity = next
		st.products[productID] = p
		qty = next
		return nil
	})
	return qty, err
}

// SupplierRepo proveedores en memoria.
type SupplierRepo struct{ h handle }

func (r *SupplierRepo) Create(_ context.Context, s *entity.Supplier) error {
	return r.h.do(func(st *state) error {
		if _, ok := st.companies[s.CompanyID]; !ok {
			return domain.ErrNotFound
		}
		for _, other := range st.suppliers {
			if other.INN == s.INN {
				return domain.ErrDuplicate
			}
		}
		st.suppliers[s.ID] = *s
		return nil
	})
}

func (r *SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.h.do(func(st *state) error {
		if s, ok := st.suppliers[id]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

func (r *SupplierRepo) GetByINN(_ context.Context, inn string) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.h.do(func(st *state) error {
		for _, s := range st.suppliers {
			if s.INN == inn {
				s := s
				out = &s
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *SupplierRepo) Update(_ context.Context, s *entity.Supplier) error {
	return r.h.do(func(st *state) error {
		cur, ok := st.suppliers[s.ID]
		if !ok {
			return domain.ErrNotFound
		}
		for id, other := range st.suppliers {
			if id != s.ID && other.INN == s.INN {
				return domain.ErrDuplicate
			}
		}
		cur.Title = s.Title
		cur.INN = s.INN
		cur.UpdatedAt = s.UpdatedAt
		st.suppliers[s.ID] = cur
		return nil
	})
}

func (r *SupplierRepo) Delete(_ context.Context, id string) error {
	return r.h.do(func(st *state) error {
		if _, ok := st.suppliers[id]; !ok {
			return domain.ErrNotFound
		}
		st.deleteSupplier(id)
		return nil
	})
}

func (r *SupplierRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Supplier, error) {
	var list []entity.Supplier
	err := r.h.do(func(st *state) error {
		for _, s := range st.suppliers {
			if s.CompanyID == companyID {
				list = append(list, s)
			}
		}
		return nil
	})
	newestFirst(list, func(s entity.Supplier) (time.Time, string) { return s.CreatedAt, s.ID })
	return pointers(paginate(list, limit, offset)), err
}

// SupplyRepo supplies y líneas en memoria. Dentro de una tx el store ya está bloqueado,
// por eso GetForUpdate equivale a GetByID.
type SupplyRepo struct{ h handle }

func (st *state) supply(id string) (*entity.Supply, bool) {
	s, ok := st.supplies[id]
	if !ok {
		return nil, false
	}
	s.CompanyID = st.suppliers[s.SupplierID].CompanyID
	s.LineItems = append([]entity.SupplyLineItem(nil), st.lineItems[id]...)
	return &s, true
}

func (r *SupplyRepo) Create(_ context.Context, s *entity.Supply) error {
	return r.h.do(func(st *state) error {
		if _, ok := st.suppliers[s.SupplierID]; !ok {
			return domain.ErrNotFound
		}
		row := *s
		row.LineItems = nil
		st.supplies[s.ID] = row
		return nil
	})
}

func (r *SupplyRepo) CreateLineItems(_ context.Context, items []entity.SupplyLineItem) error {
	return r.h.do(func(st *state) error {
		for _, li := range items {
			if _, ok := st.supplies[li.SupplyID]; !ok {
				return domain.ErrNotFound
			}
			if _, ok := st.products[li.ProductID]; !ok {
				return domain.ErrNotFound
			}
			if li.Quantity <= 0 {
				return domain.ErrInvalidInput
			}
			st.lineItems[li.SupplyID] = append(st.lineItems[li.SupplyID], li)
		}
		return nil
	})
}

func (r *SupplyRepo) GetByID(_ context.Context, id string) (*entity.Supply, error) {
	var out *entity.Supply
	err := r.h.do(func(st *state) error {
		out, _ = st.supply(id)
		return nil
	})
	return out, err
}

func (r *SupplyRepo) GetForUpdate(ctx context.Context, id string) (*entity.Supply, error) {
	return r.GetByID(ctx, id)
}

func (r *SupplyRepo) Update(_ context.Context, s *entity.Supply) error {
	return r.h.do(func(st *state) error {
		cur, ok := st.supplies[s.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if _, ok := st.suppliers[s.SupplierID]; !ok {
			return domain.ErrNotFound
		}
		cur.SupplierID = s.SupplierID
		cur.DeliveryDate = s.DeliveryDate
		cur.UpdatedAt = s.UpdatedAt
		st.supplies[s.ID] = cur
		return nil
	})
}

func (r *SupplyRepo) DeleteLineItems(_ context.Context, supplyID string) error {
	return r.h.do(func(st *state) error {
		delete(st.lineItems, supplyID)
		return nil
	})
}

func (r *SupplyRepo) Delete(_ context.Context, id string) error {
	return r.h.do(func(st *state) error {
		if _, ok := st.supplies[id]; !ok {
			return domain.ErrNotFound
		}
		st.deleteSupply(id)
		return nil
	})
}

func (r *SupplyRepo) list(match func(entity.Supply) bool) ([]entity.Supply, error) {
	var list []entity.Supply
	err := r.h.do(func(st *state) error {
		for id := range st.supplies {
			s, _ := st.supply(id)
			if match(*s) {
				list = append(list, *s)
			}
		}
		return nil
	})
	newestFirst(list, func(s entity.Supply) (time.Time, string) { return s.CreatedAt, s.ID })
	return list, err
}

func (r *SupplyRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Supply, error) {
	list, err := r.list(func(s entity.Supply) bool { return s.CompanyID == companyID })
	return pointers(paginate(list, limit, offset)), err
}

func (r *SupplyRepo) ListBySupplierForUpdate(_ context.Context, supplierID string) ([]*entity.Supply, error) {
	list, err := r.list(func(s entity.Supply) bool { return s.SupplierID == supplierID })
	return pointers(list), err
}

// StockMovementRepo registro de movimientos en memoria (append-only).
type StockMovementRepo struct{ h handle }

func (r *StockMovementRepo) Append(_ context.Context, movements ...entity.StockMovement) error {
	return r.h.do(func(st *state) error {
		for _, m := range movements {
			if _, ok := st.products[m.ProductID]; !ok {
				return domain.ErrNotFound
			}
		}
		st.movements = append(st.movements, movements...)
		return nil
	})
}

// ListByProduct devuelve los movimientos del producto, el más reciente primero.
func (r *StockMovementRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	var list []entity.StockMovement
	err := r.h.do(func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			if m := st.movements[i]; m.ProductID == productID {
				list = append(list, m)
			}
		}
		return nil
	})
	return pointers(paginate(list, limit, offset)), err
}
