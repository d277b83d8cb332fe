// Package memory implementa los puertos de persistencia en memoria. Se usa con DB_DRIVER=memory
// y en los tests de casos de uso y HTTP. Replica las restricciones y cascadas del esquema SQL.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/Suministros-api/internal/application/supply"
	"github.com/jhoicas/Suministros-api/internal/application/usecase"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

var (
	_ supply.TxRunner        = (*Store)(nil)
	_ usecase.TenantTxRunner = (*Store)(nil)
)

type state struct {
	companies map[string]entity.Company
	users     map[string]entity.User
	storages  map[string]entity.Storage
	products  map[string]entity.Product
	suppliers map[string]entity.Supplier
	supplies  map[string]entity.Supply
	lineItems map[string][]entity.SupplyLineItem // por supply ID
	movements []entity.StockMovement
}

func newState() *state {
	return &state{
		companies: map[string]entity.Company{},
		users:     map[string]entity.User{},
		storages:  map[string]entity.Storage{},
		products:  map[string]entity.Product{},
		suppliers: map[string]entity.Supplier{},
		supplies:  map[string]entity.Supply{},
		lineItems: map[string][]entity.SupplyLineItem{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.companies {
		c.companies[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.storages {
		c.storages[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.suppliers {
		c.suppliers[k] = v
	}
	for k, v := range s.supplies {
		c.supplies[k] = v
	}
	for k, v := range s.lineItems {
		c.lineItems[k] = append([]entity.SupplyLineItem(nil), v...)
	}
	c.movements = append([]entity.StockMovement(nil), s.movements...)
	return c
}

// Store base de datos en memoria. Las transacciones se serializan con un mutex y trabajan
// sobre una copia del estado que solo se publica si fn no devuelve error.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// handle da acceso al estado: directo dentro de una tx, con lock fuera de ella.
type handle struct {
	s  *Store
	tx *state
}

func (h handle) do(fn func(st *state) error) error {
	if h.tx != nil {
		return fn(h.tx)
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return fn(h.s.st)
}

func (s *Store) begin(fn func(h handle) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.st.clone()
	if err := fn(handle{s: s, tx: work}); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Run implementa supply.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(
	supplies repository.SupplyRepository,
	suppliers repository.SupplierRepository,
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.begin(func(h handle) error {
		return fn(&SupplyRepo{h: h}, &SupplierRepo{h: h}, &ProductRepo{h: h}, &StockMovementRepo{h: h})
	})
}

// RunTenant implementa usecase.TenantTxRunner.
func (s *Store) RunTenant(ctx context.Context, fn func(
	companies repository.CompanyRepository,
	users repository.UserRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.begin(func(h handle) error {
		return fn(&CompanyRepo{h: h}, &UserRepo{h: h})
	})
}

// Repositorios fuera de transacción.
func (s *Store) Companies() *CompanyRepo { return &CompanyRepo{h: handle{s: s}} }
func (s *Store) Users() *UserRepo { return &UserRepo{h: handle{s: s}} }
func (s *Store) Storages() *StorageRepo { return &StorageRepo{h: handle{s: s}} }
func (s *Store) Products() *ProductRepo { return &ProductRepo{h: handle{s: s}} }
func (s *Store) Suppliers() *SupplierRepo { return &SupplierRepo{h: handle{s: s}} }
func (s *Store) Supplies() *SupplyRepo { return &SupplyRepo{h: handle{s: s}} }
func (s *Store) StockMovements() *StockMovementRepo { return &StockMovementRepo{h: handle{s: s}} }

// cascadas equivalentes a los ON DELETE del esquema.

func (st *state) deleteProduct(id string) {
	delete(st.products, id)
	for sid, items := range st.lineItems {
		kept := items[:0]
		for _, li := range items {
			if li.ProductID != id {
				kept = append(kept, li)
			}
		}
		st.lineItems[sid] = kept
	}
	kept := st.movements[:0]
	for _, m := range st.movements {
		if m.ProductID != id {
			kept = append(kept, m)
		}
	}
	st.movements = kept
}

func (st *state) deleteStorage(id string) {
	for pid, p := range st.products {
		if p.StorageID == id {
			st.deleteProduct(pid)
		}
	}
	delete(st.storages, id)
}

func (st *state) deleteSupply(id string) {
	delete(st.lineItems, id)
	delete(st.supplies, id)
}

func (st *state) deleteSupplier(id string) {
	for sid, sp := range st.supplies {
		if sp.SupplierID == id {
			st.deleteSupply(sid)
		}
	}
	delete(st.suppliers, id)
}

func (st *state) deleteCompany(id string) {
	for sid, s := range st.storages {
		if s.CompanyID == id {
			st.deleteStorage(sid)
		}
	}
	for sid, s := range st.suppliers {
		if s.CompanyID == id {
			st.deleteSupplier(sid)
		}
	}
	for uid, u := range st.users {
		if u.CompanyID == id {
			u.CompanyID = ""
			st.users[uid] = u
		}
	}
	delete(st.companies, id)
}

// paginate aplica limit/offset sobre una lista ya ordenada.
func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// newestFirst ordena por fecha de creación descendente, con el ID como desempate.
func newestFirst[T any](list []T, key func(T) (time.Time, string)) {
	sort.Slice(list, func(i, j int) bool {
		ti, idi := key(list[i])
		tj, idj := key(list[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return idi < idj
	})
}
