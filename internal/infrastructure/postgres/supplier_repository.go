package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo implementación del puerto SupplierRepository sobre PostgreSQL.
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador de persistencia para proveedores.
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

const supplierColumns = `id, company_id, title, inn, created_at, updated_at`

func scanSupplier(row interface{ Scan(dest ...any) error }) (*entity.Supplier, error) {
	var s entity.Supplier
	if err := row.Scan(&s.ID, &s.CompanyID, &s.Title, &s.INN, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create persiste un proveedor. suppliers.inn es UNIQUE.
func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	_, err := r.q.Exec(ctx, `INSERT INTO suppliers (`+supplierColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.CompanyID, s.Title, s.INN, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

func (r *SupplierRepo) getOne(ctx context.Context, where string, arg any) (*entity.Supplier, error) {
	s, err := scanSupplier(r.q.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE `+where, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return s, nil
}

// GetByID obtiene un proveedor por ID.
func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, "id = $1", id)
}

// GetByINN obtiene un proveedor por INN.
func (r *SupplierRepo) GetByINN(ctx context.Context, inn string) (*entity.Supplier, error) {
	return r.getOne(ctx, "inn = $1", inn)
}

// Update actualiza título e INN.
func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	cmd, err := r.q.Exec(ctx, `UPDATE suppliers SET title = $2, inn = $3, updated_at = $4 WHERE id = $1`,
		s.ID, s.Title, s.INN, s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update supplier: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el proveedor; sus supplies caen en cascada (el stock ya debe estar revertido).
func (r *SupplierRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByCompany lista los proveedores de la empresa.
func (r *SupplierRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Supplier, error) {
	rows, err := r.q.Query(ctx, `SELECT `+supplierColumns+` FROM suppliers
		WHERE company_id = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`, companyID, limitArg(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var list []*entity.Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
