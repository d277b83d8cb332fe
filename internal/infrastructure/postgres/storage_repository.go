package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

var _ repository.StorageRepository = (*StorageRepo)(nil)

// StorageRepo implementación del puerto StorageRepository sobre PostgreSQL.
type StorageRepo struct {
	q Querier
}

// NewStorageRepository construye el adaptador de persistencia para storages.
func NewStorageRepository(q Querier) *StorageRepo {
	return &StorageRepo{q: q}
}

const storageColumns = `id, company_id, address, created_at, updated_at`

// Create persiste el storage. storages.company_id es UNIQUE: un storage por empresa.
func (r *StorageRepo) Create(ctx context.Context, s *entity.Storage) error {
	_, err := r.q.Exec(ctx, `INSERT INTO storages (`+storageColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.CompanyID, s.Address, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert storage: %w", err)
	}
	return nil
}

func (r *StorageRepo) getOne(ctx context.Context, where string, arg any) (*entity.Storage, error) {
	var s entity.Storage
	err := r.q.QueryRow(ctx, `SELECT `+storageColumns+` FROM storages WHERE `+where, arg).
		Scan(&s.ID, &s.CompanyID, &s.Address, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get storage: %w", err)
	}
	return &s, nil
}

// GetByID obtiene un storage por ID.
func (r *StorageRepo) GetByID(ctx context.Context, id string) (*entity.Storage, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, "id = $1", id)
}

// GetByCompany obtiene el storage de la empresa.
func (r *StorageRepo) GetByCompany(ctx context.Context, companyID string) (*entity.Storage, error) {
	if !validID(companyID) {
		return nil, nil
	}
	return r.getOne(ctx, "company_id = $1", companyID)
}

// Update actualiza la dirección.
func (r *StorageRepo) Update(ctx context.Context, s *entity.Storage) error {
	cmd, err := r.q.Exec(ctx, `UPDATE storages SET address = $2, updated_at = $3 WHERE id = $1`, s.ID, s.Address, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update storage: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el storage; productos y líneas de supply caen en cascada.
func (r *StorageRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM storages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
