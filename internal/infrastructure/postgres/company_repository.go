package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

// Asegura que CompanyRepo implementa repository.CompanyRepository.
var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL (pool o tx).
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador de persistencia para empresas.
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

const companyColumns = `id, inn, title, created_at, updated_at`

// Create persiste una nueva empresa.
func (r *CompanyRepo) Create(ctx context.Context, c *entity.Company) error {
	query := `INSERT INTO companies (` + companyColumns + `) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, c.ID, c.INN, c.Title, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

func (r *CompanyRepo) getOne(ctx context.Context, where string, arg any) (*entity.Company, error) {
	var c entity.Company
	err := r.q.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE `+where, arg).
		Scan(&c.ID, &c.INN, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &c, nil
}

// GetByID obtiene una empresa por ID.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, "id = $1", id)
}

// GetByINN obtiene una empresa por INN.
func (r *CompanyRepo) GetByINN(ctx context.Context, inn string) (*entity.Company, error) {
	return r.getOne(ctx, "inn = $1", inn)
}

// Update actualiza INN y título.
func (r *CompanyRepo) Update(ctx context.Context, c *entity.Company) error {
	cmd, err := r.q.Exec(ctx, `UPDATE companies SET inn = $2, title = $3, updated_at = $4 WHERE id = $1`,
		c.ID, c.INN, c.Title, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update company: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la empresa; storage, productos, proveedores y supplies caen por ON DELETE CASCADE.
func (r *CompanyRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
