package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `id, email, username, password_hash, company_id, is_company_owner, is_active, created_at, updated_at`

// nullable convierte "" en NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func scanUser(row interface{ Scan(dest ...any) error }) (*entity.User, error) {
	var u entity.User
	var companyID *string
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &companyID,
		&u.IsCompanyOwner, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if companyID != nil {
		u.CompanyID = *companyID
	}
	return &u, nil
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	query := `INSERT INTO users (` + userColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		u.ID, u.Email, u.Username, u.PasswordHash, nullable(u.CompanyID),
		u.IsCompanyOwner, u.IsActive, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			if violatedConstraint(err) == "users_email_key" {
				return domain.ErrEmailAlreadyExists
			}
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func violatedConstraint(err error) string {
	if pgErr, ok := err.(*pgconn.PgError); ok {
		return pgErr.ConstraintName
	}
	return ""
}

func (r *UserRepo) getOne(ctx context.Context, where string, arg any) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, "id = $1", id)
}

// GetByEmail obtiene un usuario por email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, "email = $1", email)
}

// GetByUsername obtiene un usuario por username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getOne(ctx, "username = $1", username)
}

// AttachToCompany vincula al usuario solo si company_id es NULL (update condicional, sin carrera).
func (r *UserRepo) AttachToCompany(ctx context.Context, userID, companyID string, owner bool) (bool, error) {
	if !validID(userID) {
		return false, domain.ErrUserNotFound
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE users SET company_id = $2, is_company_owner = $3, updated_at = now()
		WHERE id = $1 AND company_id IS NULL`, userID, companyID, owner)
	if err != nil {
		if isUniqueViolation(err) {
			return false, domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("attach user: %w", err)
	}
	if cmd.RowsAffected() == 1 {
		return true, nil
	}
	u, err := r.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if u == nil {
		return false, domain.ErrUserNotFound
	}
	return false, nil
}

// DetachCompany desvincula a todos los usuarios de la empresa.
func (r *UserRepo) DetachCompany(ctx context.Context, companyID string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE users SET company_id = NULL, is_company_owner = false, updated_at = now()
		WHERE company_id = $1`, companyID)
	if err != nil {
		return fmt.Errorf("detach users: %w", err)
	}
	return nil
}

// ListByCompany devuelve los usuarios de la empresa.
func (r *UserRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.User, error) {
	rows, err := r.q.Query(ctx, `SELECT `+userColumns+` FROM users WHERE company_id = $1 ORDER BY created_at DESC, id`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}
