package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Suministros-api/internal/application/auth"
	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/access"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

// TenantTxRunner ejecuta fn en una transacción con los repos de empresa y usuario.
// Crear una empresa y vincular a su propietario ocurre en la misma tx.
type TenantTxRunner interface {
	RunTenant(ctx context.Context, fn func(
		companies repository.CompanyRepository,
		users repository.UserRepository,
	) error) error
}

// CompanyUseCase aplica reglas de negocio para empresas (casos de uso).
type CompanyUseCase struct {
	tx        TenantTxRunner
	companies repository.CompanyRepository
	users     repository.UserRepository
	storages  repository.StorageRepository
}

// NewCompanyUseCase construye el caso de uso con los puertos de persistencia.
func NewCompanyUseCase(tx TenantTxRunner, companies repository.CompanyRepository, users repository.UserRepository, storages repository.StorageRepository) *CompanyUseCase {
	return &CompanyUseCase{tx: tx, companies: companies, users: users, storages: storages}
}

// Create crea una empresa y convierte al principal en su propietario.
// Un usuario que ya pertenece a una empresa no puede crear otra.
func (uc *CompanyUseCase) Create(ctx context.Context, p access.Principal, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	if err := access.Authorize(p, access.Company, access.Create, ""); err != nil {
		return nil, err
	}
	if p.HasCompany() {
		return nil, domain.Invalid("company", "el usuario ya pertenece a una empresa")
	}
	company, err := newCompany(in)
	if err != nil {
		return nil, err
	}

	err = uc.tx.RunTenant(ctx, func(companies repository.CompanyRepository, users repository.UserRepository) error {
		existing, err := companies.GetByINN(ctx, company.INN)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.Invalid("inn", "ya existe una empresa con este INN")
		}
		if err := companies.Create(ctx, company); err != nil {
			return err
		}
		attached, err := users.AttachToCompany(ctx, p.UserID, company.ID, true)
		if err != nil {
			return err
		}
		if !attached {
			return domain.Invalid("company", "el usuario ya pertenece a una empresa")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

func newCompany(in dto.CreateCompanyRequest) (*entity.Company, error) {
	verr := domain.NewValidationError(domain.KindValidation)
	inn := strings.TrimSpace(in.INN)
	if msg := domain.ValidateINN(inn); msg != "" {
		verr.Add("inn", msg)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		verr.Add("title", "es obligatorio")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	now := time.Now()
	return &entity.Company{
		ID:        uuid.New().String(),
		INN:       inn,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetByID devuelve la empresa con su storage y usuarios. Solo para miembros.
func (uc *CompanyUseCase) GetByID(ctx context.Context, p access.Principal, id string) (*dto.CompanyDetailResponse, error) {
	if err := access.Authorize(p, access.Company, access.Read, id); err != nil {
		return nil, err
	}
	company, err := uc.companies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	out := &dto.CompanyDetailResponse{CompanyResponse: *entityToCompanyResponse(company)}

	storage, err := uc.storages.GetByCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	if storage != nil {
		out.StorageID = &storage.ID
	}
	users, err := uc.users.ListByCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	out.Users = make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out.Users = append(out.Users, *auth.ToUserResponse(u))
	}
	return out, nil
}

// Update modifica INN y/o título. Solo el propietario.
func (uc *CompanyUseCase) Update(ctx context.Context, p access.Principal, id string, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	if err := access.Authorize(p, access.Company, access.Edit, id); err != nil {
		return nil, err
	}
	company, err := uc.companies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}

	verr := domain.NewValidationError(domain.KindValidation)
	if in.INN != nil {
		inn := strings.TrimSpace(*in.INN)
		if msg := domain.ValidateINN(inn); msg != "" {
			verr.Add("inn", msg)
		} else if inn != company.INN {
			other, err := uc.companies.GetByINN(ctx, inn)
			if err != nil {
				return nil, err
			}
			if other != nil {
				verr.Add("inn", "ya existe una empresa con este INN")
			}
		}
		company.INN = inn
	}
	if in.Title != nil {
		company.Title = strings.TrimSpace(*in.Title)
		if company.Title == "" {
			verr.Add("title", "es obligatorio")
		}
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	company.UpdatedAt = time.Now()
	if err := uc.companies.Update(ctx, company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// Delete elimina la empresa y todo lo que depende de ella; sus usuarios quedan sin empresa.
func (uc *CompanyUseCase) Delete(ctx context.Context, p access.Principal, id string) error {
	if err := access.Authorize(p, access.Company, access.Delete, id); err != nil {
		return err
	}
	return uc.tx.RunTenant(ctx, func(companies repository.CompanyRepository, users repository.UserRepository) error {
		company, err := companies.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if company == nil {
			return domain.ErrNotFound
		}
		if err := users.DetachCompany(ctx, id); err != nil {
			return err
		}
		return companies.Delete(ctx, id)
	})
}

// AttachEmployee vincula un usuario sin empresa como empleado. Solo el propietario.
func (uc *CompanyUseCase) AttachEmployee(ctx context.Context, p access.Principal, companyID string, in dto.AttachEmployeeRequest) (*dto.UserResponse, error) {
	if err := access.Authorize(p, access.Company, access.Edit, companyID); err != nil {
		return nil, err
	}
	user, err := uc.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.Invalid("email", "no existe un usuario con este email")
	}
	attached, err := uc.users.AttachToCompany(ctx, user.ID, companyID, false)
	if err != nil {
		return nil, err
	}
	if !attached {
		return nil, domain.Invalid("email", "el usuario ya pertenece a una empresa")
	}
	user.CompanyID = companyID
	user.IsCompanyOwner = false
	return auth.ToUserResponse(user), nil
}

func entityToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:        c.ID,
		INN:       c.INN,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
