package usecase

import (
	"context"

	"github.com/jhoicas/Suministros-api/internal/application/auth"
	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/access"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

// UserUseCase aplica reglas de negocio para usuarios.
type UserUseCase struct {
	repo repository.UserRepository
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository) *UserUseCase {
	return &UserUseCase{repo: repo}
}

// ResolvePrincipal carga el usuario del token y construye el principal del request.
// Usuario inexistente o inactivo equivale a no autenticado.
func (uc *UserUseCase) ResolvePrincipal(ctx context.Context, userID string) (access.Principal, error) {
	user, err := uc.repo.GetByID(ctx, userID)
	if err != nil {
		return access.Anonymous, err
	}
	if user == nil || !user.IsActive {
		return access.Anonymous, domain.ErrAuthenticationRequired
	}
	return access.Principal{
		UserID:         user.ID,
		CompanyID:      user.CompanyID,
		IsCompanyOwner: user.HasCompany() && user.IsCompanyOwner,
		Authenticated:  true,
	}, nil
}

// Me devuelve el usuario del principal.
func (uc *UserUseCase) Me(ctx context.Context, p access.Principal) (*dto.UserResponse, error) {
	if !p.Authenticated {
		return nil, domain.ErrAuthenticationRequired
	}
	user, err := uc.repo.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return auth.ToUserResponse(user), nil
}
