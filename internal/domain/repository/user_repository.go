package repository

import (
	"context"

	"github.com/jhoicas/Suministros-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	// AttachToCompany vincula al usuario solo si no tiene empresa; devuelve false si ya tenía una.
	AttachToCompany(ctx context.Context, userID, companyID string, owner bool) (bool, error)
	// DetachCompany desvincula a todos los usuarios de la empresa y limpia el flag de propietario.
	DetachCompany(ctx context.Context, companyID string) error
	ListByCompany(ctx context.Context, companyID string) ([]*entity.User, error)
}
