package repository

import (
	"context"

	"github.com/jhoicas/Suministros-api/internal/domain/entity"
)

// StorageRepository define el puerto de persistencia para Storage (DIP).
type StorageRepository interface {
	Create(ctx context.Context, storage *entity.Storage) error
	GetByID(ctx context.Context, id string) (*entity.Storage, error)
	GetByCompany(ctx context.Context, companyID string) (*entity.Storage, error)
	Update(ctx context.Context, storage *entity.Storage) error
	// Delete elimina el storage y sus productos (con sus líneas de supply).
	Delete(ctx context.Context, id string) error
}
