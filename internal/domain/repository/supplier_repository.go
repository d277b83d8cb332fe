package repository

import (
	"context"

	"github.com/jhoicas/Suministros-api/internal/domain/entity"
)

// SupplierRepository define el puerto de persistencia para Supplier (DIP).
type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	GetByINN(ctx context.Context, inn string) (*entity.Supplier, error)
	Update(ctx context.Context, supplier *entity.Supplier) error
	Delete(ctx context.Context, id string) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Supplier, error)
}
