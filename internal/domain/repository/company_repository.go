package repository

import (
	"context"

	"github.com/jhoicas/Suministros-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
// Los Get devuelven (nil, nil) si no existe.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	GetByINN(ctx context.Context, inn string) (*entity.Company, error)
	Update(ctx context.Context, company *entity.Company) error
	// Delete elimina la empresa con su storage, productos, proveedores y supplies.
	Delete(ctx context.Context, id string) error
}
