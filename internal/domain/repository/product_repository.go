package repository

import (
	"context"

	"github.com/jhoicas/Suministros-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// CompanyID se resuelve a través del storage en todas las lecturas.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetByIDs devuelve los productos encontrados indexados por ID; los ausentes no aparecen.
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error)
	// Update modifica título y precios. Nunca escribe quantity.
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id string) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Product, error)
	// AdjustQuantity suma delta a quantity de forma atómica y devuelve el nuevo valor.
	// Retorna domain.ErrInsufficientStock si el resultado sería negativo y domain.ErrNotFound si no existe.
	AdjustQuantity(ctx context.Context, productID string, delta int64) (int64, error)
}
