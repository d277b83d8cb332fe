package repository

import (
	"context"

	"github.com/jhoicas/Suministros-api/internal/domain/entity"
)

// SupplyRepository define el puerto de persistencia para Supply y sus líneas (DIP).
// Las lecturas cargan LineItems y resuelven CompanyID a través del proveedor.
type SupplyRepository interface {
	Create(ctx context.Context, supply *entity.Supply) error
	CreateLineItems(ctx context.Context, items []entity.SupplyLineItem) error
	GetByID(ctx context.Context, id string) (*entity.Supply, error)
	// GetForUpdate igual que GetByID pero bloquea la fila de la supply hasta el fin de la tx.
	GetForUpdate(ctx context.Context, id string) (*entity.Supply, error)
	Update(ctx context.Context, supply *entity.Supply) error
	DeleteLineItems(ctx context.Context, supplyID string) error
	// Delete elimina la supply; sus líneas se eliminan en cascada.
	Delete(ctx context.Context, id string) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Supply, error)
	// ListBySupplierForUpdate devuelve y bloquea todas las supplies de un proveedor.
	ListBySupplierForUpdate(ctx context.Context, supplierID string) ([]*entity.Supply, error)
}
