package repository

import (
	"context"

	"github.com/jhoicas/Suministros-api/internal/domain/entity"
)

// StockMovementRepository registro append-only de movimientos de stock.
type StockMovementRepository interface {
	Append(ctx context.Context, movements ...entity.StockMovement) error
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error)
}
