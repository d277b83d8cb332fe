package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo registro append-only de movimientos sobre PostgreSQL.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador.
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Append inserta los movimientos en un batch. supply_id no tiene FK: el log sobrevive a la supply.
func (r *StockMovementRepo) Append(ctx context.Context, movements ...entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range movements {
		batch.Queue(`
			INSERT INTO stock_movements (id, supply_id, product_id, delta, kind, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			m.ID, m.SupplyID, m.ProductID, m.Delta, m.Kind, nullable(m.CreatedBy), m.CreatedAt)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range movements {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert stock movement: %w", err)
		}
	}
	return br.Close()
}

// ListByProduct devuelve el historial de un producto, más reciente primero.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	if !validID(productID) {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, supply_id, product_id, delta, kind, COALESCE(created_by::text, ''), created_at
		FROM stock_movements
		WHERE product_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, productID, limitArg(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.SupplyID, &m.ProductID, &m.Delta, &m.Kind, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
