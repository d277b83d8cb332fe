package supply

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/ledger"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

// Engine aplica y revierte supplies sobre el stock usando repositorios de la tx en curso.
// Cada llamada debe corresponder a una única transición de estado de la supply.
type Engine struct {
	rec Recorder
	now func() time.Time
}

// NewEngine construye el motor. rec puede ser nil.
func NewEngine(rec Recorder) *Engine {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Engine{rec: rec, now: time.Now}
}

// Apply suma la cantidad de cada línea de s a su producto (draft -> applied).
func (e *Engine) Apply(ctx context.Context, products repository.ProductRepository, movements repository.StockMovementRepository, s *entity.Supply, userID string) error {
	return e.post(ctx, products, movements, ledger.Apply, s, userID)
}

// Rollback resta la cantidad de cada línea actual de s (applied -> draft).
// Debe llamarse antes de borrar o reemplazar las líneas.
func (e *Engine) Rollback(ctx context.Context, products repository.ProductRepository, movements repository.StockMovementRepository, s *entity.Supply, userID string) error {
	return e.post(ctx, products, movements, ledger.Rollback, s, userID)
}

func (e *Engine) post(
	ctx context.Context,
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	op ledger.Operation,
	s *entity.Supply,
	userID string,
) error {
	adjs, err := ledger.Plan(op, s.LineItems)
	if err != nil {
		return err
	}
	if len(adjs) == 0 {
		return nil
	}
	// Orden por producto: el UPDATE atómico toma el lock de fila siempre en el mismo orden.
	for _, a := range adjs {
		if _, err := products.AdjustQuantity(ctx, a.ProductID, a.Delta); err != nil {
			return fmt.Errorf("%s supply %s, producto %s: %w", op, s.ID, a.ProductID, err)
		}
	}
	movs := ledger.Movements(op, s.ID, userID, adjs, e.now())
	if err := movements.Append(ctx, movs...); err != nil {
		return fmt.Errorf("%s supply %s, registrar movimientos: %w", op, s.ID, err)
	}
	e.rec.AddMovements(op.MovementKind(), len(movs))
	return nil
}
