// Package ledger contiene la lógica pura de aplicación y reverso de suministros sobre el stock.
// No accede a persistencia: produce los ajustes y movimientos que el caso de uso aplica
// dentro de una transacción.
package ledger

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
)

// Operation transición de estado de una supply.
type Operation string

const (
	Apply    Operation = "apply"    // draft -> applied: suma cantidades
	Rollback Operation = "rollback" // applied -> draft: resta cantidades
)

// MaxQuantity tope de unidades de un producto dentro de una supply, sumando sus líneas.
const MaxQuantity int64 = math.MaxInt32

// FieldQuantity campo reportado cuando una cantidad excede los límites.
const FieldQuantity = "quantity"

// Adjustment cambio neto de stock de un producto.
type Adjustment struct {
	ProductID string
	Delta     int64
}

// sign devuelve +1 para Apply y -1 para Rollback.
func (op Operation) sign() int64 {
	if op == Rollback {
		return -1
	}
	return 1
}

// MovementKind tipo de StockMovement que genera la operación.
func (op Operation) MovementKind() string {
	if op == Rollback {
		return entity.MovementRollback
	}
	return entity.MovementApply
}

// Plan calcula los ajustes de aplicar op sobre items.
// Las líneas del mismo producto se acumulan en un solo ajuste y el resultado va ordenado por
// ProductID: dos transacciones concurrentes bloquean las filas de producto en el mismo orden.
// Rechaza cantidades negativas o cuyo total por producto supere MaxQuantity.
func Plan(op Operation, items []entity.SupplyLineItem) ([]Adjustment, error) {
	totals := make(map[string]int64, len(items))
	for _, li := range items {
		if li.Quantity < 0 || li.Quantity > MaxQuantity-totals[li.ProductID] {
			return nil, domain.Invalid(FieldQuantity, fmt.Sprintf("producto %s: el total supera %d unidades", li.ProductID, MaxQuantity))
		}
		totals[li.ProductID] += li.Quantity
	}
	adjs := make([]Adjustment, 0, len(totals))
	for productID, qty := range totals {
		if qty == 0 {
			continue
		}
		adjs = append(adjs, Adjustment{ProductID: productID, Delta: op.sign() * qty})
	}
	sort.Slice(adjs, func(i, j int) bool { return adjs[i].ProductID < adjs[j].ProductID })
	return adjs, nil
}

// Movements construye los movimientos que registran adjs para la supply.
func Movements(op Operation, supplyID, userID string, adjs []Adjustment, now time.Time) []entity.StockMovement {
	out := make([]entity.StockMovement, 0, len(adjs))
	for _, a := range adjs {
		out = append(out, entity.StockMovement{
			ID:        uuid.New().String(),
			SupplyID:  supplyID,
			ProductID: a.ProductID,
			Delta:     a.Delta,
			Kind:      op.MovementKind(),
			CreatedBy: userID,
			CreatedAt: now,
		})
	}
	return out
}

// ApplyTo devuelve current+delta. El stock nunca queda negativo: en ese caso retorna
// ErrInsufficientStock y la operación completa debe abortarse. Un saldo que no cabe en
// int64 es un error de validación sobre quantity.
func ApplyTo(current, delta int64) (int64, error) {
	if delta > 0 && current > math.MaxInt64-delta {
		return current, domain.Invalid(FieldQuantity, "el stock resultante excede el máximo admitido")
	}
	next := current + delta
	if next < 0 {
		return current, fmt.Errorf("%w: disponible %d, ajuste %d", domain.ErrInsufficientStock, current, delta)
	}
	return next, nil
}

// Fold suma los deltas de movs por producto. Sirve para verificar que el stock materializado
// coincide con el registro de movimientos.
func Fold(movs []entity.StockMovement) map[string]int64 {
	out := make(map[string]int64)
	for _, m := range movs {
		out[m.ProductID] += m.Delta
	}
	return out
}
