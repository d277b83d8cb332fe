package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementApply    = "apply"    // aplicación de una supply (delta positivo)
	MovementRollback = "rollback" // reverso de una supply (delta negativo)
)

// StockMovement es un registro inmutable de un cambio de stock.
// La suma de Delta de un producto es igual a su Quantity.
type StockMovement struct {
	ID        string
	SupplyID  string
	ProductID string
	Delta     int64
	Kind      string // apply, rollback
	CreatedBy string // UserID
	CreatedAt time.Time
}
