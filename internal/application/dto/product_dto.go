package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. Quantity no se acepta: la maneja el ledger.
type CreateProductRequest struct {
	StorageID     string          `json:"storage_id" validate:"required"`
	Title         string          `json:"title" validate:"required,min=1,max=255"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
}

// UpdateProductRequest entrada para actualizar un producto (sin quantity ni storage).
type UpdateProductRequest struct {
	Title         *string          `json:"title" validate:"omitempty,min=1,max=255"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string          `json:"id"`
	StorageID     string          `json:"storage_id"`
	Title         string          `json:"title"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Quantity      int64           `json:"quantity"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// StockMovementResponse salida de un movimiento de stock.
type StockMovementResponse struct {
	ID        string    `json:"id"`
	SupplyID  string    `json:"supply_id"`
	ProductID string    `json:"product_id"`
	Delta     int64     `json:"delta"`
	Kind      string    `json:"kind"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// StockMovementListResponse lista paginada de movimientos.
type StockMovementListResponse struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}
