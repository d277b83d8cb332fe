package dto

import "time"

// SupplyLineItemRequest línea de una supply.
type SupplyLineItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// SupplyRequest entrada para crear o reemplazar una supply.
// Los campos se validan en el caso de uso para reportar supplier, delivery_date y quantity por nombre.
type SupplyRequest struct {
	SupplierID   string                  `json:"supplier_id"`
	DeliveryDate string                  `json:"delivery_date"` // YYYY-MM-DD
	LineItems    []SupplyLineItemRequest `json:"line_items"`
}

// SupplyLineItemResponse línea de una supply.
type SupplyLineItemResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// SupplyResponse salida de una supply.
type SupplyResponse struct {
	ID            string                   `json:"id"`
	SupplierID    string                   `json:"supplier_id"`
	DeliveryDate  string                   `json:"delivery_date"`
	LineItems     []SupplyLineItemResponse `json:"line_items"`
	TotalQuantity int64                    `json:"total_quantity"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

// SupplyListResponse lista paginada de supplies.
type SupplyListResponse struct {
	Items []SupplyResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
