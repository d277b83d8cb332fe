package dto

import "time"

// CreateSupplierRequest entrada para crear un proveedor.
type CreateSupplierRequest struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
	INN   string `json:"inn" validate:"required,numeric,max=12"`
}

// UpdateSupplierRequest entrada para actualizar un proveedor.
type UpdateSupplierRequest struct {
	Title *string `json:"title" validate:"omitempty,min=1,max=200"`
	INN   *string `json:"inn" validate:"omitempty,numeric,max=12"`
}

// SupplierResponse salida de un proveedor.
type SupplierResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Title     string    `json:"title"`
	INN       string    `json:"inn"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SupplierListResponse lista paginada de proveedores.
type SupplierListResponse struct {
	Items []SupplierResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
