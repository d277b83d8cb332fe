package dto

import "time"

// CreateStorageRequest entrada para crear el storage de la empresa.
type CreateStorageRequest struct {
	Address string `json:"address" validate:"required,min=1,max=5000"`
}

// UpdateStorageRequest entrada para actualizar el storage.
type UpdateStorageRequest struct {
	Address string `json:"address" validate:"required,min=1,max=5000"`
}

// StorageResponse salida de un storage.
type StorageResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
