package dto

import "time"

// CreateCompanyRequest entrada para crear una empresa.
type CreateCompanyRequest struct {
	INN   string `json:"inn" validate:"required,numeric,max=12"`
	Title string `json:"title" validate:"required,min=1,max=300"`
}

// UpdateCompanyRequest entrada para actualizar una empresa (campos opcionales).
type UpdateCompanyRequest struct {
	INN   *string `json:"inn" validate:"omitempty,numeric,max=12"`
	Title *string `json:"title" validate:"omitempty,min=1,max=300"`
}

// AttachEmployeeRequest entrada para vincular un usuario existente como empleado.
type AttachEmployeeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// CompanyResponse salida de una empresa.
type CompanyResponse struct {
	ID        string    `json:"id"`
	INN       string    `json:"inn"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompanyDetailResponse empresa con su storage y empleados.
type CompanyDetailResponse struct {
	CompanyResponse
	StorageID *string        `json:"storage_id"`
	Users     []UserResponse `json:"users"`
}
