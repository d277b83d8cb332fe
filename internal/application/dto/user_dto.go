package dto

import "time"

// RegisterRequest entrada para registro (auth). El usuario nace sin empresa.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,min=3,max=150"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	CompanyID      *string   `json:"company_id"`
	IsCompanyOwner bool      `json:"is_company_owner"`
	CreatedAt      time.Time `json:"created_at"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
