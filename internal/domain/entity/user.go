package entity

import "time"

// User representa un usuario del sistema. Pertenece a lo sumo a una Company.
type User struct {
	ID             string
	Email          string
	Username       string
	PasswordHash   string // bcrypt hash, nunca plano en dominio después de persistir
	CompanyID      string // vacío = sin empresa
	IsCompanyOwner bool
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasCompany indica si el usuario está vinculado a una empresa.
func (u *User) HasCompany() bool {
	return u.CompanyID != ""
}
