package entity

import "time"

// Supplier es un proveedor de una Company. El INN es único globalmente.
type Supplier struct {
	ID        string
	CompanyID string
	Title     string
	INN       string
	CreatedAt time.Time
	UpdatedAt time.Time
}
