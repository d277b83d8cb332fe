package entity

import "time"

// Storage es el almacén de una Company (uno por empresa).
type Storage struct {
	ID        string
	CompanyID string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
