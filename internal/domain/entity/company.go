package entity

import "time"

// Company representa una organización/tenant del sistema. Todos los recursos pertenecen a una.
type Company struct {
	ID        string
	INN       string // identificador fiscal, único
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
