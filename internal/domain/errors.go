package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrUserNotFound           = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists     = errors.New("el email ya está registrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrUnauthorized           = errors.New("credenciales inválidas")
	ErrAuthenticationRequired = errors.New("autenticación requerida")
	ErrForbidden              = errors.New("acceso denegado")
	ErrInsufficientStock      = errors.New("stock insuficiente")
)
