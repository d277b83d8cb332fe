package domain

import (
	"sort"
	"strings"
)

// Tipos de ValidationError.
const (
	KindValidation  = "validation"  // formato o rango del valor
	KindReferential = "referential" // la referencia no pertenece a la empresa del usuario
)

// Longitud máxima de un INN.
const MaxINNLength = 12

// ValidationError agrupa errores por campo. Envuelve ErrInvalidInput.
type ValidationError struct {
	Kind   string
	Fields map[string][]string
}

// NewValidationError crea un ValidationError vacío del tipo indicado.
func NewValidationError(kind string) *ValidationError {
	return &ValidationError{Kind: kind, Fields: map[string][]string{}}
}

// Invalid crea un ValidationError de formato con un solo campo.
func Invalid(field, msg string) *ValidationError {
	return NewValidationError(KindValidation).Add(field, msg)
}

// Referential crea un ValidationError referencial con un solo campo.
func Referential(field, msg string) *ValidationError {
	return NewValidationError(KindReferential).Add(field, msg)
}

// Add registra msg para field y devuelve el mismo error para encadenar.
func (e *ValidationError) Add(field, msg string) *ValidationError {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
	return e
}

// HasErrors indica si hay al menos un campo con error.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// Err devuelve nil si no hay errores; así se evita el nil tipado en interfaces.
func (e *ValidationError) Err() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e.Fields[f], "; "))
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// ValidateINN devuelve un mensaje si inn no es un identificador fiscal válido (1 a 12 dígitos).
func ValidateINN(inn string) string {
	if inn == "" {
		return "es obligatorio"
	}
	if len(inn) > MaxINNLength {
		return "máximo 12 dígitos"
	}
	for _, r := range inn {
		if r < '0' || r > '9' {
			return "solo se permiten dígitos"
		}
	}
	return ""
}
