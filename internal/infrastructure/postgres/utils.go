package postgres

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return hasCode(err, "23505")
}

// isCheckViolation verifica si un error es una violación de CHECK (23514).
func isCheckViolation(err error) bool {
	return hasCode(err, "23514")
}

// isForeignKeyViolation verifica si un error es una violación de FK (23503).
func isForeignKeyViolation(err error) bool {
	return hasCode(err, "23503")
}

// isNumericOutOfRange verifica si un error es un desborde numérico (22003).
func isNumericOutOfRange(err error) bool {
	return hasCode(err, "22003")
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return strings.Contains(err.Error(), code)
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// validID evita mandar a la base un texto que no castea a UUID (22P02); se trata como inexistente.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// limitArg traduce limit <= 0 a NULL, que en LIMIT equivale a sin límite.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}
