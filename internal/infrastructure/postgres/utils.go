package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/lumberyard-api/internal/domain"
)

// Códigos SQLSTATE usados por el adaptador.
const (
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	if code := pgCode(err); code != "" {
		return code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// isRetryable fallos transitorios de la transacción: serialización y deadlock.
// Reintentar la transacción completa es seguro; no hay efectos parciales visibles.
func isRetryable(err error) bool {
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected:
		return true
	}
	return false
}

// storageErr clasifica un error del driver. Un CHECK (>= 0) violado es un contador negativo;
// el resto es fallo de persistencia. Se conserva el error original para isRetryable.
func storageErr(op string, err error) error {
	if pgCode(err) == codeCheckViolation {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrNegativeStock, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrPersistence, err)
}
