package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
	ErrConflict               = errors.New("conflicto con el estado actual")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrInvalidStateTransition = errors.New("transición de estado no permitida")
	ErrNegativeStock          = errors.New("el contador de stock quedaría negativo")
	ErrPersistence            = errors.New("fallo de persistencia")
)

// ValidationError detalla qué campo de la entrada es inválido. errors.Is(err, ErrInvalidInput) es true.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidInput, e.Message)
	}
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput, e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError construye un error de validación para un campo.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// InsufficientStockError indica que el bucket de origen no cubre la cantidad pedida.
type InsufficientStockError struct {
	WarehouseID    string
	MaterialTypeID string
	Thickness      string
	Bucket         string
	Available      int64
	Requested      int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: %s/%s/%s %s disponible=%d solicitado=%d",
		ErrInsufficientStock, e.WarehouseID, e.MaterialTypeID, e.Thickness, e.Bucket, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// InvalidStateTransitionError indica una operación sobre un traslado en un estado que no la admite.
type InvalidStateTransitionError struct {
	Operation string
	From      string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("%s: %s desde %s", ErrInvalidStateTransition, e.Operation, e.From)
}

func (e *InvalidStateTransitionError) Unwrap() error { return ErrInvalidStateTransition }

// NegativeStockError se produce cuando una mutación dejaría un contador por debajo de cero.
// Con transacciones serializadas nunca debería llegar al cliente: indica un bug o una carrera.
type NegativeStockError struct {
	Bucket  string
	Current int64
	Delta   int64
}

func (e *NegativeStockError) Error() string {
	return fmt.Sprintf("%s: %s actual=%d delta=%d", ErrNegativeStock, e.Bucket, e.Current, e.Delta)
}

func (e *NegativeStockError) Unwrap() error { return ErrNegativeStock }
