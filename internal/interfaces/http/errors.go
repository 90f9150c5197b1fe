package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/lumberyard-api/internal/application/dto"
	"github.com/jhoicas/lumberyard-api/internal/domain"
	"github.com/rs/zerolog"
)

// writeError traduce un error de dominio a respuesta HTTP. Los errores internos no exponen detalle.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	status, code, message := classify(err)
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: message})
}

func classify(err error) (int, string, string) {
	var (
		validation *domain.ValidationError
		stock      *domain.InsufficientStockError
		transition *domain.InvalidStateTransitionError
	)
	switch {
	case errors.As(err, &validation):
		return fiber.StatusBadRequest, "VALIDATION", validation.Error()
	case errors.As(err, &stock):
		return fiber.StatusBadRequest, "INSUFFICIENT_STOCK", stock.Error()
	case errors.As(err, &transition):
		return fiber.StatusBadRequest, "INVALID_STATE_TRANSITION", transition.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION", err.Error()
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusBadRequest, "INSUFFICIENT_STOCK", err.Error()
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return fiber.StatusBadRequest, "INVALID_STATE_TRANSITION", err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED", "token inválido"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN", "acceso denegado al recurso"
	case errors.Is(err, domain.ErrNegativeStock):
		return fiber.StatusConflict, "NEGATIVE_STOCK", "el contador de stock quedaría negativo; reintente la operación"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT", "conflicto con el estado actual; reintente la operación"
	case errors.Is(err, domain.ErrPersistence):
		return fiber.StatusInternalServerError, "PERSISTENCE", "fallo de almacenamiento"
	}
	return fiber.StatusInternalServerError, "INTERNAL", "error interno"
}
