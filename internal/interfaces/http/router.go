package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/idempotency"
	"github.com/jhoicas/lumberyard-api/internal/application/dto"
	"github.com/jhoicas/lumberyard-api/internal/application/inventory"
	"github.com/jhoicas/lumberyard-api/internal/application/transfer"
	"github.com/rs/zerolog"
)

// IdempotencyKeyHeader cabecera con la que el cliente de-duplica reintentos de operaciones mutantes.
const IdempotencyKeyHeader = "Idempotency-Key"

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Transfers   *transfer.UseCase
	Adjustments *inventory.AdjustStockUseCase
	LowStock    *inventory.LowStockUseCase
	JWTSecret   string
	JWTIssuer   string
	// Location zona de negocio: los filtros por día se leen en ella. nil = UTC.
	Location *time.Location
	// Idempotency almacén de respuestas por Idempotency-Key; nil = memoria del proceso.
	Idempotency    fiber.Storage
	IdempotencyTTL time.Duration
	Log            zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer), idempotencyMiddleware(deps))

	transferHandler := NewTransferHandler(deps.Transfers, deps.Location, deps.Log)
	transfers := api.Group("/transfers")
	transfers.Get("/pending-approvals", transferHandler.PendingApprovals)
	transfers.Post("/", transferHandler.Create)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Post("/:id/approve", RequireRole(RoleAdmin, RoleSupervisor), transferHandler.Approve)
	transfers.Post("/:id/reject", RequireRole(RoleAdmin, RoleSupervisor), transferHandler.Reject)
	transfers.Post("/:id/complete", transferHandler.Complete)
	transfers.Post("/:id/cancel", transferHandler.Cancel)

	stockHandler := NewStockHandler(deps.Adjustments, deps.LowStock, deps.Log)
	stock := api.Group("/stock")
	stock.Post("/adjustments", RequireRole(RoleAdmin, RoleSupervisor, RoleBodeguero), stockHandler.Adjust)
	stock.Get("/adjustments", stockHandler.ListAdjustments)
	stock.Get("/low-stock", stockHandler.LowStock)
}

// maxIdempotencyKeyLen longitud máxima de la clave enviada por el cliente, sin el prefijo de usuario.
const maxIdempotencyKeyLen = 200

// idempotencyMiddleware guarda la respuesta de POST por Idempotency-Key y la repite en reintentos.
// Las claves se separan por usuario para que dos usuarios no compartan respuestas.
func idempotencyMiddleware(deps RouterDeps) fiber.Handler {
	ttl := deps.IdempotencyTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	handler := idempotency.New(idempotency.Config{
		Next:      func(c *fiber.Ctx) bool { return c.Method() != fiber.MethodPost },
		Lifetime:  ttl,
		KeyHeader: IdempotencyKeyHeader,
		// La clave del cliente ya se validó antes de añadirle el prefijo.
		KeyHeaderValidate: func(string) error { return nil },
		Storage:           deps.Idempotency,
	})
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}
		key := strings.TrimSpace(c.Get(IdempotencyKeyHeader))
		if key == "" {
			c.Request().Header.Del(IdempotencyKeyHeader)
			return handler(c)
		}
		if len(key) > maxIdempotencyKeyLen {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Code:    "VALIDATION",
				Message: fmt.Sprintf("%s: máximo %d caracteres", IdempotencyKeyHeader, maxIdempotencyKeyLen),
			})
		}
		c.Request().Header.Set(IdempotencyKeyHeader, GetUserID(c)+":"+key)
		return handler(c)
	}
}
