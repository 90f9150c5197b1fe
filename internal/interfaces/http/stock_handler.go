package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/lumberyard-api/internal/application/dto"
	"github.com/jhoicas/lumberyard-api/internal/application/inventory"
	"github.com/rs/zerolog"
)

// StockHandler diario de ajustes y alertas de stock bajo (protegido).
type StockHandler struct {
	adjust   *inventory.AdjustStockUseCase
	lowStock *inventory.LowStockUseCase
	log      zerolog.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(adjust *inventory.AdjustStockUseCase, lowStock *inventory.LowStockUseCase, log zerolog.Logger) *StockHandler {
	return &StockHandler{adjust: adjust, lowStock: lowStock, log: log}
}

// Adjust godoc
// @Summary      Ajustar stock a un reconteo físico
// @Description  Fija el contador del estado indicado a quantity_after y registra el ajuste.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                  false  "clave de idempotencia"
// @Param        body             body    dto.AdjustStockRequest  true   "bodega, madera, espesor, estado, cantidad y motivo"
// @Success      201  {object}  dto.StockAdjustmentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/adjustments [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AdjustStockRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.adjust.AdjustStock(c.UserContext(), userID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListAdjustments godoc
// @Summary      Diario de ajustes de una bodega
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  true   "bodega"
// @Param        limit         query  int     false  "máx. 100"
// @Param        offset        query  int     false  "desplazamiento"
// @Success      200  {object}  dto.StockAdjustmentListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/adjustments [get]
func (h *StockHandler) ListAdjustments(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.adjust.ListAdjustments(c.UserContext(), c.Query("warehouse_id"), page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Alertas de stock bajo
// @Description  Registros con not_dried + dried por debajo del mínimo, solo en bodegas con control de stock.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.LowStockAlertDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/stock/low-stock [get]
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	list, err := h.lowStock.ListAlerts(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "alerts": list})
}
