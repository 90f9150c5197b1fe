package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/lumberyard-api/internal/application/dto"
	"github.com/jhoicas/lumberyard-api/internal/application/transfer"
	"github.com/rs/zerolog"
)

// TransferHandler maneja las peticiones HTTP del motor de traslados (protegido).
type TransferHandler struct {
	uc  *transfer.UseCase
	loc *time.Location // zona de las fechas YYYY-MM-DD de los filtros
	log zerolog.Logger
}

// NewTransferHandler construye el handler. loc nil = UTC.
func NewTransferHandler(uc *transfer.UseCase, loc *time.Location, log zerolog.Logger) *TransferHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TransferHandler{uc: uc, loc: loc, log: log}
}

// Create godoc
// @Summary      Crear traslado entre bodegas
// @Description  Queda PENDING si la bodega de origen exige aprobación; si no, se despacha (IN_TRANSIT)
// @Description  o queda APPROVED cuando el origen no lleva control de stock.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                     false  "clave de idempotencia"
// @Param        body             body    dto.CreateTransferRequest  true   "origen, destino e ítems"
// @Success      201  {object}  dto.TransferResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateTransferRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), userID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Approve godoc
// @Summary      Aprobar traslado PENDING
// @Description  Re-verifica el stock de origen y despacha: IN_TRANSIT.
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/approve [post]
func (h *TransferHandler) Approve(c *fiber.Ctx) error {
	out, err := h.uc.Approve(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Reject godoc
// @Summary      Rechazar traslado PENDING
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true   "ID del traslado"
// @Param        body  body  dto.RejectTransferRequest  false  "motivo"
// @Success      200  {object}  dto.TransferResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/reject [post]
func (h *TransferHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectTransferRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Reject(c.UserContext(), GetUserID(c), c.Params("id"), in.RejectionReason)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Complete godoc
// @Summary      Recibir traslado en destino
// @Description  Válido desde IN_TRANSIT o APPROVED.
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/complete [post]
func (h *TransferHandler) Complete(c *fiber.Ctx) error {
	out, err := h.uc.Complete(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar traslado PENDING
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true   "ID del traslado"
// @Param        body  body  dto.CancelTransferRequest  false  "motivo"
// @Success      200  {object}  dto.TransferResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelTransferRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Cancel(c.UserContext(), GetUserID(c), c.Params("id"), in.Reason)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar traslados
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        status        query  string  false  "PENDING | APPROVED | IN_TRANSIT | COMPLETED | REJECTED | CANCELLED"
// @Param        warehouse_id  query  string  false  "bodega de origen o destino"
// @Param        from_date     query  string  false  "RFC3339 o YYYY-MM-DD (día en APP_TIMEZONE)"
// @Param        to_date       query  string  false  "RFC3339 o YYYY-MM-DD (día en APP_TIMEZONE)"
// @Param        limit         query  int     false  "máx. 100"
// @Param        offset        query  int     false  "desplazamiento"
// @Success      200  {object}  dto.TransferListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	in := dto.TransferListRequest{
		Status:      c.Query("status"),
		WarehouseID: c.Query("warehouse_id"),
		PageRequest: dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)},
	}
	var err error
	if in.FromDate, err = parseDate(c.Query("from_date"), false, h.loc); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from_date inválida"})
	}
	if in.ToDate, err = parseDate(c.Query("to_date"), true, h.loc); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to_date inválida"})
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// PendingApprovals godoc
// @Summary      Traslados pendientes de mi aprobación
// @Description  PENDING cuyo origen está entre las bodegas asignadas al usuario del token.
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.TransferResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/transfers/pending-approvals [get]
func (h *TransferHandler) PendingApprovals(c *fiber.Ctx) error {
	out, err := h.uc.PendingApprovals(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "transfers": out})
}
