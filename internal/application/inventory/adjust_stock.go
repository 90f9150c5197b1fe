package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/lumberyard-api/internal/application/dto"
	"github.com/jhoicas/lumberyard-api/internal/application/ports"
	"github.com/jhoicas/lumberyard-api/internal/domain"
	"github.com/jhoicas/lumberyard-api/internal/domain/entity"
	"github.com/jhoicas/lumberyard-api/internal/domain/ledger"
	"github.com/jhoicas/lumberyard-api/internal/domain/repository"
	"github.com/rs/zerolog"
)

// AdjustStockUseCase es el diario de ajustes: corrige un contador al valor de un reconteo físico
// y deja la entrada de auditoría en la misma transacción. No pasa por el motor de traslados.
type AdjustStockUseCase struct {
	txRunner       ports.TxRunner
	warehouseRepo  repository.WarehouseRepository
	adjustmentRepo repository.StockAdjustmentRepository
	publisher      ports.EventPublisher
	log            zerolog.Logger
	now            func() time.Time
}

// NewAdjustStockUseCase construye el caso de uso. adjustmentRepo se usa para lecturas fuera de tx.
func NewAdjustStockUseCase(
	txRunner ports.TxRunner,
	warehouseRepo repository.WarehouseRepository,
	adjustmentRepo repository.StockAdjustmentRepository,
	publisher ports.EventPublisher,
	log zerolog.Logger,
) *AdjustStockUseCase {
	return &AdjustStockUseCase{
		txRunner:       txRunner,
		warehouseRepo:  warehouseRepo,
		adjustmentRepo: adjustmentRepo,
		publisher:      publisher,
		log:            log.With().Str("component", "stock_adjustment").Logger(),
		now:            time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *AdjustStockUseCase) WithClock(now func() time.Time) *AdjustStockUseCase {
	uc.now = now
	return uc
}

// AdjustStock fija counter[wood_status] = quantity_after y registra el ajuste con
// quantity_change = after - before. Es la única operación que puede crear o destruir cantidad.
func (uc *AdjustStockUseCase) AdjustStock(ctx context.Context, actorID string, in dto.AdjustStockRequest) (*dto.StockAdjustmentResponse, error) {
	if err := validateAdjustment(actorID, in); err != nil {
		return nil, err
	}
	wh, err := uc.warehouseRepo.GetByID(ctx, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrNotFound
	}

	status := entity.WoodStatus(in.WoodStatus)
	bucket, _ := status.Bucket()
	key := entity.StockKey{
		WarehouseID:    in.WarehouseID,
		MaterialTypeID: strings.TrimSpace(in.MaterialTypeID),
		Thickness:      strings.TrimSpace(in.Thickness),
	}

	var (
		adj     *entity.StockAdjustment
		touched []*entity.StockRecord
	)
	err = uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		_ repository.TransferRepository,
		adjustmentRepo repository.StockAdjustmentRepository,
	) error {
		now := uc.now()
		led := NewLedger(stockRepo, uc.now)
		rec, err := led.GetOrCreate(ctx, key)
		if err != nil {
			return err
		}
		before, err := ledger.Count(rec, bucket)
		if err != nil {
			return err
		}
		if _, err := led.SetBucket(ctx, rec, bucket, in.QuantityAfter); err != nil {
			return err
		}
		adj = &entity.StockAdjustment{
			ID:             newID(),
			WarehouseID:    key.WarehouseID,
			MaterialTypeID: key.MaterialTypeID,
			Thickness:      key.Thickness,
			WoodStatus:     status,
			QuantityBefore: before,
			QuantityAfter:  in.QuantityAfter,
			QuantityChange: in.QuantityAfter - before,
			Reason:         entity.AdjustmentReason(in.Reason),
			Notes:          strings.TrimSpace(in.Notes),
			AdjustedByID:   actorID,
			AdjustedAt:     now,
		}
		if err := adjustmentRepo.Create(ctx, adj); err != nil {
			return err
		}
		touched = led.Touched()
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("adjustment_id", adj.ID).
		Str("warehouse_id", adj.WarehouseID).
		Str("material_type_id", adj.MaterialTypeID).
		Str("thickness", adj.Thickness).
		Str("wood_status", string(adj.WoodStatus)).
		Int64("quantity_change", adj.QuantityChange).
		Str("actor_id", actorID).
		Msg("ajuste de stock registrado")

	uc.publish(ctx, ports.Event{
		Type:       ports.EventStockAdjusted,
		OccurredAt: adj.AdjustedAt,
		ActorID:    actorID,
		SubjectID:  adj.ID,
		Data: map[string]any{
			"warehouse_id":     adj.WarehouseID,
			"material_type_id": adj.MaterialTypeID,
			"thickness":        adj.Thickness,
			"wood_status":      string(adj.WoodStatus),
			"quantity_before":  adj.QuantityBefore,
			"quantity_after":   adj.QuantityAfter,
			"quantity_change":  adj.QuantityChange,
			"reason":           string(adj.Reason),
		},
	})
	PublishLowStock(ctx, uc.publisher, uc.log, touched, map[string]bool{wh.ID: wh.StockControlEnabled}, actorID)

	return ToStockAdjustmentResponse(adj), nil
}

// ListAdjustments devuelve el diario de una bodega, más recientes primero.
func (uc *AdjustStockUseCase) ListAdjustments(ctx context.Context, warehouseID string, page dto.PageRequest) (*dto.StockAdjustmentListResponse, error) {
	if warehouseID == "" {
		return nil, domain.NewValidationError("warehouse_id", "es requerido")
	}
	page.DefaultPage()
	list, err := uc.adjustmentRepo.ListByWarehouse(ctx, warehouseID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockAdjustmentResponse, 0, len(list))
	for _, a := range list {
		items = append(items, *ToStockAdjustmentResponse(a))
	}
	return &dto.StockAdjustmentListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func (uc *AdjustStockUseCase) publish(ctx context.Context, ev ports.Event) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, ev); err != nil {
		uc.log.Warn().Err(err).Str("event", ev.Type).Msg("publicar evento")
	}
}

func validateAdjustment(actorID string, in dto.AdjustStockRequest) error {
	switch {
	case actorID == "":
		return domain.ErrUnauthorized
	case in.WarehouseID == "":
		return domain.NewValidationError("warehouse_id", "es requerido")
	case strings.TrimSpace(in.MaterialTypeID) == "":
		return domain.NewValidationError("material_type_id", "es requerido")
	case strings.TrimSpace(in.Thickness) == "":
		return domain.NewValidationError("thickness", "es requerido")
	case !entity.WoodStatus(in.WoodStatus).Valid():
		return domain.NewValidationError("wood_status", "debe ser NOT_DRIED, UNDER_DRYING, DRIED o DAMAGED")
	case in.QuantityAfter < 0:
		return domain.NewValidationError("quantity_after", "no puede ser negativa")
	case !entity.AdjustmentReason(in.Reason).Valid():
		return domain.NewValidationError("reason", "motivo no admitido")
	}
	return nil
}

// ToStockAdjustmentResponse mapea la entidad al DTO de salida.
func ToStockAdjustmentResponse(a *entity.StockAdjustment) *dto.StockAdjustmentResponse {
	if a == nil {
		return nil
	}
	return &dto.StockAdjustmentResponse{
		ID:             a.ID,
		WarehouseID:    a.WarehouseID,
		MaterialTypeID: a.MaterialTypeID,
		Thickness:      a.Thickness,
		WoodStatus:     string(a.WoodStatus),
		QuantityBefore: a.QuantityBefore,
		QuantityAfter:  a.QuantityAfter,
		QuantityChange: a.QuantityChange,
		Reason:         string(a.Reason),
		Notes:          a.Notes,
		AdjustedByID:   a.AdjustedByID,
		AdjustedAt:     a.AdjustedAt,
	}
}
