package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/lumberyard-api/internal/application/dto"
	"github.com/jhoicas/lumberyard-api/internal/application/ports"
	"github.com/jhoicas/lumberyard-api/internal/domain/entity"
	"github.com/jhoicas/lumberyard-api/internal/domain/ledger"
	"github.com/jhoicas/lumberyard-api/internal/domain/repository"
	"github.com/rs/zerolog"
)

// LowStockUseCase vista derivada de solo lectura: registros con not_dried + dried por debajo
// de su mínimo, en bodegas con control de stock.
type LowStockUseCase struct {
	stockRepo repository.StockRepository
}

// NewLowStockUseCase construye el caso de uso de alertas.
func NewLowStockUseCase(stockRepo repository.StockRepository) *LowStockUseCase {
	return &LowStockUseCase{stockRepo: stockRepo}
}

// ListAlerts devuelve las alertas ordenadas por mayor déficit primero.
func (uc *LowStockUseCase) ListAlerts(ctx context.Context) ([]dto.LowStockAlertDTO, error) {
	records, err := uc.stockRepo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	alerts := make([]dto.LowStockAlertDTO, 0, len(records))
	for _, r := range records {
		// El repositorio filtra en SQL; se vuelve a evaluar con la regla de dominio.
		if !ledger.IsLowStock(r) {
			continue
		}
		alerts = append(alerts, toLowStockAlert(r))
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Shortfall != alerts[j].Shortfall {
			return alerts[i].Shortfall > alerts[j].Shortfall
		}
		return alerts[i].WarehouseID < alerts[j].WarehouseID
	})
	return alerts, nil
}

// PublishLowStock publica stock.low por cada registro tocado que quedó bajo su mínimo.
// tracked indica por bodega si lleva control de stock; las demás no generan alertas.
func PublishLowStock(
	ctx context.Context,
	publisher ports.EventPublisher,
	log zerolog.Logger,
	touched []*entity.StockRecord,
	tracked map[string]bool,
	actorID string,
) {
	if publisher == nil {
		return
	}
	for _, r := range touched {
		if !tracked[r.WarehouseID] || !ledger.IsLowStock(r) {
			continue
		}
		alert := toLowStockAlert(r)
		ev := ports.Event{
			Type:       ports.EventStockLow,
			OccurredAt: r.UpdatedAt,
			ActorID:    actorID,
			SubjectID:  r.ID,
			Data: map[string]any{
				"warehouse_id":        r.WarehouseID,
				"material_type_id":    r.MaterialTypeID,
				"thickness":           r.Thickness,
				"available":           alert.Available,
				"minimum_stock_level": *r.MinimumStockLevel,
				"shortfall":           alert.Shortfall,
			},
		}
		if err := publisher.Publish(ctx, ev); err != nil {
			log.Warn().Err(err).Str("event", ev.Type).Str("stock_record_id", r.ID).Msg("publicar alerta de stock bajo")
		}
	}
}

// ToStockRecordResponse mapea los contadores al DTO.
func ToStockRecordResponse(r *entity.StockRecord) dto.StockRecordResponse {
	return dto.StockRecordResponse{
		WarehouseID:       r.WarehouseID,
		MaterialTypeID:    r.MaterialTypeID,
		Thickness:         r.Thickness,
		NotDried:          r.NotDried,
		UnderDrying:       r.UnderDrying,
		Dried:             r.Dried,
		Damaged:           r.Damaged,
		InTransitOut:      r.InTransitOut,
		InTransitIn:       r.InTransitIn,
		MinimumStockLevel: r.MinimumStockLevel,
		UpdatedAt:         r.UpdatedAt,
	}
}

func toLowStockAlert(r *entity.StockRecord) dto.LowStockAlertDTO {
	available := r.NotDried + r.Dried
	var shortfall int64
	if r.MinimumStockLevel != nil {
		shortfall = *r.MinimumStockLevel - available
	}
	return dto.LowStockAlertDTO{
		StockRecordResponse: ToStockRecordResponse(r),
		Available:           available,
		Shortfall:           shortfall,
	}
}
