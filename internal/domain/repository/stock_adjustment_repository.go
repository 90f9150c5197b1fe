package repository

import (
	"context"

	"github.com/jhoicas/lumberyard-api/internal/domain/entity"
)

// StockAdjustmentRepository diario de ajustes (solo inserción y lectura).
type StockAdjustmentRepository interface {
	Create(ctx context.Context, adjustment *entity.StockAdjustment) error
	ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.StockAdjustment, error)
}
