package postgres

import (
	"context"

	"github.com/jhoicas/lumberyard-api/internal/domain/entity"
	"github.com/jhoicas/lumberyard-api/internal/domain/repository"
)

var _ repository.StockAdjustmentRepository = (*StockAdjustmentRepo)(nil)

// StockAdjustmentRepo diario de ajustes (solo inserción) sobre PostgreSQL.
type StockAdjustmentRepo struct {
	q Querier
}

// NewStockAdjustmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAdjustmentRepository(q Querier) *StockAdjustmentRepo {
	return &StockAdjustmentRepo{q: q}
}

// Create inserta una entrada del diario.
func (r *StockAdjustmentRepo) Create(ctx context.Context, a *entity.StockAdjustment) error {
	query := `
		INSERT INTO stock_adjustments (id, warehouse_id, material_type_id, thickness, wood_status,
			quantity_before, quantity_after, quantity_change, reason, notes, adjusted_by_id, adjusted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.WarehouseID, a.MaterialTypeID, a.Thickness, a.WoodStatus,
		a.QuantityBefore, a.QuantityAfter, a.QuantityChange, a.Reason, nullIfEmpty(a.Notes),
		a.AdjustedByID, a.AdjustedAt,
	)
	if err != nil {
		return storageErr("insert stock adjustment", err)
	}
	return nil
}

// ListByWarehouse lista el diario de una bodega, más recientes primero.
func (r *StockAdjustmentRepo) ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.StockAdjustment, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, warehouse_id, material_type_id, thickness, wood_status,
			quantity_before, quantity_after, quantity_change, reason, notes, adjusted_by_id, adjusted_at
		FROM stock_adjustments WHERE warehouse_id = $1
		ORDER BY adjusted_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, warehouseID, limit, offset)
	if err != nil {
		return nil, storageErr("list stock adjustments", err)
	}
	defer rows.Close()
	list := make([]*entity.StockAdjustment, 0)
	for rows.Next() {
		var (
			a     entity.StockAdjustment
			notes *string
		)
		if err := rows.Scan(&a.ID, &a.WarehouseID, &a.MaterialTypeID, &a.Thickness, &a.WoodStatus,
			&a.QuantityBefore, &a.QuantityAfter, &a.QuantityChange, &a.Reason, &notes, &a.AdjustedByID, &a.AdjustedAt,
		); err != nil {
			return nil, storageErr("scan stock adjustment", err)
		}
		if notes != nil {
			a.Notes = *notes
		}
		list = append(list, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list stock adjustments", err)
	}
	return list, nil
}
