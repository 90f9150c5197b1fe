package dto

import "time"

// AdjustStockRequest body para POST /api/stock/adjustments.
type AdjustStockRequest struct {
	WarehouseID    string `json:"warehouse_id" validate:"required"`
	MaterialTypeID string `json:"material_type_id" validate:"required"`
	Thickness      string `json:"thickness" validate:"required,max=32"`
	WoodStatus     string `json:"wood_status" validate:"required,oneof=NOT_DRIED UNDER_DRYING DRIED DAMAGED"`
	QuantityAfter  int64  `json:"quantity_after" validate:"gte=0"`
	Reason         string `json:"reason" validate:"required,oneof=DAMAGED LOST FOUND_EXTRA COUNTING_ERROR OTHER"`
	Notes          string `json:"notes,omitempty" validate:"max=2000"`
}

// StockAdjustmentResponse entrada del diario de ajustes.
type StockAdjustmentResponse struct {
	ID             string    `json:"id"`
	WarehouseID    string    `json:"warehouse_id"`
	MaterialTypeID string    `json:"material_type_id"`
	Thickness      string    `json:"thickness"`
	WoodStatus     string    `json:"wood_status"`
	QuantityBefore int64     `json:"quantity_before"`
	QuantityAfter  int64     `json:"quantity_after"`
	QuantityChange int64     `json:"quantity_change"`
	Reason         string    `json:"reason"`
	Notes          string    `json:"notes,omitempty"`
	AdjustedByID   string    `json:"adjusted_by_id"`
	AdjustedAt     time.Time `json:"adjusted_at"`
}

// StockAdjustmentListResponse lista paginada del diario.
type StockAdjustmentListResponse struct {
	Items []StockAdjustmentResponse `json:"items"`
	Page  PageResponse              `json:"page"`
}

// StockRecordResponse contadores de un registro del libro.
type StockRecordResponse struct {
	WarehouseID       string    `json:"warehouse_id"`
	MaterialTypeID    string    `json:"material_type_id"`
	Thickness         string    `json:"thickness"`
	NotDried          int64     `json:"not_dried"`
	UnderDrying       int64     `json:"under_drying"`
	Dried             int64     `json:"dried"`
	Damaged           int64     `json:"damaged"`
	InTransitOut      int64     `json:"in_transit_out"`
	InTransitIn       int64     `json:"in_transit_in"`
	MinimumStockLevel *int64    `json:"minimum_stock_level,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// LowStockAlertDTO registro por debajo de su mínimo (not_dried + dried < minimum_stock_level).
type LowStockAlertDTO struct {
	StockRecordResponse
	Available int64 `json:"available"` // not_dried + dried
	Shortfall int64 `json:"shortfall"` // minimum_stock_level - available
}
