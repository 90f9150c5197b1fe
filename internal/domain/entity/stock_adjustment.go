package entity

import "time"

// AdjustmentReason motivo de un ajuste manual del libro.
type AdjustmentReason string

const (
	AdjustmentReasonDamaged       AdjustmentReason = "DAMAGED"
	AdjustmentReasonLost          AdjustmentReason = "LOST"
	AdjustmentReasonFoundExtra    AdjustmentReason = "FOUND_EXTRA"
	AdjustmentReasonCountingError AdjustmentReason = "COUNTING_ERROR"
	AdjustmentReasonOther         AdjustmentReason = "OTHER"
)

// Valid indica si el motivo es uno de los admitidos.
func (r AdjustmentReason) Valid() bool {
	switch r {
	case AdjustmentReasonDamaged, AdjustmentReasonLost, AdjustmentReasonFoundExtra,
		AdjustmentReasonCountingError, AdjustmentReasonOther:
		return true
	}
	return false
}

// StockAdjustment es una entrada inmutable del diario de ajustes: una foto del contador
// antes y después de una corrección por reconteo físico. No es una referencia viva al StockRecord.
type StockAdjustment struct {
	ID             string
	WarehouseID    string
	MaterialTypeID string
	Thickness      string
	WoodStatus     WoodStatus
	QuantityBefore int64
	QuantityAfter  int64
	QuantityChange int64 // QuantityAfter - QuantityBefore
	Reason         AdjustmentReason
	Notes          string
	AdjustedByID   string
	AdjustedAt     time.Time
}
