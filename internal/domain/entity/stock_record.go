package entity

import "time"

// Bucket identifica uno de los seis contadores de un StockRecord.
type Bucket string

// Buckets del libro de stock.
const (
	BucketNotDried     Bucket = "NOT_DRIED"
	BucketUnderDrying  Bucket = "UNDER_DRYING"
	BucketDried        Bucket = "DRIED"
	BucketDamaged      Bucket = "DAMAGED"
	BucketInTransitOut Bucket = "IN_TRANSIT_OUT"
	BucketInTransitIn  Bucket = "IN_TRANSIT_IN"
)

// WoodStatus es el estado físico de la madera que se mueve en un traslado o se ajusta.
// Solo los cuatro estados físicos; los buckets en tránsito no son seleccionables por el cliente.
type WoodStatus string

const (
	WoodStatusNotDried    WoodStatus = "NOT_DRIED"
	WoodStatusUnderDrying WoodStatus = "UNDER_DRYING"
	WoodStatusDried       WoodStatus = "DRIED"
	WoodStatusDamaged     WoodStatus = "DAMAGED"
)

// Valid indica si el estado es uno de los cuatro estados físicos.
func (s WoodStatus) Valid() bool {
	switch s {
	case WoodStatusNotDried, WoodStatusUnderDrying, WoodStatusDried, WoodStatusDamaged:
		return true
	}
	return false
}

// Bucket devuelve el contador que corresponde al estado físico.
func (s WoodStatus) Bucket() (Bucket, bool) {
	switch s {
	case WoodStatusNotDried:
		return BucketNotDried, true
	case WoodStatusUnderDrying:
		return BucketUnderDrying, true
	case WoodStatusDried:
		return BucketDried, true
	case WoodStatusDamaged:
		return BucketDamaged, true
	}
	return "", false
}

// StockKey es la clave única de un StockRecord.
type StockKey struct {
	WarehouseID    string
	MaterialTypeID string
	Thickness      string
}

// Less ordena claves de forma determinista (orden de bloqueo de filas).
func (k StockKey) Less(o StockKey) bool {
	if k.WarehouseID != o.WarehouseID {
		return k.WarehouseID < o.WarehouseID
	}
	if k.MaterialTypeID != o.MaterialTypeID {
		return k.MaterialTypeID < o.MaterialTypeID
	}
	return k.Thickness < o.Thickness
}

// StockRecord son los contadores de material para una (bodega, tipo de madera, espesor).
type StockRecord struct {
	ID                string
	WarehouseID       string
	MaterialTypeID    string
	Thickness         string
	NotDried          int64
	UnderDrying       int64
	Dried             int64
	Damaged           int64
	InTransitOut      int64
	InTransitIn       int64
	MinimumStockLevel *int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Key devuelve la clave única del registro.
func (r *StockRecord) Key() StockKey {
	return StockKey{WarehouseID: r.WarehouseID, MaterialTypeID: r.MaterialTypeID, Thickness: r.Thickness}
}

// Clone devuelve una copia independiente (incluido el mínimo).
func (r *StockRecord) Clone() *StockRecord {
	c := *r
	if r.MinimumStockLevel != nil {
		m := *r.MinimumStockLevel
		c.MinimumStockLevel = &m
	}
	return &c
}

// NewStockRecord crea un registro con todos los contadores en cero.
func NewStockRecord(id string, key StockKey, now time.Time) *StockRecord {
	return &StockRecord{
		ID:             id,
		WarehouseID:    key.WarehouseID,
		MaterialTypeID: key.MaterialTypeID,
		Thickness:      key.Thickness,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
