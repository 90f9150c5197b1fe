package entity

import "time"

// Estados de una bodega.
const (
	WarehouseStatusActive   = "ACTIVE"
	WarehouseStatusArchived = "ARCHIVED"
)

// Warehouse representa un patio o bodega de madera. El núcleo solo la lee: su alta y edición
// pertenecen al módulo de administración de bodegas.
type Warehouse struct {
	ID                  string
	Code                string
	Name                string
	StockControlEnabled bool // si false la bodega no lleva contadores (paso sin registro)
	RequiresApproval    bool // si true los traslados salientes esperan aprobación manual
	Status              string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsActive indica si la bodega puede participar en traslados.
func (w *Warehouse) IsActive() bool {
	return w != nil && w.Status != WarehouseStatusArchived
}
