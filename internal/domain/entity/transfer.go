package entity

import "time"

// TransferStatus es el estado del ciclo de vida de un traslado.
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusApproved  TransferStatus = "APPROVED"
	TransferStatusInTransit TransferStatus = "IN_TRANSIT"
	TransferStatusCompleted TransferStatus = "COMPLETED"
	TransferStatusRejected  TransferStatus = "REJECTED"
	TransferStatusCancelled TransferStatus = "CANCELLED"
)

// Valid indica si el estado es conocido.
func (s TransferStatus) Valid() bool {
	switch s {
	case TransferStatusPending, TransferStatusApproved, TransferStatusInTransit,
		TransferStatusCompleted, TransferStatusRejected, TransferStatusCancelled:
		return true
	}
	return false
}

// IsTerminal indica si el estado ya no admite transiciones.
func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusCompleted || s == TransferStatusRejected || s == TransferStatusCancelled
}

// Transfer es una solicitud de traslado de madera entre dos bodegas.
// Los ítems son inmutables una vez creado.
type Transfer struct {
	ID              string
	TransferNumber  string // TRF-YYYYMMDD-NNNN
	FromWarehouseID string
	ToWarehouseID   string
	TransferDate    time.Time
	Status          TransferStatus
	Notes           string
	Items           []TransferItem
	CreatedByID     string
	ApprovedByID    *string
	ApprovedAt      *time.Time
	CompletedAt     *time.Time
	CancelledByID   *string
	CancelledAt     *time.Time

	// Qué contadores en tránsito se registraron al despachar; complete revierte exactamente eso.
	SourceLedgerBooked      bool
	DestinationLedgerBooked bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TransferItem es una línea del traslado.
type TransferItem struct {
	ID             string
	TransferID     string
	MaterialTypeID string
	Thickness      string
	Quantity       int64
	WoodStatus     WoodStatus
	Remarks        string
}

// SourceKey clave del registro de origen de la línea.
func (i TransferItem) SourceKey(t *Transfer) StockKey {
	return StockKey{WarehouseID: t.FromWarehouseID, MaterialTypeID: i.MaterialTypeID, Thickness: i.Thickness}
}

// DestinationKey clave del registro de destino de la línea.
func (i TransferItem) DestinationKey(t *Transfer) StockKey {
	return StockKey{WarehouseID: t.ToWarehouseID, MaterialTypeID: i.MaterialTypeID, Thickness: i.Thickness}
}

// Clone copia el traslado y sus ítems.
func (t *Transfer) Clone() *Transfer {
	c := *t
	c.Items = append([]TransferItem(nil), t.Items...)
	return &c
}
