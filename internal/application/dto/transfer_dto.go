package dto

import "time"

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	FromWarehouseID string                `json:"from_warehouse_id" validate:"required"`
	ToWarehouseID   string                `json:"to_warehouse_id" validate:"required,nefield=FromWarehouseID"`
	TransferDate    *time.Time            `json:"transfer_date,omitempty"`
	Notes           string                `json:"notes,omitempty" validate:"max=2000"`
	Items           []TransferItemRequest `json:"items" validate:"required,min=1,dive"`
}

// TransferItemRequest una línea del traslado.
type TransferItemRequest struct {
	MaterialTypeID string `json:"material_type_id" validate:"required"`
	Thickness      string `json:"thickness" validate:"required,max=32"`
	Quantity       int64  `json:"quantity" validate:"gt=0"`
	WoodStatus     string `json:"wood_status" validate:"required,oneof=NOT_DRIED UNDER_DRYING DRIED DAMAGED"`
	Remarks        string `json:"remarks,omitempty" validate:"max=500"`
}

// RejectTransferRequest body para POST /api/transfers/:id/reject.
type RejectTransferRequest struct {
	RejectionReason string `json:"rejection_reason,omitempty" validate:"max=1000"`
}

// CancelTransferRequest body para POST /api/transfers/:id/cancel.
type CancelTransferRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=1000"`
}

// TransferListRequest filtros de GET /api/transfers.
type TransferListRequest struct {
	Status      string     `query:"status"`
	WarehouseID string     `query:"warehouse_id"`
	FromDate    *time.Time `query:"-"`
	ToDate      *time.Time `query:"-"`
	PageRequest
}

// TransferItemResponse salida de una línea.
type TransferItemResponse struct {
	ID             string `json:"id"`
	MaterialTypeID string `json:"material_type_id"`
	Thickness      string `json:"thickness"`
	Quantity       int64  `json:"quantity"`
	WoodStatus     string `json:"wood_status"`
	Remarks        string `json:"remarks,omitempty"`
}

// TransferResponse salida de un traslado con sus ítems.
type TransferResponse struct {
	ID              string                 `json:"id"`
	TransferNumber  string                 `json:"transfer_number"`
	FromWarehouseID string                 `json:"from_warehouse_id"`
	ToWarehouseID   string                 `json:"to_warehouse_id"`
	TransferDate    time.Time              `json:"transfer_date"`
	Status          string                 `json:"status"`
	Notes           string                 `json:"notes,omitempty"`
	Items           []TransferItemResponse `json:"items"`
	CreatedByID     string                 `json:"created_by_id"`
	ApprovedByID    *string                `json:"approved_by_id,omitempty"`
	ApprovedAt      *time.Time             `json:"approved_at,omitempty"`
	CompletedAt     *time.Time             `json:"completed_at,omitempty"`
	CancelledByID   *string                `json:"cancelled_by_id,omitempty"`
	CancelledAt     *time.Time             `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// TransferListResponse lista paginada de traslados.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
