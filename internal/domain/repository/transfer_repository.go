package repository

import (
	"context"
	"time"

	"github.com/jhoicas/lumberyard-api/internal/domain/entity"
)

// TransferFilter filtros del listado de traslados. WarehouseID coincide con origen o destino.
type TransferFilter struct {
	Status      entity.TransferStatus
	WarehouseID string
	FromDate    *time.Time
	ToDate      *time.Time
	Limit       int
	Offset      int
}

// TransferRepository puerto de persistencia del agregado Transfer (cabecera + ítems).
type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.Transfer) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
	// GetForUpdate bloquea la cabecera del traslado hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error)
	// UpdateState persiste estado, actores, marcas de tiempo, notas y banderas de despacho.
	UpdateState(ctx context.Context, transfer *entity.Transfer) error
	List(ctx context.Context, filter TransferFilter) ([]*entity.Transfer, error)
	ListPendingBySource(ctx context.Context, warehouseIDs []string) ([]*entity.Transfer, error)
	// NextSequence incrementa atómicamente el contador del día y devuelve el nuevo valor.
	NextSequence(ctx context.Context, day time.Time) (int, error)
}
