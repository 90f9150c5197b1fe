package repository

import (
	"context"

	"github.com/jhoicas/lumberyard-api/internal/domain/entity"
)

// StockRepository define el puerto del libro de stock por (bodega, tipo de madera, espesor).
// Las mutaciones se hacen siempre dentro de la transacción del TxRunner.
type StockRepository interface {
	// Get devuelve el registro sin bloquearlo, o nil si no existe.
	Get(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error)
	// GetOrCreateForUpdate crea la fila en cero si no existe y la bloquea (SELECT FOR UPDATE).
	GetOrCreateForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error)
	// Update persiste los seis contadores del registro.
	Update(ctx context.Context, record *entity.StockRecord) error
	// ListLowStock registros bajo su mínimo en bodegas con control de stock.
	ListLowStock(ctx context.Context) ([]*entity.StockRecord, error)
}
