package ports

import (
	"context"

	"github.com/jhoicas/lumberyard-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Todo lo que fn escribe se confirma junto o no se confirma. Un error de fn provoca Rollback.
// Las implementaciones pueden reintentar fn completa ante fallos transitorios de almacenamiento
// (serialización, deadlock): fn no debe tener efectos fuera de los repositorios recibidos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		transferRepo repository.TransferRepository,
		adjustmentRepo repository.StockAdjustmentRepository,
	) error) error
}
