package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/lumberyard-api/internal/application/ports"
	"github.com/jhoicas/lumberyard-api/internal/domain"
	"github.com/jhoicas/lumberyard-api/internal/domain/repository"
	"github.com/jhoicas/lumberyard-api/pkg/config"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// retryBase primer intervalo de espera entre reintentos; se duplica en cada intento.
const retryBase = 20 * time.Millisecond

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool       *pgxpool.Pool
	txOptions  pgx.TxOptions
	timeout    time.Duration
	maxRetries uint64
	log        zerolog.Logger
}

// NewTxRunner construye el runner con el pool. Por defecto las transacciones son SERIALIZABLE.
func NewTxRunner(pool *pgxpool.Pool, cfg config.DBConfig, log zerolog.Logger) *TxRunner {
	retries := cfg.TxMaxRetries
	if retries < 0 {
		retries = 0
	}
	return &TxRunner{
		pool:       pool,
		txOptions:  pgx.TxOptions{IsoLevel: isoLevel(cfg.Isolation)},
		timeout:    cfg.TxTimeout(),
		maxRetries: uint64(retries),
		log:        log.With().Str("component", "tx_runner").Logger(),
	}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Ante 40001/40P01 repite la transacción completa con espera exponencial.
func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	transferRepo repository.TransferRepository,
	adjustmentRepo repository.StockAdjustmentRepository,
) error) error {
	backoff := retry.WithMaxRetries(r.maxRetries, retry.NewExponential(retryBase))
	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := r.runOnce(ctx, fn)
		if err != nil && isRetryable(err) {
			r.log.Debug().Err(err).Int("attempt", attempt).Msg("transacción en conflicto, reintentando")
			return retry.RetryableError(err)
		}
		return err
	})
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	transferRepo repository.TransferRepository,
	adjustmentRepo repository.StockAdjustmentRepository,
) error) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	tx, err := r.pool.BeginTx(ctx, r.txOptions)
	if err != nil {
		return storageErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if err := fn(NewStockRepository(tx), NewTransferRepository(tx), NewStockAdjustmentRepository(tx)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrPersistence) {
			return fmt.Errorf("%w: tiempo de transacción agotado: %w", domain.ErrPersistence, err)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return storageErr("commit transaction", err)
	}
	return nil
}

func isoLevel(name string) pgx.TxIsoLevel {
	switch name {
	case "read_committed":
		return pgx.ReadCommitted
	case "repeatable_read":
		return pgx.RepeatableRead
	default:
		return pgx.Serializable
	}
}
