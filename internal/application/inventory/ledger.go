package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/lumberyard-api/internal/domain/entity"
	"github.com/jhoicas/lumberyard-api/internal/domain/ledger"
	"github.com/jhoicas/lumberyard-api/internal/domain/repository"
)

// Ledger opera el libro de stock dentro de una transacción. Cada clave se bloquea una sola vez
// por transacción; las llamadas repetidas devuelven el mismo registro para que los deltas se acumulen.
type Ledger struct {
	repo    repository.StockRepository
	now     func() time.Time
	records map[entity.StockKey]*entity.StockRecord
	touched map[entity.StockKey]bool
}

// NewLedger construye el libro atado al StockRepository de la transacción.
func NewLedger(repo repository.StockRepository, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{
		repo:    repo,
		now:     now,
		records: make(map[entity.StockKey]*entity.StockRecord),
		touched: make(map[entity.StockKey]bool),
	}
}

// GetOrCreate devuelve el registro de la clave (bloqueado), creándolo en cero si no existe.
func (l *Ledger) GetOrCreate(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error) {
	if rec, ok := l.records[key]; ok {
		return rec, nil
	}
	rec, err := l.repo.GetOrCreateForUpdate(ctx, key)
	if err != nil {
		return nil, err
	}
	l.records[key] = rec
	return rec, nil
}

// Lock bloquea las claves en orden determinista para que dos transacciones que tocan
// las mismas filas no se esperen mutuamente en orden inverso.
func (l *Ledger) Lock(ctx context.Context, keys []entity.StockKey) error {
	uniq := make([]entity.StockKey, 0, len(keys))
	seen := make(map[entity.StockKey]bool, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			uniq = append(uniq, k)
		}
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i].Less(uniq[j]) })
	for _, k := range uniq {
		if _, err := l.GetOrCreate(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

// AdjustBucket aplica counter[bucket] += delta y persiste el registro.
// Devuelve *domain.NegativeStockError sin escribir si el resultado fuese negativo.
func (l *Ledger) AdjustBucket(ctx context.Context, rec *entity.StockRecord, bucket entity.Bucket, delta int64) (*entity.StockRecord, error) {
	if err := ledger.Apply(rec, bucket, delta); err != nil {
		return nil, err
	}
	return rec, l.save(ctx, rec)
}

// SetBucket fija counter[bucket] = value y persiste el registro.
func (l *Ledger) SetBucket(ctx context.Context, rec *entity.StockRecord, bucket entity.Bucket, value int64) (*entity.StockRecord, error) {
	if err := ledger.Set(rec, bucket, value); err != nil {
		return nil, err
	}
	return rec, l.save(ctx, rec)
}

func (l *Ledger) save(ctx context.Context, rec *entity.StockRecord) error {
	rec.UpdatedAt = l.now()
	if err := l.repo.Update(ctx, rec); err != nil {
		return err
	}
	l.records[rec.Key()] = rec
	l.touched[rec.Key()] = true
	return nil
}

// Touched copias de los registros modificados en la transacción (para eventos post-commit).
func (l *Ledger) Touched() []*entity.StockRecord {
	out := make([]*entity.StockRecord, 0, len(l.touched))
	for k := range l.touched {
		out = append(out, l.records[k].Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key().Less(out[j].Key()) })
	return out
}

// newID genera identificadores para filas nuevas.
func newID() string { return uuid.New().String() }
