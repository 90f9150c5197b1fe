package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/lumberyard-api/internal/domain"
	"github.com/jhoicas/lumberyard-api/internal/domain/entity"
	"github.com/jhoicas/lumberyard-api/internal/domain/ledger"
	"github.com/jhoicas/lumberyard-api/internal/domain/repository"
)

var (
	_ repository.WarehouseRepository       = (*WarehouseRepo)(nil)
	_ repository.AssignmentRepository      = (*AssignmentRepo)(nil)
	_ repository.StockRepository           = (*StockRepo)(nil)
	_ repository.TransferRepository        = (*TransferRepo)(nil)
	_ repository.StockAdjustmentRepository = (*AdjustmentRepo)(nil)
)

// WarehouseRepo directorio de bodegas en memoria.
type WarehouseRepo struct{ a *access }

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	err := r.a.in(func(st *state) error {
		if w, ok := st.warehouses[id]; ok {
			c := *w
			out = &c
		}
		return nil
	})
	return out, err
}

// AssignmentRepo asignaciones usuario-bodega en memoria.
type AssignmentRepo struct{ a *access }

func (r *AssignmentRepo) WarehouseIDsForUser(_ context.Context, userID string) ([]string, error) {
	var out []string
	err := r.a.in(func(st *state) error {
		out = append([]string(nil), st.assignments[userID]...)
		return nil
	})
	return out, err
}

// StockRepo libro de stock en memoria.
type StockRepo struct{ a *access }

func (r *StockRepo) Get(_ context.Context, key entity.StockKey) (*entity.StockRecord, error) {
	var out *entity.StockRecord
	err := r.a.in(func(st *state) error {
		if rec, ok := st.stock[key]; ok {
			out = rec.Clone()
		}
		return nil
	})
	return out, err
}

// GetOrCreateForUpdate el mutex del almacén ya serializa la transacción; aquí solo se crea la fila.
func (r *StockRepo) GetOrCreateForUpdate(_ context.Context, key entity.StockKey) (*entity.StockRecord, error) {
	var out *entity.StockRecord
	err := r.a.in(func(st *state) error {
		rec, ok := st.stock[key]
		if !ok {
			rec = entity.NewStockRecord(uuid.New().String(), key, time.Now())
			st.stock[key] = rec
		}
		out = rec.Clone()
		return nil
	})
	return out, err
}

func (r *StockRepo) Update(_ context.Context, record *entity.StockRecord) error {
	return r.a.in(func(st *state) error {
		if err := r.a.store.fault("stock.update"); err != nil {
			return err
		}
		if _, ok := st.stock[record.Key()]; !ok {
			return fmt.Errorf("registro de stock %s: %w", record.ID, domain.ErrNotFound)
		}
		// Equivalente a los CHECK (>= 0) de la tabla.
		if err := ledger.CheckNonNegative(record); err != nil {
			return err
		}
		st.stock[record.Key()] = record.Clone()
		return nil
	})
}

func (r *StockRepo) ListLowStock(_ context.Context) ([]*entity.StockRecord, error) {
	var out []*entity.StockRecord
	err := r.a.in(func(st *state) error {
		for _, rec := range st.stock {
			w, ok := st.warehouses[rec.WarehouseID]
			if !ok || !w.StockControlEnabled {
				continue
			}
			if ledger.IsLowStock(rec) {
				out = append(out, rec.Clone())
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Key().Less(out[j].Key()) })
	return out, err
}

// TransferRepo traslados en memoria.
type TransferRepo struct{ a *access }

func (r *TransferRepo) Create(_ context.Context, t *entity.Transfer) error {
	return r.a.in(func(st *state) error {
		if err := r.a.store.fault("transfer.create"); err != nil {
			return err
		}
		if _, ok := st.transfers[t.ID]; ok {
			return fmt.Errorf("traslado %s: %w", t.ID, domain.ErrConflict)
		}
		for _, other := range st.transfers {
			if other.TransferNumber == t.TransferNumber {
				return fmt.Errorf("número %s: %w", t.TransferNumber, domain.ErrConflict)
			}
		}
		st.transfers[t.ID] = t.Clone()
		return nil
	})
}

func (r *TransferRepo) GetByID(_ context.Context, id string) (*entity.Transfer, error) {
	var out *entity.Transfer
	err := r.a.in(func(st *state) error {
		if t, ok := st.transfers[id]; ok {
			out = t.Clone()
		}
		return nil
	})
	return out, err
}

func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.GetByID(ctx, id)
}

func (r *TransferRepo) UpdateState(_ context.Context, t *entity.Transfer) error {
	return r.a.in(func(st *state) error {
		if err := r.a.store.fault("transfer.update_state"); err != nil {
			return err
		}
		cur, ok := st.transfers[t.ID]
		if !ok {
			return fmt.Errorf("traslado %s: %w", t.ID, domain.ErrNotFound)
		}
		// Los ítems son inmutables: se conservan los persistidos.
		next := t.Clone()
		next.Items = cur.Items
		st.transfers[t.ID] = next
		return nil
	})
}

func (r *TransferRepo) List(_ context.Context, f repository.TransferFilter) ([]*entity.Transfer, error) {
	var out []*entity.Transfer
	err := r.a.in(func(st *state) error {
		for _, t := range st.transfers {
			if f.Status != "" && t.Status != f.Status {
				continue
			}
			if f.WarehouseID != "" && t.FromWarehouseID != f.WarehouseID && t.ToWarehouseID != f.WarehouseID {
				continue
			}
			if f.FromDate != nil && t.TransferDate.Before(*f.FromDate) {
				continue
			}
			if f.ToDate != nil && t.TransferDate.After(*f.ToDate) {
				continue
			}
			out = append(out, t.Clone())
		}
		return nil
	})
	sortNewestFirst(out)
	return page(out, f.Limit, f.Offset), err
}

func (r *TransferRepo) ListPendingBySource(_ context.Context, warehouseIDs []string) ([]*entity.Transfer, error) {
	ids := make(map[string]bool, len(warehouseIDs))
	for _, id := range warehouseIDs {
		ids[id] = true
	}
	var out []*entity.Transfer
	err := r.a.in(func(st *state) error {
		for _, t := range st.transfers {
			if t.Status == entity.TransferStatusPending && ids[t.FromWarehouseID] {
				out = append(out, t.Clone())
			}
		}
		return nil
	})
	sortNewestFirst(out)
	return out, err
}

func (r *TransferRepo) NextSequence(_ context.Context, day time.Time) (int, error) {
	var seq int
	err := r.a.in(func(st *state) error {
		if err := r.a.store.fault("transfer.next_sequence"); err != nil {
			return err
		}
		k := day.Format("2006-01-02")
		st.sequences[k]++
		seq = st.sequences[k]
		return nil
	})
	return seq, err
}

// AdjustmentRepo diario de ajustes en memoria.
type AdjustmentRepo struct{ a *access }

func (r *AdjustmentRepo) Create(_ context.Context, adj *entity.StockAdjustment) error {
	return r.a.in(func(st *state) error {
		if err := r.a.store.fault("adjustment.create"); err != nil {
			return err
		}
		c := *adj
		st.adjustments = append(st.adjustments, &c)
		return nil
	})
}

func (r *AdjustmentRepo) ListByWarehouse(_ context.Context, warehouseID string, limit, offset int) ([]*entity.StockAdjustment, error) {
	var out []*entity.StockAdjustment
	err := r.a.in(func(st *state) error {
		for i := len(st.adjustments) - 1; i >= 0; i-- {
			a := st.adjustments[i]
			if warehouseID == "" || a.WarehouseID == warehouseID {
				c := *a
				out = append(out, &c)
			}
		}
		return nil
	})
	return page(out, limit, offset), err
}

func sortNewestFirst(list []*entity.Transfer) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].TransferNumber > list[j].TransferNumber
	})
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
