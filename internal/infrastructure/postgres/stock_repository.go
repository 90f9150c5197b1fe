package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/lumberyard-api/internal/domain"
	"github.com/jhoicas/lumberyard-api/internal/domain/entity"
	"github.com/jhoicas/lumberyard-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

const stockColumns = `id, warehouse_id, material_type_id, thickness,
	not_dried, under_drying, dried, damaged, in_transit_out, in_transit_in,
	minimum_stock_level, created_at, updated_at`

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el registro de una clave sin bloquearlo.
func (r *StockRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error) {
	query := `SELECT ` + stockColumns + `
		FROM stock_records WHERE warehouse_id = $1 AND material_type_id = $2 AND thickness = $3`
	rec, err := scanStock(r.q.QueryRow(ctx, query, key.WarehouseID, key.MaterialTypeID, key.Thickness))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get stock", err)
	}
	return rec, nil
}

// GetOrCreateForUpdate inserta la fila en cero si falta y la bloquea (SELECT FOR UPDATE).
// ON CONFLICT DO NOTHING evita la carrera entre dos transacciones que crean la misma clave.
func (r *StockRepo) GetOrCreateForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error) {
	insert := `
		INSERT INTO stock_records (id, warehouse_id, material_type_id, thickness, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		ON CONFLICT (warehouse_id, material_type_id, thickness) DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, uuid.New().String(), key.WarehouseID, key.MaterialTypeID, key.Thickness); err != nil {
		return nil, storageErr("create stock record", err)
	}
	query := `SELECT ` + stockColumns + `
		FROM stock_records WHERE warehouse_id = $1 AND material_type_id = $2 AND thickness = $3
		FOR UPDATE`
	rec, err := scanStock(r.q.QueryRow(ctx, query, key.WarehouseID, key.MaterialTypeID, key.Thickness))
	if err != nil {
		return nil, storageErr("get stock for update", err)
	}
	return rec, nil
}

// Update persiste los seis contadores. Los CHECK (>= 0) de la tabla son la última barrera.
func (r *StockRepo) Update(ctx context.Context, rec *entity.StockRecord) error {
	query := `
		UPDATE stock_records SET
			not_dried = $2, under_drying = $3, dried = $4, damaged = $5,
			in_transit_out = $6, in_transit_in = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		rec.ID, rec.NotDried, rec.UnderDrying, rec.Dried, rec.Damaged,
		rec.InTransitOut, rec.InTransitIn, rec.UpdatedAt,
	)
	if err != nil {
		return storageErr("update stock", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListLowStock registros con not_dried + dried bajo su mínimo en bodegas con control de stock.
func (r *StockRepo) ListLowStock(ctx context.Context) ([]*entity.StockRecord, error) {
	query := `
		SELECT s.id, s.warehouse_id, s.material_type_id, s.thickness,
			s.not_dried, s.under_drying, s.dried, s.damaged, s.in_transit_out, s.in_transit_in,
			s.minimum_stock_level, s.created_at, s.updated_at
		FROM stock_records s
		JOIN warehouses w ON w.id = s.warehouse_id
		WHERE w.stock_control_enabled
			AND s.minimum_stock_level IS NOT NULL
			AND s.not_dried + s.dried < s.minimum_stock_level
		ORDER BY s.warehouse_id, s.material_type_id, s.thickness`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, storageErr("list low stock", err)
	}
	defer rows.Close()
	var list []*entity.StockRecord
	for rows.Next() {
		rec, err := scanStock(rows)
		if err != nil {
			return nil, storageErr("scan stock", err)
		}
		list = append(list, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list low stock", err)
	}
	return list, nil
}

func scanStock(row pgx.Row) (*entity.StockRecord, error) {
	var s entity.StockRecord
	err := row.Scan(
		&s.ID, &s.WarehouseID, &s.MaterialTypeID, &s.Thickness,
		&s.NotDried, &s.UnderDrying, &s.Dried, &s.Damaged, &s.InTransitOut, &s.InTransitIn,
		&s.MinimumStockLevel, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
