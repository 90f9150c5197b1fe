package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/lumberyard-api/internal/domain/entity"
	"github.com/jhoicas/lumberyard-api/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo lectura del directorio de bodegas sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de lectura para bodegas.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

// GetByID obtiene una bodega por ID.
func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	query := `
		SELECT id, code, name, stock_control_enabled, requires_approval, status, created_at, updated_at
		FROM warehouses WHERE id = $1`
	var w entity.Warehouse
	err := r.q.QueryRow(ctx, query, id).Scan(
		&w.ID, &w.Code, &w.Name, &w.StockControlEnabled, &w.RequiresApproval,
		&w.Status, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get warehouse", err)
	}
	return &w, nil
}

var _ repository.AssignmentRepository = (*AssignmentRepo)(nil)

// AssignmentRepo bodegas asignadas a cada usuario (user_warehouse_assignments).
type AssignmentRepo struct {
	q Querier
}

// NewAssignmentRepository construye el adaptador de asignaciones.
func NewAssignmentRepository(q Querier) *AssignmentRepo {
	return &AssignmentRepo{q: q}
}

// WarehouseIDsForUser lista las bodegas asignadas al usuario.
func (r *AssignmentRepo) WarehouseIDsForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.q.Query(ctx,
		`SELECT warehouse_id FROM user_warehouse_assignments WHERE user_id = $1 ORDER BY warehouse_id`, userID)
	if err != nil {
		return nil, storageErr("list assignments", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, storageErr("scan assignments", err)
	}
	return ids, nil
}
