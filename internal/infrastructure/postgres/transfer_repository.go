package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/lumberyard-api/internal/domain"
	"github.com/jhoicas/lumberyard-api/internal/domain/entity"
	"github.com/jhoicas/lumberyard-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

const transferColumns = `id, transfer_number, from_warehouse_id, to_warehouse_id, transfer_date, status,
	notes, created_by_id, approved_by_id, approved_at, completed_at, cancelled_by_id, cancelled_at,
	source_ledger_booked, destination_ledger_booked, created_at, updated_at`

// TransferRepo implementación de TransferRepository (usable con pool o tx).
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

// Create persiste la cabecera y los ítems del traslado.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	query := `
		INSERT INTO transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.TransferNumber, t.FromWarehouseID, t.ToWarehouseID, t.TransferDate, t.Status,
		nullIfEmpty(t.Notes), t.CreatedByID, t.ApprovedByID, t.ApprovedAt, t.CompletedAt,
		t.CancelledByID, t.CancelledAt, t.SourceLedgerBooked, t.DestinationLedgerBooked,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("transfer number %s: %w: %w", t.TransferNumber, domain.ErrConflict, err)
		}
		return storageErr("insert transfer", err)
	}

	itemQuery := `
		INSERT INTO transfer_items (id, transfer_id, position, material_type_id, thickness, quantity, wood_status, remarks)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for i, it := range t.Items {
		if _, err := r.q.Exec(ctx, itemQuery,
			it.ID, t.ID, i, it.MaterialTypeID, it.Thickness, it.Quantity, it.WoodStatus, nullIfEmpty(it.Remarks),
		); err != nil {
			return storageErr("insert transfer item", err)
		}
	}
	return nil
}

// GetByID obtiene un traslado con sus ítems.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.get(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id)
}

// GetForUpdate obtiene el traslado y bloquea su cabecera (SELECT FOR UPDATE).
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.get(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1 FOR UPDATE`, id)
}

func (r *TransferRepo) get(ctx context.Context, query, id string) (*entity.Transfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get transfer", err)
	}
	if err := r.loadItems(ctx, []*entity.Transfer{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateState persiste estado, actores, marcas de tiempo, notas y banderas de despacho.
// Los ítems no se tocan.
func (r *TransferRepo) UpdateState(ctx context.Context, t *entity.Transfer) error {
	query := `
		UPDATE transfers SET
			status = $2, notes = $3, approved_by_id = $4, approved_at = $5, completed_at = $6,
			cancelled_by_id = $7, cancelled_at = $8, source_ledger_booked = $9,
			destination_ledger_booked = $10, updated_at = $11
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		t.ID, t.Status, nullIfEmpty(t.Notes), t.ApprovedByID, t.ApprovedAt, t.CompletedAt,
		t.CancelledByID, t.CancelledAt, t.SourceLedgerBooked, t.DestinationLedgerBooked, t.UpdatedAt,
	)
	if err != nil {
		return storageErr("update transfer", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("traslado %s: %w", t.ID, domain.ErrNotFound)
	}
	return nil
}

// List lista traslados con filtros opcionales, más recientes primero.
func (r *TransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*entity.Transfer, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.WarehouseID != "" {
		args = append(args, f.WarehouseID)
		where = append(where, fmt.Sprintf("(from_warehouse_id = $%d OR to_warehouse_id = $%d)", len(args), len(args)))
	}
	if f.FromDate != nil {
		add("transfer_date >= $%d", *f.FromDate)
	}
	if f.ToDate != nil {
		add("transfer_date <= $%d", *f.ToDate)
	}

	query := `SELECT ` + transferColumns + ` FROM transfers`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, f.Offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC, transfer_number DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	return r.list(ctx, query, args...)
}

// ListPendingBySource traslados PENDING cuyo origen está entre las bodegas dadas.
func (r *TransferRepo) ListPendingBySource(ctx context.Context, warehouseIDs []string) ([]*entity.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers
		WHERE status = $1 AND from_warehouse_id = ANY($2)
		ORDER BY created_at DESC, transfer_number DESC`
	return r.list(ctx, query, entity.TransferStatusPending, warehouseIDs)
}

// NextSequence incrementa atómicamente el contador del día (upsert) y devuelve el nuevo valor.
// Dentro de la transacción del traslado, la fila del día queda bloqueada hasta el commit.
func (r *TransferRepo) NextSequence(ctx context.Context, day time.Time) (int, error) {
	query := `
		INSERT INTO transfer_sequences (day, last_value) VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET last_value = transfer_sequences.last_value + 1
		RETURNING last_value`
	var seq int
	date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	if err := r.q.QueryRow(ctx, query, date).Scan(&seq); err != nil {
		return 0, storageErr("next transfer sequence", err)
	}
	return seq, nil
}

func (r *TransferRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Transfer, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list transfers", err)
	}
	defer rows.Close()
	list := make([]*entity.Transfer, 0)
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, storageErr("scan transfer", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list transfers", err)
	}
	rows.Close()
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// loadItems carga los ítems de varios traslados en una sola consulta.
func (r *TransferRepo) loadItems(ctx context.Context, list []*entity.Transfer) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Transfer, len(list))
	ids := make([]string, 0, len(list))
	for _, t := range list {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, transfer_id, material_type_id, thickness, quantity, wood_status, remarks
		FROM transfer_items WHERE transfer_id = ANY($1)
		ORDER BY transfer_id, position`, ids)
	if err != nil {
		return storageErr("list transfer items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			it      entity.TransferItem
			remarks *string
		)
		if err := rows.Scan(&it.ID, &it.TransferID, &it.MaterialTypeID, &it.Thickness, &it.Quantity, &it.WoodStatus, &remarks); err != nil {
			return storageErr("scan transfer item", err)
		}
		if remarks != nil {
			it.Remarks = *remarks
		}
		if t, ok := byID[it.TransferID]; ok {
			t.Items = append(t.Items, it)
		}
	}
	if err := rows.Err(); err != nil {
		return storageErr("list transfer items", err)
	}
	return nil
}

func scanTransfer(row pgx.Row) (*entity.Transfer, error) {
	var (
		t     entity.Transfer
		notes *string
	)
	err := row.Scan(
		&t.ID, &t.TransferNumber, &t.FromWarehouseID, &t.ToWarehouseID, &t.TransferDate, &t.Status,
		&notes, &t.CreatedByID, &t.ApprovedByID, &t.ApprovedAt, &t.CompletedAt, &t.CancelledByID, &t.CancelledAt,
		&t.SourceLedgerBooked, &t.DestinationLedgerBooked, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if notes != nil {
		t.Notes = *notes
	}
	return &t, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
