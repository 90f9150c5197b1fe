package transfer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/lumberyard-api/internal/application/dto"
	"github.com/jhoicas/lumberyard-api/internal/application/inventory"
	"github.com/jhoicas/lumberyard-api/internal/application/ports"
	"github.com/jhoicas/lumberyard-api/internal/domain"
	"github.com/jhoicas/lumberyard-api/internal/domain/approval"
	"github.com/jhoicas/lumberyard-api/internal/domain/entity"
	"github.com/jhoicas/lumberyard-api/internal/domain/repository"
)

// Nombres de operación usados en InvalidStateTransitionError.
const (
	opApprove  = "approve"
	opReject   = "reject"
	opComplete = "complete"
	opCancel   = "cancel"
)

// transitionFn aplica una transición sobre el traslado ya bloqueado dentro de la transacción.
type transitionFn func(ctx context.Context, led *inventory.Ledger, t *entity.Transfer, p parties, now time.Time) error

// parties bodegas de origen y destino, leídas antes de abrir la transacción.
type parties struct {
	from *entity.Warehouse
	to   *entity.Warehouse
}

// Approve despacha un traslado PENDING: re-verifica disponibilidad con las filas bloqueadas,
// aplica los mismos deltas que la auto-aprobación y lo deja IN_TRANSIT.
func (uc *UseCase) Approve(ctx context.Context, actorID, transferID string) (*dto.TransferResponse, error) {
	return uc.transition(ctx, opApprove, ports.EventTransferApproved, actorID, transferID,
		func(ctx context.Context, led *inventory.Ledger, t *entity.Transfer, p parties, now time.Time) error {
			if t.Status != entity.TransferStatusPending {
				return &domain.InvalidStateTransitionError{Operation: opApprove, From: string(t.Status)}
			}
			if err := uc.dispatch(ctx, led, t, approval.DecideDispatch(p.from, p.to)); err != nil {
				return err
			}
			t.ApprovedByID = &actorID
			t.ApprovedAt = &now
			return nil
		})
}

// Reject cierra un traslado PENDING sin tocar el libro. El motivo se agrega a las notas y
// approvedBy/approvedAt registran a quien rechazó.
func (uc *UseCase) Reject(ctx context.Context, actorID, transferID, reason string) (*dto.TransferResponse, error) {
	return uc.transition(ctx, opReject, ports.EventTransferRejected, actorID, transferID,
		func(_ context.Context, _ *inventory.Ledger, t *entity.Transfer, _ parties, now time.Time) error {
			if t.Status != entity.TransferStatusPending {
				return &domain.InvalidStateTransitionError{Operation: opReject, From: string(t.Status)}
			}
			t.Status = entity.TransferStatusRejected
			t.Notes = appendNote(t.Notes, "Motivo de rechazo", reason)
			t.ApprovedByID = &actorID
			t.ApprovedAt = &now
			return nil
		})
}

// Complete recibe el traslado en destino. Revierte los contadores en tránsito que se
// registraron al despachar y acredita el bucket real del destino si éste lleva stock.
func (uc *UseCase) Complete(ctx context.Context, actorID, transferID string) (*dto.TransferResponse, error) {
	return uc.transition(ctx, opComplete, ports.EventTransferCompleted, actorID, transferID,
		func(ctx context.Context, led *inventory.Ledger, t *entity.Transfer, p parties, now time.Time) error {
			if t.Status != entity.TransferStatusInTransit && t.Status != entity.TransferStatusApproved {
				return &domain.InvalidStateTransitionError{Operation: opComplete, From: string(t.Status)}
			}
			creditDestination := approval.TracksStock(p.to)

			keys := make([]entity.StockKey, 0, 2*len(t.Items))
			for _, it := range t.Items {
				if t.SourceLedgerBooked {
					keys = append(keys, it.SourceKey(t))
				}
				if t.DestinationLedgerBooked || creditDestination {
					keys = append(keys, it.DestinationKey(t))
				}
			}
			if err := led.Lock(ctx, keys); err != nil {
				return err
			}

			for _, it := range t.Items {
				if t.SourceLedgerBooked {
					src, err := led.GetOrCreate(ctx, it.SourceKey(t))
					if err != nil {
						return err
					}
					if _, err := led.AdjustBucket(ctx, src, entity.BucketInTransitOut, -it.Quantity); err != nil {
						return err
					}
				}
				if !t.DestinationLedgerBooked && !creditDestination {
					continue
				}
				dst, err := led.GetOrCreate(ctx, it.DestinationKey(t))
				if err != nil {
					return err
				}
				if t.DestinationLedgerBooked {
					if _, err := led.AdjustBucket(ctx, dst, entity.BucketInTransitIn, -it.Quantity); err != nil {
						return err
					}
				}
				if creditDestination {
					bucket, _ := it.WoodStatus.Bucket()
					if _, err := led.AdjustBucket(ctx, dst, bucket, it.Quantity); err != nil {
						return err
					}
				}
			}
			t.Status = entity.TransferStatusCompleted
			t.CompletedAt = &now
			return nil
		})
}

// Cancel retira un traslado PENDING por decisión de quien lo creó o de un aprobador.
// Una vez despachado no se cancela: la madera ya salió del origen.
func (uc *UseCase) Cancel(ctx context.Context, actorID, transferID, reason string) (*dto.TransferResponse, error) {
	return uc.transition(ctx, opCancel, ports.EventTransferCancelled, actorID, transferID,
		func(_ context.Context, _ *inventory.Ledger, t *entity.Transfer, _ parties, now time.Time) error {
			if t.Status != entity.TransferStatusPending {
				return &domain.InvalidStateTransitionError{Operation: opCancel, From: string(t.Status)}
			}
			t.Status = entity.TransferStatusCancelled
			t.Notes = appendNote(t.Notes, "Motivo de cancelación", reason)
			t.CancelledByID = &actorID
			t.CancelledAt = &now
			return nil
		})
}

// transition bloquea el traslado, aplica fn y persiste su estado en una sola transacción.
// Las bodegas de un traslado no cambian, así que se leen antes de la transacción.
// Los eventos se publican solo después del commit.
func (uc *UseCase) transition(
	ctx context.Context,
	op, eventType, actorID, transferID string,
	fn transitionFn,
) (*dto.TransferResponse, error) {
	if actorID == "" {
		return nil, domain.ErrUnauthorized
	}
	if strings.TrimSpace(transferID) == "" {
		return nil, domain.NewValidationError("id", "es requerido")
	}

	current, err := uc.transferRepo.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("traslado %s: %w", transferID, domain.ErrNotFound)
	}
	from, to, err := uc.loadWarehouses(ctx, current.FromWarehouseID, current.ToWarehouseID)
	if err != nil {
		return nil, err
	}

	var (
		result  *entity.Transfer
		touched []*entity.StockRecord
	)
	err = uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		transferRepo repository.TransferRepository,
		_ repository.StockAdjustmentRepository,
	) error {
		t, err := transferRepo.GetForUpdate(ctx, transferID)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("traslado %s: %w", transferID, domain.ErrNotFound)
		}
		now := uc.now()
		led := inventory.NewLedger(stockRepo, uc.now)
		if err := fn(ctx, led, t, parties{from: from, to: to}, now); err != nil {
			return err
		}
		t.UpdatedAt = now
		if err := transferRepo.UpdateState(ctx, t); err != nil {
			return err
		}
		result = t
		touched = led.Touched()
		return nil
	})
	if err != nil {
		uc.log.Debug().Err(err).Str("op", op).Str("transfer_id", transferID).Str("actor_id", actorID).Msg("transición rechazada")
		return nil, err
	}

	uc.log.Info().
		Str("op", op).
		Str("transfer_id", result.ID).
		Str("transfer_number", result.TransferNumber).
		Str("status", string(result.Status)).
		Str("actor_id", actorID).
		Msg("traslado actualizado")

	uc.afterCommit(ctx, eventType, result, actorID, touched, from, to)
	return ToTransferResponse(result), nil
}

func appendNote(notes, label, reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return notes
	}
	line := label + ": " + reason
	if strings.TrimSpace(notes) == "" {
		return line
	}
	return notes + "\n" + line
}
