package transfer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/lumberyard-api/internal/application/dto"
	"github.com/jhoicas/lumberyard-api/internal/application/inventory"
	"github.com/jhoicas/lumberyard-api/internal/application/ports"
	"github.com/jhoicas/lumberyard-api/internal/domain"
	"github.com/jhoicas/lumberyard-api/internal/domain/approval"
	"github.com/jhoicas/lumberyard-api/internal/domain/entity"
	"github.com/jhoicas/lumberyard-api/internal/domain/ledger"
	"github.com/jhoicas/lumberyard-api/internal/domain/repository"
	"github.com/rs/zerolog"
)

// UseCase es el motor de traslados: aplica la máquina de estados del agregado Transfer y,
// cuando las bodegas llevan control de stock, las mutaciones del libro en la misma transacción.
//
//	PENDING ──approve──▶ IN_TRANSIT ──complete──▶ COMPLETED
//	   │ reject/cancel                    ▲
//	   ▼                                  │
//	REJECTED / CANCELLED      APPROVED ───┘ (auto-aprobado sin control de stock en origen)
type UseCase struct {
	txRunner       ports.TxRunner
	warehouseRepo  repository.WarehouseRepository
	transferRepo   repository.TransferRepository
	assignmentRepo repository.AssignmentRepository
	publisher      ports.EventPublisher
	log            zerolog.Logger
	now            func() time.Time
}

// NewUseCase construye el motor. transferRepo y assignmentRepo se usan para lecturas fuera de tx.
func NewUseCase(
	txRunner ports.TxRunner,
	warehouseRepo repository.WarehouseRepository,
	transferRepo repository.TransferRepository,
	assignmentRepo repository.AssignmentRepository,
	publisher ports.EventPublisher,
	log zerolog.Logger,
) *UseCase {
	return &UseCase{
		txRunner:       txRunner,
		warehouseRepo:  warehouseRepo,
		transferRepo:   transferRepo,
		assignmentRepo: assignmentRepo,
		publisher:      publisher,
		log:            log.With().Str("component", "transfer_engine").Logger(),
		now:            time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Create valida la solicitud, resuelve el estado inicial según la política de la bodega de origen
// y persiste traslado, ítems y efectos en el libro en una única transacción.
func (uc *UseCase) Create(ctx context.Context, actorID string, in dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	if actorID == "" {
		return nil, domain.ErrUnauthorized
	}
	items, err := validateCreate(in)
	if err != nil {
		return nil, err
	}
	from, to, err := uc.loadWarehouses(ctx, in.FromWarehouseID, in.ToWarehouseID)
	if err != nil {
		return nil, err
	}
	if !from.IsActive() {
		return nil, domain.NewValidationError("from_warehouse_id", "la bodega está archivada")
	}
	if !to.IsActive() {
		return nil, domain.NewValidationError("to_warehouse_id", "la bodega está archivada")
	}

	decision := approval.DecideCreate(from, to)
	now := uc.now()
	t := &entity.Transfer{
		ID:              uuid.New().String(),
		FromWarehouseID: from.ID,
		ToWarehouseID:   to.ID,
		TransferDate:    now,
		Status:          decision.Status,
		Notes:           strings.TrimSpace(in.Notes),
		CreatedByID:     actorID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if in.TransferDate != nil {
		t.TransferDate = *in.TransferDate
	}
	for i := range items {
		items[i].ID = uuid.New().String()
		items[i].TransferID = t.ID
	}
	t.Items = items

	var touched []*entity.StockRecord
	err = uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		transferRepo repository.TransferRepository,
		_ repository.StockAdjustmentRepository,
	) error {
		// Reintentos del runner vuelven a ejecutar fn: el estado se reconstruye aquí.
		t.Status = decision.Status
		t.SourceLedgerBooked, t.DestinationLedgerBooked = false, false
		t.ApprovedAt = nil
		led := inventory.NewLedger(stockRepo, uc.now)

		if decision.DispatchNow {
			if err := uc.dispatch(ctx, led, t, decision.Dispatch); err != nil {
				return err
			}
		} else if decision.CheckStock {
			// Solicitud pendiente: verificación sin reservar. approve vuelve a verificar bajo bloqueo.
			if err := checkAvailability(t, func(key entity.StockKey) (*entity.StockRecord, error) {
				return stockRepo.Get(ctx, key)
			}); err != nil {
				return err
			}
		}

		if t.Status != entity.TransferStatusPending {
			// Auto-aprobado: sin aprobador humano.
			t.ApprovedAt = &now
		}

		seq, err := transferRepo.NextSequence(ctx, now)
		if err != nil {
			return err
		}
		t.TransferNumber = FormatNumber(now, seq)
		if err := transferRepo.Create(ctx, t); err != nil {
			return err
		}
		touched = led.Touched()
		return nil
	})
	if err != nil {
		uc.log.Debug().Err(err).Str("from_warehouse_id", from.ID).Str("to_warehouse_id", to.ID).Msg("crear traslado falló")
		return nil, err
	}

	uc.log.Info().
		Str("transfer_id", t.ID).
		Str("transfer_number", t.TransferNumber).
		Str("status", string(t.Status)).
		Str("actor_id", actorID).
		Int("items", len(t.Items)).
		Msg("traslado creado")
	uc.afterCommit(ctx, ports.EventTransferCreated, t, actorID, touched, from, to)
	return ToTransferResponse(t), nil
}

// dispatch pone el traslado en tránsito: en origen bucket -q e in_transit_out +q,
// en destino in_transit_in +q. Bloquea todas las filas en orden antes de mutar y
// re-verifica disponibilidad con las filas ya bloqueadas.
func (uc *UseCase) dispatch(ctx context.Context, led *inventory.Ledger, t *entity.Transfer, d approval.Dispatch) error {
	keys := make([]entity.StockKey, 0, 2*len(t.Items))
	for _, it := range t.Items {
		if d.BookSource {
			keys = append(keys, it.SourceKey(t))
		}
		if d.BookDestination {
			keys = append(keys, it.DestinationKey(t))
		}
	}
	if err := led.Lock(ctx, keys); err != nil {
		return err
	}

	if d.BookSource {
		if err := checkAvailability(t, func(key entity.StockKey) (*entity.StockRecord, error) {
			return led.GetOrCreate(ctx, key)
		}); err != nil {
			return err
		}
	}
	for _, it := range t.Items {
		bucket, _ := it.WoodStatus.Bucket()
		if d.BookSource {
			src, err := led.GetOrCreate(ctx, it.SourceKey(t))
			if err != nil {
				return err
			}
			if _, err := led.AdjustBucket(ctx, src, bucket, -it.Quantity); err != nil {
				return err
			}
			if _, err := led.AdjustBucket(ctx, src, entity.BucketInTransitOut, it.Quantity); err != nil {
				return err
			}
		}
		if d.BookDestination {
			dst, err := led.GetOrCreate(ctx, it.DestinationKey(t))
			if err != nil {
				return err
			}
			if _, err := led.AdjustBucket(ctx, dst, entity.BucketInTransitIn, it.Quantity); err != nil {
				return err
			}
		}
	}
	t.SourceLedgerBooked = d.BookSource
	t.DestinationLedgerBooked = d.BookDestination
	t.Status = entity.TransferStatusInTransit
	return nil
}

// checkAvailability agrega la cantidad pedida por (clave, bucket) y la compara con el libro de origen.
func checkAvailability(t *entity.Transfer, get func(entity.StockKey) (*entity.StockRecord, error)) error {
	type need struct {
		key    entity.StockKey
		bucket entity.Bucket
	}
	requested := make(map[need]int64)
	order := make([]need, 0, len(t.Items))
	for _, it := range t.Items {
		bucket, _ := it.WoodStatus.Bucket()
		n := need{key: it.SourceKey(t), bucket: bucket}
		if _, ok := requested[n]; !ok {
			order = append(order, n)
		}
		requested[n] += it.Quantity
	}
	for _, n := range order {
		rec, err := get(n.key)
		if err != nil {
			return err
		}
		var available int64
		if rec != nil {
			available, err = ledger.Count(rec, n.bucket)
			if err != nil {
				return err
			}
		}
		if available < requested[n] {
			return &domain.InsufficientStockError{
				WarehouseID:    n.key.WarehouseID,
				MaterialTypeID: n.key.MaterialTypeID,
				Thickness:      n.key.Thickness,
				Bucket:         string(n.bucket),
				Available:      available,
				Requested:      requested[n],
			}
		}
	}
	return nil
}

func (uc *UseCase) loadWarehouses(ctx context.Context, fromID, toID string) (*entity.Warehouse, *entity.Warehouse, error) {
	from, err := uc.warehouseRepo.GetByID(ctx, fromID)
	if err != nil {
		return nil, nil, err
	}
	if from == nil {
		return nil, nil, fmt.Errorf("bodega de origen %s: %w", fromID, domain.ErrNotFound)
	}
	to, err := uc.warehouseRepo.GetByID(ctx, toID)
	if err != nil {
		return nil, nil, err
	}
	if to == nil {
		return nil, nil, fmt.Errorf("bodega de destino %s: %w", toID, domain.ErrNotFound)
	}
	return from, to, nil
}

// afterCommit registra y publica los eventos del traslado y las alertas de stock bajo.
func (uc *UseCase) afterCommit(
	ctx context.Context,
	eventType string,
	t *entity.Transfer,
	actorID string,
	touched []*entity.StockRecord,
	from, to *entity.Warehouse,
) {
	if uc.publisher == nil {
		return
	}
	ev := ports.Event{
		Type:       eventType,
		OccurredAt: t.UpdatedAt,
		ActorID:    actorID,
		SubjectID:  t.ID,
		Data: map[string]any{
			"transfer_number":   t.TransferNumber,
			"status":            string(t.Status),
			"from_warehouse_id": t.FromWarehouseID,
			"to_warehouse_id":   t.ToWarehouseID,
			"items":             len(t.Items),
		},
	}
	if err := uc.publisher.Publish(ctx, ev); err != nil {
		uc.log.Warn().Err(err).Str("event", eventType).Str("transfer_id", t.ID).Msg("publicar evento")
	}
	tracked := map[string]bool{}
	if from != nil {
		tracked[from.ID] = approval.TracksStock(from)
	}
	if to != nil {
		tracked[to.ID] = approval.TracksStock(to)
	}
	inventory.PublishLowStock(ctx, uc.publisher, uc.log, touched, tracked, actorID)
}

func validateCreate(in dto.CreateTransferRequest) ([]entity.TransferItem, error) {
	if in.FromWarehouseID == "" {
		return nil, domain.NewValidationError("from_warehouse_id", "es requerido")
	}
	if in.ToWarehouseID == "" {
		return nil, domain.NewValidationError("to_warehouse_id", "es requerido")
	}
	if in.FromWarehouseID == in.ToWarehouseID {
		return nil, domain.NewValidationError("to_warehouse_id", "debe ser distinta de la bodega de origen")
	}
	if len(in.Items) == 0 {
		return nil, domain.NewValidationError("items", "se requiere al menos un ítem")
	}
	items := make([]entity.TransferItem, 0, len(in.Items))
	for i, it := range in.Items {
		field := fmt.Sprintf("items[%d]", i)
		status := entity.WoodStatus(it.WoodStatus)
		switch {
		case strings.TrimSpace(it.MaterialTypeID) == "":
			return nil, domain.NewValidationError(field+".material_type_id", "es requerido")
		case strings.TrimSpace(it.Thickness) == "":
			return nil, domain.NewValidationError(field+".thickness", "es requerido")
		case it.Quantity <= 0:
			return nil, domain.NewValidationError(field+".quantity", "debe ser mayor que cero")
		case !status.Valid():
			return nil, domain.NewValidationError(field+".wood_status", "debe ser NOT_DRIED, UNDER_DRYING, DRIED o DAMAGED")
		}
		items = append(items, entity.TransferItem{
			MaterialTypeID: strings.TrimSpace(it.MaterialTypeID),
			Thickness:      strings.TrimSpace(it.Thickness),
			Quantity:       it.Quantity,
			WoodStatus:     status,
			Remarks:        strings.TrimSpace(it.Remarks),
		})
	}
	return items, nil
}
