package transfer_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lumberyard-api/internal/application/dto"
	"github.com/jhoicas/lumberyard-api/internal/application/ports"
	"github.com/jhoicas/lumberyard-api/internal/domain"
	"github.com/jhoicas/lumberyard-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Approve
// ──────────────────────────────────────────────────────────────────────────────

func TestApprove_DespachaPendiente(t *testing.T) {
	f := newFixture(t)
	f.seed(whPatio, entity.StockRecord{UnderDrying: 40})
	pending := f.create(t, whPatio, whDeposito, item(entity.WoodStatusUnderDrying, 30))

	out, err := f.uc.Approve(context.Background(), actorAna, pending.ID)
	require.NoError(t, err)

	assert.Equal(t, string(entity.TransferStatusInTransit), out.Status)
	require.NotNil(t, out.ApprovedByID)
	assert.Equal(t, actorAna, *out.ApprovedByID)
	assert.NotNil(t, out.ApprovedAt)

	src := f.stock(t, whPatio, matPino)
	assert.Equal(t, int64(10), src.UnderDrying)
	assert.Equal(t, int64(30), src.InTransitOut)
	assert.Equal(t, int64(30), f.stock(t, whDeposito, matPino).InTransitIn)
	assert.Equal(t, []string{ports.EventTransferCreated, ports.EventTransferApproved}, f.pub.types())
}

// El stock pudo cambiar entre la solicitud y la aprobación.
func TestApprove_ReverificaStock(t *testing.T) {
	f := newFixture(t)
	f.seed(whPatio, entity.StockRecord{Dried: 10})
	pending := f.create(t, whPatio, whDeposito, item(entity.WoodStatusDried, 10))
	f.seed(whPatio, entity.StockRecord{Dried: 4})
	before := f.snapshot()

	_, err := f.uc.Approve(context.Background(), actorAna, pending.ID)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	got, err := f.uc.GetByID(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.TransferStatusPending), got.Status)
	assert.Nil(t, got.ApprovedByID)
	assert.Equal(t, before, f.snapshot())
}

// Origen sin control con aprobación: approve solo registra el tránsito entrante.
func TestApprove_OrigenSinControl_SoloDestino(t *testing.T) {
	f := newFixture(t)
	pending := f.create(t, whCliente, whDeposito, item(entity.WoodStatusDried, 12))
	require.Equal(t, string(entity.TransferStatusPending), pending.Status)

	out, err := f.uc.Approve(context.Background(), actorAna, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.TransferStatusInTransit), out.Status)
	assert.False(t, f.exists(t, whCliente, matPino))
	assert.Equal(t, int64(12), f.stock(t, whDeposito, matPino).InTransitIn)

	_, err = f.uc.Complete(context.Background(), actorJuan, pending.ID)
	require.NoError(t, err)
	dst := f.stock(t, whDeposito, matPino)
	assert.Zero(t, dst.InTransitIn)
	assert.Equal(t, int64(12), dst.Dried)
}

func TestApprove_NoEncontrado(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Approve(context.Background(), actorAna, "no-existe")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestApprove_SinActor(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Approve(context.Background(), "", "cualquiera")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

// Un fallo al guardar el estado revierte también los deltas del despacho.
func TestApprove_FalloAlPersistir_Revierte(t *testing.T) {
	f := newFixture(t)
	f.seed(whPatio, entity.StockRecord{Dried: 10})
	pending := f.create(t, whPatio, whDeposito, item(entity.WoodStatusDried, 10))
	before := f.snapshot()
	f.store.InjectFault("transfer.update_state", errBoom)

	_, err := f.uc.Approve(context.Background(), actorAna, pending.ID)
	assert.True(t, errors.Is(err, domain.ErrPersistence))
	assert.Equal(t, before, f.snapshot())

	got, err := f.uc.GetByID(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.TransferStatusPending), got.Status)
	assert.NotContains(t, f.pub.types(), ports.EventTransferApproved)
}

func TestApprove_FalloEnElLibro_Revierte(t *testing.T) {
	f := newFixture(t)
	f.seed(whPatio, entity.StockRecord{Dried: 10})
	pending := f.create(t, whPatio, whDeposito, item(entity.WoodStatusDried, 10))
	before := f.snapshot()
	f.store.InjectFault("stock.update", errBoom)

	_, err := f.uc.Approve(context.Background(), actorAna, pending.ID)
	assert.True(t, errors.Is(err, domain.ErrPersistence))
	assert.Equal(t, before, f.snapshot())
}

// ──────────────────────────────────────────────────────────────────────────────
// Aprobaciones concurrentes
// ──────────────────────────────────────────────────────────────────────────────

// Dos solicitudes que caben por separado pero no juntas: solo una se despacha.
func TestApprove_Concurrente_SoloUnaCabe(t *testing.T) {
	f := newFixture(t)
	f.seed(whPatio, entity.StockRecord{Dried: 10})
	a := f.create(t, whPatio, whDeposito, item(entity.WoodStatusDried, 10))
	b := f.create(t, whPatio, whDeposito, item(entity.WoodStatusDried, 10))

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, id := range []string{a.ID, b.ID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = f.uc.Approve(context.Background(), actorAna, id)
		}(i, id)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)

	src := f.stock(t, whPatio, matPino)
	assert.Zero(t, src.Dried)
	assert.Equal(t, int64(10), src.InTransitOut)
	for _, r := range f.store.Snapshot() {
		assert.GreaterOrEqual(t, r.Dried, int64(0))
		assert.GreaterOrEqual(t, r.InTransitOut, int64(0))
	}
}

// El mismo traslado aprobado dos veces a la vez: la segunda ve IN_TRANSIT.
func TestApprove_Concurrente_MismoTraslado(t *testing.T) {
	f := newFixture(t)
	f.seed(whPatio, entity.StockRecord{Dried: 100})
	pending := f.create(t, whPatio, whDeposito, item(entity.WoodStatusDried, 10))

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.Approve(context.Background(), actorAna, pending.ID)
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, errors.Is(err, domain.ErrInvalidStateTransition), "got %v", err)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, int64(90), f.stock(t, whPatio, matPino).Dried, "se despacha una sola vez")
}

// ──────────────────────────────────────────────────────────────────────────────
// Complete
// ──────────────────────────────────────────────────────────────────────────────

func TestComplete_AcreditaDestinoYLiberaTransito(t *testing.T) {
	f := newFixture(t)
	f.seed(whAserradero, entity.StockRecord{Dried: 25})
	f.seed(whDeposito, entity.StockRecord{Dried: 3})
	created := f.create(t, whAserradero, whDeposito, item(entity.WoodStatusDried, 10))

	out, err := f.uc.Complete(context.Background(), actorJuan, created.ID)
	require.NoError(t, err)

	assert.Equal(t, string(entity.TransferStatusCompleted), out.Status)
	assert.NotNil(t, out.CompletedAt)

	src := f.stock(t, whAserradero, matPino)
	assert.Equal(t, int64(15), src.Dried)
	assert.Zero(t, src.InTransitOut)

	dst := f.stock(t, whDeposito, matPino)
	assert.Equal(t, int64(13), dst.Dried)
	assert.Zero(t, dst.InTransitIn)
}

// Entre bodegas con control la cantidad física total no cambia.
func TestComplete_ConservaCantidadFisica(t *testing.T) {
	f := newFixture(t)
	f.seed(whAserradero, entity.StockRecord{Dried: 25, NotDried: 8, Damaged: 2})
	f.seed(whDeposito, entity.StockRecord{UnderDrying: 6})
	total := f.physical(matPino)

	created := f.create(t, whAserradero, whDeposito,
		item(entity.WoodStatusDried, 10),
		item(entity.WoodStatusNotDried, 8),
		item(entity.WoodStatusDamaged, 1),
	)
	inTransit := f.stock(t, whAserradero, matPino).InTransitOut
	assert.Equal(t, total, f.physical(matPino)+inTransit, "lo despachado está en tránsito")

	_, err := f.uc.Complete(context.Background(), actorJuan, created.ID)
	require.NoError(t, err)
	assert.Equal(t, total, f.physical(matPino))

	dst := f.stock(t, whDeposito, matPino)
	assert.Equal(t, int64(10), dst.Dried)
	assert.Equal(t, int64(8), dst.NotDried)
	assert.Equal(t, int64(1), dst.Damaged)
	assert.Equal(t, int64(6), dst.UnderDrying)
}

// APPROVED desde origen sin control: completar solo acredita el destino.
func TestComplete_DesdeAprobado(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, whProveedor, whDeposito, item(entity.WoodStatusNotDried, 50))

	out, err := f.uc.Complete(context.Background(), actorJuan, created.ID)
	require.NoError(t, err)

	assert.Equal(t, string(entity.TransferStatusCompleted), out.Status)
	dst := f.stock(t, whDeposito, matPino)
	assert.Equal(t, int64(50), dst.NotDried)
	assert.Zero(t, dst.InTransitIn)
	assert.False(t, f.exists(t, whProveedor, matPino))
}

// Destino sin control: completar solo libera el tránsito de origen.
func TestComplete_DestinoSinControl(t *testing.T) {
	f := newFixture(t)
	f.seed(whAserradero, entity.StockRecord{Dried: 10})
	created := f.create(t, whAserradero, whProveedor, item(entity.WoodStatusDried, 10))

	_, err := f.uc.Complete(context.Background(), actorJuan, created.ID)
	require.NoError(t, err)

	src := f.stock(t, whAserradero, matPino)
	assert.Zero(t, src.Dried)
	assert.Zero(t, src.InTransitOut)
	assert.False(t, f.exists(t, whProveedor, matPino))
}

// Si el destino deja de llevar control entre despacho y recepción, se revierte
// exactamente lo que se registró al despachar.
func TestComplete_RevierteLoRegistradoAlDespachar(t *testing.T) {
	f := newFixture(t)
	f.seed(whAserradero, entity.StockRecord{Dried: 10})
	created := f.create(t, whAserradero, whDeposito, item(entity.WoodStatusDried, 10))
	f.store.PutWarehouse(entity.Warehouse{ID: whDeposito, Code: "DEP", Name: "Depósito"})

	_, err := f.uc.Complete(context.Background(), actorJuan, created.ID)
	require.NoError(t, err)

	dst := f.stock(t, whDeposito, matPino)
	assert.Zero(t, dst.InTransitIn)
	assert.Zero(t, dst.Dried)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reject / Cancel
// ──────────────────────────────────────────────────────────────────────────────

func TestReject_NoTocaElLibro(t *testing.T) {
	f := newFixture(t)
	f.seed(whPatio, entity.StockRecord{Dried: 10})
	pending, err := f.uc.Create(context.Background(), actorJuan, dto.CreateTransferRequest{
		FromWarehouseID: whPatio,
		ToWarehouseID:   whDeposito,
		Notes:           "para despacho del lunes",
		Items:           []dto.TransferItemRequest{item(entity.WoodStatusDried, 10)},
	})
	require.NoError(t, err)
	before := f.snapshot()

	out, err := f.uc.Reject(context.Background(), actorAna, pending.ID, "madera aún húmeda")
	require.NoError(t, err)

	assert.Equal(t, string(entity.TransferStatusRejected), out.Status)
	assert.Equal(t, "para despacho del lunes\nMotivo de rechazo: madera aún húmeda", out.Notes)
	require.NotNil(t, out.ApprovedByID)
	assert.Equal(t, actorAna, *out.ApprovedByID)
	assert.Equal(t, before, f.snapshot())
	assert.Contains(t, f.pub.types(), ports.EventTransferRejected)
}

func TestReject_SinMotivo_NoCambiaNotas(t *testing.T) {
	f := newFixture(t)
	pending := f.create(t, whCliente, whDeposito, item(entity.WoodStatusDried, 1))

	out, err := f.uc.Reject(context.Background(), actorAna, pending.ID, "  ")
	require.NoError(t, err)
	assert.Empty(t, out.Notes)
}

func TestCancel_Pendiente(t *testing.T) {
	f := newFixture(t)
	f.seed(whPatio, entity.StockRecord{Dried: 10})
	pending := f.create(t, whPatio, whDeposito, item(entity.WoodStatusDried, 10))
	before := f.snapshot()

	out, err := f.uc.Cancel(context.Background(), actorJuan, pending.ID, "pedido duplicado")
	require.NoError(t, err)

	assert.Equal(t, string(entity.TransferStatusCancelled), out.Status)
	assert.Equal(t, "Motivo de cancelación: pedido duplicado", out.Notes)
	require.NotNil(t, out.CancelledByID)
	assert.Equal(t, actorJuan, *out.CancelledByID)
	assert.NotNil(t, out.CancelledAt)
	assert.Nil(t, out.ApprovedByID)
	assert.Equal(t, before, f.snapshot())
}

// ──────────────────────────────────────────────────────────────────────────────
// Transiciones no permitidas
// ──────────────────────────────────────────────────────────────────────────────

func TestTransicionesNoPermitidas(t *testing.T) {
	f := newFixture(t)
	f.seed(whAserradero, entity.StockRecord{Dried: 100})
	f.seed(whPatio, entity.StockRecord{Dried: 100})
	ctx := context.Background()

	inTransit := f.create(t, whAserradero, whDeposito, item(entity.WoodStatusDried, 1))
	pending := f.create(t, whPatio, whDeposito, item(entity.WoodStatusDried, 1))
	approved := f.create(t, whProveedor, whDeposito, item(entity.WoodStatusDried, 1))
	completed := f.create(t, whAserradero, whDeposito, item(entity.WoodStatusDried, 1))
	_, err := f.uc.Complete(ctx, actorJuan, completed.ID)
	require.NoError(t, err)
	rejected := f.create(t, whPatio, whDeposito, item(entity.WoodStatusDried, 1))
	_, err = f.uc.Reject(ctx, actorAna, rejected.ID, "")
	require.NoError(t, err)
	cancelled := f.create(t, whPatio, whDeposito, item(entity.WoodStatusDried, 1))
	_, err = f.uc.Cancel(ctx, actorJuan, cancelled.ID, "")
	require.NoError(t, err)

	type op func(id string) (*dto.TransferResponse, error)
	approve := func(id string) (*dto.TransferResponse, error) { return f.uc.Approve(ctx, actorAna, id) }
	reject := func(id string) (*dto.TransferResponse, error) { return f.uc.Reject(ctx, actorAna, id, "x") }
	complete := func(id string) (*dto.TransferResponse, error) { return f.uc.Complete(ctx, actorJuan, id) }
	cancel := func(id string) (*dto.TransferResponse, error) { return f.uc.Cancel(ctx, actorJuan, id, "x") }

	tests := []struct {
		name string
		op   op
		id   string
	}{
		{"aprobar en tránsito", approve, inTransit.ID},
		{"aprobar aprobado", approve, approved.ID},
		{"aprobar completado", approve, completed.ID},
		{"rechazar en tránsito", reject, inTransit.ID},
		{"rechazar cancelado", reject, cancelled.ID},
		{"completar pendiente", complete, pending.ID},
		{"completar completado", complete, completed.ID},
		{"completar rechazado", complete, rejected.ID},
		{"cancelar en tránsito", cancel, inTransit.ID},
		{"cancelar aprobado", cancel, approved.ID},
		{"cancelar rechazado", cancel, rejected.ID},
	}
	before := f.snapshot()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.op(tt.id)
			var transition *domain.InvalidStateTransitionError
			require.True(t, errors.As(err, &transition), "got %v", err)
		})
	}
	assert.Equal(t, before, f.snapshot(), "ninguna transición rechazada toca el libro")
}
