package transfer_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lumberyard-api/internal/application/dto"
	"github.com/jhoicas/lumberyard-api/internal/application/ports"
	"github.com/jhoicas/lumberyard-api/internal/application/transfer"
	"github.com/jhoicas/lumberyard-api/internal/domain/entity"
	"github.com/jhoicas/lumberyard-api/internal/domain/ledger"
	"github.com/jhoicas/lumberyard-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: cinco bodegas sobre el almacén en memoria
// ──────────────────────────────────────────────────────────────────────────────

const (
	whAserradero = "wh-aserradero" // con control, sin aprobación
	whPatio      = "wh-patio"      // con control, exige aprobación
	whDeposito   = "wh-deposito"   // con control, sin aprobación (destino habitual)
	whProveedor  = "wh-proveedor"  // sin control, sin aprobación
	whCliente    = "wh-cliente"    // sin control, exige aprobación

	matPino   = "mat-pino"
	matRoble  = "mat-roble"
	thick2in  = "2in"
	actorJuan = "user-bodeguero"
	actorAna  = "user-supervisor"
)

var baseTime = time.Date(2024, time.March, 7, 10, 0, 0, 0, time.UTC)

// recorder colaborador de notificaciones que guarda lo publicado.
type recorder struct {
	mu     sync.Mutex
	events []ports.Event
	err    error
}

func (r *recorder) Publish(_ context.Context, ev ports.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func (r *recorder) ofType(t string) []ports.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ports.Event
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// clock reloj manipulable por los tests.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fixture struct {
	store *memory.Store
	uc    *transfer.UseCase
	pub   *recorder
	clock *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.PutWarehouse(entity.Warehouse{ID: whAserradero, Code: "ASE", Name: "Aserradero", StockControlEnabled: true})
	store.PutWarehouse(entity.Warehouse{ID: whPatio, Code: "PAT", Name: "Patio de secado", StockControlEnabled: true, RequiresApproval: true})
	store.PutWarehouse(entity.Warehouse{ID: whDeposito, Code: "DEP", Name: "Depósito", StockControlEnabled: true})
	store.PutWarehouse(entity.Warehouse{ID: whProveedor, Code: "PRV", Name: "Proveedor"})
	store.PutWarehouse(entity.Warehouse{ID: whCliente, Code: "CLI", Name: "Cliente", RequiresApproval: true})

	pub := &recorder{}
	clk := &clock{now: baseTime}
	uc := transfer.NewUseCase(store, store.Warehouses(), store.Transfers(), store.Assignments(), pub, zerolog.Nop()).
		WithClock(clk.Now)
	return &fixture{store: store, uc: uc, pub: pub, clock: clk}
}

// seed fija el registro (bodega, pino, 2in) con los contadores dados.
func (f *fixture) seed(warehouseID string, rec entity.StockRecord) {
	rec.WarehouseID = warehouseID
	if rec.MaterialTypeID == "" {
		rec.MaterialTypeID = matPino
	}
	if rec.Thickness == "" {
		rec.Thickness = thick2in
	}
	f.store.PutStock(rec)
}

// stock devuelve el registro confirmado o un registro vacío si no existe.
func (f *fixture) stock(t *testing.T, warehouseID, material string) entity.StockRecord {
	t.Helper()
	rec, err := f.store.Stock().Get(context.Background(), entity.StockKey{
		WarehouseID: warehouseID, MaterialTypeID: material, Thickness: thick2in,
	})
	require.NoError(t, err)
	if rec == nil {
		return entity.StockRecord{}
	}
	return *rec
}

// exists indica si hay registro en el libro para la clave.
func (f *fixture) exists(t *testing.T, warehouseID, material string) bool {
	t.Helper()
	rec, err := f.store.Stock().Get(context.Background(), entity.StockKey{
		WarehouseID: warehouseID, MaterialTypeID: material, Thickness: thick2in,
	})
	require.NoError(t, err)
	return rec != nil
}

// counters solo los seis contadores (sin marcas de tiempo ni IDs) para comparar fotos del libro.
type counters struct {
	key    entity.StockKey
	values [6]int64
}

func (f *fixture) snapshot() []counters {
	snap := f.store.Snapshot()
	out := make([]counters, 0, len(snap))
	for _, r := range snap {
		c := counters{key: r.Key()}
		for i, b := range ledger.AllBuckets {
			c.values[i], _ = ledger.Count(r, b)
		}
		out = append(out, c)
	}
	return out
}

// physical suma por (material, espesor) de los cuatro buckets físicos en todas las bodegas con control.
func (f *fixture) physical(material string) int64 {
	var total int64
	for _, r := range f.store.Snapshot() {
		if r.MaterialTypeID == material {
			total += r.NotDried + r.UnderDrying + r.Dried + r.Damaged
		}
	}
	return total
}

func (f *fixture) create(t *testing.T, from, to string, items ...dto.TransferItemRequest) *dto.TransferResponse {
	t.Helper()
	out, err := f.uc.Create(context.Background(), actorJuan, dto.CreateTransferRequest{
		FromWarehouseID: from,
		ToWarehouseID:   to,
		Items:           items,
	})
	require.NoError(t, err)
	return out
}

func item(status entity.WoodStatus, qty int64) dto.TransferItemRequest {
	return dto.TransferItemRequest{MaterialTypeID: matPino, Thickness: thick2in, Quantity: qty, WoodStatus: string(status)}
}

func itemOf(material string, status entity.WoodStatus, qty int64) dto.TransferItemRequest {
	return dto.TransferItemRequest{MaterialTypeID: material, Thickness: thick2in, Quantity: qty, WoodStatus: string(status)}
}

var errBoom = errors.New("boom")
