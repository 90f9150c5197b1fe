// Package memory es el almacén en memoria (STORE_DRIVER=memory): mismos puertos que
// PostgreSQL, usado en desarrollo y en los tests del motor.
//
// Las transacciones se serializan con un único mutex y trabajan sobre una copia del estado
// que solo reemplaza al estado confirmado si fn termina sin error.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/lumberyard-api/internal/application/ports"
	"github.com/jhoicas/lumberyard-api/internal/domain"
	"github.com/jhoicas/lumberyard-api/internal/domain/entity"
	"github.com/jhoicas/lumberyard-api/internal/domain/repository"
)

var _ ports.TxRunner = (*Store)(nil)

type state struct {
	warehouses  map[string]*entity.Warehouse
	stock       map[entity.StockKey]*entity.StockRecord
	transfers   map[string]*entity.Transfer
	adjustments []*entity.StockAdjustment
	sequences   map[string]int
	assignments map[string][]string
}

func newState() *state {
	return &state{
		warehouses:  make(map[string]*entity.Warehouse),
		stock:       make(map[entity.StockKey]*entity.StockRecord),
		transfers:   make(map[string]*entity.Transfer),
		sequences:   make(map[string]int),
		assignments: make(map[string][]string),
	}
}

// clone copia lo que una transacción puede modificar. Bodegas y asignaciones son de solo lectura.
func (s *state) clone() *state {
	c := &state{
		warehouses:  s.warehouses,
		assignments: s.assignments,
		stock:       make(map[entity.StockKey]*entity.StockRecord, len(s.stock)),
		transfers:   make(map[string]*entity.Transfer, len(s.transfers)),
		adjustments: append([]*entity.StockAdjustment(nil), s.adjustments...),
		sequences:   make(map[string]int, len(s.sequences)),
	}
	for k, v := range s.stock {
		c.stock[k] = v.Clone()
	}
	for k, v := range s.transfers {
		c.transfers[k] = v.Clone()
	}
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	return c
}

// Store almacén en memoria. Implementa ports.TxRunner y expone repositorios de lectura.
type Store struct {
	mu     sync.Mutex
	state  *state
	faults map[string]error
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{state: newState(), faults: make(map[string]error)}
}

// Run ejecuta fn sobre una copia del estado bajo el mutex del almacén. Si fn devuelve error
// la copia se descarta y nada de lo escrito queda visible.
func (s *Store) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	transferRepo repository.TransferRepository,
	adjustmentRepo repository.StockAdjustmentRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	work := s.state.clone()
	tx := &access{store: s, in: func(f func(*state) error) error { return f(work) }}
	if err := fn(&StockRepo{tx}, &TransferRepo{tx}, &AdjustmentRepo{tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	s.state = work
	return nil
}

// committed acceso de solo lectura (o escritura directa) al estado confirmado.
func (s *Store) committed() *access {
	return &access{store: s, in: func(f func(*state) error) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		return f(s.state)
	}}
}

// Warehouses repositorio de bodegas.
func (s *Store) Warehouses() *WarehouseRepo { return &WarehouseRepo{s.committed()} }

// Assignments repositorio de asignaciones usuario-bodega.
func (s *Store) Assignments() *AssignmentRepo { return &AssignmentRepo{s.committed()} }

// Stock repositorio del libro fuera de transacción (lecturas).
func (s *Store) Stock() *StockRepo { return &StockRepo{s.committed()} }

// Transfers repositorio de traslados fuera de transacción (lecturas).
func (s *Store) Transfers() *TransferRepo { return &TransferRepo{s.committed()} }

// Adjustments repositorio del diario fuera de transacción (lecturas).
func (s *Store) Adjustments() *AdjustmentRepo { return &AdjustmentRepo{s.committed()} }

// PutWarehouse registra o reemplaza una bodega (semilla del directorio).
func (s *Store) PutWarehouse(w entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.Status == "" {
		w.Status = entity.WarehouseStatusActive
	}
	s.state.warehouses[w.ID] = &w
}

// PutStock fija un registro del libro tal cual (semilla). Si no trae ID se genera uno.
func (s *Store) PutStock(r entity.StockRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = fmt.Sprintf("stk-%s-%s-%s", r.WarehouseID, r.MaterialTypeID, r.Thickness)
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now()
		r.CreatedAt = r.UpdatedAt
	}
	s.state.stock[r.Key()] = r.Clone()
}

// AssignWarehouse asigna una bodega a un usuario.
func (s *Store) AssignWarehouse(userID, warehouseID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.assignments[userID] = append(s.state.assignments[userID], warehouseID)
}

// Snapshot copia de todos los registros del libro confirmados, ordenados por clave.
func (s *Store) Snapshot() []*entity.StockRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.StockRecord, 0, len(s.state.stock))
	for _, r := range s.state.stock {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key().Less(out[j].Key()) })
	return out
}

// InjectFault hace que la próxima llamada a op ("stock.update", "transfer.create",
// "transfer.update_state", "transfer.next_sequence", "adjustment.create") devuelva err.
func (s *Store) InjectFault(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

// fault consume el fallo inyectado para op. Se invoca con el mutex tomado.
func (s *Store) fault(op string) error {
	err, ok := s.faults[op]
	if !ok {
		return nil
	}
	delete(s.faults, op)
	return fmt.Errorf("%w: %s: %v", domain.ErrPersistence, op, err)
}

type access struct {
	store *Store
	in    func(func(*state) error) error
}
