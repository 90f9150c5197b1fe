// Package approval decide, a partir de las banderas de cada bodega, el estado inicial de un
// traslado y qué contadores se tocan al despacharlo. No tiene almacenamiento propio.
package approval

import "github.com/jhoicas/lumberyard-api/internal/domain/entity"

// TracksStock indica si el libro de la bodega se lleva. Una bodega sin control es un paso sin registro.
func TracksStock(w *entity.Warehouse) bool {
	return w != nil && w.StockControlEnabled
}

// NeedsApproval indica si los traslados salientes de la bodega esperan aprobación manual.
func NeedsApproval(w *entity.Warehouse) bool {
	return w != nil && w.RequiresApproval
}

// Dispatch describe qué contadores se registran al poner un traslado en tránsito.
type Dispatch struct {
	BookSource      bool // origen: bucket -q, in_transit_out +q
	BookDestination bool // destino: in_transit_in +q
}

// CreateDecision es el resultado de evaluar la política al crear un traslado.
type CreateDecision struct {
	Status      entity.TransferStatus
	CheckStock  bool // verificar disponibilidad en origen antes de crear
	DispatchNow bool // despachar en la misma transacción de creación
	Dispatch    Dispatch
}

// DecideCreate resuelve el estado inicial.
//   - requiresApproval: PENDING, sin efecto en el libro.
//   - sin aprobación y origen con control: despacho inmediato, IN_TRANSIT.
//   - sin aprobación y origen sin control: APPROVED, sin efecto en el libro.
func DecideCreate(from, to *entity.Warehouse) CreateDecision {
	d := CreateDecision{CheckStock: TracksStock(from)}
	if NeedsApproval(from) {
		d.Status = entity.TransferStatusPending
		return d
	}
	if !TracksStock(from) {
		d.Status = entity.TransferStatusApproved
		return d
	}
	d.Status = entity.TransferStatusInTransit
	d.DispatchNow = true
	d.Dispatch = DecideDispatch(from, to)
	return d
}

// DecideDispatch indica qué lados registran tránsito al aprobar o al auto-aprobar.
func DecideDispatch(from, to *entity.Warehouse) Dispatch {
	return Dispatch{BookSource: TracksStock(from), BookDestination: TracksStock(to)}
}
