package ports

import (
	"context"
	"time"
)

// Tipos de evento publicados tras confirmar la transacción.
const (
	EventTransferCreated   = "transfer.created"
	EventTransferApproved  = "transfer.approved"
	EventTransferRejected  = "transfer.rejected"
	EventTransferCompleted = "transfer.completed"
	EventTransferCancelled = "transfer.cancelled"
	EventStockAdjusted     = "stock.adjusted"
	EventStockLow          = "stock.low"
	EventStockLowDigest    = "stock.low_digest"
)

// Event es la notificación que se entrega al colaborador de notificaciones.
type Event struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	ActorID    string         `json:"actor_id,omitempty"`
	SubjectID  string         `json:"subject_id"`
	Data       map[string]any `json:"data,omitempty"`
}

// EventPublisher puerto de salida hacia notificaciones. Se invoca después del Commit:
// un fallo al publicar no deshace la operación.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
