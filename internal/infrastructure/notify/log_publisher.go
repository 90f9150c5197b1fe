// Package notify entrega los eventos del motor al colaborador de notificaciones.
package notify

import (
	"context"

	"github.com/jhoicas/lumberyard-api/internal/application/ports"
	"github.com/rs/zerolog"
)

var _ ports.EventPublisher = (*LogPublisher)(nil)

// LogPublisher escribe cada evento en el log estructurado. Es el publicador por defecto
// cuando no hay webhook configurado.
type LogPublisher struct {
	log zerolog.Logger
}

// NewLogPublisher construye el publicador de log.
func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log.With().Str("component", "notify").Logger()}
}

// Publish registra el evento a nivel info.
func (p *LogPublisher) Publish(_ context.Context, ev ports.Event) error {
	p.log.Info().
		Str("event", ev.Type).
		Str("subject_id", ev.SubjectID).
		Str("actor_id", ev.ActorID).
		Time("occurred_at", ev.OccurredAt).
		Fields(ev.Data).
		Msg("evento")
	return nil
}

// Multi publica en varios destinos y devuelve el primer error, sin detenerse en él.
type Multi []ports.EventPublisher

// Publish entrega el evento a todos los publicadores.
func (m Multi) Publish(ctx context.Context, ev ports.Event) error {
	var first error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
