// Package scheduler tareas periódicas del servicio.
package scheduler

import (
	"context"
	"time"

	"github.com/jhoicas/lumberyard-api/internal/application/dto"
	"github.com/jhoicas/lumberyard-api/internal/application/ports"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// AlertSource fuente de las alertas de stock bajo (inventory.LowStockUseCase).
type AlertSource interface {
	ListAlerts(ctx context.Context) ([]dto.LowStockAlertDTO, error)
}

// Scheduler ejecuta el resumen de stock bajo según una expresión cron de 5 campos.
type Scheduler struct {
	cron      *cron.Cron
	expr      string
	alerts    AlertSource
	publisher ports.EventPublisher
	log       zerolog.Logger
	now       func() time.Time
}

// New construye el scheduler. No programa nada hasta Start.
func New(expr string, loc *time.Location, alerts AlertSource, publisher ports.EventPublisher, log zerolog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		expr:      expr,
		alerts:    alerts,
		publisher: publisher,
		log:       log.With().Str("component", "scheduler").Logger(),
		now:       time.Now,
	}
}

// Start programa el resumen y arranca el cron. Una expresión inválida es un error de arranque.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.expr, s.runDigest); err != nil {
		return err
	}
	s.log.Info().Str("cron", s.expr).Msg("resumen de stock bajo programado")
	s.cron.Start()
	return nil
}

// Stop detiene el cron y espera a que termine la ejecución en curso.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := s.Digest(ctx); err != nil {
		s.log.Error().Err(err).Msg("resumen de stock bajo")
	}
}

// Digest publica un único evento stock.low_digest con todas las alertas vigentes.
// Sin alertas no publica nada.
func (s *Scheduler) Digest(ctx context.Context) error {
	alerts, err := s.alerts.ListAlerts(ctx)
	if err != nil {
		return err
	}
	if len(alerts) == 0 {
		s.log.Debug().Msg("sin alertas de stock bajo")
		return nil
	}
	ev := ports.Event{
		Type:       ports.EventStockLowDigest,
		OccurredAt: s.now(),
		SubjectID:  "low-stock",
		Data: map[string]any{
			"count":  len(alerts),
			"alerts": alerts,
		},
	}
	s.log.Info().Int("alerts", len(alerts)).Msg("resumen de stock bajo")
	return s.publisher.Publish(ctx, ev)
}
