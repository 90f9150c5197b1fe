package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lumberyard-api/internal/application/dto"
	"github.com/jhoicas/lumberyard-api/internal/application/ports"
)

type alertsStub struct {
	alerts []dto.LowStockAlertDTO
	err    error
}

func (s alertsStub) ListAlerts(context.Context) ([]dto.LowStockAlertDTO, error) {
	return s.alerts, s.err
}

type publisherStub struct {
	events []ports.Event
}

func (p *publisherStub) Publish(_ context.Context, ev ports.Event) error {
	p.events = append(p.events, ev)
	return nil
}

func TestDigest_PublicaUnSoloEvento(t *testing.T) {
	at := time.Date(2024, 3, 7, 7, 0, 0, 0, time.UTC)
	pub := &publisherStub{}
	s := New("0 7 * * *", time.UTC, alertsStub{alerts: []dto.LowStockAlertDTO{{Shortfall: 4}, {Shortfall: 1}}}, pub, zerolog.Nop())
	s.now = func() time.Time { return at }

	require.NoError(t, s.Digest(context.Background()))

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, ports.EventStockLowDigest, ev.Type)
	assert.Equal(t, at, ev.OccurredAt)
	assert.Equal(t, 2, ev.Data["count"])
}

func TestDigest_SinAlertasNoPublica(t *testing.T) {
	pub := &publisherStub{}
	s := New("0 7 * * *", nil, alertsStub{}, pub, zerolog.Nop())

	require.NoError(t, s.Digest(context.Background()))
	assert.Empty(t, pub.events)
}

func TestDigest_ErrorDeLectura(t *testing.T) {
	pub := &publisherStub{}
	s := New("0 7 * * *", nil, alertsStub{err: errors.New("db caída")}, pub, zerolog.Nop())

	assert.Error(t, s.Digest(context.Background()))
	assert.Empty(t, pub.events)
}

func TestStart_ExpresionInvalida(t *testing.T) {
	s := New("cada mañana", nil, alertsStub{}, &publisherStub{}, zerolog.Nop())
	assert.Error(t, s.Start())
}

func TestStart_Stop(t *testing.T) {
	s := New("*/5 * * * *", nil, alertsStub{}, &publisherStub{}, zerolog.Nop())
	require.NoError(t, s.Start())
	s.Stop()
}
