package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jhoicas/lumberyard-api/internal/application/ports"
)

var _ ports.EventPublisher = (*WebhookPublisher)(nil)

// WebhookPublisher envía cada evento como JSON por POST a la URL configurada.
type WebhookPublisher struct {
	httpClient *resty.Client
	url        string
}

// NewWebhookPublisher construye el publicador. timeout <= 0 usa 5s.
func NewWebhookPublisher(url string, timeout time.Duration) *WebhookPublisher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond)
	return &WebhookPublisher{httpClient: client, url: url}
}

// Publish envía el evento. Una respuesta no 2xx es un error.
func (p *WebhookPublisher) Publish(ctx context.Context, ev ports.Event) error {
	resp, err := p.httpClient.R().
		SetContext(ctx).
		SetHeader("X-Event-Type", ev.Type).
		SetBody(ev).
		Post(p.url)
	if err != nil {
		return fmt.Errorf("webhook %s: %w", ev.Type, err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook %s: status %d", ev.Type, resp.StatusCode())
	}
	return nil
}
