package notify

import (
	"context"

	"github.com/fd1az/dex-arbitrage-bot/internal/httpclient"
)

// Webhook posts events as plain JSON to a generic endpoint.
type Webhook struct {
	url    string
	client httpclient.Client
}

// NewWebhook creates a Webhook sender for url.
func NewWebhook(url string, client httpclient.Client) *Webhook {
	return &Webhook{url: url, client: client}
}

// Name implements Sender.
func (w *Webhook) Name() string { return "webhook" }

// Send implements Sender.
func (w *Webhook) Send(ctx context.Context, event Event) error {
	_, err := w.client.NewRequestWithOptions(
		httpclient.WithResponseErrorHandler(statusError),
		httpclient.WithLabels(httpclient.NewLabel("sender", "webhook")),
	).SetBody(event).Post(ctx, w.url)
	return err
}
