package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/fd1az/dex-arbitrage-bot/internal/httpclient"
)

// Embed colors.
const (
	colorInfo  = 0x2ecc71
	colorWarn  = 0xf1c40f
	colorError = 0xe74c3c
)

type discordPayload struct {
	Username string         `json:"username,omitempty"`
	Embeds   []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields,omitempty"`
	Timestamp   string         `json:"timestamp"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Discord posts events to a Discord webhook as embeds.
type Discord struct {
	url    string
	client httpclient.Client
}

// NewDiscord creates a Discord sender for webhookURL.
func NewDiscord(webhookURL string, client httpclient.Client) *Discord {
	return &Discord{url: webhookURL, client: client}
}

// Name implements Sender.
func (d *Discord) Name() string { return "discord" }

// Send implements Sender.
func (d *Discord) Send(ctx context.Context, event Event) error {
	embed := discordEmbed{
		Title:       event.Title,
		Description: event.Message,
		Color:       levelColor(event.Level),
		Timestamp:   event.At.UTC().Format(time.RFC3339),
	}
	for _, f := range event.Fields {
		embed.Fields = append(embed.Fields, discordField{Name: f.Name, Value: f.Value, Inline: true})
	}

	_, err := d.client.NewRequestWithOptions(
		httpclient.WithResponseErrorHandler(statusError),
		httpclient.WithLabels(httpclient.NewLabel("sender", "discord")),
	).SetBody(discordPayload{Username: "dex-arbitrage-bot", Embeds: []discordEmbed{embed}}).
		Post(ctx, d.url)
	return err
}

func levelColor(l Level) int {
	switch l {
	case LevelError:
		return colorError
	case LevelWarn:
		return colorWarn
	default:
		return colorInfo
	}
}

func statusError(status int, body []byte) error {
	if status < 300 {
		return nil
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Errorf("webhook returned %d: %s", status, body)
}
