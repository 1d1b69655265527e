// Package notify delivers operator notifications to chat and webhook
// destinations.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
	"github.com/fd1az/dex-arbitrage-bot/internal/logger"
)

// Level is the severity of an Event.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Field is an ordered key/value shown with an Event.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Event is a single notification.
type Event struct {
	Level   Level     `json:"level"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Fields  []Field   `json:"fields,omitempty"`
	At      time.Time `json:"at"`
}

// Sender delivers an Event to one destination.
type Sender interface {
	Name() string
	Send(ctx context.Context, event Event) error
}

// Dispatcher fans an Event out to every configured sender. Sender failures
// are logged and returned joined; they never stop other senders.
type Dispatcher struct {
	senders []Sender
	logger  logger.LoggerInterface
}

// NewDispatcher creates a Dispatcher. With no senders Notify is a no-op.
func NewDispatcher(log logger.LoggerInterface, senders ...Sender) *Dispatcher {
	return &Dispatcher{senders: senders, logger: log}
}

// Enabled reports whether any sender is configured.
func (d *Dispatcher) Enabled() bool {
	return len(d.senders) > 0
}

// Notify sends event to every sender.
func (d *Dispatcher) Notify(ctx context.Context, event Event) error {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	var errs []error
	for _, s := range d.senders {
		if err := s.Send(ctx, event); err != nil {
			d.logger.Warn(ctx, "notification failed", "sender", s.Name(), "title", event.Title, "error", err)
			errs = append(errs, apperror.New(apperror.CodeNotifyFailed,
				apperror.WithCause(err), apperror.WithContext(s.Name())))
		}
	}
	return errors.Join(errs...)
}
