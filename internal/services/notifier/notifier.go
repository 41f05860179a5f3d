// Package notifier fans alert messages out to chat channels.
package notifier

import (
	"context"

	"go.uber.org/zap"
)

// Sender delivers one message to a single channel.
type Sender interface {
	Send(ctx context.Context, title, message string) error
	Name() string
}

// Notifier sends to every configured channel. Delivery is best-effort.
type Notifier struct {
	senders []Sender
	logger  *zap.Logger
}

func New(logger *zap.Logger, senders ...Sender) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{senders: senders, logger: logger}
}

// Enabled reports whether at least one channel is configured.
func (n *Notifier) Enabled() bool {
	return n != nil && len(n.senders) > 0
}

// Notify delivers to all senders; failures are logged and never returned.
func (n *Notifier) Notify(ctx context.Context, title, message string) {
	if !n.Enabled() {
		return
	}
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.Warn("notification failed", zap.String("sender", s.Name()), zap.Error(err))
			continue
		}
		n.logger.Debug("notification sent", zap.String("sender", s.Name()), zap.String("title", title))
	}
}
