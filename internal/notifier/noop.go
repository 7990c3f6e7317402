package notifier

import (
	"context"

	"github.com/rs/zerolog"

	"RiskEngine/internal/logging"
)

// NoopNotifier logs messages instead of sending them. Used when Telegram is
// not configured.
type NoopNotifier struct {
	log zerolog.Logger
}

func NewNoopNotifier(log zerolog.Logger) *NoopNotifier {
	return &NoopNotifier{log: logging.Component(log, "notifier")}
}

func (n *NoopNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	n.log.Debug().Str("text", text).Msg("notification not sent, telegram disabled")
	return nil
}

func (n *NoopNotifier) SendPhoto(_ context.Context, name string, _ []byte, _ string) error {
	n.log.Debug().Str("name", name).Msg("photo not sent, telegram disabled")
	return nil
}
