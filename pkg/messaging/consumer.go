package messaging

import (
	"context"

	"github.com/jwalitptl/clinic-triage/pkg/logger"
)

// Handler processes one message payload.
type Handler func(ctx context.Context, payload []byte) error

// Consume subscribes to channel and feeds every message to handler until ctx
// is cancelled or the subscription ends. Handler errors are logged and the
// message is skipped.
func Consume(ctx context.Context, broker Broker, channel string, handler Handler, log *logger.Logger) error {
	msgChan, err := broker.Subscribe(ctx, channel)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgChan:
			if !ok {
				return nil
			}
			if err := handler(ctx, msg); err != nil {
				log.Error(err, "Failed to handle message", "channel", channel)
			}
		}
	}
}
