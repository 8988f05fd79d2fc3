package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// HandlerFunc processes one raw message from a channel.
type HandlerFunc func(ctx context.Context, payload []byte) error

// Consume subscribes to channel and feeds every message to fn until ctx is
// cancelled or the subscription closes. Handler errors go to onError and do
// not stop consumption.
func Consume(ctx context.Context, b Broker, channel string, fn HandlerFunc, onError func(error)) error {
	msgs, err := b.Subscribe(ctx, channel)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := fn(ctx, msg); err != nil && onError != nil {
				onError(err)
			}
		}
	}
}
