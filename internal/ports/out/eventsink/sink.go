package eventsink

import (
	"context"

	"github.com/Overland-East-Bay/club-registry/internal/domain"
)

// Sink receives registry notifications synchronously, inside the call that
// produced them.
type Sink interface {
	Publish(ctx context.Context, ev domain.Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, ev domain.Event) error

func (f SinkFunc) Publish(ctx context.Context, ev domain.Event) error { return f(ctx, ev) }
