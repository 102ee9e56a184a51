// Package fanout delivers each registry event to several sinks.
package fanout

import (
	"context"
	"errors"

	"github.com/Overland-East-Bay/club-registry/internal/domain"
	"github.com/Overland-East-Bay/club-registry/internal/ports/out/eventsink"
)

// Sink publishes to every wrapped sink in order. A failing sink does not stop
// delivery to the ones after it; all failures are joined.
type Sink struct {
	sinks []eventsink.Sink
}

func New(sinks ...eventsink.Sink) *Sink {
	out := make([]eventsink.Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &Sink{sinks: out}
}

func (f *Sink) Publish(ctx context.Context, ev domain.Event) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
