package eventsink

import (
	"context"
	"sync"

	"github.com/Overland-East-Bay/club-registry/internal/domain"
)

// Recorder is an in-memory eventsink.Sink that keeps every published event in order.
// It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(ctx context.Context, ev domain.Event) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// Events returns a snapshot of everything published so far.
func (r *Recorder) Events() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Last returns the most recent event, if any.
func (r *Recorder) Last() (domain.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return domain.Event{}, false
	}
	return r.events[len(r.events)-1], true
}
