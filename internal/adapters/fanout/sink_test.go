package fanout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memeventsink "github.com/Overland-East-Bay/club-registry/internal/adapters/memory/eventsink"
	"github.com/Overland-East-Bay/club-registry/internal/domain"
	"github.com/Overland-East-Bay/club-registry/internal/ports/out/eventsink"
)

func TestSink_DeliversToAllAndJoinsErrors(t *testing.T) {
	t.Parallel()

	first := memeventsink.NewRecorder()
	last := memeventsink.NewRecorder()
	boom := errors.New("boom")
	failing := eventsink.SinkFunc(func(context.Context, domain.Event) error { return boom })

	s := New(first, nil, failing, last)
	err := s.Publish(context.Background(), domain.Event{ID: "ev-1"})
	require.ErrorIs(t, err, boom)

	assert.Len(t, first.Events(), 1)
	assert.Len(t, last.Events(), 1, "delivery continues past a failing sink")
}

func TestSink_Empty(t *testing.T) {
	t.Parallel()

	require.NoError(t, New().Publish(context.Background(), domain.Event{}))
}
