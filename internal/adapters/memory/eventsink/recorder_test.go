package eventsink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Overland-East-Bay/club-registry/internal/domain"
)

func TestRecorder_KeepsOrderAndLast(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	_, ok := r.Last()
	assert.False(t, ok)

	require.NoError(t, r.Publish(context.Background(), domain.Event{ID: "1", Kind: domain.EventMemberAdded}))
	require.NoError(t, r.Publish(context.Background(), domain.Event{ID: "2", Kind: domain.EventMemberRemoved}))

	evs := r.Events()
	require.Len(t, evs, 2)
	assert.Equal(t, "1", evs[0].ID)

	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, domain.EventMemberRemoved, last.Kind)

	evs[0].ID = "changed"
	assert.Equal(t, "1", r.Events()[0].ID)
}
