package logsink

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Overland-East-Bay/club-registry/internal/domain"
)

func TestSink_LogsEventFields(t *testing.T) {
	t.Parallel()

	logger, hook := test.NewNullLogger()
	s := New(logger)

	err := s.Publish(context.Background(), domain.Event{
		ID:         "ev-1",
		Kind:       domain.EventMemberRemoved,
		Club:       "tennis",
		Member:     "m2",
		OccurredAt: time.Unix(10, 0).UTC(),
	})
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "MemberRemoved", entry.Data["kind"])
	assert.Equal(t, "tennis", entry.Data["club"])
	assert.Equal(t, "74656e6e6973", entry.Data["club_hex"])
	assert.Equal(t, "m2", entry.Data["member"])
}
