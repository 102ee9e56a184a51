// Package logsink writes registry events to a structured logger.
package logsink

import (
	"context"
	"encoding/hex"

	"github.com/sirupsen/logrus"

	"github.com/Overland-East-Bay/club-registry/internal/domain"
)

type Sink struct {
	log logrus.FieldLogger
}

func New(log logrus.FieldLogger) *Sink {
	return &Sink{log: log}
}

func (s *Sink) Publish(ctx context.Context, ev domain.Event) error {
	_ = ctx
	s.log.WithFields(logrus.Fields{
		"event_id":    ev.ID,
		"kind":        string(ev.Kind),
		"club":        string(ev.Club),
		"club_hex":    hex.EncodeToString(ev.Club.Bytes()),
		"member":      string(ev.Member),
		"occurred_at": ev.OccurredAt,
	}).Info("club membership changed")
	return nil
}
