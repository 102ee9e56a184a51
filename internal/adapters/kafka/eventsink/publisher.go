// Package eventsink publishes registry events to Kafka.
package eventsink

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Overland-East-Bay/club-registry/internal/domain"
)

// DefaultTopic receives every registry event unless configured otherwise.
const DefaultTopic = "club-membership-events"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher is an eventsink.Sink writing one Kafka message per event.
//
// Messages are keyed by the club bytes so all events for a club land on one
// partition in order. Writes are synchronous (the writer is not Async).
type Publisher struct {
	writer messageWriter
	topic  string
}

func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	if topic == "" {
		topic = DefaultTopic
	}
	return newPublisher(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		RequiredAcks: kafka.RequireAll,
		Balancer:     &kafka.Hash{},
	}, topic), nil
}

func newPublisher(w messageWriter, topic string) *Publisher {
	return &Publisher{writer: w, topic: topic}
}

// Payload is the JSON value of each message.
type Payload struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Club       string    `json:"club"`
	ClubHex    string    `json:"clubHex"`
	Member     string    `json:"member"`
	OccurredAt time.Time `json:"occurredAt"`
}

func (p *Publisher) Publish(ctx context.Context, ev domain.Event) error {
	value, err := json.Marshal(Payload{
		ID:         ev.ID,
		Kind:       string(ev.Kind),
		Club:       string(ev.Club),
		ClubHex:    hex.EncodeToString(ev.Club.Bytes()),
		Member:     string(ev.Member),
		OccurredAt: ev.OccurredAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topic,
		Key:   ev.Club.Bytes(),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-kind", Value: []byte(ev.Kind)},
			{Key: "event-id", Value: []byte(ev.ID)},
		},
		Time: ev.OccurredAt.UTC(),
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
