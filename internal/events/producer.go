// Package events publishes video lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/nurvideo/gallery/internal/models"
)

const (
	headerEventType = "event_type"
	batchTimeout    = 10 * time.Millisecond
)

type Producer struct {
	writer *kafkago.Writer
}

func NewProducer(brokers []string, topic string, writeTimeout time.Duration) (*Producer, error) {
	const op = "events.NewProducer"

	if len(brokers) == 0 {
		return nil, fmt.Errorf("%s: brokers list is empty", op)
	}
	if topic == "" {
		return nil, fmt.Errorf("%s: topic is empty", op)
	}

	return &Producer{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafkago.Hash{},
			WriteTimeout: writeTimeout,
			RequiredAcks: kafkago.RequireOne,
			// one event per request, do not wait for a batch to fill
			BatchSize:    1,
			BatchTimeout: batchTimeout,
		},
	}, nil
}

// PublishVideoEvent writes event keyed by video id,
// so events of one video stay ordered within a partition.
func (p *Producer) PublishVideoEvent(ctx context.Context, event models.VideoEvent) error {
	const op = "events.PublishVideoEvent"

	msg, err := message(event)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

func message(event models.VideoEvent) (kafkago.Message, error) {
	if event.VideoID == "" {
		return kafkago.Message{}, errors.New("event without video id")
	}

	value, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, err
	}

	return kafkago.Message{
		Key:   []byte(event.VideoID),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafkago.Header{
			{Key: headerEventType, Value: []byte(event.Type)},
		},
	}, nil
}

// Nop drops events. Used when no brokers are configured.
type Nop struct{}

func (Nop) PublishVideoEvent(context.Context, models.VideoEvent) error { return nil }

func (Nop) Close() error { return nil }
