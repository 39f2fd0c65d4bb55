package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// statusBatchTimeout caps how long a write waits for a batch to fill.
// Events are written inline with the webhook response, so the kafka-go
// default of one second would be added to every webhook.
const statusBatchTimeout = 10 * time.Millisecond

// KafkaPublisher writes events to a Kafka topic keyed by payment ID,
// so all events for one payment land on the same partition in order.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a publisher for topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: statusBatchTimeout,
		},
	}
}

// PublishStatusChanged implements Publisher.
func (p *KafkaPublisher) PublishStatusChanged(ctx context.Context, evt StatusChanged) error {
	msg, err := statusMessage(evt)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish status event for %s: %w", evt.PaymentID, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func statusMessage(evt StatusChanged) (kafka.Message, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode status event: %w", err)
	}

	return kafka.Message{
		Key:   []byte(evt.PaymentID),
		Value: payload,
		Time:  evt.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("payment.status_changed")},
		},
	}, nil
}
