package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"order-management-service/internal/entity"
)

// EventPublisher emits order lifecycle events. Publishing happens after
// commit and never affects the outcome of the operation that triggered it.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, order *entity.Order, event string) error
}

// KafkaPublisher publishes order events to a kafka topic.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) PublishOrderEvent(ctx context.Context, order *entity.Order, event string) error {
	orderJSON, err := json.Marshal(order)
	if err != nil {
		return err
	}

	// order-created-<id> or order-updated-<id>
	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order-%s-%s", event, order.ID)),
		Value: orderJSON,
	}

	return p.writer.WriteMessages(ctx, msg)
}

// NoopPublisher is the default when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderEvent(context.Context, *entity.Order, string) error {
	return nil
}
