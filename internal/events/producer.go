package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"smartparking-backend/internal/logger"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	topic  string
	writer messageWriter
}

func NewProducer(brokers []string, topic string) *Producer {
	if topic == "" {
		topic = DefaultTopic
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &Producer{topic: topic, writer: writer}
}

func (p *Producer) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	logger.ExternalServiceCall("kafka", "WriteMessages", "topic", p.topic, "type", event.Type, "key", event.AggregateID)
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.AggregateID),
		Value: data,
		Time:  event.OccurredAt,
	})
	logger.ExternalServiceResult("kafka", "WriteMessages", err, "type", event.Type)
	if err != nil {
		return fmt.Errorf("failed to write %s event: %w", event.Type, err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// NoopPublisher drops events. It is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event Event) error {
	logger.Debug("Event publishing disabled", "type", event.Type, "key", event.AggregateID)
	return nil
}
