package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dhoini/storefront-service/internal/events"
	"github.com/Dhoini/storefront-service/pkg/logger"
	"github.com/IBM/sarama"
)

// EventProducer публикует доменные события в Kafka через sarama.SyncProducer.
// Each event type has its own topic, the entity id is the message key.
type EventProducer struct {
	producer    sarama.SyncProducer
	topicPrefix string
	log         *logger.Logger
}

// NewEventProducer создает продюсер поверх готового sarama.SyncProducer
func NewEventProducer(producer sarama.SyncProducer, topicPrefix string, log *logger.Logger) *EventProducer {
	return &EventProducer{
		producer:    producer,
		topicPrefix: topicPrefix,
		log:         log,
	}
}

// Dial подключается к брокерам и создает продюсер
func Dial(cfg *Config, log *logger.Logger) (*EventProducer, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, NewSaramaConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.Infow("Kafka producer initialized", "brokers", cfg.Brokers)
	return NewEventProducer(producer, cfg.TopicPrefix, log), nil
}

// Publish отправляет событие в топик его типа
func (p *EventProducer) Publish(ctx context.Context, event events.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	messageValue, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}

	topic := events.Topic(p.topicPrefix, event.Type)
	message := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(event.Key),
		Value: sarama.ByteEncoder(messageValue),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("event_type"),
				Value: []byte(event.Type),
			},
		},
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}

	p.log.Debug("Published event to topic %s: partition=%d offset=%d", topic, partition, offset)
	return nil
}

// Close закрывает продюсер
func (p *EventProducer) Close() error {
	return p.producer.Close()
}
