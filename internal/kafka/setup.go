package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"

	"github.com/Dhoini/storefront-service/internal/events"
	"github.com/Dhoini/storefront-service/pkg/logger"
	kafkaGo "github.com/segmentio/kafka-go"
)

// RequiredTopics returns the topic configs for every event type
func RequiredTopics(cfg *Config) map[string]kafkaGo.TopicConfig {
	topics := make(map[string]kafkaGo.TopicConfig, len(events.Types))
	for _, eventType := range events.Types {
		name := events.Topic(cfg.TopicPrefix, eventType)
		topics[name] = kafkaGo.TopicConfig{
			Topic:             name,
			NumPartitions:     cfg.Topics.NumPartitions,
			ReplicationFactor: cfg.Topics.ReplicationFactor,
		}
	}
	return topics
}

// EnsureTopics проверяет и создает необходимые топики Kafka через контроллер кластера
func EnsureTopics(ctx context.Context, cfg *Config, log *logger.Logger) error {
	requiredTopics := RequiredTopics(cfg)
	log.Infow("Ensuring Kafka topics exist...", "topics", topicNames(requiredTopics))

	if len(cfg.Brokers) == 0 || strings.TrimSpace(cfg.Brokers[0]) == "" {
		return errors.New("kafka broker address is empty")
	}
	broker := strings.TrimSpace(cfg.Brokers[0])
	if _, _, err := net.SplitHostPort(broker); err != nil {
		return fmt.Errorf("invalid broker address %s: %w", broker, err)
	}

	conn, err := kafkaGo.DialContext(ctx, "tcp", broker)
	if err != nil {
		return fmt.Errorf("kafka connection failed: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("kafka controller lookup failed: %w", err)
	}

	controllerConn, err := kafkaGo.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("kafka controller connection failed: %w", err)
	}
	defer controllerConn.Close()

	partitions, err := controllerConn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("kafka read partitions failed: %w", err)
	}

	existing := make(map[string]bool)
	for _, p := range partitions {
		existing[p.Topic] = true
	}

	missing := missingTopics(requiredTopics, existing)
	if len(missing) == 0 {
		log.Infow("All required topics already exist")
		return nil
	}

	err = controllerConn.CreateTopics(missing...)
	if err != nil && !errors.Is(err, kafkaGo.TopicAlreadyExists) {
		return fmt.Errorf("kafka create topics failed: %w", err)
	}

	log.Infow("Successfully created or verified topics", "count", len(missing))
	return nil
}

// missingTopics returns the required configs whose topic is not in existing, sorted by name
func missingTopics(required map[string]kafkaGo.TopicConfig, existing map[string]bool) []kafkaGo.TopicConfig {
	var out []kafkaGo.TopicConfig
	for name, tc := range required {
		if !existing[name] {
			out = append(out, tc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Topic < out[j].Topic })
	return out
}

func topicNames(topics map[string]kafkaGo.TopicConfig) []string {
	names := make([]string, 0, len(topics))
	for name := range topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
