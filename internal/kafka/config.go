package kafka

import (
	"github.com/IBM/sarama"
)

// Config конфигурация для Kafka
type Config struct {
	Brokers     []string
	TopicPrefix string
	Producer    ProducerConfig
	Topics      TopicConfig
}

// ProducerConfig конфигурация для продюсера
type ProducerConfig struct {
	MaxMessageBytes  int
	Compression      sarama.CompressionCodec
	RequiredAcks     sarama.RequiredAcks
	FlushMaxMessages int
	MaxRetries       int
}

// TopicConfig параметры создаваемых топиков
type TopicConfig struct {
	NumPartitions     int
	ReplicationFactor int
}

// NewConfig создает новую конфигурацию Kafka
func NewConfig(brokers []string, topicPrefix string) *Config {
	return &Config{
		Brokers:     brokers,
		TopicPrefix: topicPrefix,
		Producer: ProducerConfig{
			MaxMessageBytes:  1000000,
			Compression:      sarama.CompressionSnappy,
			RequiredAcks:     sarama.WaitForAll,
			FlushMaxMessages: 100,
			MaxRetries:       3,
		},
		Topics: TopicConfig{
			NumPartitions:     3,
			ReplicationFactor: 1,
		},
	}
}

// NewSaramaConfig создает новую конфигурацию Sarama для синхронного продюсера
func NewSaramaConfig(cfg *Config) *sarama.Config {
	saramaConfig := sarama.NewConfig()

	// Версия Kafka
	saramaConfig.Version = sarama.V3_3_0_0
	saramaConfig.ClientID = "storefront-service"

	// Настройки продюсера
	saramaConfig.Producer.MaxMessageBytes = cfg.Producer.MaxMessageBytes
	saramaConfig.Producer.Compression = cfg.Producer.Compression
	saramaConfig.Producer.RequiredAcks = cfg.Producer.RequiredAcks
	saramaConfig.Producer.Flush.MaxMessages = cfg.Producer.FlushMaxMessages
	saramaConfig.Producer.Retry.Max = cfg.Producer.MaxRetries
	// SyncProducer requires both
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true

	return saramaConfig
}
