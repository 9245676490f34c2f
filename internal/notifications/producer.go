package notifications

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"
)

// Producer interface defines the contract for publishing notifications
type Producer interface {
	Publish(ctx context.Context, notification *Notification) error
	Close() error
}

// KafkaProducerConfig contains configuration for the Kafka notification producer
type KafkaProducerConfig struct {
	Brokers          []string
	Topic            string
	RetryMax         int
	Timeout          time.Duration
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig(brokers []string, topic string) *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:          brokers,
		Topic:            topic,
		RetryMax:         3,
		Timeout:          10 * time.Second,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
	}
}

// KafkaProducer publishes notifications to Kafka
type KafkaProducer struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
}

// NewKafkaProducer creates a new Kafka notification producer
func NewKafkaProducer(config *KafkaProducerConfig) (*KafkaProducer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = config.Timeout
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash partitioner keeps per-recipient ordering
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Printf("Kafka notification producer created for topic %s", config.Topic)
	return &KafkaProducer{producer: producer, config: config}, nil
}

// Publish publishes a single notification to Kafka
func (kp *KafkaProducer) Publish(ctx context.Context, notification *Notification) error {
	messageBytes, err := notification.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: kp.config.Topic,
		Key:   sarama.StringEncoder(notification.GetPartitionKey()),
		Value: sarama.ByteEncoder(messageBytes),
		Headers: []sarama.RecordHeader{
			{Key: []byte("notification_id"), Value: []byte(notification.ID.String())},
			{Key: []byte("template_key"), Value: []byte(notification.TemplateKey)},
			{Key: []byte("producer"), Value: []byte("donatheresa-reservations")},
		},
		Timestamp: notification.CreatedAt,
	}

	if _, _, err := kp.producer.SendMessage(message); err != nil {
		notification.Status = NotificationStatusFailed
		return fmt.Errorf("failed to send notification to Kafka: %w", err)
	}

	return nil
}

// SyncProducer exposes the underlying producer so the analytics tracker can
// share the same Kafka connection.
func (kp *KafkaProducer) SyncProducer() sarama.SyncProducer {
	return kp.producer
}

// Close closes the Kafka producer
func (kp *KafkaProducer) Close() error {
	if kp.producer != nil {
		if err := kp.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
		log.Printf("Kafka notification producer closed")
	}
	return nil
}
