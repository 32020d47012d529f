package repository

import (
	"context"

	"ReplicaForecast/internal/domain/models"
	"ReplicaForecast/internal/domain/repository"
	pkgkafka "ReplicaForecast/pkg/kafka"
)

// Producer is the part of pkg/kafka.Producer the publisher needs.
type Producer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// KafkaPublisher implements Publisher for Kafka. Records are keyed by algorithm so each
// algorithm's records stay ordered within a partition.
type KafkaPublisher struct {
	producer Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, r *models.ForecastRecord) error {
	return p.producer.Publish(ctx, p.topic, []byte(r.Algorithm), r)
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, records []*models.ForecastRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(records))
	for i, r := range records {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(r.Algorithm),
			Value: r,
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
