package repository

import (
	"context"

	"DraftPulse/internal/domain/models"
	domrepo "DraftPulse/internal/domain/repository"
	pkgkafka "DraftPulse/pkg/kafka"
)

// KafkaObservationPublisher fans persisted observation batches out to a Kafka
// topic, keyed by player so one prospect's line history stays ordered within
// a partition.
type KafkaObservationPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

var _ domrepo.ObservationPublisher = (*KafkaObservationPublisher)(nil)

func NewKafkaObservationPublisher(producer *pkgkafka.Producer, topic string) *KafkaObservationPublisher {
	return &KafkaObservationPublisher{producer: producer, topic: topic}
}

func (p *KafkaObservationPublisher) PublishBatch(ctx context.Context, obs []models.Observation) error {
	if len(obs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(obs))
	for _, o := range obs {
		msgs = append(msgs, pkgkafka.Message{
			Key:   []byte(o.PlayerName),
			Value: o,
		})
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaObservationPublisher) Close() error {
	return p.producer.Close()
}
