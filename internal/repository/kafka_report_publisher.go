package repository

import (
	"context"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	pkgkafka "FinCast/pkg/kafka"

	"github.com/segmentio/kafka-go"
)

// KafkaReportPublisher publishes each report as one JSON message keyed by its as-of date.
type KafkaReportPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaReportPublisher(producer *pkgkafka.Producer, topic string) *KafkaReportPublisher {
	return &KafkaReportPublisher{producer: producer, topic: topic}
}

func (p *KafkaReportPublisher) Publish(ctx context.Context, r *models.Report) error {
	if r == nil {
		return nil
	}
	key := []byte(r.AsOf.Format("2006-01-02"))
	return p.producer.Publish(ctx, p.topic, key, r,
		kafka.Header{Key: "report_id", Value: []byte(r.ID)},
		kafka.Header{Key: "content_type", Value: []byte("application/json")},
	)
}

func (p *KafkaReportPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ domrepo.ReportPublisher = (*KafkaReportPublisher)(nil)
