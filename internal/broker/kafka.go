package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"leadflow/internal/config"
	"leadflow/internal/constants"
	"leadflow/internal/logger"
	"leadflow/pkg/logging"
	"leadflow/pkg/metrics"
	"leadflow/pkg/models"
)

const serviceName = "leadflow"

type KafkaProducer struct {
	writer *kafka.Writer
	logger logger.Logger
}

func NewKafkaProducer(cfg config.KafkaConfig, log logger.Logger) *KafkaProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           constants.KafkaBatchTimeout,
		WriteTimeout:           constants.KafkaWriteTimeout,
		AllowAutoTopicCreation: true,
		Async:                  false,
	}
	return &KafkaProducer{writer: w, logger: log}
}

func (p *KafkaProducer) Publish(ctx context.Context, topic string, event models.ChangeEvent) error {
	msg, err := buildMessage(ctx, topic, event)
	if err != nil {
		return err
	}

	start := time.Now()
	err = p.writer.WriteMessages(ctx, msg)
	metrics.ObserveKafkaWriteDuration(serviceName, topic, time.Since(start))

	if err != nil {
		p.logger.ErrorwCtx(ctx, "Failed to publish change event",
			"topic", topic,
			"event_type", event.EventType,
			"resource_id", event.ResourceID,
			"error", err,
		)
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	metrics.IncKafkaMessagesWritten(serviceName, topic)
	metrics.ObserveKafkaMessageSize(serviceName, topic, "out", len(msg.Value))

	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// buildMessage keys events by resource so changes to one rule or provider
// stay ordered within a partition.
func buildMessage(ctx context.Context, topic string, event models.ChangeEvent) (kafka.Message, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	headers := []kafka.Header{
		{Key: "event_type", Value: []byte(event.EventType)},
	}
	if requestID := logging.GetRequestID(ctx); requestID != "" {
		headers = append(headers, kafka.Header{Key: "request_id", Value: []byte(requestID)})
	}

	return kafka.Message{
		Topic:   topic,
		Key:     []byte(event.Resource + ":" + event.ResourceID),
		Value:   body,
		Headers: headers,
		Time:    event.Timestamp,
	}, nil
}
