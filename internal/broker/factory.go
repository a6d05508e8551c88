package broker

import (
	"context"
	"fmt"

	"leadflow/internal/config"
	"leadflow/internal/logger"
	"leadflow/pkg/models"
)

// NewProducer returns a Kafka producer when events are enabled and a no-op
// producer otherwise.
func NewProducer(cfg config.EventsConfig, log logger.Logger) (Producer, error) {
	if !cfg.Enabled {
		return NopProducer{}, nil
	}
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("events enabled but no kafka brokers configured")
	}
	return NewKafkaProducer(cfg.Kafka, log), nil
}

// NopProducer drops every event.
type NopProducer struct{}

func (NopProducer) Publish(context.Context, string, models.ChangeEvent) error { return nil }
func (NopProducer) Close() error                                              { return nil }
