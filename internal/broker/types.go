package broker

import (
	"context"

	"leadflow/pkg/models"
)

type Producer interface {
	Publish(ctx context.Context, topic string, event models.ChangeEvent) error
	Close() error
}
