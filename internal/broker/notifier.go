package broker

import (
	"context"
	"time"

	"github.com/google/uuid"

	"leadflow/internal/logger"
	"leadflow/pkg/logging"
	"leadflow/pkg/models"
)

// Notifier publishes change events for successful mutations. Publish
// failures are logged and never fail the mutation itself.
type Notifier struct {
	producer Producer
	topic    string
	logger   logger.Logger
	now      func() time.Time
}

func NewNotifier(producer Producer, topic string, log logger.Logger) *Notifier {
	return &Notifier{
		producer: producer,
		topic:    topic,
		logger:   log,
		now:      time.Now,
	}
}

func (n *Notifier) RuleChanged(ctx context.Context, action, ruleID string) {
	n.publish(ctx, models.ChangeEvent{
		EventType:  models.EventTypeAutomationRuleChanged,
		Resource:   models.ResourceAutomation,
		ResourceID: ruleID,
		Action:     action,
	})
}

func (n *Notifier) IntegrationChanged(ctx context.Context, action, provider string) {
	n.publish(ctx, models.ChangeEvent{
		EventType:  models.EventTypeIntegrationChanged,
		Resource:   models.ResourceIntegration,
		ResourceID: provider,
		Action:     action,
	})
}

func (n *Notifier) publish(ctx context.Context, event models.ChangeEvent) {
	if n == nil || n.producer == nil || n.topic == "" {
		return
	}

	event.ID = uuid.NewString()
	event.Timestamp = n.now().UTC()
	event.RequestID = logging.GetRequestID(ctx)

	if err := n.producer.Publish(ctx, n.topic, event); err != nil {
		n.logger.WarnwCtx(ctx, "Failed to publish change event",
			"event_type", event.EventType,
			"resource_id", event.ResourceID,
			"action", event.Action,
			"error", err,
		)
	}
}
