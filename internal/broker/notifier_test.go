package broker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadflow/internal/logger"
	"leadflow/pkg/logging"
	"leadflow/pkg/models"
)

type recordingProducer struct {
	mu     sync.Mutex
	topics []string
	events []models.ChangeEvent
	err    error
}

func (p *recordingProducer) Publish(_ context.Context, topic string, event models.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingProducer) Close() error { return nil }

func TestNotifier_RuleChanged(t *testing.T) {
	producer := &recordingProducer{}
	n := NewNotifier(producer, "rules", logger.NopLogger())
	n.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	ctx := logging.WithRequestID(context.Background(), "req-1")
	n.RuleChanged(ctx, models.ActionCreate, "7")
	n.IntegrationChanged(ctx, models.ActionConnect, "hubspot")

	require.Len(t, producer.events, 2)
	assert.Equal(t, []string{"rules", "rules"}, producer.topics)

	rule := producer.events[0]
	assert.NotEmpty(t, rule.ID)
	assert.Equal(t, models.EventTypeAutomationRuleChanged, rule.EventType)
	assert.Equal(t, "7", rule.ResourceID)
	assert.Equal(t, "req-1", rule.RequestID)
	assert.Equal(t, 2026, rule.Timestamp.Year())

	integration := producer.events[1]
	assert.Equal(t, models.ResourceIntegration, integration.Resource)
	assert.Equal(t, models.ActionConnect, integration.Action)
}

func TestNotifier_SwallowsPublishErrors(t *testing.T) {
	producer := &recordingProducer{err: errors.New("broker down")}
	n := NewNotifier(producer, "rules", logger.NopLogger())

	assert.NotPanics(t, func() {
		n.RuleChanged(context.Background(), models.ActionDelete, "1")
	})
	assert.Len(t, producer.events, 1)
}

func TestNotifier_NilIsNoop(t *testing.T) {
	var n *Notifier
	assert.NotPanics(t, func() {
		n.RuleChanged(context.Background(), models.ActionUpdate, "1")
	})
}
