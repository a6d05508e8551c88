package constants

import "time"

const (
	DefaultHTTPTimeout   = 15 * time.Second
	DefaultServerTimeout = 30 * time.Second
	DefaultUserAgent     = "leadflow/1.0"
	MaxResponseBytes     = 4 << 20
)

const (
	AutomationsPath       = "/automations"
	AutomationExecutePath = "/automations/execute"
	IntegrationsPath      = "/integrations"
)

const (
	CacheKeyPrefix  = "leadflow:"
	DefaultCacheTTL = 5 * time.Minute
)

const (
	DefaultRuleEventsTopic = "automation_rule_events"
	KafkaBatchTimeout      = 10 * time.Millisecond
	KafkaWriteTimeout      = 10 * time.Second
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	HTTPStatusOKMin = 200
	HTTPStatusOKMax = 299
)
