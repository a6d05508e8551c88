package models

import "time"

// ChangeEvent announces a successful mutation made through the backend.
type ChangeEvent struct {
	ID         string                 `json:"id"`
	EventType  string                 `json:"event_type"`
	Resource   string                 `json:"resource"`
	ResourceID string                 `json:"resource_id,omitempty"`
	Action     string                 `json:"action"`
	Timestamp  time.Time              `json:"timestamp"`
	RequestID  string                 `json:"request_id,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

const (
	EventTypeAutomationRuleChanged = "automation_rule_changed"
	EventTypeIntegrationChanged    = "integration_changed"
)

const (
	ResourceAutomation  = "automation"
	ResourceIntegration = "integration"
)

const (
	ActionCreate     = "create"
	ActionUpdate     = "update"
	ActionDelete     = "delete"
	ActionConnect    = "connect"
	ActionDisconnect = "disconnect"
	ActionSync       = "sync"
)
