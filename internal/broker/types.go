package broker

import (
	"context"
	"time"
)

// OutcomeEvent is the audit record published after each processed
// delivery. Downstream consumers (analytics, alerting) read these; the
// webhook response never waits on publication.
type OutcomeEvent struct {
	ID           string          `json:"id"`
	StorefrontID string          `json:"storefront_id"`
	Topic        string          `json:"topic"`
	Timestamp    time.Time       `json:"timestamp"`
	Success      bool            `json:"success"`
	TotalTenants int             `json:"total_tenants"`
	Synced       int             `json:"synced"`
	Outcomes     []TenantOutcome `json:"outcomes"`
}

type TenantOutcome struct {
	TenantID string `json:"tenant_id"`
	Success  bool   `json:"success"`
	RecordID string `json:"record_id,omitempty"`
	Error    string `json:"error,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
}

type Publisher interface {
	PublishOutcome(ctx context.Context, event OutcomeEvent) error
	Close() error
}
