package event

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/prohmpiriya/tenant-service/internal/domain"
)

// Type names a tenant lifecycle event
type Type string

const (
	TypeTenantCreated Type = "tenant.created"
	TypeTenantUpdated Type = "tenant.updated"
)

// TenantEvent is published after a tenant write has been committed
type TenantEvent struct {
	ID              string               `json:"id"`
	Type            Type                 `json:"type"`
	TenantID        int64                `json:"tenantId"`
	Subdomain       string               `json:"subdomain"`
	ChangedSettings []domain.SettingKind `json:"changedSettings,omitempty"`
	ActorID         string               `json:"actorId,omitempty"`
	OccurredAt      time.Time            `json:"occurredAt"`
}

// NewTenantEvent stamps a new event with an id and the current time
func NewTenantEvent(t Type, tenant *domain.Tenant, actorID string, changed []domain.SettingKind) TenantEvent {
	return TenantEvent{
		ID:              uuid.New().String(),
		Type:            t,
		TenantID:        tenant.ID,
		Subdomain:       tenant.Subdomain,
		ChangedSettings: changed,
		ActorID:         actorID,
		OccurredAt:      time.Now().UTC(),
	}
}

// Key partitions events by tenant so one tenant's events stay ordered
func (e TenantEvent) Key() string {
	return strconv.FormatInt(e.TenantID, 10)
}

// Publisher delivers tenant events to downstream consumers
type Publisher interface {
	Publish(ctx context.Context, evt TenantEvent) error
	Close()
}

// NopPublisher drops every event
type NopPublisher struct{}

func NewNopPublisher() *NopPublisher { return &NopPublisher{} }

func (NopPublisher) Publish(ctx context.Context, evt TenantEvent) error { return nil }

func (NopPublisher) Close() {}
