// Package events holds publisher implementations for ticket events.
package events

import (
	"context"

	interfaces "github.com/Bryant1523/notasapp/internal/interfaces"
)

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, topic, key string, event any) error {
	return nil
}

var _ interfaces.EventPublisher = NopPublisher{}
