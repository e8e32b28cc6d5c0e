package subscriber

import (
	"context"
	"testing"

	"github.com/watchledger/backend/internal/eventbus"
)

type countingCache struct {
	calls int
}

func (c *countingCache) Invalidate() {
	c.calls++
}

func TestCatalogEventSubscriberInvalidatesOnPromptChanged(t *testing.T) {
	cache := &countingCache{}
	bus := eventbus.NewCatalogEventBus()
	NewCatalogEventSubscriber(cache).Register(bus)

	ctx := context.Background()
	if err := bus.Publish(ctx, eventbus.CatalogEventReferenceCreated, eventbus.CatalogEvent{Type: eventbus.CatalogEventReferenceCreated}); err != nil {
		t.Fatalf("publish reference created: %v", err)
	}
	if cache.calls != 0 {
		t.Fatalf("expected no invalidation, got %d", cache.calls)
	}

	if err := bus.Publish(ctx, eventbus.CatalogEventPromptChanged, eventbus.CatalogEvent{Type: eventbus.CatalogEventPromptChanged, Name: "System Prompt"}); err != nil {
		t.Fatalf("publish prompt changed: %v", err)
	}
	if cache.calls != 1 {
		t.Fatalf("expected 1 invalidation, got %d", cache.calls)
	}
}

func TestCatalogEventSubscriberRegisterNilBus(t *testing.T) {
	NewCatalogEventSubscriber(nil).Register(nil)
}
