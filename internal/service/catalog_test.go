package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/watchledger/backend/internal/domain"
	"github.com/watchledger/backend/internal/eventbus"
	"github.com/watchledger/backend/internal/repository"
	"github.com/watchledger/backend/internal/subscriber"
)

func TestWatchServiceCRUD(t *testing.T) {
	repos := setupRepos(t)
	svc := NewWatchService(repos.watches)
	ctx := context.Background()

	if _, err := svc.Create(ctx, WatchRequest{Brand: "  "}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	w, err := svc.Create(ctx, WatchRequest{Brand: " Omega ", ModelReference: strPtr("  ")})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if w.Brand != "Omega" || w.ModelReference != nil {
		t.Fatalf("unexpected normalized watch: %+v", w)
	}

	w, err = svc.Update(ctx, w.ID, WatchRequest{Brand: "Omega", ModelReference: strPtr("3570.50"), Description: "edited"})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if w.Reference() != "3570.50" || w.Description != "edited" {
		t.Fatalf("unexpected updated watch: %+v", w)
	}

	if _, err := svc.Update(ctx, 999, WatchRequest{Brand: "Omega"}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.List(ctx, repository.ListOptions{OrderBy: "brand; DROP TABLE watches"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for bad order, got %v", err)
	}

	if err := svc.Delete(ctx, w.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := svc.Delete(ctx, w.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestReferenceServiceCreatePublishes(t *testing.T) {
	repos := setupRepos(t)
	bus := eventbus.NewCatalogEventBus()
	var events []eventbus.CatalogEvent
	bus.Subscribe(eventbus.CatalogEventReferenceCreated, func(_ context.Context, e eventbus.CatalogEvent) error {
		events = append(events, e)
		return nil
	})
	svc := NewReferenceService(repos.refs, bus)
	ctx := context.Background()

	if _, err := svc.Create(ctx, ReferenceRequest{Brand: "Rolex"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	ref, err := svc.Create(ctx, ReferenceRequest{Brand: "Rolex", ReferenceName: "116500LN", ReferenceDescription: strPtr(" ")})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if ref.ReferenceDescription != nil {
		t.Fatalf("blank description should be stored as null")
	}
	if len(events) != 1 || events[0].Source != "user" || events[0].ReferenceID != ref.ID {
		t.Fatalf("unexpected events: %+v", events)
	}

	ref, err = svc.Update(ctx, ref.ID, ReferenceRequest{Brand: "Rolex", ReferenceName: "116500LN", ReferenceDescription: strPtr("Daytona")})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if !ref.HasDescription() {
		t.Fatalf("expected description after update")
	}
}

func TestPromptServiceWritesInvalidateStore(t *testing.T) {
	repos := setupRepos(t)
	store := NewPromptStore(repos.prompts, repos.guides, time.Minute)
	bus := eventbus.NewCatalogEventBus()
	subscriber.NewCatalogEventSubscriber(store).Register(bus)
	svc := NewPromptService(repos.prompts, repos.guides, bus)
	ctx := context.Background()

	if _, err := store.Resolve(ctx, domain.PurposeWatch, domain.ModelGPT4o); !errors.Is(err, domain.ErrMissingPrompt) {
		t.Fatalf("expected ErrMissingPrompt, got %v", err)
	}

	if _, err := svc.Create(ctx, PromptRequest{Name: domain.PromptNameSystem, Content: "sys", Purpose: "watch", AIModel: domain.ModelGPT4o}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	guide, err := svc.Create(ctx, PromptRequest{Name: domain.PromptNameStyleGuide, Content: "style", Purpose: "watch", AIModel: domain.ModelGPT4o})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	set, err := store.Resolve(ctx, domain.PurposeWatch, domain.ModelGPT4o)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if set.StyleGuide != "style" {
		t.Fatalf("unexpected style guide: %q", set.StyleGuide)
	}

	if _, err := svc.Update(ctx, guide.ID, PromptRequest{Name: domain.PromptNameStyleGuide, Content: "style v2", Purpose: "watch", AIModel: domain.ModelGPT4o}); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	set, _ = store.Resolve(ctx, domain.PurposeWatch, domain.ModelGPT4o)
	if set.StyleGuide != "style v2" {
		t.Fatalf("expected fresh style guide after update, got %q", set.StyleGuide)
	}

	if err := svc.Delete(ctx, guide.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := store.Resolve(ctx, domain.PurposeWatch, domain.ModelGPT4o); !errors.Is(err, domain.ErrMissingPrompt) {
		t.Fatalf("expected ErrMissingPrompt after delete, got %v", err)
	}
}

func TestPromptServiceValidation(t *testing.T) {
	repos := setupRepos(t)
	svc := NewPromptService(repos.prompts, repos.guides, nil)
	ctx := context.Background()

	cases := []PromptRequest{
		{Name: "", Purpose: "watch", AIModel: domain.ModelGPT4o},
		{Name: "System Prompt", Purpose: "listing", AIModel: domain.ModelGPT4o},
		{Name: "System Prompt", Purpose: "reference", AIModel: " "},
	}
	for _, req := range cases {
		if _, err := svc.Create(ctx, req); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error for %+v, got %v", req, err)
		}
	}
}

func TestPromptServiceStyleGuideUniqueName(t *testing.T) {
	repos := setupRepos(t)
	svc := NewPromptService(repos.prompts, repos.guides, nil)
	ctx := context.Background()

	first, err := svc.CreateStyleGuide(ctx, StyleGuideRequest{Name: domain.StyleGuideReferenceSystemPrompt, Content: "a"})
	if err != nil {
		t.Fatalf("CreateStyleGuide error: %v", err)
	}
	if _, err := svc.CreateStyleGuide(ctx, StyleGuideRequest{Name: domain.StyleGuideReferenceSystemPrompt, Content: "b"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected duplicate name validation error, got %v", err)
	}

	other, err := svc.CreateStyleGuide(ctx, StyleGuideRequest{Name: "other", Content: "c"})
	if err != nil {
		t.Fatalf("CreateStyleGuide error: %v", err)
	}
	if _, err := svc.UpdateStyleGuide(ctx, other.ID, StyleGuideRequest{Name: first.Name}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected rename collision validation error, got %v", err)
	}
	if _, err := svc.UpdateStyleGuide(ctx, first.ID, StyleGuideRequest{Name: first.Name, Content: "a2"}); err != nil {
		t.Fatalf("UpdateStyleGuide error: %v", err)
	}
}
