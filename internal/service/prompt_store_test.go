package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/watchledger/backend/internal/domain"
)

func TestPromptStoreResolveWatch(t *testing.T) {
	repos := setupRepos(t)
	store := NewPromptStore(repos.prompts, repos.guides, 0)
	ctx := context.Background()

	repos.seedWatchPrompts(t, domain.ModelGPT4o)
	repos.addPrompt(t, domain.PromptNameSystem, "claude only", domain.PurposeWatch, domain.ModelClaudeOpus)

	set, err := store.Resolve(ctx, domain.PurposeWatch, domain.ModelGPT4o)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if set.SystemPrompt != "You are a watch copywriter." || set.StyleGuide != "Be concise." {
		t.Fatalf("unexpected prompt set: %+v", set)
	}

	// claude 只有 System Prompt，没有 Style Guide
	_, err = store.Resolve(ctx, domain.PurposeWatch, domain.ModelClaudeOpus)
	if !errors.Is(err, domain.ErrMissingPrompt) {
		t.Fatalf("expected ErrMissingPrompt, got %v", err)
	}
}

func TestPromptStoreResolveWatchEmptyContent(t *testing.T) {
	repos := setupRepos(t)
	store := NewPromptStore(repos.prompts, repos.guides, 0)

	repos.addPrompt(t, domain.PromptNameSystem, "system", domain.PurposeWatch, domain.ModelGPT4o)
	repos.addPrompt(t, domain.PromptNameStyleGuide, "  \n", domain.PurposeWatch, domain.ModelGPT4o)

	_, err := store.Resolve(context.Background(), domain.PurposeWatch, domain.ModelGPT4o)
	if !errors.Is(err, domain.ErrMissingPrompt) {
		t.Fatalf("expected ErrMissingPrompt, got %v", err)
	}
}

func TestPromptStoreResolveReferenceLenient(t *testing.T) {
	repos := setupRepos(t)
	store := NewPromptStore(repos.prompts, repos.guides, 0)
	ctx := context.Background()

	set, err := store.Resolve(ctx, domain.PurposeReference, domain.ModelClaudeOpus)
	if err != nil {
		t.Fatalf("expected lenient resolve, got %v", err)
	}
	if set.SystemPrompt != "" {
		t.Fatalf("expected empty prompt, got %q", set.SystemPrompt)
	}

	repos.addStyleGuide(t, domain.StyleGuideReferenceSystemPrompt, "Describe the reference.")
	set, err = store.Resolve(ctx, domain.PurposeReference, domain.ModelGPT4o)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if set.SystemPrompt != "Describe the reference." {
		t.Fatalf("unexpected prompt: %q", set.SystemPrompt)
	}
}

func TestPromptStoreResolveUnknownPurpose(t *testing.T) {
	repos := setupRepos(t)
	store := NewPromptStore(repos.prompts, repos.guides, 0)

	_, err := store.Resolve(context.Background(), domain.Purpose("listing"), domain.ModelGPT4o)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestPromptStoreCacheInvalidate(t *testing.T) {
	repos := setupRepos(t)
	store := NewPromptStore(repos.prompts, repos.guides, time.Minute)
	ctx := context.Background()

	repos.addStyleGuide(t, domain.StyleGuideReferenceSystemPrompt, "v1")
	set, err := store.Resolve(ctx, domain.PurposeReference, domain.ModelGPT4o)
	if err != nil || set.SystemPrompt != "v1" {
		t.Fatalf("unexpected first resolve: %+v, %v", set, err)
	}

	guide, err := repos.guides.GetByName(ctx, domain.StyleGuideReferenceSystemPrompt)
	if err != nil {
		t.Fatalf("GetByName error: %v", err)
	}
	guide.Content = "v2"
	if err := repos.guides.Save(ctx, guide); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	set, _ = store.Resolve(ctx, domain.PurposeReference, domain.ModelClaudeOpus)
	if set.SystemPrompt != "v1" {
		t.Fatalf("expected cached v1, got %q", set.SystemPrompt)
	}

	store.Invalidate()
	set, _ = store.Resolve(ctx, domain.PurposeReference, domain.ModelClaudeOpus)
	if set.SystemPrompt != "v2" {
		t.Fatalf("expected v2 after invalidate, got %q", set.SystemPrompt)
	}
}
