package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/watchledger/backend/config"
	"github.com/watchledger/backend/internal/domain"
	"github.com/watchledger/backend/internal/model"
	"github.com/watchledger/backend/internal/pkg/database"
	"github.com/watchledger/backend/internal/pkg/llm"
	"github.com/watchledger/backend/internal/repository"
	"gorm.io/gorm"
)

type testRepos struct {
	db      *gorm.DB
	watches repository.WatchRepository
	refs    repository.ReferenceRepository
	prompts repository.PromptRepository
	guides  repository.StyleGuideRepository
	logs    repository.GenerationLogRepository
}

func setupRepos(t *testing.T) *testRepos {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// 每个连接都是独立的内存库
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return &testRepos{
		db:      db,
		watches: repository.NewWatchRepository(db),
		refs:    repository.NewReferenceRepository(db),
		prompts: repository.NewPromptRepository(db),
		guides:  repository.NewStyleGuideRepository(db),
		logs:    repository.NewGenerationLogRepository(db),
	}
}

func strPtr(s string) *string { return &s }

func (r *testRepos) addReference(t *testing.T, brand, name string, desc *string) *model.Reference {
	t.Helper()
	ref := &model.Reference{Brand: brand, ReferenceName: name, ReferenceDescription: desc}
	if err := r.refs.Create(context.Background(), ref); err != nil {
		t.Fatalf("create reference: %v", err)
	}
	return ref
}

func (r *testRepos) addWatch(t *testing.T, brand string, modelReference *string) *model.Watch {
	t.Helper()
	w := &model.Watch{Brand: brand, ModelName: "test", ModelReference: modelReference}
	if err := r.watches.Create(context.Background(), w); err != nil {
		t.Fatalf("create watch: %v", err)
	}
	return w
}

func (r *testRepos) addPrompt(t *testing.T, name, content string, purpose domain.Purpose, aiModel string) {
	t.Helper()
	p := &model.Prompt{Name: name, Content: content, Purpose: string(purpose), AIModel: aiModel}
	if err := r.prompts.Create(context.Background(), p); err != nil {
		t.Fatalf("create prompt: %v", err)
	}
}

func (r *testRepos) addStyleGuide(t *testing.T, name, content string) {
	t.Helper()
	if err := r.guides.Create(context.Background(), &model.StyleGuide{Name: name, Content: content}); err != nil {
		t.Fatalf("create style guide: %v", err)
	}
}

// seedWatchPrompts 为指定模型写入完整的 watch 提示词
func (r *testRepos) seedWatchPrompts(t *testing.T, aiModel string) {
	t.Helper()
	r.addPrompt(t, domain.PromptNameSystem, "You are a watch copywriter.", domain.PurposeWatch, aiModel)
	r.addPrompt(t, domain.PromptNameStyleGuide, "Be concise.", domain.PurposeWatch, aiModel)
}

func testRegistry() *llm.Registry {
	cfg := config.Default().LLM
	cfg.Anthropic.APIKey = "ak-test"
	cfg.OpenAI.APIKey = "sk-test"
	return llm.NewRegistry(cfg)
}
