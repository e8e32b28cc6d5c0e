package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/watchledger/backend/config"
	"github.com/watchledger/backend/internal/eventbus"
	"github.com/watchledger/backend/internal/metrics"
	"github.com/watchledger/backend/internal/pkg/database"
	"github.com/watchledger/backend/internal/pkg/llm"
	"github.com/watchledger/backend/internal/repository"
	"github.com/watchledger/backend/internal/service"
	"github.com/watchledger/backend/internal/subscriber"
	"gorm.io/gorm"
)

// app 进程内共享的依赖
type app struct {
	cfg     *config.Config
	db      *gorm.DB
	metrics *metrics.Metrics
	bus     *eventbus.CatalogEventBus

	watchRepo     repository.WatchRepository
	referenceRepo repository.ReferenceRepository
	promptRepo    repository.PromptRepository
	guideRepo     repository.StyleGuideRepository

	promptStore *service.PromptStore
	gate        *service.DependencyGate
	logs        service.GenerationLogService
	generation  *service.GenerationService
	reconcile   *service.ReconcileService
}

func newApp() (*app, error) {
	cfg := config.GetConfig()

	if cfg.Database.Type != "mysql" {
		if dir := filepath.Dir(cfg.Database.DSN); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	db, err := database.InitDB(cfg.Database.Type, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	a := &app{
		cfg:           cfg,
		db:            db,
		metrics:       m,
		bus:           eventbus.NewCatalogEventBus(),
		watchRepo:     repository.NewWatchRepository(db),
		referenceRepo: repository.NewReferenceRepository(db),
		promptRepo:    repository.NewPromptRepository(db),
		guideRepo:     repository.NewStyleGuideRepository(db),
	}

	a.promptStore = service.NewPromptStore(a.promptRepo, a.guideRepo, cfg.Prompt.CacheTTL)
	a.gate = service.NewDependencyGate(a.referenceRepo)
	a.logs = service.NewGenerationLogService(repository.NewGenerationLogRepository(db))

	a.generation = service.NewGenerationService(
		cfg.LLM.DefaultModel,
		a.promptStore,
		llm.NewRegistry(cfg.LLM),
		llm.NewClient(cfg.LLM.Timeout),
		a.gate,
		a.referenceRepo,
		a.logs,
	)
	a.generation.SetEventBus(a.bus)
	a.generation.SetMetrics(m)

	a.reconcile = service.NewReconcileService(a.watchRepo, a.referenceRepo, cfg.Reconcile.MatchBrand)
	a.reconcile.SetEventBus(a.bus)
	a.reconcile.SetMetrics(m)

	subscriber.NewCatalogEventSubscriber(a.promptStore).Register(a.bus)
	return a, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
}
