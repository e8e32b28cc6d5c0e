package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/watchledger/backend/config"
	"github.com/watchledger/backend/internal/domain"
	"github.com/watchledger/backend/internal/model"
	"github.com/watchledger/backend/internal/pkg/database"
	"github.com/watchledger/backend/internal/pkg/llm"
	"github.com/watchledger/backend/internal/repository"
	"github.com/watchledger/backend/internal/service"
	"gorm.io/gorm"
)

const claudeURL = "https://api.anthropic.com/v1/messages"

type testServer struct {
	engine  *gin.Engine
	db      *gorm.DB
	refs    repository.ReferenceRepository
	watches repository.WatchRepository
	prompts repository.PromptRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	watches := repository.NewWatchRepository(db)
	refs := repository.NewReferenceRepository(db)
	prompts := repository.NewPromptRepository(db)
	guides := repository.NewStyleGuideRepository(db)
	logs := service.NewGenerationLogService(repository.NewGenerationLogRepository(db))

	cfg := config.Default().LLM
	cfg.Anthropic.APIKey = "ak-test"
	cfg.OpenAI.APIKey = "sk-test"
	client := llm.NewClient(0)
	httpmock.ActivateNonDefault(client.HTTP)
	t.Cleanup(httpmock.DeactivateAndReset)

	gate := service.NewDependencyGate(refs)
	generation := service.NewGenerationService(domain.DefaultModel, service.NewPromptStore(prompts, guides, 0), llm.NewRegistry(cfg), client, gate, refs, logs)
	reconcile := service.NewReconcileService(watches, refs, false)

	engine := gin.New()
	api := engine.Group("/api")
	NewGenerationHandler(generation, reconcile).RegisterRoutes(api)
	NewWatchHandler(service.NewWatchService(watches), gate, generation).RegisterRoutes(api)
	NewReferenceHandler(service.NewReferenceService(refs, nil)).RegisterRoutes(api)
	NewPromptHandler(service.NewPromptService(prompts, guides, nil)).RegisterRoutes(api)
	NewGenerationLogHandler(logs).RegisterRoutes(api)

	return &testServer{engine: engine, db: db, refs: refs, watches: watches, prompts: prompts}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

func strPtr(s string) *string { return &s }

func (s *testServer) seedClaudeWatchPrompts(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.prompts.Create(ctx, &model.Prompt{Name: domain.PromptNameSystem, Content: "sys", Purpose: "watch", AIModel: domain.ModelClaudeOpus}))
	require.NoError(t, s.prompts.Create(ctx, &model.Prompt{Name: domain.PromptNameStyleGuide, Content: "style", Purpose: "watch", AIModel: domain.ModelClaudeOpus}))
}

func claudeResponder(text string) httpmock.Responder {
	return httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
		"content": []map[string]any{{"type": "text", "text": text}},
		"usage":   map[string]any{"input_tokens": 1, "output_tokens": 2},
	})
}

func TestGenerateWatchDescriptionEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.seedClaudeWatchPrompts(t)
	require.NoError(t, s.refs.Create(context.Background(), &model.Reference{Brand: "Omega", ReferenceName: "3570.50", ReferenceDescription: strPtr("Moonwatch.")}))
	httpmock.RegisterResponder(http.MethodPost, claudeURL, claudeResponder("Listing copy."))

	w, body := s.do(t, http.MethodPost, "/api/functions/generate-watch-description", map[string]any{
		"watchData":   map[string]any{"brand": "Omega", "model_reference": "3570.50"},
		"activeModel": domain.ModelClaudeOpus,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.Equal(t, "Listing copy.", body["description"])
}

func TestGenerateWatchDescriptionDependencyNotMet(t *testing.T) {
	s := newTestServer(t)
	s.seedClaudeWatchPrompts(t)

	w, body := s.do(t, http.MethodPost, "/api/functions/generate-watch-description", map[string]any{
		"watchData": map[string]any{"brand": "Rolex", "model_reference": "116500LN"},
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, domain.ReasonNoReferenceRecord, body["error"])
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestGenerateWatchDescriptionHidesUpstreamDetail(t *testing.T) {
	s := newTestServer(t)
	s.seedClaudeWatchPrompts(t)
	require.NoError(t, s.refs.Create(context.Background(), &model.Reference{Brand: "Omega", ReferenceName: "3570.50", ReferenceDescription: strPtr("Moonwatch.")}))
	httpmock.RegisterResponder(http.MethodPost, claudeURL, httpmock.NewStringResponder(http.StatusUnauthorized, `{"error":"invalid x-api-key"}`))

	w, body := s.do(t, http.MethodPost, "/api/functions/generate-watch-description", map[string]any{
		"watchData": map[string]any{"brand": "Omega", "model_reference": "3570.50"},
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, msgGenerateFailed, body["error"])
}

func TestGenerateReferenceDescriptionByID(t *testing.T) {
	s := newTestServer(t)
	ref := &model.Reference{Brand: "Rolex", ReferenceName: "116500LN"}
	require.NoError(t, s.refs.Create(context.Background(), ref))
	httpmock.RegisterResponder(http.MethodPost, claudeURL, claudeResponder("Daytona."))

	w, body := s.do(t, http.MethodPost, "/api/functions/generate-reference-description", map[string]any{"referenceId": ref.ID})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Daytona.", body["description"])

	stored, err := s.refs.Get(context.Background(), ref.ID)
	require.NoError(t, err)
	assert.Equal(t, "Daytona.", stored.Description())
}

func TestGenerateReferenceDescriptionGenerateAll(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, s.refs.Create(ctx, &model.Reference{Brand: "Rolex", ReferenceName: "116500LN"}))
	require.NoError(t, s.refs.Create(ctx, &model.Reference{Brand: "Tudor", ReferenceName: "79230N"}))
	httpmock.RegisterResponder(http.MethodPost, claudeURL, claudeResponder("generated"))

	w, body := s.do(t, http.MethodPost, "/api/functions/generate-reference-description", map[string]any{"generateAll": true})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Generated descriptions for 2 of 2 references", body["message"])
	assert.Equal(t, 2, httpmock.GetTotalCallCount())
}

func TestGenerationEndpointsFailWith500(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodPost, "/api/functions/generate-reference-description", map[string]any{"brand": "Rolex"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Brand and reference name are required", body["error"])

	w, body = s.do(t, http.MethodPost, "/api/functions/generate-reference-description", map[string]any{"referenceId": 999})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Reference 999 not found", body["error"])

	w, body = s.do(t, http.MethodPost, "/api/functions/generate-watch-description", map[string]any{
		"watchData": map[string]any{"brand": " ", "model_reference": "3570.50"},
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, domain.ReasonBrandAndReference, body["error"])

	for _, path := range []string{"/api/functions/generate-reference-description", "/api/functions/generate-watch-description"} {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		s.engine.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json", path)
	}
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestReconcileReferencesEndpoint(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.watches.Create(context.Background(), &model.Watch{Brand: "Rolex", ModelReference: strPtr("116500LN")}))

	w, body := s.do(t, http.MethodPost, "/api/functions/reconcile-references", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["count"])

	w, body = s.do(t, http.MethodPost, "/api/functions/reconcile-references", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), body["count"])
}

func TestReconcileReferencesFailureIs400(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.db.Migrator().DropTable(&model.Watch{}))

	w, body := s.do(t, http.MethodPost, "/api/functions/reconcile-references", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, body["error"])
}

func TestGenerationCheckEndpoint(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.refs.Create(context.Background(), &model.Reference{Brand: "Omega", ReferenceName: "3570.50"}))

	w, body := s.do(t, http.MethodPost, "/api/watches/generation-check", map[string]any{"brand": "Omega", "model_reference": "3570.50"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, domain.ReasonNoReferenceDescription, body["reason"])

	w, body = s.do(t, http.MethodPost, "/api/watches/generation-check", map[string]any{"brand": "Omega"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.ReasonBrandAndReference, body["reason"])
}

func TestWatchCRUDEndpoints(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodPost, "/api/watches", map[string]any{"brand": "Omega", "model_reference": "3570.50"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := uint(body["id"].(float64))

	w, _ = s.do(t, http.MethodPost, "/api/watches", map[string]any{"model_name": "no brand"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = s.do(t, http.MethodGet, "/api/watches?order_by=brand&desc=true", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["total"])

	w, _ = s.do(t, http.MethodGet, "/api/watches?order_by=secret", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = s.do(t, http.MethodPut, "/api/watches/"+itoa(id), map[string]any{"brand": "Omega", "description": "saved copy"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "saved copy", body["description"])

	w, _ = s.do(t, http.MethodGet, "/api/watches/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodDelete, "/api/watches/"+itoa(id), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, http.MethodGet, "/api/watches/"+itoa(id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPromptEndpointsFilter(t *testing.T) {
	s := newTestServer(t)
	s.seedClaudeWatchPrompts(t)

	w, _ := s.do(t, http.MethodPost, "/api/prompts", map[string]any{"name": "System Prompt", "content": "x", "purpose": "listing", "ai_model": "gpt-4o"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body := s.do(t, http.MethodGet, "/api/prompts?purpose=watch&ai_model="+domain.ModelClaudeOpus, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), body["total"])

	w, body = s.do(t, http.MethodGet, "/api/prompts?ai_model=gpt-4o", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), body["total"])
}

func TestListModelsAndLogs(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodGet, "/api/models", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.DefaultModel, body["default"])
	assert.Len(t, body["models"], 2)

	w, _ = s.do(t, http.MethodGet, "/api/generation-logs?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, body = s.do(t, http.MethodGet, "/api/generation-logs", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), body["total"])
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
