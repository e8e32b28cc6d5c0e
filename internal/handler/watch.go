package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/watchledger/backend/internal/domain"
	"github.com/watchledger/backend/internal/service"
	"k8s.io/klog/v2"
)

// WatchHandler 手表处理器
type WatchHandler struct {
	service    service.WatchService
	gate       *service.DependencyGate
	generation *service.GenerationService
}

// NewWatchHandler 创建手表处理器
func NewWatchHandler(watchService service.WatchService, gate *service.DependencyGate, generation *service.GenerationService) *WatchHandler {
	return &WatchHandler{service: watchService, gate: gate, generation: generation}
}

// RegisterRoutes 注册路由
func (h *WatchHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/watches", h.List)
	router.POST("/watches", h.Create)
	router.POST("/watches/generation-check", h.GenerationCheck)
	router.GET("/watches/:id", h.Get)
	router.PUT("/watches/:id", h.Update)
	router.DELETE("/watches/:id", h.Delete)
	router.POST("/watches/:id/generate-description", h.GenerateDescription)
}

// GenerationCheckRequest 门禁检查请求
type GenerationCheckRequest struct {
	Brand          string `json:"brand"`
	ModelReference string `json:"model_reference"`
}

func (h *WatchHandler) List(c *gin.Context) {
	watches, err := h.service.List(c.Request.Context(), parseListOptions(c))
	if err != nil {
		writeCatalogError(c, "ListWatches", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": watches, "total": len(watches)})
}

func (h *WatchHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	w, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeCatalogError(c, "GetWatch", err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *WatchHandler) Create(c *gin.Context) {
	var req service.WatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		klog.V(6).Infof("CreateWatch: invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeCatalogError(c, "CreateWatch", err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

// Update 保存编辑后的手表，包括生成后由用户确认的描述
func (h *WatchHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req service.WatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		klog.V(6).Infof("UpdateWatch: invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		writeCatalogError(c, "UpdateWatch", err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *WatchHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeCatalogError(c, "DeleteWatch", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// GenerationCheck 返回是否可以为该手表生成描述及原因
func (h *WatchHandler) GenerationCheck(c *gin.Context) {
	var req GenerationCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, err := h.gate.Check(c.Request.Context(), req.Brand, req.ModelReference)
	var validation *domain.ValidationError
	var dependency *domain.DependencyError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "reason": validation.Message})
	case errors.As(err, &dependency):
		c.JSON(http.StatusOK, gin.H{"ok": false, "reason": dependency.Reason})
	default:
		klog.Errorf("GenerationCheck: failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// GenerateDescription 为已保存的手表生成描述预览，不写库
func (h *WatchHandler) GenerateDescription(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	w, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeCatalogError(c, "GenerateDescription", err)
		return
	}

	description, err := h.generation.GeneratePreview(c.Request.Context(), service.WatchGenerationRequest{
		Watch:       w.Attributes(),
		ActiveModel: c.Query("activeModel"),
	})
	if err != nil {
		writeGenerationError(c, "GenerateDescription", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"description": description})
}
