package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/watchledger/backend/internal/repository"
	"github.com/watchledger/backend/internal/service"
	"k8s.io/klog/v2"
)

// PromptHandler 提示词与风格指南处理器
type PromptHandler struct {
	service service.PromptService
}

// NewPromptHandler 创建提示词处理器
func NewPromptHandler(promptService service.PromptService) *PromptHandler {
	return &PromptHandler{service: promptService}
}

// RegisterRoutes 注册路由
func (h *PromptHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/prompts", h.List)
	router.POST("/prompts", h.Create)
	router.GET("/prompts/:id", h.Get)
	router.PUT("/prompts/:id", h.Update)
	router.DELETE("/prompts/:id", h.Delete)

	router.GET("/style-guides", h.ListStyleGuides)
	router.POST("/style-guides", h.CreateStyleGuide)
	router.GET("/style-guides/:id", h.GetStyleGuide)
	router.PUT("/style-guides/:id", h.UpdateStyleGuide)
	router.DELETE("/style-guides/:id", h.DeleteStyleGuide)
}

// List 支持 purpose、ai_model 过滤
func (h *PromptHandler) List(c *gin.Context) {
	filter := repository.PromptFilter{
		Purpose: c.Query("purpose"),
		AIModel: c.Query("ai_model"),
		OrderBy: c.Query("order_by"),
	}
	filter.Desc, _ = strconv.ParseBool(c.Query("desc"))

	prompts, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		writeCatalogError(c, "ListPrompts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": prompts, "total": len(prompts)})
}

func (h *PromptHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeCatalogError(c, "GetPrompt", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PromptHandler) Create(c *gin.Context) {
	var req service.PromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		klog.V(6).Infof("CreatePrompt: invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeCatalogError(c, "CreatePrompt", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PromptHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req service.PromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		klog.V(6).Infof("UpdatePrompt: invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		writeCatalogError(c, "UpdatePrompt", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PromptHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeCatalogError(c, "DeletePrompt", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *PromptHandler) ListStyleGuides(c *gin.Context) {
	guides, err := h.service.ListStyleGuides(c.Request.Context())
	if err != nil {
		writeCatalogError(c, "ListStyleGuides", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": guides, "total": len(guides)})
}

func (h *PromptHandler) GetStyleGuide(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	g, err := h.service.GetStyleGuide(c.Request.Context(), id)
	if err != nil {
		writeCatalogError(c, "GetStyleGuide", err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *PromptHandler) CreateStyleGuide(c *gin.Context) {
	var req service.StyleGuideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	g, err := h.service.CreateStyleGuide(c.Request.Context(), req)
	if err != nil {
		writeCatalogError(c, "CreateStyleGuide", err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

func (h *PromptHandler) UpdateStyleGuide(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req service.StyleGuideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	g, err := h.service.UpdateStyleGuide(c.Request.Context(), id, req)
	if err != nil {
		writeCatalogError(c, "UpdateStyleGuide", err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *PromptHandler) DeleteStyleGuide(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteStyleGuide(c.Request.Context(), id); err != nil {
		writeCatalogError(c, "DeleteStyleGuide", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
