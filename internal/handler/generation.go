package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/watchledger/backend/internal/model"
	"github.com/watchledger/backend/internal/service"
	"k8s.io/klog/v2"
)

// GenerationHandler 描述生成与对账接口
type GenerationHandler struct {
	generation *service.GenerationService
	reconcile  *service.ReconcileService
}

// NewGenerationHandler 创建生成处理器
func NewGenerationHandler(generation *service.GenerationService, reconcile *service.ReconcileService) *GenerationHandler {
	return &GenerationHandler{generation: generation, reconcile: reconcile}
}

// RegisterRoutes 注册路由
func (h *GenerationHandler) RegisterRoutes(router *gin.RouterGroup) {
	functions := router.Group("/functions")
	functions.POST("/generate-reference-description", h.GenerateReferenceDescription)
	functions.POST("/generate-watch-description", h.GenerateWatchDescription)
	functions.POST("/reconcile-references", h.ReconcileReferences)

	router.GET("/models", h.ListModels)
}

// GenerateReferenceRequest 型号描述生成请求
type GenerateReferenceRequest struct {
	ReferenceID   *uint  `json:"referenceId"`
	GenerateAll   bool   `json:"generateAll"`
	Brand         string `json:"brand"`
	ReferenceName string `json:"reference_name"`
	ActiveModel   string `json:"activeModel"`
}

// GenerateWatchRequest 手表描述生成请求
type GenerateWatchRequest struct {
	WatchData   model.WatchAttributes `json:"watchData"`
	ActiveModel string                `json:"activeModel"`
}

// GenerateReferenceDescription 生成型号描述
// generateAll=true 时批量处理所有描述为空的型号
func (h *GenerationHandler) GenerateReferenceDescription(c *gin.Context) {
	var req GenerateReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		klog.V(6).Infof("GenerateReferenceDescription: invalid request: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if req.GenerateAll {
		result, err := h.generation.GenerateAll(c.Request.Context(), req.ActiveModel)
		if err != nil && result == nil {
			writeGenerationError(c, "GenerateReferenceDescription", err)
			return
		}
		message := fmt.Sprintf("Generated descriptions for %d of %d references", result.Processed, result.Total)
		if err != nil {
			message = fmt.Sprintf("Batch interrupted after %d of %d references", result.Processed, result.Total)
		}
		c.JSON(http.StatusOK, gin.H{"message": message, "result": result})
		return
	}

	description, err := h.generation.GenerateReference(c.Request.Context(), service.ReferenceGenerationRequest{
		ReferenceID:   req.ReferenceID,
		Brand:         req.Brand,
		ReferenceName: req.ReferenceName,
		ActiveModel:   req.ActiveModel,
	})
	if err != nil {
		writeGenerationError(c, "GenerateReferenceDescription", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"description": description})
}

// GenerateWatchDescription 生成手表描述预览，不保存
func (h *GenerationHandler) GenerateWatchDescription(c *gin.Context) {
	var req GenerateWatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		klog.V(6).Infof("GenerateWatchDescription: invalid request: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	description, err := h.generation.GeneratePreview(c.Request.Context(), service.WatchGenerationRequest{
		Watch:       req.WatchData,
		ActiveModel: req.ActiveModel,
	})
	if err != nil {
		writeGenerationError(c, "GenerateWatchDescription", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"description": description})
}

// ReconcileReferences 为手表中出现但缺失的型号补建记录
func (h *GenerationHandler) ReconcileReferences(c *gin.Context) {
	result, err := h.reconcile.Reconcile(c.Request.Context())
	if err != nil {
		klog.Errorf("ReconcileReferences: failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to reconcile references"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Created %d new references", result.Created),
		"count":   result.Created,
		"result":  result,
	})
}

// ListModels 支持的模型和默认模型
func (h *GenerationHandler) ListModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"models":  h.generation.Models(),
		"default": h.generation.DefaultModel(),
	})
}
