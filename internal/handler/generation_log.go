package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/watchledger/backend/internal/service"
)

// GenerationLogHandler 生成记录处理器
type GenerationLogHandler struct {
	service service.GenerationLogService
}

// NewGenerationLogHandler 创建生成记录处理器
func NewGenerationLogHandler(logService service.GenerationLogService) *GenerationLogHandler {
	return &GenerationLogHandler{service: logService}
}

// RegisterRoutes 注册路由
func (h *GenerationLogHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/generation-logs", h.List)
}

// List 最近的生成记录，limit 默认 50，最大 500
func (h *GenerationLogHandler) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	if limit > 500 {
		limit = 500
	}

	logs, err := h.service.ListRecent(c.Request.Context(), limit)
	if err != nil {
		writeCatalogError(c, "ListGenerationLogs", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": logs, "total": len(logs)})
}
