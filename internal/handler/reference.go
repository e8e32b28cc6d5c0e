package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/watchledger/backend/internal/service"
	"k8s.io/klog/v2"
)

// ReferenceHandler 型号处理器
type ReferenceHandler struct {
	service service.ReferenceService
}

// NewReferenceHandler 创建型号处理器
func NewReferenceHandler(referenceService service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{service: referenceService}
}

// RegisterRoutes 注册路由
func (h *ReferenceHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/references", h.List)
	router.POST("/references", h.Create)
	router.GET("/references/:id", h.Get)
	router.PUT("/references/:id", h.Update)
	router.DELETE("/references/:id", h.Delete)
}

func (h *ReferenceHandler) List(c *gin.Context) {
	refs, err := h.service.List(c.Request.Context(), parseListOptions(c))
	if err != nil {
		writeCatalogError(c, "ListReferences", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": refs, "total": len(refs)})
}

func (h *ReferenceHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ref, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeCatalogError(c, "GetReference", err)
		return
	}
	c.JSON(http.StatusOK, ref)
}

func (h *ReferenceHandler) Create(c *gin.Context) {
	var req service.ReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		klog.V(6).Infof("CreateReference: invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ref, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeCatalogError(c, "CreateReference", err)
		return
	}
	c.JSON(http.StatusCreated, ref)
}

func (h *ReferenceHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req service.ReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		klog.V(6).Infof("UpdateReference: invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ref, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		writeCatalogError(c, "UpdateReference", err)
		return
	}
	c.JSON(http.StatusOK, ref)
}

func (h *ReferenceHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeCatalogError(c, "DeleteReference", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
