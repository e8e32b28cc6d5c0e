package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/watchledger/backend/internal/domain"
	"github.com/watchledger/backend/internal/repository"
	"k8s.io/klog/v2"
)

const (
	msgGenerateFailed = "Failed to generate description"
	msgSaveFailed     = "Failed to save description"
)

// parseID 解析路径参数 id
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// parseListOptions 解析 order_by、desc、brand、limit 查询参数
func parseListOptions(c *gin.Context) repository.ListOptions {
	opts := repository.ListOptions{
		OrderBy: c.Query("order_by"),
		Brand:   c.Query("brand"),
	}
	opts.Desc, _ = strconv.ParseBool(c.Query("desc"))
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		opts.Limit = limit
	}
	return opts
}

// writeCatalogError CRUD 接口的错误映射
func writeCatalogError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		klog.Errorf("%s: failed: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// writeGenerationError 生成接口的错误映射，失败一律 500
// 校验与门禁错误返回给用户的原因，其余内部错误细节只写日志
func writeGenerationError(c *gin.Context, op string, err error) {
	var validation *domain.ValidationError
	var dependency *domain.DependencyError
	switch {
	case errors.As(err, &validation):
		klog.V(6).Infof("%s: invalid request: %s", op, validation.Message)
		c.JSON(http.StatusInternalServerError, gin.H{"error": validation.Message})
	case errors.As(err, &dependency):
		klog.V(6).Infof("%s: dependency not met: %s", op, dependency.Reason)
		c.JSON(http.StatusInternalServerError, gin.H{"error": dependency.Reason})
	case errors.Is(err, domain.ErrPersistence):
		klog.Errorf("%s: persistence failed: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgSaveFailed})
	default:
		klog.Errorf("%s: failed: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgGenerateFailed})
	}
}
