package handlers

import (
	"net/http"

	"communityhub/internal/apperr"
	"communityhub/internal/logger"
	"communityhub/internal/metrics"
	"communityhub/internal/middleware"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondOK 成功响应，统一带 success:true
func respondOK(c *gin.Context, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}
	obj["success"] = true
	c.JSON(http.StatusOK, obj)
}

// respondError 把错误转换成统一的 JSON 结构，5xx 记录日志并上报
func respondError(c *gin.Context, err error) {
	e := apperr.From(err)
	metrics.Get().ErrorsTotal.WithLabelValues(string(e.Code)).Inc()

	if e.Status >= http.StatusInternalServerError {
		logger.Log.Error("Request failed",
			logger.WithRequestID(middleware.GetRequestID(c)),
			logger.WithUserID(middleware.CurrentUserID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		if hub := sentry.CurrentHub(); hub.Client() != nil {
			hub.CaptureException(err)
		}
	}

	body := gin.H{
		"success": false,
		"message": e.Message,
		"code":    e.Code,
	}
	if e.Field != "" {
		body["field"] = e.Field
	}
	c.AbortWithStatusJSON(e.Status, body)
}

// bindRequest 按 Content-Type 解析 JSON 或表单
func bindRequest(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBind(obj); err != nil {
		respondError(c, apperr.Validation("", "Invalid request body"))
		return false
	}
	return true
}

// currentUser 已通过 AuthRequired，身份一定存在
func currentUser(c *gin.Context) uint {
	return middleware.CurrentUserID(c)
}

// MethodNotAllowed 已知路径但方法不对
func MethodNotAllowed(c *gin.Context) {
	respondError(c, apperr.MethodNotAllowed())
}

// NotFound 未知路径
func NotFound(c *gin.Context) {
	respondError(c, apperr.NotFound("Resource"))
}
