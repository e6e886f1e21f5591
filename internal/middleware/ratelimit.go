package middleware

import (
	"communityhub/internal/apperr"
	"communityhub/internal/logger"
	"communityhub/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitByIP 按客户端 IP 限流，超限返回 429
func RateLimitByIP(rule services.RateRule) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := services.CheckRateLimit(c.ClientIP(), rule)
		if err == nil {
			c.Next()
			return
		}
		e := apperr.From(err)
		if e.Code != apperr.CodeRateLimited {
			logger.Log.Error("Rate limit check failed", zap.String("type", rule.Type), zap.Error(err))
		}
		c.AbortWithStatusJSON(e.Status, gin.H{
			"success": false,
			"message": e.Message,
			"code":    e.Code,
		})
	}
}
