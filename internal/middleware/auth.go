package middleware

import (
	"errors"
	"net/http"

	"communityhub/internal/apperr"
	"communityhub/internal/logger"
	"communityhub/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const IdentityKey = "identity"

// AuthRequired 未登录时返回 401 JSON
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentIdentity(c); !ok {
			e := apperr.AuthRequired()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": e.Message,
				"code":    e.Code,
			})
			return
		}
		c.Next()
	}
}

// LoadIdentity 每个请求解析一次会话身份并放入上下文
func LoadIdentity(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, err := mgr.Resolve(c)
		switch {
		case err == nil:
			c.Set(IdentityKey, ident)
		case !errors.Is(err, session.ErrNotFound):
			// 存储不可用时按未登录处理
			logger.Log.Warn("Failed to resolve session", zap.Error(err))
		}
		c.Next()
	}
}

// CurrentIdentity 当前登录用户
func CurrentIdentity(c *gin.Context) (*session.Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil, false
	}
	ident, ok := v.(*session.Identity)
	return ident, ok && ident != nil
}

// CurrentUserID 未登录时为 0
func CurrentUserID(c *gin.Context) uint {
	if ident, ok := CurrentIdentity(c); ok {
		return ident.UserID
	}
	return 0
}
