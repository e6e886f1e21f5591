package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// cookie 里只保存不透明的会话 ID
const cookieKey = "sid"

// Manager 负责 cookie 与存储之间的映射
type Manager struct {
	Store Store
	TTL   time.Duration
}

func NewManager(store Store, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Manager{Store: store, TTL: ttl}
}

// Start 登录成功后建立新会话
func (m *Manager) Start(c *gin.Context, ident *Identity) error {
	sess := sessions.Default(c)
	if old, ok := sess.Get(cookieKey).(string); ok && old != "" {
		_ = m.Store.Delete(c.Request.Context(), old)
	}

	id := uuid.NewString()
	if err := m.Store.Set(c.Request.Context(), id, ident, m.TTL); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	sess.Set(cookieKey, id)
	return sess.Save()
}

// Resolve 解析当前请求的身份，没有会话时返回 ErrNotFound
func (m *Manager) Resolve(c *gin.Context) (*Identity, error) {
	id, ok := sessions.Default(c).Get(cookieKey).(string)
	if !ok || id == "" {
		return nil, ErrNotFound
	}
	return m.Store.Get(c.Request.Context(), id)
}

// Refresh 用户资料变化后同步会话内容
func (m *Manager) Refresh(c *gin.Context, ident *Identity) error {
	id, ok := sessions.Default(c).Get(cookieKey).(string)
	if !ok || id == "" {
		return ErrNotFound
	}
	return m.Store.Set(c.Request.Context(), id, ident, m.TTL)
}

// End 注销
func (m *Manager) End(c *gin.Context) error {
	sess := sessions.Default(c)
	var err error
	if id, ok := sess.Get(cookieKey).(string); ok && id != "" {
		err = m.Store.Delete(c.Request.Context(), id)
	}
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	return errors.Join(err, sess.Save())
}
