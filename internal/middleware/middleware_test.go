package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"communityhub/internal/db/dbtest"
	"communityhub/internal/services"
	"communityhub/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	body := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get("X-Request-ID")
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	// 沿用上游传入的 ID
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "upstream-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "upstream-123", w.Body.String())
}

func TestAuthRequired(t *testing.T) {
	withIdentity := func(ident *session.Identity) gin.HandlerFunc {
		return func(c *gin.Context) {
			if ident != nil {
				c.Set(IdentityKey, ident)
			}
			c.Next()
		}
	}

	tests := []struct {
		name   string
		ident  *session.Identity
		status int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"logged in", &session.Identity{UserID: 7, Name: "asha"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/", withIdentity(tt.ident), AuthRequired(), func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"user_id": CurrentUserID(c)})
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.status, w.Code)

			body := decode(t, w)
			if tt.ident == nil {
				assert.Equal(t, false, body["success"])
				assert.Equal(t, "AUTH_REQUIRED", body["code"])
			} else {
				assert.EqualValues(t, 7, body["user_id"])
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Server error", body["message"])
}

func TestRateLimitByIP(t *testing.T) {
	dbtest.Setup(t)
	rule := services.RateRule{Type: "test_ip", Max: 2, Window: services.RuleOAuth.Window}

	r := gin.New()
	r.GET("/", RateLimitByIP(rule), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", decode(t, w)["code"])
}
