package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"communityhub/internal/apperr"
	"communityhub/internal/config"
	"communityhub/internal/logger"
	"communityhub/internal/services"
	"communityhub/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	oauthStateKey     = "oauth_state"
	oauthTimeout      = 10 * time.Second
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// NewGoogleOAuthConfig 未配置 client id 时返回 nil
func NewGoogleOAuthConfig(cfg *config.Config) *oauth2.Config {
	if cfg.GoogleClientID == "" {
		return nil
	}
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// GoogleUserInfo Google 用户信息
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
}

func generateStateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// GoogleLogin 跳转到 Google 授权页
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if h.oauth == nil {
		respondError(c, apperr.NotFound("Google login"))
		return
	}
	state, err := generateStateToken()
	if err != nil {
		respondError(c, err)
		return
	}

	sess := sessions.Default(c)
	sess.Set(oauthStateKey, state)
	if err := sess.Save(); err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, h.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline))
}

// GoogleCallback 校验 state，换取令牌并登录
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.oauth == nil {
		respondError(c, apperr.NotFound("Google login"))
		return
	}

	sess := sessions.Default(c)
	saved, _ := sess.Get(oauthStateKey).(string)
	sess.Delete(oauthStateKey)
	_ = sess.Save()
	if saved == "" || c.Query("state") != saved {
		respondError(c, apperr.Validation("state", "Invalid OAuth state"))
		return
	}

	code := c.Query("code")
	if code == "" {
		respondError(c, apperr.Validation("code", "Missing authorization code"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), oauthTimeout)
	defer cancel()

	token, err := h.oauth.Exchange(ctx, code)
	if err != nil {
		logger.Log.Warn("Google token exchange failed", zap.Error(err))
		respondError(c, apperr.Unauthorized("Google authentication failed"))
		return
	}

	info, err := h.fetchGoogleUser(ctx, token)
	if err != nil {
		logger.Log.Warn("Google userinfo failed", zap.Error(err))
		respondError(c, apperr.Unauthorized("Google authentication failed"))
		return
	}
	if !info.VerifiedEmail {
		respondError(c, apperr.Forbidden("Google email is not verified"))
		return
	}
	email := utils.NormalizeEmail(info.Email)
	if email == "" {
		respondError(c, apperr.Validation("email", "Invalid email"))
		return
	}

	name := info.GivenName
	if name == "" {
		name = info.Name
	}
	user, err := services.FindOrCreateGoogleUser(info.ID, email, name)
	if err != nil {
		respondError(c, err)
		return
	}
	if _, err := h.startSession(c, user, "google"); err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, h.siteURL)
}

func (h *AuthHandler) fetchGoogleUser(ctx context.Context, token *oauth2.Token) (*GoogleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned %d", resp.StatusCode)
	}
	var info GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}
