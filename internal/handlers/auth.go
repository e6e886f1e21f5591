package handlers

import (
	"context"
	"net/http"

	"communityhub/internal/apperr"
	"communityhub/internal/logger"
	"communityhub/internal/metrics"
	"communityhub/internal/middleware"
	"communityhub/internal/models"
	"communityhub/internal/services"
	"communityhub/internal/session"
	"communityhub/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

type AuthHandler struct {
	sessions    *session.Manager
	mailService *services.MailService
	oauth       *oauth2.Config
	siteURL     string
}

func NewAuthHandler(mgr *session.Manager, mail *services.MailService, oauth *oauth2.Config, siteURL string) *AuthHandler {
	return &AuthHandler{
		sessions:    mgr,
		mailService: mail,
		oauth:       oauth,
		siteURL:     siteURL,
	}
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// startSession 建立会话并返回身份
func (h *AuthHandler) startSession(c *gin.Context, user *models.User, method string) (*session.Identity, error) {
	ident := session.FromUser(user)
	if err := h.sessions.Start(c, ident); err != nil {
		return nil, err
	}
	metrics.Get().LoginsTotal.WithLabelValues(method).Inc()
	logger.Log.Info("User logged in", logger.WithUserID(user.ID), zap.String("method", method))
	return ident, nil
}

// Login 邮箱密码登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindRequest(c, &req) {
		return
	}
	email := utils.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		respondError(c, apperr.Validation("email", "Email and password are required"))
		return
	}

	if err := services.CheckRateLimit(email, services.RuleLogin); err != nil {
		respondError(c, err)
		return
	}

	user, err := services.Authenticate(email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := services.RecordAttempt(email, services.TypeLoginSuccess); err != nil {
		logger.Log.Warn("Failed to record login", zap.Error(err))
	}

	ident, err := h.startSession(c, user, "password")
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "Login successful", "user": ident})
}

// Logout 删除会话
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.End(c); err != nil {
		logger.Log.Warn("Failed to end session", zap.Error(err))
	}
	respondOK(c, gin.H{"message": "Logged out"})
}

// CheckSession 公开接口，返回当前登录状态
func (h *AuthHandler) CheckSession(c *gin.Context) {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": ident})
}

type otpRequest struct {
	Email string `json:"email" form:"email"`
	Code  string `json:"code" form:"code"`
}

// OTP 验证码登录与找回密码，action=send|verify|send_reset
func (h *AuthHandler) OTP(c *gin.Context) {
	var req otpRequest
	if !bindRequest(c, &req) {
		return
	}
	email := utils.NormalizeEmail(req.Email)
	if email == "" {
		respondError(c, apperr.Validation("email", "Invalid email"))
		return
	}
	if _, err := services.PurgeExpiredOTPs(); err != nil {
		respondError(c, err)
		return
	}

	switch c.Query("action") {
	case "send":
		h.sendLoginCode(c, email)
	case "verify":
		h.verifyLoginCode(c, email, req.Code)
	case "send_reset":
		h.sendResetCode(c, email)
	default:
		respondError(c, apperr.Validation("action", "Invalid action"))
	}
}

func (h *AuthHandler) sendLoginCode(c *gin.Context, email string) {
	if err := services.CheckRateLimit(email, services.RuleOTPSend); err != nil {
		respondError(c, err)
		return
	}

	code, err := services.IssueOTP(email, models.OTPPurposeLogin)
	if err != nil {
		respondError(c, err)
		return
	}

	name := utils.NameFromEmail(email)
	if user, err := services.FindUserByEmail(email); err == nil && user != nil {
		name = user.Name
	}
	if err := h.mailService.SendLoginCode(c.Request.Context(), email, name, code); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to send email"})
		return
	}
	respondOK(c, gin.H{"message": "Code sent"})
}

func (h *AuthHandler) verifyLoginCode(c *gin.Context, email, code string) {
	if err := services.CheckRateLimit(email, services.RuleOTPVerify); err != nil {
		respondError(c, err)
		return
	}
	if !services.IsOTPFormat(code) {
		respondError(c, apperr.Validation("code", "Code must be 6 digits"))
		return
	}

	ok, err := services.VerifyOTP(email, models.OTPPurposeLogin, code)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired code"})
		return
	}

	user, err := services.FindOrCreateUserByEmail(email)
	if err != nil {
		respondError(c, err)
		return
	}
	ident, err := h.startSession(c, user, "otp")
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "Login successful", "user": ident})
}

// sendResetCode 无论邮箱是否存在都返回成功
func (h *AuthHandler) sendResetCode(c *gin.Context, email string) {
	if err := services.CheckRateLimit(email, services.RuleOTPSend); err != nil {
		respondError(c, err)
		return
	}

	user, err := services.FindUserByEmail(email)
	if err != nil {
		logger.Log.Error("Failed to look up user for reset", zap.Error(err))
	}
	if user != nil {
		h.mailResetCode(c.Request.Context(), email)
	}
	respondOK(c, gin.H{"message": "If the email is registered, a reset code has been sent"})
}

func (h *AuthHandler) mailResetCode(ctx context.Context, email string) {
	code, err := services.IssueOTP(email, models.OTPPurposeReset)
	if err != nil {
		logger.Log.Error("Failed to issue reset code", zap.Error(err))
		return
	}
	// 发送失败只记录日志，避免暴露邮箱是否存在
	_ = h.mailService.SendResetCode(ctx, email, code)
}

type resetPasswordRequest struct {
	Email       string `json:"email" form:"email"`
	Code        string `json:"code" form:"code"`
	NewPassword string `json:"new_password" form:"new_password"`
}

// ResetPassword 用重置验证码设置新密码
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindRequest(c, &req) {
		return
	}
	email := utils.NormalizeEmail(req.Email)
	if email == "" {
		respondError(c, apperr.Validation("email", "Invalid email"))
		return
	}
	if len(req.NewPassword) < services.MinPasswordLen {
		respondError(c, apperr.Validation("new_password", "Password must be at least 6 characters"))
		return
	}
	if err := services.CheckRateLimit(email, services.RuleOTPVerify); err != nil {
		respondError(c, err)
		return
	}

	ok, err := services.VerifyOTP(email, models.OTPPurposeReset, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		respondError(c, apperr.Validation("code", "Invalid or expired code"))
		return
	}
	if err := services.ResetPassword(email, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "Password updated"})
}
