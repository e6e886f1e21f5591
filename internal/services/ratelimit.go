package services

import (
	"fmt"
	"time"

	"communityhub/internal/apperr"
	"communityhub/internal/db"
	"communityhub/internal/metrics"
	"communityhub/internal/models"
)

// RateRule 某类请求在时间窗口内允许的最大尝试次数
type RateRule struct {
	Type   string
	Max    int64
	Window time.Duration
}

var (
	RuleLogin     = RateRule{Type: "login", Max: 5, Window: 15 * time.Minute}
	RuleOTPSend   = RateRule{Type: "otp_send", Max: 3, Window: 10 * time.Minute}
	RuleOTPVerify = RateRule{Type: "otp_verify", Max: 5, Window: 10 * time.Minute}
	RuleOAuth     = RateRule{Type: "oauth", Max: 10, Window: 10 * time.Minute}
)

// TypeLoginSuccess 成功登录单独记录，不参与限流计数
const TypeLoginSuccess = "login_success"

// rateLimitRetention 超过这个时长的记录由清理任务删除
const rateLimitRetention = 24 * time.Hour

// IsRateLimited 窗口内已有的尝试次数是否达到上限
func IsRateLimited(key string, rule RateRule) (bool, error) {
	var count int64
	err := db.DB.Model(&models.RateLimit{}).
		Where("key_id = ? AND type = ? AND created_at > ?", key, rule.Type, time.Now().Add(-rule.Window)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count rate limit: %w", err)
	}
	return count >= rule.Max, nil
}

// RecordAttempt 记录一次尝试
func RecordAttempt(key, typ string) error {
	return db.DB.Create(&models.RateLimit{KeyID: key, Type: typ, CreatedAt: time.Now()}).Error
}

// CheckRateLimit 超限时直接拒绝且不记录，否则记录本次尝试
func CheckRateLimit(key string, rule RateRule) error {
	limited, err := IsRateLimited(key, rule)
	if err != nil {
		return err
	}
	if limited {
		metrics.Get().RateLimitBlockedTotal.WithLabelValues(rule.Type).Inc()
		return apperr.RateLimited()
	}
	return RecordAttempt(key, rule.Type)
}

// CleanupRateLimits 删除过期的尝试记录
func CleanupRateLimits() (int64, error) {
	res := db.DB.Where("created_at < ?", time.Now().Add(-rateLimitRetention)).Delete(&models.RateLimit{})
	return res.RowsAffected, res.Error
}
