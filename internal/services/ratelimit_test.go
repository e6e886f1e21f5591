package services

import (
	"testing"
	"time"

	"communityhub/internal/apperr"
	"communityhub/internal/db"
	"communityhub/internal/db/dbtest"
	"communityhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRateLimitWindow(t *testing.T) {
	dbtest.Setup(t)
	const key = "someone@example.org"

	for i := 0; i < int(RuleLogin.Max); i++ {
		require.NoError(t, CheckRateLimit(key, RuleLogin))
	}

	err := CheckRateLimit(key, RuleLogin)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeRateLimited))
	assert.Equal(t, 429, apperr.From(err).Status)

	// 被拒绝的请求不记录
	var n int64
	db.DB.Model(&models.RateLimit{}).Where("key_id = ?", key).Count(&n)
	assert.EqualValues(t, RuleLogin.Max, n)

	// 其他类型和其他 key 不受影响
	assert.NoError(t, CheckRateLimit(key, RuleOTPSend))
	assert.NoError(t, CheckRateLimit("other@example.org", RuleLogin))

	// 窗口过去后恢复
	require.NoError(t, db.DB.Model(&models.RateLimit{}).Where("key_id = ? AND type = ?", key, RuleLogin.Type).
		Update("created_at", time.Now().Add(-RuleLogin.Window-time.Minute)).Error)
	assert.NoError(t, CheckRateLimit(key, RuleLogin))
}

func TestMaintenanceRunOnce(t *testing.T) {
	dbtest.Setup(t)

	require.NoError(t, db.DB.Create(&models.RateLimit{KeyID: "old", Type: "login", CreatedAt: time.Now().Add(-48 * time.Hour)}).Error)
	require.NoError(t, RecordAttempt("fresh", "login"))
	require.NoError(t, db.DB.Create(&models.OTP{
		Email: "x@example.org", Purpose: models.OTPPurposeLogin, CodeHash: "h",
		ExpiresAt: time.Now().Add(-time.Minute), CreatedAt: time.Now().Add(-6 * time.Minute),
	}).Error)

	res, err := NewMaintenanceService(0).RunOnce()
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.ExpiredOTPs)
	assert.EqualValues(t, 1, res.OldRateLimits)

	var left int64
	db.DB.Model(&models.RateLimit{}).Count(&left)
	assert.EqualValues(t, 1, left)
}
