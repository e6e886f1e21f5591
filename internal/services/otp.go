package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"communityhub/internal/db"
	"communityhub/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const OTPTTL = 5 * time.Minute

// GenerateOTP 6 位数字验证码
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// IsOTPFormat 是否为 6 位数字
func IsOTPFormat(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// PurgeExpiredOTPs 删除所有已过期验证码
func PurgeExpiredOTPs() (int64, error) {
	res := db.DB.Where("expires_at < ?", time.Now()).Delete(&models.OTP{})
	return res.RowsAffected, res.Error
}

// IssueOTP 生成并保存验证码，同一 (email, purpose) 覆盖旧码
func IssueOTP(email, purpose string) (string, error) {
	if _, err := PurgeExpiredOTPs(); err != nil {
		return "", fmt.Errorf("purge otps: %w", err)
	}

	code, err := GenerateOTP()
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash otp: %w", err)
	}

	now := time.Now()
	otp := models.OTP{
		Email:     email,
		Purpose:   purpose,
		CodeHash:  string(hash),
		ExpiresAt: now.Add(OTPTTL),
		CreatedAt: now,
	}
	err = db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}, {Name: "purpose"}},
		DoUpdates: clause.AssignmentColumns([]string{"code_hash", "expires_at", "created_at"}),
	}).Create(&otp).Error
	if err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return code, nil
}

// VerifyOTP 校验验证码，成功后删除，保证只能使用一次
func VerifyOTP(email, purpose, code string) (bool, error) {
	if _, err := PurgeExpiredOTPs(); err != nil {
		return false, fmt.Errorf("purge otps: %w", err)
	}

	var otp models.OTP
	err := db.DB.Where("email = ? AND purpose = ? AND expires_at > ?", email, purpose, time.Now()).
		First(&otp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load otp: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(code)) != nil {
		return false, nil
	}

	// 按 ID 和哈希删除，并发验证时只有一个请求能删掉
	res := db.DB.Where("id = ? AND code_hash = ?", otp.ID, otp.CodeHash).Delete(&models.OTP{})
	if res.Error != nil {
		return false, fmt.Errorf("consume otp: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}
