package models

import (
	"time"
)

const (
	OTPPurposeLogin = "login"
	OTPPurposeReset = "reset"
)

// OTP 每个 (email, purpose) 只有一条有效验证码，重发即覆盖
type OTP struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Email     string    `gorm:"size:255;not null;uniqueIndex:idx_otp_email_purpose" json:"email"`
	Purpose   string    `gorm:"size:20;not null;uniqueIndex:idx_otp_email_purpose" json:"purpose"`
	CodeHash  string    `gorm:"size:255;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (OTP) TableName() string {
	return "otps"
}

// RateLimit 每次尝试一行，滑动窗口内计数
type RateLimit struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	KeyID     string    `gorm:"size:255;not null;index:idx_rate_key_type"`
	Type      string    `gorm:"size:50;not null;index:idx_rate_key_type"`
	CreatedAt time.Time `gorm:"not null;index"`
}
