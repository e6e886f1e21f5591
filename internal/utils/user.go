package utils

import (
	"net/mail"
	"strings"
	"time"
)

// GetDaysSinceJoined 注册天数
func GetDaysSinceJoined(createdAt time.Time) int {
	return int(time.Since(createdAt).Hours() / 24)
}

// NormalizeEmail 校验并规范化邮箱，非法时返回空串
func NormalizeEmail(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return ""
	}
	return strings.ToLower(addr.Address)
}

// NameFromEmail 取邮箱 @ 前部分作为默认昵称
func NameFromEmail(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
