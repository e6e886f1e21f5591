package models

import (
	"time"
)

type User struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	Name            string       `gorm:"size:100;not null" json:"name"`
	Email           string       `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Phone           string       `gorm:"size:30" json:"phone"`
	PasswordHash    string       `gorm:"size:255" json:"-"` // OTP / Google 注册的用户为空
	GoogleID        string       `gorm:"index;size:64" json:"-"`
	City            string       `gorm:"size:100;index" json:"city"`
	IDProofVerified bool         `gorm:"default:false" json:"id_proof_verified"`
	ReputationScore int          `gorm:"default:0" json:"reputation_score"`
	Profile         *UserProfile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// UserProfile 个人主页扩展信息
// 关注数/粉丝数不落库，统一实时 COUNT follows 表
type UserProfile struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	UserID       uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Bio          string    `gorm:"size:500" json:"bio"`
	ProfileImage string    `gorm:"size:500" json:"profile_image"`
	BannerImage  string    `gorm:"size:500" json:"banner_image"`
	UpdatedAt    time.Time `json:"updated_at"`
}
