package models

import (
	"time"
)

// Share 分享记录，存在即已分享
type Share struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_share_user_item" json:"user_id"`
	ItemID    uint      `gorm:"not null;uniqueIndex:idx_share_user_item;index" json:"item_id"`
	CreatedAt time.Time `json:"created_at"`
}
