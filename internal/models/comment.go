package models

import (
	"time"
)

type Comment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ItemID          uint      `gorm:"not null;index" json:"item_id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	User            User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ParentCommentID *uint     `gorm:"index" json:"parent_comment_id"` // 顶层评论为空
	Body            string    `gorm:"type:text;not null" json:"body"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
}
