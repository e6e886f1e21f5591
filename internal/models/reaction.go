package models

import (
	"time"
)

const ReactionLike = "like"

// Reaction 每个用户对每个条目至多一条
type Reaction struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ItemID       uint      `gorm:"not null;uniqueIndex:idx_reaction_item_user" json:"item_id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_reaction_item_user;index" json:"user_id"`
	ReactionType string    `gorm:"size:20;not null;default:'like'" json:"reaction_type"`
	CreatedAt    time.Time `json:"created_at"`
}
