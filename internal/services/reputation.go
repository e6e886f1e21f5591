package services

import (
	"communityhub/internal/models"

	"gorm.io/gorm"
)

// 声望动作
const (
	ActionItemCreate = "Posted an item"
)

// 声望变动值
const (
	PointsItemCreate = 1
)

// AddReputation 在给定事务中记录声望明细并更新余额
func AddReputation(tx *gorm.DB, userID uint, amount int, action string) error {
	entry := models.ReputationLog{
		UserID: userID,
		Amount: amount,
		Action: action,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return err
	}

	return tx.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("reputation_score", gorm.Expr("reputation_score + ?", amount)).
		Error
}
