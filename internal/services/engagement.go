package services

import (
	"errors"
	"fmt"
	"time"

	"communityhub/internal/apperr"
	"communityhub/internal/db"
	"communityhub/internal/metrics"
	"communityhub/internal/models"
	"communityhub/internal/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxCommentLen = 2000

// activeItem 未删除的条目，不存在时返回 403
func activeItem(tx *gorm.DB, itemID uint) (*models.Item, error) {
	var item models.Item
	err := tx.Where("id = ? AND lifecycle <> ?", itemID, models.LifecycleDeleted).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ItemForbidden()
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func CountLikes(tx *gorm.DB, itemID uint) (int64, error) {
	var n int64
	err := tx.Model(&models.Reaction{}).Where("item_id = ? AND reaction_type = ?", itemID, models.ReactionLike).Count(&n).Error
	return n, err
}

func CountComments(tx *gorm.DB, itemID uint) (int64, error) {
	var n int64
	err := tx.Model(&models.Comment{}).Where("item_id = ?", itemID).Count(&n).Error
	return n, err
}

func CountShares(tx *gorm.DB, itemID uint) (int64, error) {
	var n int64
	err := tx.Model(&models.Share{}).Where("item_id = ?", itemID).Count(&n).Error
	return n, err
}

// React 点赞，(item, user) 唯一，重复请求只更新时间
func React(userID, itemID uint, reactionType string) (int64, error) {
	if reactionType == "" {
		reactionType = models.ReactionLike
	}
	if reactionType != models.ReactionLike {
		return 0, apperr.Validation("reaction_type", "Invalid reaction type")
	}

	var likes int64
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := activeItem(tx, itemID); err != nil {
			return err
		}
		reaction := models.Reaction{
			ItemID:       itemID,
			UserID:       userID,
			ReactionType: reactionType,
			CreatedAt:    time.Now(),
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"reaction_type", "created_at"}),
		}).Create(&reaction).Error
		if err != nil {
			return fmt.Errorf("upsert reaction: %w", err)
		}
		likes, err = CountLikes(tx, itemID)
		return err
	})
	if err != nil {
		return 0, err
	}
	metrics.Get().EngagementActionsTotal.WithLabelValues("like").Inc()
	return likes, nil
}

// AddComment 发表评论，parent 必须属于同一条目
func AddComment(userID, itemID uint, body string, parentID *uint) (*models.Comment, int64, error) {
	body = utils.SanitizeText(body)
	if body == "" {
		return nil, 0, apperr.Validation("body", "Comment cannot be empty")
	}
	if len(body) > maxCommentLen {
		return nil, 0, apperr.Validation("body", "Comment is too long")
	}

	var (
		comment models.Comment
		count   int64
	)
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := activeItem(tx, itemID); err != nil {
			return err
		}
		if parentID != nil {
			var parent models.Comment
			err := tx.Where("id = ? AND item_id = ?", *parentID, itemID).First(&parent).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Validation("parent_comment", "Parent comment not found")
			}
			if err != nil {
				return err
			}
		}

		comment = models.Comment{
			ItemID:          itemID,
			UserID:          userID,
			ParentCommentID: parentID,
			Body:            body,
		}
		if err := tx.Create(&comment).Error; err != nil {
			return fmt.Errorf("insert comment: %w", err)
		}
		var err error
		count, err = CountComments(tx, itemID)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	metrics.Get().EngagementActionsTotal.WithLabelValues("comment").Inc()
	return &comment, count, nil
}

// ToggleShare 分享/取消分享。先插入，唯一键冲突说明已分享则删除，两步在同一事务内完成。
func ToggleShare(userID, itemID uint) (bool, int64, error) {
	var (
		shared bool
		count  int64
	)
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := activeItem(tx, itemID); err != nil {
			return err
		}

		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "item_id"}},
			DoNothing: true,
		}).Create(&models.Share{UserID: userID, ItemID: itemID})
		if res.Error != nil {
			return fmt.Errorf("insert share: %w", res.Error)
		}
		shared = res.RowsAffected == 1
		if !shared {
			if err := tx.Where("user_id = ? AND item_id = ?", userID, itemID).Delete(&models.Share{}).Error; err != nil {
				return fmt.Errorf("delete share: %w", err)
			}
		}

		var err error
		count, err = CountShares(tx, itemID)
		return err
	})
	if err != nil {
		return false, 0, err
	}
	if shared {
		metrics.Get().EngagementActionsTotal.WithLabelValues("share").Inc()
	} else {
		metrics.Get().EngagementActionsTotal.WithLabelValues("unshare").Inc()
	}
	return shared, count, nil
}

// ViewerFlags 当前用户是否已点赞/分享
func ViewerFlags(userID, itemID uint) (liked, shared bool, err error) {
	if userID == 0 {
		return false, false, nil
	}
	var n int64
	err = db.DB.Model(&models.Reaction{}).
		Where("item_id = ? AND user_id = ? AND reaction_type = ?", itemID, userID, models.ReactionLike).
		Count(&n).Error
	if err != nil {
		return false, false, err
	}
	liked = n > 0
	err = db.DB.Model(&models.Share{}).Where("item_id = ? AND user_id = ?", itemID, userID).Count(&n).Error
	return liked, n > 0, err
}

// CommentView 详情页中的评论
type CommentView struct {
	ID              uint      `json:"id"`
	UserID          uint      `json:"user_id"`
	UserName        string    `json:"user_name"`
	ParentCommentID *uint     `json:"parent_comment_id"`
	Body            string    `json:"body"`
	CreatedAt       time.Time `json:"created_at"`
}

// ListComments 条目的全部评论，按时间正序平铺
func ListComments(itemID uint) ([]CommentView, error) {
	rows := make([]CommentView, 0)
	err := db.DB.Table("comments AS c").
		Select("c.id, c.user_id, u.name AS user_name, c.parent_comment_id, c.body, c.created_at").
		Joins("JOIN users u ON u.id = c.user_id").
		Where("c.item_id = ?", itemID).
		Order("c.created_at ASC, c.id ASC").
		Scan(&rows).Error
	return rows, err
}
