package services

import (
	"errors"
	"fmt"

	"communityhub/internal/apperr"
	"communityhub/internal/db"
	"communityhub/internal/metrics"
	"communityhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowResult 切换关注后的状态与双方计数
type FollowResult struct {
	Following      bool  `json:"is_following"`
	FollowersCount int64 `json:"followers_count"` // 被关注者的粉丝数
	FollowingCount int64 `json:"following_count"` // 当前用户的关注数
}

// ToggleFollow 关注/取消关注，不允许关注自己
func ToggleFollow(followerID, targetID uint) (*FollowResult, error) {
	if targetID == 0 {
		return nil, apperr.Validation("target_user_id", "Target user is required")
	}
	if followerID == targetID {
		return nil, apperr.Validation("target_user_id", "You cannot follow yourself")
	}

	result := &FollowResult{}
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var target models.User
		err := tx.Select("id").First(&target, targetID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("User")
		}
		if err != nil {
			return err
		}

		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "follower_id"}, {Name: "following_id"}},
			DoNothing: true,
		}).Create(&models.Follow{FollowerID: followerID, FollowingID: targetID})
		if res.Error != nil {
			return fmt.Errorf("insert follow: %w", res.Error)
		}
		result.Following = res.RowsAffected == 1
		if !result.Following {
			err := tx.Where("follower_id = ? AND following_id = ?", followerID, targetID).
				Delete(&models.Follow{}).Error
			if err != nil {
				return fmt.Errorf("delete follow: %w", err)
			}
		}

		if result.FollowersCount, err = FollowersCount(tx, targetID); err != nil {
			return err
		}
		result.FollowingCount, err = FollowingCount(tx, followerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	action := "follow"
	if !result.Following {
		action = "unfollow"
	}
	metrics.Get().EngagementActionsTotal.WithLabelValues(action).Inc()
	return result, nil
}

func FollowersCount(tx *gorm.DB, userID uint) (int64, error) {
	var n int64
	err := tx.Model(&models.Follow{}).Where("following_id = ?", userID).Count(&n).Error
	return n, err
}

func FollowingCount(tx *gorm.DB, userID uint) (int64, error) {
	var n int64
	err := tx.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&n).Error
	return n, err
}

// IsFollowing follower 是否关注了 target
func IsFollowing(followerID, targetID uint) (bool, error) {
	if followerID == 0 || followerID == targetID {
		return false, nil
	}
	var n int64
	err := db.DB.Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, targetID).
		Count(&n).Error
	return n > 0, err
}

// FollowUser 关注列表中的用户
type FollowUser struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	City         string `json:"city"`
	ProfileImage string `json:"profile_image"`
	IsFollowing  bool   `json:"is_following"`
}

const followUserColumns = `u.id, u.name, u.city, COALESCE(p.profile_image, '') AS profile_image,
	CASE WHEN EXISTS (SELECT 1 FROM follows v WHERE v.follower_id = ? AND v.following_id = u.id) THEN 1 ELSE 0 END AS is_following`

// ListFollowers 关注 userID 的人，is_following 相对于 viewerID
func ListFollowers(viewerID, userID uint) ([]FollowUser, error) {
	rows := make([]FollowUser, 0)
	err := db.DB.Table("follows AS f").
		Select(followUserColumns, viewerID).
		Joins("JOIN users u ON u.id = f.follower_id").
		Joins("LEFT JOIN user_profiles p ON p.user_id = u.id").
		Where("f.following_id = ?", userID).
		Order("f.created_at DESC, f.id DESC").
		Scan(&rows).Error
	return rows, err
}

// ListFollowing userID 关注的人
func ListFollowing(viewerID, userID uint) ([]FollowUser, error) {
	rows := make([]FollowUser, 0)
	err := db.DB.Table("follows AS f").
		Select(followUserColumns, viewerID).
		Joins("JOIN users u ON u.id = f.following_id").
		Joins("LEFT JOIN user_profiles p ON p.user_id = u.id").
		Where("f.follower_id = ?", userID).
		Order("f.created_at DESC, f.id DESC").
		Scan(&rows).Error
	return rows, err
}
