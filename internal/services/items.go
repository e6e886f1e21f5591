package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"communityhub/internal/apperr"
	"communityhub/internal/db"
	"communityhub/internal/logger"
	"communityhub/internal/metrics"
	"communityhub/internal/models"
	"communityhub/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 审计备注
const (
	auditCommentEdited  = "Post edited (title/description/type/location)"
	auditCommentDeleted = "Post marked deleted by owner"
)

const (
	maxTitleLen       = 255
	maxDescriptionLen = 5000
)

// CreateItemInput 发布表单原始值
type CreateItemInput struct {
	UserID      uint
	Type        string
	Title       string
	Description string
	Latitude    string
	Longitude   string
	City        string
	State       string
	Country     string
	Severity    string
	// Field 按名称读取类型相关字段
	Field func(name string) string
}

// PrepareItem 校验输入并构建待插入的条目，不触碰数据库
func PrepareItem(in CreateItemInput) (*models.Item, error) {
	title := utils.SanitizeText(in.Title)
	description := utils.SanitizeText(in.Description)
	itemType := models.ItemType(strings.ToLower(strings.TrimSpace(in.Type)))

	if title == "" || description == "" || itemType == "" {
		return nil, apperr.Validation("", "Missing required fields")
	}
	if !itemType.Valid() {
		return nil, apperr.Validation("type", "Invalid item type")
	}
	if len(title) > maxTitleLen {
		return nil, apperr.Validation("title", "Title is too long")
	}
	if len(description) > maxDescriptionLen {
		return nil, apperr.Validation("description", "Description is too long")
	}

	lat, okLat := utils.ParseFloat(in.Latitude)
	lng, okLng := utils.ParseFloat(in.Longitude)
	if !okLat || !okLng {
		return nil, apperr.Validation("location", "Valid latitude and longitude are required")
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, apperr.Validation("location", "Coordinates are out of range")
	}

	severity := models.Severity(strings.ToLower(strings.TrimSpace(in.Severity)))
	if severity == "" {
		severity = models.SeverityMedium
	}
	if !severity.Valid() {
		return nil, apperr.Validation("severity", "Invalid severity")
	}

	field := in.Field
	if field == nil {
		field = func(string) string { return "" }
	}
	details, err := models.DetailsFromForm(itemType, func(name string) string {
		return utils.SanitizeText(field(name))
	})
	if err != nil {
		return nil, fieldError(err)
	}
	if err := details.Validate(); err != nil {
		return nil, fieldError(err)
	}
	encoded, err := models.EncodeDetails(details)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &models.Item{
		UserID:      in.UserID,
		Type:        itemType,
		Title:       title,
		Description: description,
		Latitude:    lat,
		Longitude:   lng,
		City:        utils.SanitizeText(in.City),
		State:       utils.SanitizeText(in.State),
		Country:     utils.SanitizeText(in.Country),
		Severity:    severity,
		Status:      models.StatusReported,
		Lifecycle:   models.LifecycleActive,
		MediaURLs:   models.EncodeMedia(nil),
		Details:     encoded,
	}, nil
}

func fieldError(err error) error {
	var fe *models.FieldError
	if errors.As(err, &fe) {
		return apperr.Validation(fe.Field, fe.Message)
	}
	return apperr.Validation("", err.Error())
}

// CreateItem 插入条目并给作者加声望
func CreateItem(item *models.Item) error {
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
		return AddReputation(tx, item.UserID, PointsItemCreate, ActionItemCreate)
	})
	if err != nil {
		return err
	}

	metrics.Get().ItemsCreatedTotal.WithLabelValues(string(item.Type)).Inc()
	logger.Log.Info("Item created",
		logger.WithItemID(item.ID),
		logger.WithUserID(item.UserID),
		zap.String("type", string(item.Type)),
	)
	return nil
}

// loadOwnedItem 读取未删除的条目并校验所有者
func loadOwnedItem(tx *gorm.DB, userID, itemID uint) (*models.Item, error) {
	var item models.Item
	err := tx.Where("id = ? AND lifecycle <> ?", itemID, models.LifecycleDeleted).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ItemForbidden()
	}
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		return nil, apperr.Forbidden("You can only modify your own posts")
	}
	return &item, nil
}

func appendHistory(tx *gorm.DB, itemID, userID uint, oldStatus, newStatus models.ItemStatus, comment string) error {
	return tx.Create(&models.StatusHistory{
		ItemID:    itemID,
		ChangedBy: userID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		Comment:   comment,
	}).Error
}

// UpdateItemInput 可编辑字段
type UpdateItemInput struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Type        string `json:"type" form:"type"`
	City        string `json:"city" form:"city"`
	State       string `json:"state" form:"state"`
	Country     string `json:"country" form:"country"`
}

// UpdateItem 作者编辑内容，同时写一条状态不变的审计记录
func UpdateItem(userID, itemID uint, in UpdateItemInput) (*models.Item, error) {
	title := utils.SanitizeText(in.Title)
	description := utils.SanitizeText(in.Description)
	itemType := models.ItemType(strings.ToLower(strings.TrimSpace(in.Type)))

	if title == "" || description == "" {
		return nil, apperr.Validation("", "Title and description are required")
	}
	if !itemType.Valid() {
		return nil, apperr.Validation("type", "Invalid item type")
	}
	if len(title) > maxTitleLen || len(description) > maxDescriptionLen {
		return nil, apperr.Validation("", "Title or description is too long")
	}

	var updated *models.Item
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		item, err := loadOwnedItem(tx, userID, itemID)
		if err != nil {
			return err
		}

		err = tx.Model(item).Updates(map[string]interface{}{
			"title":       title,
			"description": description,
			"type":        itemType,
			"city":        utils.SanitizeText(in.City),
			"state":       utils.SanitizeText(in.State),
			"country":     utils.SanitizeText(in.Country),
			"updated_at":  time.Now(),
		}).Error
		if err != nil {
			return err
		}

		if err := appendHistory(tx, item.ID, userID, item.Status, item.Status, auditCommentEdited); err != nil {
			return err
		}

		updated = item
		return tx.First(updated, item.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteItem 软删除：状态置为 closed，可见性置为 deleted，并写审计
func DeleteItem(userID, itemID uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		item, err := loadOwnedItem(tx, userID, itemID)
		if err != nil {
			return err
		}
		prev := item.Status

		err = tx.Model(item).Updates(map[string]interface{}{
			"status":     models.StatusClosed,
			"lifecycle":  models.LifecycleDeleted,
			"updated_at": time.Now(),
		}).Error
		if err != nil {
			return err
		}

		return appendHistory(tx, item.ID, userID, prev, models.StatusDeleted, auditCommentDeleted)
	})
}

// UpdateStatus 作者修改处理状态，允许任意状态之间切换
func UpdateStatus(userID, itemID uint, status string) (*models.Item, error) {
	next := models.ItemStatus(strings.ToLower(strings.TrimSpace(status)))
	if !next.Valid() {
		return nil, apperr.Validation("status", "Invalid status")
	}

	var updated *models.Item
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		item, err := loadOwnedItem(tx, userID, itemID)
		if err != nil {
			return err
		}
		prev := item.Status

		err = tx.Model(item).Updates(map[string]interface{}{
			"status":     next,
			"lifecycle":  models.LifecycleFor(next),
			"updated_at": time.Now(),
		}).Error
		if err != nil {
			return err
		}

		comment := fmt.Sprintf("Status changed from %s to %s", prev, next)
		if err := appendHistory(tx, item.ID, userID, prev, next, comment); err != nil {
			return err
		}
		updated = item
		return tx.First(updated, item.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ItemHistory 条目的审计记录，按时间正序
func ItemHistory(itemID uint) ([]models.StatusHistory, error) {
	var rows []models.StatusHistory
	err := db.DB.Where("item_id = ?", itemID).Order("id ASC").Find(&rows).Error
	return rows, err
}
