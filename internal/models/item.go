package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type ItemType string

const (
	ItemTypeEvent  ItemType = "event"
	ItemTypeIssue  ItemType = "issue"
	ItemTypeNotice ItemType = "notice"
	ItemTypeReport ItemType = "report"
)

func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeEvent, ItemTypeIssue, ItemTypeNotice, ItemTypeReport:
		return true
	}
	return false
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// ItemStatus 处理进度，任意状态之间均可切换
type ItemStatus string

const (
	StatusReported   ItemStatus = "reported"
	StatusInProgress ItemStatus = "in_progress"
	StatusResolved   ItemStatus = "resolved"
	StatusClosed     ItemStatus = "closed"

	// StatusDeleted 只出现在审计表的 new_status 中，不会写入 items.status
	StatusDeleted ItemStatus = "deleted"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case StatusReported, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Lifecycle 条目的可见性墓碑
type Lifecycle string

const (
	LifecycleActive  Lifecycle = "active"
	LifecycleClosed  Lifecycle = "closed"
	LifecycleDeleted Lifecycle = "deleted"
)

// LifecycleFor 状态变化时对应的可见性
func LifecycleFor(status ItemStatus) Lifecycle {
	if status == StatusClosed {
		return LifecycleClosed
	}
	return LifecycleActive
}

type Item struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	User        User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Type        ItemType       `gorm:"size:20;not null;index" json:"type"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text;not null" json:"description"`
	Latitude    float64        `json:"latitude"`
	Longitude   float64        `json:"longitude"`
	City        string         `gorm:"size:100;index" json:"city"`
	State       string         `gorm:"size:100" json:"state"`
	Country     string         `gorm:"size:100" json:"country"`
	Severity    Severity       `gorm:"size:20;not null;default:'medium'" json:"severity"`
	Status      ItemStatus     `gorm:"size:20;not null;default:'reported';index" json:"status"`
	Lifecycle   Lifecycle      `gorm:"size:20;not null;default:'active';index" json:"-"`
	MediaURLs   datatypes.JSON `json:"media_urls"`
	Details     datatypes.JSON `json:"details"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// IsDeleted 已被作者删除
func (i *Item) IsDeleted() bool {
	return i.Lifecycle == LifecycleDeleted
}

// MediaList 解码 media_urls
func (i *Item) MediaList() []string {
	var urls []string
	if len(i.MediaURLs) == 0 {
		return []string{}
	}
	if err := json.Unmarshal(i.MediaURLs, &urls); err != nil || urls == nil {
		return []string{}
	}
	return urls
}

// EncodeMedia 编码 media_urls，空列表写入 []
func EncodeMedia(urls []string) datatypes.JSON {
	if urls == nil {
		urls = []string{}
	}
	b, _ := json.Marshal(urls)
	return datatypes.JSON(b)
}

// StatusHistory 条目状态变更审计，只追加
type StatusHistory struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemID    uint       `gorm:"not null;index" json:"item_id"`
	ChangedBy uint       `gorm:"not null" json:"changed_by"`
	OldStatus ItemStatus `gorm:"size:20" json:"old_status"`
	NewStatus ItemStatus `gorm:"size:20;not null" json:"new_status"`
	Comment   string     `gorm:"size:255" json:"comment"`
	CreatedAt time.Time  `json:"created_at"`
}

func (StatusHistory) TableName() string {
	return "post_status_history"
}
