package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"communityhub/internal/db"
	"communityhub/internal/metrics"
	"communityhub/internal/models"
	"communityhub/internal/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 分页参数
const (
	FeedDefaultLimit = 10
	FeedMinLimit     = 5
	FeedMaxLimit     = 50
	ItemsListLimit   = 20
)

// ItemSummary 列表中的条目及互动计数
type ItemSummary struct {
	ID              uint           `json:"id"`
	UserID          uint           `json:"user_id"`
	UserName        string         `json:"user_name"`
	Type            string         `json:"type"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Latitude        float64        `json:"latitude"`
	Longitude       float64        `json:"longitude"`
	City            string         `json:"city"`
	State           string         `json:"state"`
	Country         string         `json:"country"`
	Severity        string         `json:"severity"`
	Status          string         `json:"status"`
	MediaURLs       datatypes.JSON `json:"media_urls"`
	Details         datatypes.JSON `json:"details"`
	LikeCount       int64          `json:"like_count"`
	CommentCount    int64          `json:"comment_count"`
	ShareCount      int64          `json:"share_count"`
	IsFollowing     bool           `json:"is_following"`
	EngagementScore int64          `json:"engagement_score"`
	Rank            int            `gorm:"-" json:"rank,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// 每个条目的聚合计数，相关子查询
const (
	likeCountSQL    = "(SELECT COUNT(*) FROM reactions r WHERE r.item_id = i.id AND r.reaction_type = 'like')"
	commentCountSQL = "(SELECT COUNT(*) FROM comments c WHERE c.item_id = i.id)"
	shareCountSQL   = "(SELECT COUNT(*) FROM shares s WHERE s.item_id = i.id)"
)

var summaryColumns = strings.Join([]string{
	"i.id", "i.user_id", "u.name AS user_name", "i.type", "i.title", "i.description",
	"i.latitude", "i.longitude", "i.city", "i.state", "i.country", "i.severity", "i.status",
	"i.media_urls", "i.details", "i.created_at", "i.updated_at",
	likeCountSQL + " AS like_count",
	commentCountSQL + " AS comment_count",
	shareCountSQL + " AS share_count",
	utils.EngagementScoreSQL(likeCountSQL, commentCountSQL, shareCountSQL) + " AS engagement_score",
	"CASE WHEN EXISTS (SELECT 1 FROM follows f WHERE f.follower_id = ? AND f.following_id = i.user_id) THEN 1 ELSE 0 END AS is_following",
}, ", ")

// summaryQuery 条目摘要的基础查询，is_following 相对于 viewerID
func summaryQuery(ctx context.Context, viewerID uint) *gorm.DB {
	return db.DB.WithContext(ctx).
		Table("items AS i").
		Select(summaryColumns, viewerID).
		Joins("JOIN users u ON u.id = i.user_id")
}

func notDeleted(q *gorm.DB) *gorm.DB {
	return q.Where("i.lifecycle <> ?", models.LifecycleDeleted)
}

// onlyActive 排除已关闭和已删除
func onlyActive(q *gorm.DB) *gorm.DB {
	return q.Where("i.lifecycle = ?", models.LifecycleActive)
}

func newestFirst(q *gorm.DB) *gorm.DB {
	return q.Order("i.created_at DESC").Order("i.id DESC")
}

// ItemFilter 地图/列表的筛选条件
type ItemFilter struct {
	Type     string
	Status   string
	Severity string
	Search   string
	City     string // 非空时只看该城市
}

// ListItems 按条件列出最新条目（不含已删除）
func ListItems(ctx context.Context, viewerID uint, f ItemFilter) ([]ItemSummary, error) {
	q := notDeleted(summaryQuery(ctx, viewerID))
	if f.Type != "" {
		q = q.Where("i.type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("i.status = ?", f.Status)
	}
	if f.Severity != "" {
		q = q.Where("i.severity = ?", f.Severity)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(i.title) LIKE ? OR LOWER(i.description) LIKE ?)", like, like)
	}
	if f.City != "" {
		q = q.Where("i.city = ?", f.City)
	}

	rows := make([]ItemSummary, 0)
	err := newestFirst(q).Limit(ItemsListLimit).Scan(&rows).Error
	return rows, err
}

const (
	FeedViewForYou    = "for-you"
	FeedViewFollowing = "following"
)

// FeedParams 信息流参数
type FeedParams struct {
	View   string
	Page   int
	Limit  int
	Offset int
}

// FeedPage 一页结果
type FeedPage struct {
	Items   []ItemSummary `json:"items"`
	Page    int           `json:"page"`
	Limit   int           `json:"limit"`
	HasMore bool          `json:"has_more"`
}

// Feed 按时间倒序的信息流，following 视图只看已关注用户
func Feed(ctx context.Context, viewerID uint, p FeedParams) (*FeedPage, error) {
	start := time.Now()
	defer func() {
		metrics.Get().FeedQueryDuration.WithLabelValues(p.View).Observe(time.Since(start).Seconds())
	}()

	q := onlyActive(summaryQuery(ctx, viewerID))
	if p.View == FeedViewFollowing {
		q = q.Where("i.user_id IN (SELECT following_id FROM follows WHERE follower_id = ?)", viewerID)
	}

	rows := make([]ItemSummary, 0, p.Limit)
	if err := newestFirst(q).Limit(p.Limit).Offset(p.Offset).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("load feed: %w", err)
	}

	return &FeedPage{
		Items: rows,
		Page:  p.Page,
		Limit: p.Limit,
		// 与页大小相等即认为还有下一页
		HasMore: len(rows) == p.Limit,
	}, nil
}

const (
	TrendingSortRecent  = "recent"
	TrendingSortPopular = "popular"
	TrendingSortTop     = "top"
)

// TrendingParams 热门榜参数
type TrendingParams struct {
	Sort   string
	City   string
	Page   int
	Limit  int
	Offset int
}

// Trending 按热度或时间排序，rank 为全局名次
func Trending(ctx context.Context, viewerID uint, p TrendingParams) (*FeedPage, error) {
	start := time.Now()
	defer func() {
		metrics.Get().FeedQueryDuration.WithLabelValues("trending").Observe(time.Since(start).Seconds())
	}()

	q := onlyActive(summaryQuery(ctx, viewerID))
	if p.City != "" {
		q = q.Where("i.city = ?", p.City)
	}
	switch p.Sort {
	case TrendingSortRecent:
		q = newestFirst(q)
	default:
		q = newestFirst(q.Order("engagement_score DESC"))
	}

	rows := make([]ItemSummary, 0, p.Limit)
	if err := q.Limit(p.Limit).Offset(p.Offset).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("load trending: %w", err)
	}
	for i := range rows {
		rows[i].Rank = p.Offset + i + 1
	}

	return &FeedPage{
		Items:   rows,
		Page:    p.Page,
		Limit:   p.Limit,
		HasMore: len(rows) == p.Limit,
	}, nil
}

// UserPosts 某用户未删除的条目
func UserPosts(ctx context.Context, viewerID, ownerID uint, limit, offset int) ([]ItemSummary, error) {
	rows := make([]ItemSummary, 0, limit)
	err := newestFirst(notDeleted(summaryQuery(ctx, viewerID)).Where("i.user_id = ?", ownerID)).
		Limit(limit).Offset(offset).
		Scan(&rows).Error
	return rows, err
}

// GetItemSummary 单个未删除条目
func GetItemSummary(ctx context.Context, viewerID, itemID uint) (*ItemSummary, error) {
	rows := make([]ItemSummary, 0, 1)
	err := notDeleted(summaryQuery(ctx, viewerID)).Where("i.id = ?", itemID).Limit(1).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
