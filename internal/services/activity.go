package services

import (
	"context"
	"sort"
	"time"

	"communityhub/internal/db"
	"communityhub/internal/models"

	"golang.org/x/sync/errgroup"
)

// 每类动态最多取的条数
const activityStreamCap = 50

const (
	ActivityPost    = "post"
	ActivityComment = "comment"
	ActivityLike    = "like"
	ActivityShare   = "share"
)

// Activity 用户动态
type Activity struct {
	Type      string    `json:"type"`
	ItemID    uint      `json:"item_id"`
	ItemTitle string    `json:"item_title"`
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityPage 合并后分页的动态
type ActivityPage struct {
	Activities []Activity `json:"activities"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	HasMore    bool       `json:"has_more"`
}

type activityStream struct {
	kind  string
	query string
}

var activityStreams = []activityStream{
	{ActivityPost, `SELECT i.id AS item_id, i.title AS item_title, '' AS body, i.created_at AS created_at
		FROM items i WHERE i.user_id = ? AND i.lifecycle <> ?
		ORDER BY i.created_at DESC LIMIT ?`},
	{ActivityComment, `SELECT i.id AS item_id, i.title AS item_title, c.body AS body, c.created_at AS created_at
		FROM comments c JOIN items i ON i.id = c.item_id WHERE c.user_id = ? AND i.lifecycle <> ?
		ORDER BY c.created_at DESC LIMIT ?`},
	{ActivityLike, `SELECT i.id AS item_id, i.title AS item_title, '' AS body, r.created_at AS created_at
		FROM reactions r JOIN items i ON i.id = r.item_id WHERE r.user_id = ? AND i.lifecycle <> ?
		ORDER BY r.created_at DESC LIMIT ?`},
	{ActivityShare, `SELECT i.id AS item_id, i.title AS item_title, '' AS body, s.created_at AS created_at
		FROM shares s JOIN items i ON i.id = s.item_id WHERE s.user_id = ? AND i.lifecycle <> ?
		ORDER BY s.created_at DESC LIMIT ?`},
}

// RecentActivity 并发读取四类动态，各取最近 50 条，按时间倒序合并后内存分页
func RecentActivity(ctx context.Context, userID uint, page, limit int) (*ActivityPage, error) {
	results := make([][]Activity, len(activityStreams))

	g, gctx := errgroup.WithContext(ctx)
	for idx, stream := range activityStreams {
		g.Go(func() error {
			rows := make([]Activity, 0)
			err := db.DB.WithContext(gctx).
				Raw(stream.query, userID, models.LifecycleDeleted, activityStreamCap).
				Scan(&rows).Error
			if err != nil {
				return err
			}
			for i := range rows {
				rows[i].Type = stream.kind
			}
			results[idx] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := MergeActivities(results...)

	offset := (page - 1) * limit
	out := &ActivityPage{Activities: []Activity{}, Page: page, Limit: limit}
	if offset >= 0 && offset < len(merged) {
		end := offset + limit
		if end > len(merged) {
			end = len(merged)
		}
		out.Activities = merged[offset:end]
		out.HasMore = end < len(merged)
	}
	return out, nil
}

// MergeActivities 合并多路动态，按时间倒序
func MergeActivities(streams ...[]Activity) []Activity {
	total := 0
	for _, s := range streams {
		total += len(s)
	}
	merged := make([]Activity, 0, total)
	for _, s := range streams {
		merged = append(merged, s...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	return merged
}
