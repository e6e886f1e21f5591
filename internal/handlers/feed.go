package handlers

import (
	"strings"

	"communityhub/internal/apperr"
	"communityhub/internal/middleware"
	"communityhub/internal/services"
	"communityhub/internal/utils"

	"github.com/gin-gonic/gin"
)

type FeedHandler struct{}

func NewFeedHandler() *FeedHandler {
	return &FeedHandler{}
}

// callerCity 当前用户资料中的城市
func callerCity(c *gin.Context) string {
	if ident, ok := middleware.CurrentIdentity(c); ok {
		return ident.City
	}
	return ""
}

// ListItems 按条件筛选最新条目
func (h *FeedHandler) ListItems(c *gin.Context) {
	filter := services.ItemFilter{
		Type:     c.Query("type"),
		Status:   c.Query("status"),
		Severity: c.Query("severity"),
		Search:   c.Query("search"),
	}
	switch c.Query("location") {
	case "local", "city":
		filter.City = callerCity(c)
	}

	items, err := services.ListItems(c.Request.Context(), currentUser(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"items": items})
}

// Feed 为你推荐 / 关注
func (h *FeedHandler) Feed(c *gin.Context) {
	view := c.DefaultQuery("view", services.FeedViewForYou)
	if view != services.FeedViewForYou && view != services.FeedViewFollowing {
		respondError(c, apperr.Validation("view", "Invalid view"))
		return
	}
	page, limit, offset := utils.Paging(c.Query("page"), c.Query("limit"),
		services.FeedDefaultLimit, services.FeedMinLimit, services.FeedMaxLimit)

	res, err := services.Feed(c.Request.Context(), currentUser(c), services.FeedParams{
		View: view, Page: page, Limit: limit, Offset: offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"items":    res.Items,
		"page":     res.Page,
		"limit":    res.Limit,
		"has_more": res.HasMore,
	})
}

// Trending 热门榜
func (h *FeedHandler) Trending(c *gin.Context) {
	sort := strings.ToLower(c.DefaultQuery("sort", services.TrendingSortPopular))
	switch sort {
	case services.TrendingSortRecent, services.TrendingSortPopular, services.TrendingSortTop:
	default:
		respondError(c, apperr.Validation("sort", "Invalid sort"))
		return
	}

	city := ""
	if c.Query("location") == "city" {
		city = strings.TrimSpace(c.Query("city"))
		if city == "" {
			city = callerCity(c)
		}
	}
	page, limit, offset := utils.Paging(c.Query("page"), c.Query("limit"),
		services.FeedDefaultLimit, services.FeedMinLimit, services.FeedMaxLimit)

	res, err := services.Trending(c.Request.Context(), currentUser(c), services.TrendingParams{
		Sort: sort, City: city, Page: page, Limit: limit, Offset: offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"items":    res.Items,
		"sort":     sort,
		"page":     res.Page,
		"limit":    res.Limit,
		"has_more": res.HasMore,
	})
}

// MapItems 地图聚合
func (h *FeedHandler) MapItems(c *gin.Context) {
	radius, _ := utils.ParseFloat(c.Query("radius_km"))
	filter := services.ItemFilter{
		Type:   c.Query("type"),
		Status: c.Query("status"),
	}
	if c.Query("location") == "city" {
		filter.City = callerCity(c)
	}

	clusters, err := services.MapClusters(c.Request.Context(), filter, radius)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"clusters": clusters})
}

// RecentActivity 用户最近动态，默认查看自己
func (h *FeedHandler) RecentActivity(c *gin.Context) {
	userID := utils.StringToUint(c.Query("user_id"))
	if userID == 0 {
		userID = currentUser(c)
	}
	page, limit, _ := utils.Paging(c.Query("page"), c.Query("limit"), 10, 1, 50)

	res, err := services.RecentActivity(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"activities": res.Activities,
		"page":       res.Page,
		"limit":      res.Limit,
		"has_more":   res.HasMore,
	})
}
