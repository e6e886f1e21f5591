package handlers

import (
	"communityhub/internal/apperr"
	"communityhub/internal/logger"
	"communityhub/internal/services"
	"communityhub/internal/session"
	"communityhub/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	sessions *session.Manager
}

func NewUserHandler(mgr *session.Manager) *UserHandler {
	return &UserHandler{sessions: mgr}
}

// targetUser 查询参数 user_id，缺省为当前用户
func targetUser(c *gin.Context) uint {
	if id := utils.StringToUint(c.Query("user_id")); id != 0 {
		return id
	}
	return currentUser(c)
}

// Profile 个人主页
func (h *UserHandler) Profile(c *gin.Context) {
	view, err := services.GetProfile(currentUser(c), targetUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"user":         view.User,
		"profile":      view.Profile,
		"stats":        view.Stats,
		"is_following": view.IsFollowing,
		"is_self":      view.IsSelf,
		"member_days":  view.User.MemberDays,
	})
}

// Posts 用户发布的条目
func (h *UserHandler) Posts(c *gin.Context) {
	page, limit, offset := utils.Paging(c.Query("page"), c.Query("limit"),
		services.FeedDefaultLimit, services.FeedMinLimit, services.FeedMaxLimit)

	items, err := services.UserPosts(c.Request.Context(), currentUser(c), targetUser(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"items":    items,
		"page":     page,
		"limit":    limit,
		"has_more": len(items) == limit,
	})
}

// Followers 粉丝列表
func (h *UserHandler) Followers(c *gin.Context) {
	users, err := services.ListFollowers(currentUser(c), targetUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"users": users})
}

// Following 关注列表
func (h *UserHandler) Following(c *gin.Context) {
	users, err := services.ListFollowing(currentUser(c), targetUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"users": users})
}

// Data 当前用户的统计
func (h *UserHandler) Data(c *gin.Context) {
	user, err := services.GetUser(currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	stats, err := services.GetUserStats(user)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"stats": gin.H{
			"total_items":    stats.TotalItems,
			"resolved_items": stats.ResolvedItems,
			"reputation":     stats.Reputation,
		},
	})
}

// UpdateProfile 修改资料并同步会话
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req services.UpdateProfileInput
	if !bindRequest(c, &req) {
		return
	}
	user, err := services.UpdateProfile(currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	ident := session.FromUser(user)
	if err := h.sessions.Refresh(c, ident); err != nil {
		logger.Log.Warn("Failed to refresh session", logger.WithUserID(user.ID), zap.Error(err))
	}
	respondOK(c, gin.H{"message": "Profile updated", "user": ident})
}

type followRequest struct {
	TargetUserID uint `json:"target_user_id" form:"target_user_id"`
}

// FollowToggle 关注/取消关注
func (h *UserHandler) FollowToggle(c *gin.Context) {
	var req followRequest
	if !bindRequest(c, &req) {
		return
	}
	if req.TargetUserID == 0 {
		respondError(c, apperr.Validation("target_user_id", "Target user is required"))
		return
	}
	res, err := services.ToggleFollow(currentUser(c), req.TargetUserID)
	if err != nil {
		respondError(c, err)
		return
	}
	action := "followed"
	if !res.Following {
		action = "unfollowed"
	}
	respondOK(c, gin.H{
		"action":          action,
		"is_following":    res.Following,
		"followers_count": res.FollowersCount,
		"following_count": res.FollowingCount,
	})
}
