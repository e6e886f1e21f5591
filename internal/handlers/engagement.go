package handlers

import (
	"communityhub/internal/apperr"
	"communityhub/internal/services"

	"github.com/gin-gonic/gin"
)

type EngagementHandler struct{}

func NewEngagementHandler() *EngagementHandler {
	return &EngagementHandler{}
}

type reactRequest struct {
	ItemID       uint   `json:"item_id" form:"item_id"`
	ReactionType string `json:"reaction_type" form:"reaction_type"`
}

// React 点赞
func (h *EngagementHandler) React(c *gin.Context) {
	var req reactRequest
	if !bindRequest(c, &req) {
		return
	}
	if req.ItemID == 0 {
		respondError(c, apperr.Validation("item_id", "Item id is required"))
		return
	}
	likes, err := services.React(currentUser(c), req.ItemID, req.ReactionType)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"item_id": req.ItemID, "like_count": likes})
}

type commentRequest struct {
	ItemID        uint   `json:"item_id" form:"item_id"`
	Body          string `json:"body" form:"body"`
	ParentComment *uint  `json:"parent_comment" form:"parent_comment"`
}

// Comment 发表评论或回复
func (h *EngagementHandler) Comment(c *gin.Context) {
	var req commentRequest
	if !bindRequest(c, &req) {
		return
	}
	if req.ItemID == 0 {
		respondError(c, apperr.Validation("item_id", "Item id is required"))
		return
	}
	if req.ParentComment != nil && *req.ParentComment == 0 {
		req.ParentComment = nil
	}

	comment, count, err := services.AddComment(currentUser(c), req.ItemID, req.Body, req.ParentComment)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"comment_count": count, "comment": comment})
}

// Share 分享/取消分享
func (h *EngagementHandler) Share(c *gin.Context) {
	var req itemIDRequest
	if !bindRequest(c, &req) {
		return
	}
	if req.ItemID == 0 {
		respondError(c, apperr.Validation("item_id", "Item id is required"))
		return
	}
	shared, count, err := services.ToggleShare(currentUser(c), req.ItemID)
	if err != nil {
		respondError(c, err)
		return
	}
	action := "shared"
	if !shared {
		action = "unshared"
	}
	respondOK(c, gin.H{"action": action, "share_count": count})
}
