package handlers

import (
	"mime/multipart"

	"communityhub/internal/apperr"
	"communityhub/internal/middleware"
	"communityhub/internal/models"
	"communityhub/internal/services"
	"communityhub/internal/utils"

	"github.com/gin-gonic/gin"
)

type ItemHandler struct {
	media               services.MediaStore
	maxUploadBytes      int64
	requireVerification bool
}

func NewItemHandler(media services.MediaStore, maxUploadBytes int64, requireVerification bool) *ItemHandler {
	return &ItemHandler{
		media:               media,
		maxUploadBytes:      maxUploadBytes,
		requireVerification: requireVerification,
	}
}

// uploadedFiles 兼容 images[] 与 images 两种字段名
func uploadedFiles(c *gin.Context) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	files := append([]*multipart.FileHeader{}, form.File["images[]"]...)
	return append(files, form.File["images"]...)
}

// Create 发布条目，先校验字段，再保存媒体，最后入库
func (h *ItemHandler) Create(c *gin.Context) {
	ident, _ := middleware.CurrentIdentity(c)
	if h.requireVerification && !ident.IDProofVerified {
		respondError(c, apperr.Forbidden("ID verification is required to post"))
		return
	}

	item, err := services.PrepareItem(services.CreateItemInput{
		UserID:      ident.UserID,
		Type:        c.PostForm("type"),
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Latitude:    c.PostForm("latitude"),
		Longitude:   c.PostForm("longitude"),
		City:        c.PostForm("city"),
		State:       c.PostForm("state"),
		Country:     c.PostForm("country"),
		Severity:    c.PostForm("severity"),
		Field:       c.PostForm,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if files := uploadedFiles(c); len(files) > 0 {
		urls, err := services.StoreUploads(c.Request.Context(), h.media, files, h.maxUploadBytes)
		if err != nil {
			respondError(c, err)
			return
		}
		item.MediaURLs = models.EncodeMedia(urls)
	}

	if err := services.CreateItem(item); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "Post created", "item_id": item.ID})
}

// Get 条目详情
func (h *ItemHandler) Get(c *gin.Context) {
	viewerID := currentUser(c)
	itemID := utils.StringToUint(c.Query("id"))
	if itemID == 0 {
		respondError(c, apperr.Validation("id", "Item id is required"))
		return
	}

	summary, err := services.GetItemSummary(c.Request.Context(), viewerID, itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	if summary == nil {
		respondError(c, apperr.ItemForbidden())
		return
	}

	liked, shared, err := services.ViewerFlags(viewerID, itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	comments, err := services.ListComments(itemID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"item":             summary,
		"description_html": utils.RenderMarkdown(summary.Description),
		"liked":            liked,
		"shared":           shared,
		"comments":         comments,
	})
}

type updateItemRequest struct {
	ItemID uint `json:"item_id" form:"item_id"`
	services.UpdateItemInput
}

// Update 作者编辑条目
func (h *ItemHandler) Update(c *gin.Context) {
	var req updateItemRequest
	if !bindRequest(c, &req) {
		return
	}
	if req.ItemID == 0 {
		respondError(c, apperr.Validation("item_id", "Item id is required"))
		return
	}

	item, err := services.UpdateItem(currentUser(c), req.ItemID, req.UpdateItemInput)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"item_id":    item.ID,
		"created_at": item.CreatedAt,
		"updated_at": item.UpdatedAt,
	})
}

type itemIDRequest struct {
	ItemID uint `json:"item_id" form:"item_id"`
}

// Delete 作者删除条目
func (h *ItemHandler) Delete(c *gin.Context) {
	var req itemIDRequest
	if !bindRequest(c, &req) {
		return
	}
	if req.ItemID == 0 {
		respondError(c, apperr.Validation("item_id", "Item id is required"))
		return
	}
	if err := services.DeleteItem(currentUser(c), req.ItemID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": req.ItemID})
}

type updateStatusRequest struct {
	ItemID uint   `json:"item_id" form:"item_id"`
	Status string `json:"status" form:"status"`
}

// UpdateStatus 作者修改处理状态
func (h *ItemHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if !bindRequest(c, &req) {
		return
	}
	if req.ItemID == 0 {
		respondError(c, apperr.Validation("item_id", "Item id is required"))
		return
	}
	item, err := services.UpdateStatus(currentUser(c), req.ItemID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"item_id":    item.ID,
		"status":     item.Status,
		"updated_at": item.UpdatedAt,
	})
}

// History 条目的状态审计记录
func (h *ItemHandler) History(c *gin.Context) {
	itemID := utils.StringToUint(c.Query("id"))
	summary, err := services.GetItemSummary(c.Request.Context(), currentUser(c), itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	if summary == nil {
		respondError(c, apperr.ItemForbidden())
		return
	}
	rows, err := services.ItemHistory(itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"history": rows})
}
