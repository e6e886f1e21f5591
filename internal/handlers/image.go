package handlers

import (
	"mime/multipart"

	"communityhub/internal/apperr"
	"communityhub/internal/services"

	"github.com/gin-gonic/gin"
)

// ImageHandler 头像、封面等单张图片上传
type ImageHandler struct {
	media          services.MediaStore
	maxUploadBytes int64
}

func NewImageHandler(media services.MediaStore, maxUploadBytes int64) *ImageHandler {
	return &ImageHandler{media: media, maxUploadBytes: maxUploadBytes}
}

// Upload 保存字段 image 中的文件，返回可写入资料的公开路径
func (h *ImageHandler) Upload(c *gin.Context) {
	_, header, err := c.Request.FormFile("image")
	if err != nil || header.Size == 0 {
		respondError(c, apperr.Validation("image", "Please choose an image to upload"))
		return
	}

	urls, err := services.StoreUploads(c.Request.Context(), h.media, []*multipart.FileHeader{header}, h.maxUploadBytes)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"url": urls[0]})
}
