package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/stayease/stayease-api/internal/app/services"
	"github.com/stayease/stayease-api/internal/middleware"
)

// UploadController handles image uploads
type UploadController struct {
	uploadService *services.UploadService
}

// NewUploadController creates a new UploadController
func NewUploadController(uploadService *services.UploadService) *UploadController {
	return &UploadController{uploadService: uploadService}
}

// UploadImage stores an image and returns its public URL
// @Summary Upload image
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "JPEG, PNG, GIF or WebP image"
// @Success 201 {object} dto.APIResponse{data=dto.UploadResponse}
// @Failure 400 {object} dto.ErrorResponse "Unsupported or oversized file"
// @Router /upload/image [post]
func (c *UploadController) UploadImage(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		middleware.RespondBadRequest(ctx, "Vui lòng chọn tệp ảnh để tải lên")
		return
	}
	resp, err := c.uploadService.UploadImage(actor.UserID, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, resp, "Tải ảnh lên thành công")
}
