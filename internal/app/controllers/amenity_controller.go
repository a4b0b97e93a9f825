package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/app/services"
	"github.com/stayease/stayease-api/internal/middleware"
)

// AmenityController handles building amenities
type AmenityController struct {
	amenityService *services.AmenityService
}

// NewAmenityController creates a new AmenityController
func NewAmenityController(amenityService *services.AmenityService) *AmenityController {
	return &AmenityController{amenityService: amenityService}
}

type amenityListQuery struct {
	Type   models.AmenityType   `form:"type" binding:"omitempty,oneof=gym pool parking bbq playground meeting_room other"`
	Status models.AmenityStatus `form:"status" binding:"omitempty,oneof=available maintenance closed"`
}

// GetAllAmenities lists amenities by name
// @Summary List amenities
// @Tags amenities
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Amenity}
// @Router /amenities [get]
func (c *AmenityController) GetAllAmenities(ctx *gin.Context) {
	var q amenityListQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	var filter models.AmenityFilter
	if q.Type != "" {
		filter.Type = &q.Type
	}
	if q.Status != "" {
		filter.Status = &q.Status
	}

	amenities, err := c.amenityService.List(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, amenities)
}

// GetAmenityByID returns one amenity
// @Summary Get amenity
// @Tags amenities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Amenity ID"
// @Success 200 {object} dto.APIResponse{data=models.Amenity}
// @Router /amenities/{id} [get]
func (c *AmenityController) GetAmenityByID(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	amenity, err := c.amenityService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, amenity)
}

// CreateAmenity adds an amenity
// @Summary Create amenity
// @Tags amenities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateAmenityRequest true "Amenity"
// @Success 201 {object} dto.APIResponse{data=models.Amenity}
// @Router /amenities [post]
func (c *AmenityController) CreateAmenity(ctx *gin.Context) {
	var req dto.CreateAmenityRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	amenity, err := c.amenityService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, amenity, "Tạo tiện ích thành công")
}

// UpdateAmenity changes an amenity
// @Summary Update amenity
// @Tags amenities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Amenity ID"
// @Param request body dto.UpdateAmenityRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Amenity}
// @Router /amenities/{id} [put]
func (c *AmenityController) UpdateAmenity(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateAmenityRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	amenity, err := c.amenityService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, amenity)
}

// DeleteAmenity removes an amenity
// @Summary Delete amenity
// @Tags amenities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Amenity ID"
// @Success 200 {object} dto.APIResponse
// @Router /amenities/{id} [delete]
func (c *AmenityController) DeleteAmenity(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.amenityService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Xóa tiện ích thành công")
}
