package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/app/services"
	"github.com/stayease/stayease-api/internal/middleware"
)

// ApartmentController handles apartment operations
type ApartmentController struct {
	apartmentService *services.ApartmentService
}

// NewApartmentController creates a new ApartmentController
func NewApartmentController(apartmentService *services.ApartmentService) *ApartmentController {
	return &ApartmentController{apartmentService: apartmentService}
}

type apartmentListQuery struct {
	pageQuery
	Status   models.ApartmentStatus `form:"status" binding:"omitempty,oneof=available occupied maintenance"`
	Building string                 `form:"building" binding:"max=50"`
	Floor    *int                   `form:"floor" binding:"omitempty,gte=0"`
	Search   string                 `form:"search" binding:"max=100"`
}

// GetAllApartments lists apartments
// @Summary List apartments
// @Tags apartments
// @Produce json
// @Security BearerAuth
// @Param status query string false "available, occupied or maintenance"
// @Param building query string false "Building"
// @Param floor query int false "Floor"
// @Param search query string false "Apartment number or description"
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[models.Apartment]}
// @Router /apartments [get]
func (c *ApartmentController) GetAllApartments(ctx *gin.Context) {
	var q apartmentListQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	filter := models.ApartmentFilter{
		Building: q.Building,
		Floor:    q.Floor,
		Search:   q.Search,
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if q.Status != "" {
		filter.Status = &q.Status
	}

	apartments, err := c.apartmentService.List(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, apartments)
}

// GetApartmentByID returns one apartment
// @Summary Get apartment
// @Tags apartments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Apartment ID"
// @Success 200 {object} dto.APIResponse{data=models.Apartment}
// @Failure 404 {object} dto.ErrorResponse "Apartment not found"
// @Router /apartments/{id} [get]
func (c *ApartmentController) GetApartmentByID(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	apartment, err := c.apartmentService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, apartment)
}

// CreateApartment adds an apartment
// @Summary Create apartment
// @Tags apartments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateApartmentRequest true "Apartment"
// @Success 201 {object} dto.APIResponse{data=models.Apartment}
// @Failure 409 {object} dto.ErrorResponse "Apartment number already exists"
// @Router /apartments [post]
func (c *ApartmentController) CreateApartment(ctx *gin.Context) {
	var req dto.CreateApartmentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	apartment, err := c.apartmentService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, apartment, "Tạo căn hộ thành công")
}

// UpdateApartment changes an apartment
// @Summary Update apartment
// @Tags apartments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Apartment ID"
// @Param request body dto.UpdateApartmentRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Apartment}
// @Router /apartments/{id} [put]
func (c *ApartmentController) UpdateApartment(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateApartmentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	apartment, err := c.apartmentService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, apartment)
}

// DeleteApartment removes an apartment without resident or invoices
// @Summary Delete apartment
// @Tags apartments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Apartment ID"
// @Success 200 {object} dto.APIResponse
// @Failure 409 {object} dto.ErrorResponse "Apartment has a resident or invoices"
// @Router /apartments/{id} [delete]
func (c *ApartmentController) DeleteApartment(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.apartmentService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Xóa căn hộ thành công")
}
