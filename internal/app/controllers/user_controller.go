package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/app/services"
	"github.com/stayease/stayease-api/internal/middleware"
)

// UserController handles admin user and resident management
type UserController struct {
	userService *services.UserService
}

// NewUserController creates a new UserController
func NewUserController(userService *services.UserService) *UserController {
	return &UserController{userService: userService}
}

type userListQuery struct {
	pageQuery
	Role   models.Role       `form:"role" binding:"omitempty,oneof=admin staff resident"`
	Status models.UserStatus `form:"status" binding:"omitempty,oneof=active inactive suspended"`
	Search string            `form:"search" binding:"max=100"`
}

// ListUsers lists users
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param role query string false "admin, staff or resident"
// @Param status query string false "active, inactive or suspended"
// @Param search query string false "Name, email or phone"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[models.User]}
// @Router /users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	var q userListQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	filter := models.UserFilter{Search: q.Search, Page: q.Page, PageSize: q.PageSize}
	if q.Role != "" {
		filter.Role = &q.Role
	}
	if q.Status != "" {
		filter.Status = &q.Status
	}

	users, err := c.userService.List(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, users)
}

// GetUser returns one user
// @Summary Get user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=models.User}
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	user, err := c.userService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, user)
}

// CreateUser creates an account of any role
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateUserRequest true "User"
// @Success 201 {object} dto.APIResponse{data=models.User}
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Router /users [post]
func (c *UserController) CreateUser(ctx *gin.Context) {
	var req dto.CreateUserRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	user, err := c.userService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, user, "Tạo người dùng thành công")
}

// UpdateUser changes profile fields, role or password
// @Summary Update user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.UpdateUserRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.User}
// @Router /users/{id} [put]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	user, err := c.userService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, user)
}

// UpdateUserStatus activates or disables an account
// @Summary Change user status
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.UpdateUserStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.User}
// @Router /users/{id}/status [patch]
func (c *UserController) UpdateUserStatus(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateUserStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	user, err := c.userService.UpdateStatus(ctx.Request.Context(), id, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, user)
}

// DeleteUser removes an account without invoices, freeing its apartment
// @Summary Delete user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse
// @Failure 409 {object} dto.ErrorResponse "User has invoices"
// @Router /users/{id} [delete]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.userService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Xóa người dùng thành công")
}

// CreateResident creates a resident and moves them into an apartment
// @Summary Create resident
// @Tags residents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateResidentRequest true "Resident"
// @Success 201 {object} dto.APIResponse{data=models.User}
// @Failure 409 {object} dto.ErrorResponse "Apartment not available"
// @Router /residents [post]
func (c *UserController) CreateResident(ctx *gin.Context) {
	var req dto.CreateResidentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	user, err := c.userService.CreateResident(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, user, "Tạo cư dân thành công")
}

// UpdateResident updates a resident, possibly moving them to another apartment
// @Summary Update resident
// @Tags residents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Resident ID"
// @Param request body dto.UpdateResidentRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.User}
// @Router /residents/{id} [put]
func (c *UserController) UpdateResident(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateResidentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	user, err := c.userService.UpdateResident(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, user)
}

// DeleteResident removes a resident and frees their apartment
// @Summary Delete resident
// @Tags residents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Resident ID"
// @Success 200 {object} dto.APIResponse
// @Router /residents/{id} [delete]
func (c *UserController) DeleteResident(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.userService.DeleteResident(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Xóa cư dân thành công")
}
