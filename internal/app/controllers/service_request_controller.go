package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/app/services"
	"github.com/stayease/stayease-api/internal/middleware"
	"github.com/stayease/stayease-api/internal/pkg/websocket"
)

// ServiceRequestController handles maintenance tickets and their live chat
type ServiceRequestController struct {
	requestService *services.ServiceRequestService
	hub            *websocket.Hub
	logger         zerolog.Logger
}

// NewServiceRequestController creates a new ServiceRequestController
func NewServiceRequestController(requestService *services.ServiceRequestService, hub *websocket.Hub, logger zerolog.Logger) *ServiceRequestController {
	return &ServiceRequestController{requestService: requestService, hub: hub, logger: logger}
}

type serviceRequestListQuery struct {
	pageQuery
	Status     models.ServiceRequestStatus `form:"status" binding:"omitempty,oneof=pending in_progress resolved cancelled"`
	Category   models.ServiceCategory      `form:"category" binding:"omitempty,oneof=plumbing electrical hvac appliance structural cleaning other"`
	UserID     int64                       `form:"userId" binding:"omitempty,min=1"`
	AssignedTo int64                       `form:"assignedTo" binding:"omitempty,min=1"`
}

type messageListQuery struct {
	AfterID int64 `form:"afterId" binding:"omitempty,min=0"`
	Limit   int   `form:"limit" binding:"omitempty,min=1,max=200"`
}

// GetAllServiceRequests lists the tickets visible to the caller
// @Summary List service requests
// @Tags service-requests
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status"
// @Param category query string false "Category"
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[models.ServiceRequest]}
// @Router /service-requests [get]
func (c *ServiceRequestController) GetAllServiceRequests(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var q serviceRequestListQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	filter := models.ServiceRequestFilter{Page: q.Page, PageSize: q.PageSize}
	if q.Status != "" {
		filter.Status = &q.Status
	}
	if q.Category != "" {
		filter.Category = &q.Category
	}
	if q.UserID > 0 {
		filter.UserID = &q.UserID
	}
	if q.AssignedTo > 0 {
		filter.AssignedTo = &q.AssignedTo
	}

	requests, err := c.requestService.List(ctx.Request.Context(), actor, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, requests)
}

// GetServiceRequestByID returns one ticket
// @Summary Get service request
// @Tags service-requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Service request ID"
// @Success 200 {object} dto.APIResponse{data=models.ServiceRequest}
// @Router /service-requests/{id} [get]
func (c *ServiceRequestController) GetServiceRequestByID(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	sr, err := c.requestService.Get(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, sr)
}

// CreateServiceRequest files a ticket for the caller's apartment
// @Summary Create service request
// @Tags service-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateServiceRequestRequest true "Ticket"
// @Success 201 {object} dto.APIResponse{data=models.ServiceRequest}
// @Router /service-requests [post]
func (c *ServiceRequestController) CreateServiceRequest(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.CreateServiceRequestRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	sr, err := c.requestService.Create(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, sr, "Gửi yêu cầu dịch vụ thành công")
}

// AcceptServiceRequest lets a staff member take an unassigned ticket
// @Summary Accept service request
// @Tags service-requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Service request ID"
// @Success 200 {object} dto.APIResponse{data=models.ServiceRequest}
// @Failure 409 {object} dto.ErrorResponse "Already taken"
// @Router /service-requests/{id}/accept [post]
func (c *ServiceRequestController) AcceptServiceRequest(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	sr, err := c.requestService.Accept(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, sr)
}

// AssignServiceRequest hands a ticket to a staff member
// @Summary Assign service request
// @Tags service-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Service request ID"
// @Param request body dto.AssignServiceRequestRequest true "Staff"
// @Success 200 {object} dto.APIResponse{data=models.ServiceRequest}
// @Router /service-requests/{id}/assign [post]
func (c *ServiceRequestController) AssignServiceRequest(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.AssignServiceRequestRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	sr, err := c.requestService.Assign(ctx.Request.Context(), actor, id, req.StaffID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, sr)
}

// UpdateServiceRequestStatus moves a ticket through its state machine
// @Summary Update service request status
// @Tags service-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Service request ID"
// @Param request body dto.UpdateServiceRequestStatusRequest true "Status"
// @Success 200 {object} dto.APIResponse{data=models.ServiceRequest}
// @Router /service-requests/{id}/status [patch]
func (c *ServiceRequestController) UpdateServiceRequestStatus(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateServiceRequestStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	sr, err := c.requestService.UpdateStatus(ctx.Request.Context(), actor, id, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, sr)
}

// GetMessages returns the chat of a ticket
// @Summary List service request messages
// @Tags service-requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Service request ID"
// @Param afterId query int false "Only messages after this ID"
// @Param limit query int false "Maximum number of messages"
// @Success 200 {object} dto.APIResponse{data=[]models.ServiceRequestMessage}
// @Router /service-requests/{id}/messages [get]
func (c *ServiceRequestController) GetMessages(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var q messageListQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	msgs, err := c.requestService.ListMessages(ctx.Request.Context(), actor, id, q.AfterID, q.Limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, msgs)
}

// SendMessage posts a chat message on a ticket
// @Summary Send service request message
// @Tags service-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Service request ID"
// @Param request body dto.CreateMessageRequest true "Message"
// @Success 201 {object} dto.APIResponse{data=models.ServiceRequestMessage}
// @Router /service-requests/{id}/messages [post]
func (c *ServiceRequestController) SendMessage(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.CreateMessageRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	msg, err := c.requestService.AddMessage(ctx.Request.Context(), actor, id, req.Content)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, msg, "Gửi tin nhắn thành công")
}

// Subscribe upgrades to a websocket streaming the ticket's messages and status changes
// @Summary Service request live updates
// @Tags service-requests
// @Security BearerAuth
// @Param id path int true "Service request ID"
// @Param token query string false "Access token for clients that cannot set headers"
// @Router /service-requests/{id}/ws [get]
func (c *ServiceRequestController) Subscribe(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.requestService.AuthorizeSubscription(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	// the upgrader has already written an HTTP error when Serve fails
	if err := c.hub.Serve(ctx.Writer, ctx.Request, id, actor.UserID); err != nil {
		c.logger.Warn().Err(err).Int64("requestID", id).Int64("userID", actor.UserID).Msg("WebSocket subscription failed")
	}
}
