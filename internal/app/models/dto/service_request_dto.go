package dto

import "github.com/stayease/stayease-api/internal/app/models"

// CreateServiceRequestRequest files a maintenance ticket
type CreateServiceRequestRequest struct {
	Title       string                 `json:"title" binding:"required,max=200"`
	Description string                 `json:"description" binding:"required,max=5000"`
	Category    models.ServiceCategory `json:"category" binding:"required,oneof=plumbing electrical hvac appliance structural cleaning other"`
	Priority    models.ServicePriority `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Images      []string               `json:"images"`
}

// AssignServiceRequestRequest assigns a ticket to a staff member
type AssignServiceRequestRequest struct {
	StaffID int64 `json:"staffId" binding:"required,min=1"`
}

// UpdateServiceRequestStatusRequest moves a ticket through its state machine
type UpdateServiceRequestStatusRequest struct {
	Status models.ServiceRequestStatus `json:"status" binding:"required,oneof=pending in_progress resolved cancelled"`
}

// CreateMessageRequest posts a chat message on a ticket
type CreateMessageRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}
