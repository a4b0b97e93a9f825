package models

import "time"

// ServiceCategory classifies maintenance tickets
type ServiceCategory string

const (
	CategoryPlumbing   ServiceCategory = "plumbing"
	CategoryElectrical ServiceCategory = "electrical"
	CategoryHVAC       ServiceCategory = "hvac"
	CategoryAppliance  ServiceCategory = "appliance"
	CategoryStructural ServiceCategory = "structural"
	CategoryCleaning   ServiceCategory = "cleaning"
	CategoryOther      ServiceCategory = "other"
)

// ServicePriority orders tickets for staff
type ServicePriority string

const (
	PriorityLow    ServicePriority = "low"
	PriorityMedium ServicePriority = "medium"
	PriorityHigh   ServicePriority = "high"
	PriorityUrgent ServicePriority = "urgent"
)

// ServiceRequestStatus is the ticket state
type ServiceRequestStatus string

const (
	RequestPending    ServiceRequestStatus = "pending"
	RequestInProgress ServiceRequestStatus = "in_progress"
	RequestResolved   ServiceRequestStatus = "resolved"
	RequestCancelled  ServiceRequestStatus = "cancelled"
)

var requestTransitions = map[ServiceRequestStatus][]ServiceRequestStatus{
	RequestPending:    {RequestInProgress, RequestCancelled},
	RequestInProgress: {RequestResolved, RequestCancelled},
}

// CanTransitionTo reports whether the ticket state machine allows from -> to
func (s ServiceRequestStatus) CanTransitionTo(to ServiceRequestStatus) bool {
	for _, next := range requestTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible
func (s ServiceRequestStatus) Terminal() bool {
	return len(requestTransitions[s]) == 0
}

// ServiceRequest is a maintenance ticket filed by a resident
type ServiceRequest struct {
	ID          int64                `json:"id" db:"id"`
	UserID      int64                `json:"userId" db:"user_id"`
	ApartmentID int64                `json:"apartmentId" db:"apartment_id"`
	Title       string               `json:"title" db:"title"`
	Description string               `json:"description" db:"description"`
	Category    ServiceCategory      `json:"category" db:"category"`
	Priority    ServicePriority      `json:"priority" db:"priority"`
	Status      ServiceRequestStatus `json:"status" db:"status"`
	AssignedTo  *int64               `json:"assignedTo,omitempty" db:"assigned_to"`
	Images      []string             `json:"images" db:"images"`
	ResolvedAt  *time.Time           `json:"resolvedAt,omitempty" db:"resolved_at"`
	CreatedAt   time.Time            `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time            `json:"updatedAt" db:"updated_at"`
}

// ServiceRequestMessage is one chat line on a ticket
type ServiceRequestMessage struct {
	ID         int64     `json:"id" db:"id"`
	RequestID  int64     `json:"requestId" db:"request_id"`
	SenderID   int64     `json:"senderId" db:"sender_id"`
	SenderName string    `json:"senderName" db:"-"`
	Content    string    `json:"content" db:"content"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// ServiceRequestFilter narrows ticket listings. VisibleToStaff selects tickets
// assigned to that staff member plus unassigned pending ones.
type ServiceRequestFilter struct {
	UserID         *int64
	AssignedTo     *int64
	VisibleToStaff *int64
	Status         *ServiceRequestStatus
	Category       *ServiceCategory
	Page           int
	PageSize       int
}
