package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	appauth "github.com/stayease/stayease-api/internal/app/auth"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
	"github.com/stayease/stayease-api/internal/pkg/helpers"
	"github.com/stayease/stayease-api/internal/pkg/websocket"
)

const maxMessagePage = 200

// Broadcaster pushes events to the live subscribers of a ticket
type Broadcaster interface {
	Broadcast(msg *websocket.Message)
}

// ServiceRequestService handles maintenance tickets, their assignment and chat
type ServiceRequestService struct {
	tx       Transactor
	requests ServiceRequestStore
	users    UserStore
	hub      Broadcaster
	logger   zerolog.Logger
	now      func() time.Time
}

// NewServiceRequestService creates a new ServiceRequestService. hub may be nil.
func NewServiceRequestService(tx Transactor, requests ServiceRequestStore, users UserStore, hub Broadcaster, logger zerolog.Logger) *ServiceRequestService {
	return &ServiceRequestService{
		tx:       tx,
		requests: requests,
		users:    users,
		hub:      hub,
		logger:   logger,
		now:      time.Now,
	}
}

// Create files a ticket for the resident's apartment
func (s *ServiceRequestService) Create(ctx context.Context, actor appauth.Actor, req *dto.CreateServiceRequestRequest) (*models.ServiceRequest, error) {
	if !actor.IsResident() {
		return nil, appauth.ErrResidentOnly
	}
	resident, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if resident.ApartmentID == nil {
		return nil, apperrors.ErrResidentWithoutHome
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	sr := &models.ServiceRequest{
		UserID:      resident.ID,
		ApartmentID: *resident.ApartmentID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
		Priority:    priority,
		Status:      models.RequestPending,
		Images:      req.Images,
	}
	if sr.Images == nil {
		sr.Images = []string{}
	}
	if err := s.requests.Create(ctx, sr); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("requestID", sr.ID).Str("category", string(sr.Category)).Msg("Service request created")
	return sr, nil
}

// List returns the tickets visible to actor: residents their own, staff their
// assigned ones plus unassigned pending ones, admins all
func (s *ServiceRequestService) List(ctx context.Context, actor appauth.Actor, filter models.ServiceRequestFilter) (*dto.ListResponse[*models.ServiceRequest], error) {
	switch {
	case actor.IsAdmin():
	case actor.IsStaff():
		filter.UserID = nil
		filter.VisibleToStaff = &actor.UserID
	default:
		filter.UserID = &actor.UserID
		filter.AssignedTo = nil
	}
	filter.Page, filter.PageSize = helpers.NormalizePage(filter.Page, filter.PageSize)

	items, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.ServiceRequest{}
	}
	return &dto.ListResponse[*models.ServiceRequest]{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, filter.Page, filter.PageSize),
	}, nil
}

// Get returns a ticket visible to actor
func (s *ServiceRequestService) Get(ctx context.Context, actor appauth.Actor, id int64) (*models.ServiceRequest, error) {
	sr, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanViewRequest(sr) {
		return nil, apperrors.ErrServiceRequestNotFound
	}
	return sr, nil
}

// Accept lets a staff member take an unassigned pending ticket
func (s *ServiceRequestService) Accept(ctx context.Context, actor appauth.Actor, id int64) (*models.ServiceRequest, error) {
	if !actor.IsStaff() {
		return nil, appauth.ErrStaffOnly
	}
	return s.transition(ctx, id, func(sr *models.ServiceRequest) error {
		if sr.AssignedTo != nil && *sr.AssignedTo != actor.UserID {
			return apperrors.NewConflictError("Yêu cầu đã được nhân viên khác nhận")
		}
		if !sr.Status.CanTransitionTo(models.RequestInProgress) {
			return apperrors.ErrInvalidStatusTransition
		}
		staff := actor.UserID
		sr.AssignedTo = &staff
		sr.Status = models.RequestInProgress
		return nil
	})
}

// Assign gives a ticket to an active staff member. A pending ticket starts progress;
// an in-progress one is handed over.
func (s *ServiceRequestService) Assign(ctx context.Context, actor appauth.Actor, id, staffID int64) (*models.ServiceRequest, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	staff, err := s.users.GetByID(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if staff.Role != models.RoleStaff || !staff.IsActive() {
		return nil, apperrors.ErrNotAStaff
	}

	return s.transition(ctx, id, func(sr *models.ServiceRequest) error {
		switch sr.Status {
		case models.RequestPending:
			sr.Status = models.RequestInProgress
		case models.RequestInProgress:
		default:
			return apperrors.ErrInvalidStatusTransition
		}
		sr.AssignedTo = &staff.ID
		return nil
	})
}

// UpdateStatus moves a ticket through its state machine under the role rules
func (s *ServiceRequestService) UpdateStatus(ctx context.Context, actor appauth.Actor, id int64, status models.ServiceRequestStatus) (*models.ServiceRequest, error) {
	return s.transition(ctx, id, func(sr *models.ServiceRequest) error {
		if !actor.CanViewRequest(sr) {
			return apperrors.ErrServiceRequestNotFound
		}
		if !sr.Status.CanTransitionTo(status) {
			return apperrors.ErrInvalidStatusTransition
		}
		if !actor.CanSetRequestStatus(sr, status) {
			return appauth.ErrPermissionDenied
		}
		// only a staff member can pick up an unassigned ticket; admins go through Assign
		if status == models.RequestInProgress && sr.AssignedTo == nil && !actor.IsStaff() {
			return apperrors.ErrRequestNeedsAssignee
		}

		if status == models.RequestInProgress && sr.AssignedTo == nil && actor.IsStaff() {
			staff := actor.UserID
			sr.AssignedTo = &staff
		}
		if status == models.RequestResolved {
			now := s.now()
			sr.ResolvedAt = &now
		}
		sr.Status = status
		return nil
	})
}

// transition applies change to a locked ticket, saves it and notifies subscribers
func (s *ServiceRequestService) transition(ctx context.Context, id int64, change func(*models.ServiceRequest) error) (*models.ServiceRequest, error) {
	var sr *models.ServiceRequest
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		sr, err = s.requests.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := change(sr); err != nil {
			return err
		}
		return s.requests.Update(ctx, sr)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("requestID", sr.ID).
		Str("status", string(sr.Status)).
		Interface("assignedTo", sr.AssignedTo).
		Msg("Service request updated")
	s.broadcast(&websocket.Message{
		Type:      websocket.TypeStatus,
		RequestID: sr.ID,
		Data: map[string]interface{}{
			"status":     sr.Status,
			"assignedTo": sr.AssignedTo,
			"resolvedAt": sr.ResolvedAt,
		},
	})
	return sr, nil
}

// participant loads a ticket and checks that actor takes part in it
func (s *ServiceRequestService) participant(ctx context.Context, actor appauth.Actor, id int64) (*models.ServiceRequest, error) {
	sr, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsRequestParticipant(sr) {
		if actor.CanViewRequest(sr) {
			return nil, appauth.ErrPermissionDenied
		}
		return nil, apperrors.ErrServiceRequestNotFound
	}
	return sr, nil
}

// AuthorizeSubscription checks that actor may follow a ticket live
func (s *ServiceRequestService) AuthorizeSubscription(ctx context.Context, actor appauth.Actor, id int64) error {
	_, err := s.participant(ctx, actor, id)
	return err
}

// AddMessage posts a chat line on a ticket and pushes it to subscribers
func (s *ServiceRequestService) AddMessage(ctx context.Context, actor appauth.Actor, id int64, content string) (*models.ServiceRequestMessage, error) {
	if _, err := s.participant(ctx, actor, id); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("Nội dung tin nhắn không được để trống")
	}

	m := &models.ServiceRequestMessage{RequestID: id, SenderID: actor.UserID, Content: content}
	if err := s.requests.CreateMessage(ctx, m); err != nil {
		return nil, err
	}

	s.broadcast(&websocket.Message{
		Type:      websocket.TypeMessage,
		RequestID: id,
		SenderID:  actor.UserID,
		Data:      m,
		Timestamp: m.CreatedAt,
	})
	return m, nil
}

// ListMessages returns the chat of a ticket in send order, optionally after a message ID
func (s *ServiceRequestService) ListMessages(ctx context.Context, actor appauth.Actor, id, afterID int64, limit int) ([]*models.ServiceRequestMessage, error) {
	if _, err := s.participant(ctx, actor, id); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxMessagePage {
		limit = maxMessagePage
	}
	msgs, err := s.requests.ListMessages(ctx, id, afterID, uint64(limit))
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []*models.ServiceRequestMessage{}
	}
	return msgs, nil
}

// HandleInbound stores a message typed into an open socket
func (s *ServiceRequestService) HandleInbound(ctx context.Context, requestID, userID int64, content string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsActive() {
		return apperrors.ErrAccountDisabled
	}
	_, err = s.AddMessage(ctx, appauth.Actor{UserID: user.ID, Role: user.Role}, requestID, content)
	return err
}

func (s *ServiceRequestService) broadcast(msg *websocket.Message) {
	if s.hub != nil {
		s.hub.Broadcast(msg)
	}
}
