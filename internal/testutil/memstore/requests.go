package memstore

import (
	"context"

	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
)

// ServiceRequests implements services.ServiceRequestStore
type ServiceRequests struct{ db *DB }

func (s *ServiceRequests) Create(_ context.Context, sr *models.ServiceRequest) error {
	defer s.db.lock()()
	if _, ok := s.db.t.apartments[sr.ApartmentID]; !ok {
		return apperrors.ErrResidentWithoutHome
	}
	if sr.Images == nil {
		sr.Images = []string{}
	}
	sr.ID = s.db.nextID()
	sr.CreatedAt = s.db.Now()
	sr.UpdatedAt = sr.CreatedAt
	s.db.t.requests[sr.ID] = *sr
	return nil
}

func (s *ServiceRequests) GetByID(_ context.Context, id int64) (*models.ServiceRequest, error) {
	defer s.db.lock()()
	sr, ok := s.db.t.requests[id]
	if !ok {
		return nil, apperrors.ErrServiceRequestNotFound
	}
	return &sr, nil
}

func (s *ServiceRequests) GetByIDForUpdate(ctx context.Context, id int64) (*models.ServiceRequest, error) {
	return s.GetByID(ctx, id)
}

func (s *ServiceRequests) Update(_ context.Context, sr *models.ServiceRequest) error {
	defer s.db.lock()()
	current, ok := s.db.t.requests[sr.ID]
	if !ok {
		return apperrors.ErrServiceRequestNotFound
	}
	current.Status = sr.Status
	current.AssignedTo = sr.AssignedTo
	current.ResolvedAt = sr.ResolvedAt
	current.UpdatedAt = s.db.Now()
	sr.UpdatedAt = current.UpdatedAt
	s.db.t.requests[sr.ID] = current
	return nil
}

func matchesRequest(sr models.ServiceRequest, f models.ServiceRequestFilter) bool {
	if f.UserID != nil && sr.UserID != *f.UserID {
		return false
	}
	if f.AssignedTo != nil && (sr.AssignedTo == nil || *sr.AssignedTo != *f.AssignedTo) {
		return false
	}
	if f.VisibleToStaff != nil {
		mine := sr.AssignedTo != nil && *sr.AssignedTo == *f.VisibleToStaff
		open := sr.AssignedTo == nil && sr.Status == models.RequestPending
		if !mine && !open {
			return false
		}
	}
	if f.Status != nil && sr.Status != *f.Status {
		return false
	}
	if f.Category != nil && sr.Category != *f.Category {
		return false
	}
	return true
}

func (s *ServiceRequests) List(_ context.Context, f models.ServiceRequestFilter) ([]*models.ServiceRequest, int64, error) {
	defer s.db.lock()()
	var out []*models.ServiceRequest
	for _, sr := range s.db.t.requests {
		if matchesRequest(sr, f) {
			out = append(out, ptr(sr))
		}
	}
	total := int64(len(out))
	less := func(a, b *models.ServiceRequest) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	}
	return page(out, less, f.Page, f.PageSize), total, nil
}

func (s *ServiceRequests) CountByStatus(_ context.Context, f models.ServiceRequestFilter) (map[models.ServiceRequestStatus]int64, error) {
	defer s.db.lock()()
	out := map[models.ServiceRequestStatus]int64{
		models.RequestPending:    0,
		models.RequestInProgress: 0,
		models.RequestResolved:   0,
		models.RequestCancelled:  0,
	}
	for _, sr := range s.db.t.requests {
		if matchesRequest(sr, f) {
			out[sr.Status]++
		}
	}
	return out, nil
}

func (s *ServiceRequests) CountUnassignedPending(_ context.Context) (int64, error) {
	defer s.db.lock()()
	var n int64
	for _, sr := range s.db.t.requests {
		if sr.Status == models.RequestPending && sr.AssignedTo == nil {
			n++
		}
	}
	return n, nil
}

func (s *ServiceRequests) CreateMessage(_ context.Context, m *models.ServiceRequestMessage) error {
	defer s.db.lock()()
	if _, ok := s.db.t.requests[m.RequestID]; !ok {
		return apperrors.ErrServiceRequestNotFound
	}
	m.ID = s.db.nextID()
	m.CreatedAt = s.db.Now()
	m.SenderName = s.db.t.users[m.SenderID].FullName
	s.db.t.messages = append(s.db.t.messages, *m)
	return nil
}

func (s *ServiceRequests) ListMessages(_ context.Context, requestID int64, afterID int64, limit uint64) ([]*models.ServiceRequestMessage, error) {
	defer s.db.lock()()
	var out []*models.ServiceRequestMessage
	for _, m := range s.db.t.messages {
		if m.RequestID != requestID || m.ID <= afterID {
			continue
		}
		m.SenderName = s.db.t.users[m.SenderID].FullName
		out = append(out, ptr(m))
		if limit > 0 && uint64(len(out)) == limit {
			break
		}
	}
	return out, nil
}
