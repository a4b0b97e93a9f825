package memstore

import (
	"context"
	"strings"

	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
)

// Apartments implements services.ApartmentStore
type Apartments struct{ db *DB }

func (s *Apartments) numberTaken(a *models.Apartment) bool {
	for id, other := range s.db.t.apartments {
		if id != a.ID && other.ApartmentNumber == a.ApartmentNumber {
			return true
		}
	}
	return false
}

func (s *Apartments) Create(_ context.Context, a *models.Apartment) error {
	defer s.db.lock()()
	if s.numberTaken(a) {
		return apperrors.ErrApartmentAlreadyExists
	}
	if a.Images == nil {
		a.Images = []string{}
	}
	a.ID = s.db.nextID()
	a.CreatedAt = s.db.Now()
	a.UpdatedAt = a.CreatedAt
	s.db.t.apartments[a.ID] = *a
	return nil
}

func (s *Apartments) GetByID(_ context.Context, id int64) (*models.Apartment, error) {
	defer s.db.lock()()
	a, ok := s.db.t.apartments[id]
	if !ok {
		return nil, apperrors.ErrApartmentNotFound
	}
	return &a, nil
}

// GetByIDForUpdate is GetByID; WithTransaction already serializes writers
func (s *Apartments) GetByIDForUpdate(ctx context.Context, id int64) (*models.Apartment, error) {
	return s.GetByID(ctx, id)
}

func (s *Apartments) Update(_ context.Context, a *models.Apartment) error {
	defer s.db.lock()()
	current, ok := s.db.t.apartments[a.ID]
	if !ok {
		return apperrors.ErrApartmentNotFound
	}
	if s.numberTaken(a) {
		return apperrors.ErrApartmentAlreadyExists
	}
	a.CreatedAt = current.CreatedAt
	a.UpdatedAt = s.db.Now()
	s.db.t.apartments[a.ID] = *a
	return nil
}

func (s *Apartments) UpdateStatus(_ context.Context, id int64, status models.ApartmentStatus) error {
	defer s.db.lock()()
	a, ok := s.db.t.apartments[id]
	if !ok {
		return apperrors.ErrApartmentNotFound
	}
	a.Status = status
	a.UpdatedAt = s.db.Now()
	s.db.t.apartments[id] = a
	return nil
}

func (s *Apartments) Delete(_ context.Context, id int64) error {
	defer s.db.lock()()
	if _, ok := s.db.t.apartments[id]; !ok {
		return apperrors.ErrApartmentNotFound
	}
	for _, inv := range s.db.t.invoices {
		if inv.ApartmentID == id {
			return apperrors.ErrApartmentHasInvoices
		}
	}
	for uid, u := range s.db.t.users {
		if u.ApartmentID != nil && *u.ApartmentID == id {
			u.ApartmentID = nil
			s.db.t.users[uid] = u
		}
	}
	delete(s.db.t.apartments, id)
	return nil
}

func (s *Apartments) List(_ context.Context, f models.ApartmentFilter) ([]*models.Apartment, int64, error) {
	defer s.db.lock()()
	search := strings.ToLower(strings.TrimSpace(f.Search))
	var out []*models.Apartment
	for _, a := range s.db.t.apartments {
		if f.Status != nil && a.Status != *f.Status {
			continue
		}
		if f.Building != "" && a.Building != f.Building {
			continue
		}
		if f.Floor != nil && a.Floor != *f.Floor {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(a.ApartmentNumber+" "+a.Description), search) {
			continue
		}
		out = append(out, ptr(a))
	}
	total := int64(len(out))
	less := func(a, b *models.Apartment) bool {
		if a.Building != b.Building {
			return a.Building < b.Building
		}
		if a.Floor != b.Floor {
			return a.Floor < b.Floor
		}
		return a.ApartmentNumber < b.ApartmentNumber
	}
	return page(out, less, f.Page, f.PageSize), total, nil
}

func (s *Apartments) CountByStatus(_ context.Context) (map[models.ApartmentStatus]int64, error) {
	defer s.db.lock()()
	out := map[models.ApartmentStatus]int64{
		models.ApartmentAvailable:   0,
		models.ApartmentOccupied:    0,
		models.ApartmentMaintenance: 0,
	}
	for _, a := range s.db.t.apartments {
		out[a.Status]++
	}
	return out, nil
}

func (s *Apartments) HasInvoices(_ context.Context, id int64) (bool, error) {
	defer s.db.lock()()
	for _, inv := range s.db.t.invoices {
		if inv.ApartmentID == id {
			return true, nil
		}
	}
	return false, nil
}

// Amenities implements services.AmenityStore
type Amenities struct{ db *DB }

func (s *Amenities) Create(_ context.Context, a *models.Amenity) error {
	defer s.db.lock()()
	if a.Images == nil {
		a.Images = []string{}
	}
	a.ID = s.db.nextID()
	a.CreatedAt = s.db.Now()
	a.UpdatedAt = a.CreatedAt
	s.db.t.amenities[a.ID] = *a
	return nil
}

func (s *Amenities) GetByID(_ context.Context, id int64) (*models.Amenity, error) {
	defer s.db.lock()()
	a, ok := s.db.t.amenities[id]
	if !ok {
		return nil, apperrors.ErrAmenityNotFound
	}
	return &a, nil
}

func (s *Amenities) Update(_ context.Context, a *models.Amenity) error {
	defer s.db.lock()()
	current, ok := s.db.t.amenities[a.ID]
	if !ok {
		return apperrors.ErrAmenityNotFound
	}
	a.CreatedAt = current.CreatedAt
	a.UpdatedAt = s.db.Now()
	s.db.t.amenities[a.ID] = *a
	return nil
}

func (s *Amenities) Delete(_ context.Context, id int64) error {
	defer s.db.lock()()
	if _, ok := s.db.t.amenities[id]; !ok {
		return apperrors.ErrAmenityNotFound
	}
	delete(s.db.t.amenities, id)
	return nil
}

func (s *Amenities) List(_ context.Context, f models.AmenityFilter) ([]*models.Amenity, error) {
	defer s.db.lock()()
	out := []*models.Amenity{}
	for _, a := range s.db.t.amenities {
		if f.Type != nil && a.Type != *f.Type {
			continue
		}
		if f.Status != nil && a.Status != *f.Status {
			continue
		}
		out = append(out, ptr(a))
	}
	less := func(a, b *models.Amenity) bool {
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	}
	return sortBy(out, less), nil
}
