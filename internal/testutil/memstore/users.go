package memstore

import (
	"context"
	"strings"
	"time"

	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
)

// Users implements services.UserStore
type Users struct{ db *DB }

func (s *Users) checkUnique(u *models.User) error {
	for id, other := range s.db.t.users {
		if id == u.ID {
			continue
		}
		if other.Email == u.Email {
			return apperrors.ErrEmailAlreadyExists
		}
		if u.ApartmentID != nil && other.ApartmentID != nil && *u.ApartmentID == *other.ApartmentID {
			return apperrors.ErrApartmentNotAvailable
		}
	}
	return nil
}

func (s *Users) Create(_ context.Context, u *models.User) error {
	defer s.db.lock()()
	u.Email = strings.ToLower(u.Email)
	if err := s.checkUnique(u); err != nil {
		return err
	}
	u.ID = s.db.nextID()
	u.CreatedAt = s.db.Now()
	u.UpdatedAt = u.CreatedAt
	s.db.t.users[u.ID] = *u
	return nil
}

func (s *Users) GetByID(_ context.Context, id int64) (*models.User, error) {
	defer s.db.lock()()
	u, ok := s.db.t.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &u, nil
}

func (s *Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	defer s.db.lock()()
	for _, u := range s.db.t.users {
		if u.Email == strings.ToLower(email) {
			return &u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (s *Users) GetByApartmentID(_ context.Context, apartmentID int64) (*models.User, error) {
	defer s.db.lock()()
	for _, u := range s.db.t.users {
		if u.ApartmentID != nil && *u.ApartmentID == apartmentID {
			return &u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (s *Users) Update(_ context.Context, u *models.User) error {
	defer s.db.lock()()
	current, ok := s.db.t.users[u.ID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if err := s.checkUnique(u); err != nil {
		return err
	}
	updated := *u
	updated.Email = current.Email
	updated.LastLoginAt = current.LastLoginAt
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = s.db.Now()
	s.db.t.users[u.ID] = updated
	return nil
}

func (s *Users) Delete(_ context.Context, id int64) error {
	defer s.db.lock()()
	if _, ok := s.db.t.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	for _, inv := range s.db.t.invoices {
		if inv.UserID == id {
			return apperrors.ErrUserHasInvoices
		}
	}
	delete(s.db.t.users, id)
	return nil
}

func (s *Users) List(_ context.Context, f models.UserFilter) ([]*models.User, int64, error) {
	defer s.db.lock()()
	search := strings.ToLower(strings.TrimSpace(f.Search))
	var out []*models.User
	for _, u := range s.db.t.users {
		if f.Role != nil && u.Role != *f.Role {
			continue
		}
		if f.Status != nil && u.Status != *f.Status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.FullName+" "+u.Email+" "+u.Phone), search) {
			continue
		}
		out = append(out, ptr(u))
	}
	total := int64(len(out))
	return page(out, func(a, b *models.User) bool { return a.ID > b.ID }, f.Page, f.PageSize), total, nil
}

func (s *Users) UpdateLastLogin(_ context.Context, userID int64, at time.Time) error {
	defer s.db.lock()()
	u, ok := s.db.t.users[userID]
	if ok {
		u.LastLoginAt = &at
		s.db.t.users[userID] = u
	}
	return nil
}

func (s *Users) CountByRole(_ context.Context, role models.Role) (int64, error) {
	defer s.db.lock()()
	var n int64
	for _, u := range s.db.t.users {
		if u.Role == role && u.Status == models.UserStatusActive {
			n++
		}
	}
	return n, nil
}

// Tokens implements services.TokenStore
type Tokens struct{ db *DB }

func (s *Tokens) Create(_ context.Context, t *models.RefreshToken) error {
	defer s.db.lock()()
	if _, ok := s.db.t.tokens[t.Token]; ok {
		return apperrors.ErrTokenInvalid
	}
	t.CreatedAt = s.db.Now()
	s.db.t.tokens[t.Token] = *t
	return nil
}

func (s *Tokens) Get(_ context.Context, token string) (*models.RefreshToken, error) {
	defer s.db.lock()()
	t, ok := s.db.t.tokens[token]
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}
	return &t, nil
}

func (s *Tokens) Revoke(_ context.Context, token string) error {
	defer s.db.lock()()
	t, ok := s.db.t.tokens[token]
	if !ok || t.Revoked {
		return apperrors.ErrTokenRevoked
	}
	t.Revoked = true
	s.db.t.tokens[token] = t
	return nil
}

func (s *Tokens) RevokeAllForUser(_ context.Context, userID int64) error {
	defer s.db.lock()()
	for k, t := range s.db.t.tokens {
		if t.UserID == userID {
			t.Revoked = true
			s.db.t.tokens[k] = t
		}
	}
	return nil
}

func (s *Tokens) CleanupExpired(_ context.Context, now time.Time) (int64, error) {
	defer s.db.lock()()
	var n int64
	for k, t := range s.db.t.tokens {
		if t.ExpiresAt.Before(now) {
			delete(s.db.t.tokens, k)
			n++
		}
	}
	return n, nil
}
