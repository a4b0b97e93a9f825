package auth

import (
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
)

// Authorization errors
var (
	ErrPermissionDenied = apperrors.NewForbiddenError("Bạn không có quyền thực hiện thao tác này")
	ErrAdminOnly        = apperrors.NewForbiddenError("Chỉ quản trị viên được thực hiện thao tác này")
	ErrStaffOnly        = apperrors.NewForbiddenError("Chỉ nhân viên được thực hiện thao tác này")
	ErrResidentOnly     = apperrors.NewForbiddenError("Chỉ cư dân được thực hiện thao tác này")
)

// Actor is the authenticated caller of a service operation
type Actor struct {
	UserID int64
	Role   models.Role
}

// IsAdmin reports whether the actor is an administrator
func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// IsStaff reports whether the actor is a staff member
func (a Actor) IsStaff() bool { return a.Role == models.RoleStaff }

// IsResident reports whether the actor is a resident
func (a Actor) IsResident() bool { return a.Role == models.RoleResident }

// IsManagement reports whether the actor is staff or admin
func (a Actor) IsManagement() bool { return a.IsAdmin() || a.IsStaff() }

// RequireAdmin returns ErrAdminOnly unless the actor is an admin
func (a Actor) RequireAdmin() error {
	if !a.IsAdmin() {
		return ErrAdminOnly
	}
	return nil
}

// CanModifyPost allows the author and admins
func (a Actor) CanModifyPost(p *models.Post) bool {
	return a.IsAdmin() || p.AuthorID == a.UserID
}

// CanPostType checks role restrictions on post types
func (a Actor) CanPostType(t models.PostType) bool {
	if t == models.PostAnnouncement {
		return a.IsManagement()
	}
	return true
}

// CanSeeAuthor reports whether the real author of p may be shown to the actor
func (a Actor) CanSeeAuthor(p *models.Post) bool {
	return !p.IsAnonymous || a.IsAdmin() || p.AuthorID == a.UserID
}

// CanDeleteComment allows the comment author, the post author and admins
func (a Actor) CanDeleteComment(p *models.Post, c *models.Comment) bool {
	return a.IsAdmin() || c.AuthorID == a.UserID || p.AuthorID == a.UserID
}

// CanViewInvoice allows admins and the billed resident
func (a Actor) CanViewInvoice(inv *models.Invoice) bool {
	return a.IsAdmin() || inv.UserID == a.UserID
}

// CanViewTransaction allows admins and the paying resident
func (a Actor) CanViewTransaction(t *models.Transaction) bool {
	return a.IsAdmin() || t.UserID == a.UserID
}

// IsRequestParticipant allows the owner, the assigned staff member and admins
func (a Actor) IsRequestParticipant(sr *models.ServiceRequest) bool {
	if a.IsAdmin() || sr.UserID == a.UserID {
		return true
	}
	return sr.AssignedTo != nil && *sr.AssignedTo == a.UserID
}

// CanViewRequest additionally lets staff see unassigned pending tickets they may accept
func (a Actor) CanViewRequest(sr *models.ServiceRequest) bool {
	if a.IsRequestParticipant(sr) {
		return true
	}
	return a.IsStaff() && sr.AssignedTo == nil && sr.Status == models.RequestPending
}

// CanSetRequestStatus applies the role rules of the ticket state machine
func (a Actor) CanSetRequestStatus(sr *models.ServiceRequest, to models.ServiceRequestStatus) bool {
	if a.IsAdmin() {
		return true
	}
	assigned := sr.AssignedTo != nil && *sr.AssignedTo == a.UserID
	switch {
	case sr.Status == models.RequestPending && to == models.RequestCancelled:
		return sr.UserID == a.UserID
	case sr.Status == models.RequestPending && to == models.RequestInProgress:
		return a.IsStaff() && (sr.AssignedTo == nil || assigned)
	case sr.Status == models.RequestInProgress:
		return a.IsStaff() && assigned
	}
	return false
}
