package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appauth "github.com/stayease/stayease-api/internal/app/auth"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
	"github.com/stayease/stayease-api/internal/pkg/websocket"
)

func (f *fixture) request(t *testing.T, resident appauth.Actor) *models.ServiceRequest {
	t.Helper()
	sr, err := f.requests.Create(context.Background(), resident, &dto.CreateServiceRequestRequest{
		Title:       "Vòi nước rò rỉ",
		Description: "Vòi bếp nhỏ giọt cả đêm",
		Category:    models.CategoryPlumbing,
	})
	require.NoError(t, err)
	return sr
}

func TestServiceRequestService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	resident, apt := f.resident(t)

	sr := f.request(t, resident)
	assert.Equal(t, models.RequestPending, sr.Status)
	assert.Equal(t, models.PriorityMedium, sr.Priority)
	assert.Equal(t, apt.ID, sr.ApartmentID)
	assert.NotNil(t, sr.Images)
	assert.Nil(t, sr.AssignedTo)

	homeless := f.user(t, models.RoleResident)
	_, err := f.requests.Create(ctx, homeless, &dto.CreateServiceRequestRequest{Title: "x", Description: "y", Category: models.CategoryOther})
	assert.ErrorIs(t, err, apperrors.ErrResidentWithoutHome)

	_, err = f.requests.Create(ctx, f.staff(t), &dto.CreateServiceRequestRequest{Title: "x", Description: "y", Category: models.CategoryOther})
	assert.ErrorIs(t, err, appauth.ErrResidentOnly)
}

func TestServiceRequestService_Accept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	resident, _ := f.resident(t)
	first, second := f.staff(t), f.staff(t)
	sr := f.request(t, resident)

	_, err := f.requests.Accept(ctx, resident, sr.ID)
	assert.ErrorIs(t, err, appauth.ErrStaffOnly)

	accepted, err := f.requests.Accept(ctx, first, sr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestInProgress, accepted.Status)
	require.NotNil(t, accepted.AssignedTo)
	assert.Equal(t, first.UserID, *accepted.AssignedTo)

	_, err = f.requests.Accept(ctx, second, sr.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	msgs := f.hub.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, websocket.TypeStatus, msgs[0].Type)
	assert.Equal(t, sr.ID, msgs[0].RequestID)
}

func TestServiceRequestService_StatusMachine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	resident, _ := f.resident(t)
	staff, other := f.staff(t), f.staff(t)
	admin := f.admin(t)

	t.Run("resident cancels pending", func(t *testing.T) {
		sr := f.request(t, resident)
		updated, err := f.requests.UpdateStatus(ctx, resident, sr.ID, models.RequestCancelled)
		require.NoError(t, err)
		assert.Equal(t, models.RequestCancelled, updated.Status)

		_, err = f.requests.UpdateStatus(ctx, admin, sr.ID, models.RequestInProgress)
		assert.ErrorIs(t, err, apperrors.ErrInvalidStatusTransition)
	})

	t.Run("staff starts and resolves", func(t *testing.T) {
		sr := f.request(t, resident)
		_, err := f.requests.UpdateStatus(ctx, resident, sr.ID, models.RequestInProgress)
		assert.ErrorIs(t, err, appauth.ErrPermissionDenied)

		started, err := f.requests.UpdateStatus(ctx, staff, sr.ID, models.RequestInProgress)
		require.NoError(t, err)
		require.NotNil(t, started.AssignedTo)
		assert.Equal(t, staff.UserID, *started.AssignedTo)

		_, err = f.requests.UpdateStatus(ctx, resident, sr.ID, models.RequestResolved)
		assert.ErrorIs(t, err, appauth.ErrPermissionDenied)
		// no longer pending, so another staff member cannot see it
		_, err = f.requests.UpdateStatus(ctx, other, sr.ID, models.RequestResolved)
		assert.ErrorIs(t, err, apperrors.ErrServiceRequestNotFound)

		resolved, err := f.requests.UpdateStatus(ctx, staff, sr.ID, models.RequestResolved)
		require.NoError(t, err)
		assert.Equal(t, models.RequestResolved, resolved.Status)
		assert.NotNil(t, resolved.ResolvedAt)

		_, err = f.requests.UpdateStatus(ctx, admin, sr.ID, models.RequestCancelled)
		assert.ErrorIs(t, err, apperrors.ErrInvalidStatusTransition)
	})

	t.Run("admin cannot start without an assignee", func(t *testing.T) {
		sr := f.request(t, resident)
		_, err := f.requests.UpdateStatus(ctx, admin, sr.ID, models.RequestInProgress)
		assert.ErrorIs(t, err, apperrors.ErrRequestNeedsAssignee)

		unchanged, err := f.requests.Get(ctx, admin, sr.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RequestPending, unchanged.Status)
		assert.Nil(t, unchanged.AssignedTo)

		// still open for staff to accept
		accepted, err := f.requests.Accept(ctx, staff, sr.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RequestInProgress, accepted.Status)

		// with an assignee in place the admin may drive the ticket
		resolved, err := f.requests.UpdateStatus(ctx, admin, sr.ID, models.RequestResolved)
		require.NoError(t, err)
		assert.Equal(t, models.RequestResolved, resolved.Status)
	})

	t.Run("back to pending is invalid", func(t *testing.T) {
		sr := f.request(t, resident)
		_, err := f.requests.UpdateStatus(ctx, admin, sr.ID, models.RequestPending)
		assert.ErrorIs(t, err, apperrors.ErrInvalidStatusTransition)
	})
}

func TestServiceRequestService_Assign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	resident, _ := f.resident(t)
	admin := f.admin(t)
	first, second := f.staff(t), f.staff(t)
	sr := f.request(t, resident)

	_, err := f.requests.Assign(ctx, first, sr.ID, first.UserID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.requests.Assign(ctx, admin, sr.ID, resident.UserID)
	assert.ErrorIs(t, err, apperrors.ErrNotAStaff)

	assigned, err := f.requests.Assign(ctx, admin, sr.ID, first.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestInProgress, assigned.Status)
	assert.Equal(t, first.UserID, *assigned.AssignedTo)

	reassigned, err := f.requests.Assign(ctx, admin, sr.ID, second.UserID)
	require.NoError(t, err)
	assert.Equal(t, second.UserID, *reassigned.AssignedTo)

	_, err = f.requests.UpdateStatus(ctx, first, sr.ID, models.RequestResolved)
	assert.ErrorIs(t, err, apperrors.ErrServiceRequestNotFound)

	_, err = f.users.UpdateStatus(ctx, first.UserID, models.UserStatusInactive)
	require.NoError(t, err)
	_, err = f.requests.Assign(ctx, admin, sr.ID, first.UserID)
	assert.ErrorIs(t, err, apperrors.ErrNotAStaff)
}

func TestServiceRequestService_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _ := f.resident(t)
	neighbour, _ := f.resident(t)
	staff, other := f.staff(t), f.staff(t)
	admin := f.admin(t)

	open := f.request(t, owner)
	taken := f.request(t, owner)
	_, err := f.requests.Accept(ctx, staff, taken.ID)
	require.NoError(t, err)
	f.request(t, neighbour)

	_, err = f.requests.Get(ctx, neighbour, open.ID)
	assert.ErrorIs(t, err, apperrors.ErrServiceRequestNotFound)
	_, err = f.requests.Get(ctx, other, taken.ID)
	assert.ErrorIs(t, err, apperrors.ErrServiceRequestNotFound)
	_, err = f.requests.Get(ctx, other, open.ID)
	assert.NoError(t, err)

	mine, err := f.requests.List(ctx, owner, models.ServiceRequestFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), mine.Pagination.TotalItems)

	// staff see their own tickets plus the unassigned pending queue
	queue, err := f.requests.List(ctx, staff, models.ServiceRequestFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), queue.Pagination.TotalItems)
	queue, err = f.requests.List(ctx, other, models.ServiceRequestFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), queue.Pagination.TotalItems)

	all, err := f.requests.List(ctx, admin, models.ServiceRequestFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Pagination.TotalItems)
}

func TestServiceRequestService_Messages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _ := f.resident(t)
	neighbour, _ := f.resident(t)
	staff, other := f.staff(t), f.staff(t)
	sr := f.request(t, owner)

	// other staff can see the pending ticket but do not take part in it
	_, err := f.requests.AddMessage(ctx, other, sr.ID, "hello")
	assert.ErrorIs(t, err, appauth.ErrPermissionDenied)
	_, err = f.requests.AddMessage(ctx, neighbour, sr.ID, "hello")
	assert.ErrorIs(t, err, apperrors.ErrServiceRequestNotFound)
	_, err = f.requests.AddMessage(ctx, owner, sr.ID, "   ")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	first, err := f.requests.AddMessage(ctx, owner, sr.ID, "Khi nào có người đến?")
	require.NoError(t, err)
	assert.NotEmpty(t, first.SenderName)

	_, err = f.requests.Accept(ctx, staff, sr.ID)
	require.NoError(t, err)
	require.NoError(t, f.requests.HandleInbound(ctx, sr.ID, staff.UserID, "Chiều nay 3h"))

	msgs, err := f.requests.ListMessages(ctx, owner, sr.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, first.ID, msgs[0].ID)
	assert.Equal(t, staff.UserID, msgs[1].SenderID)

	after, err := f.requests.ListMessages(ctx, staff, sr.ID, first.ID, 10)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "Chiều nay 3h", after[0].Content)

	assert.NoError(t, f.requests.AuthorizeSubscription(ctx, owner, sr.ID))
	assert.ErrorIs(t, f.requests.AuthorizeSubscription(ctx, other, sr.ID), apperrors.ErrServiceRequestNotFound)

	var types []string
	for _, m := range f.hub.messages() {
		types = append(types, m.Type)
	}
	assert.Equal(t, []string{websocket.TypeMessage, websocket.TypeStatus, websocket.TypeMessage}, types)

	_, err = f.users.UpdateStatus(ctx, owner.UserID, models.UserStatusInactive)
	require.NoError(t, err)
	assert.ErrorIs(t, f.requests.HandleInbound(ctx, sr.ID, owner.UserID, "hi"), apperrors.ErrAccountDisabled)
}
