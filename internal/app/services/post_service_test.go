package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appauth "github.com/stayease/stayease-api/internal/app/auth"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
)

func (f *fixture) post(t *testing.T, author appauth.Actor, anonymous bool) *models.Post {
	t.Helper()
	p, err := f.posts.Create(context.Background(), author, &dto.CreatePostRequest{Content: "Thang máy tầng 3 bị hỏng", IsAnonymous: anonymous})
	require.NoError(t, err)
	return p
}

func (f *fixture) comment(t *testing.T, author appauth.Actor, postID int64, parent *int64) *models.Comment {
	t.Helper()
	c, err := f.posts.AddComment(context.Background(), author, postID, &dto.CreateCommentRequest{Content: "+1", ParentCommentID: parent})
	require.NoError(t, err)
	return c
}

func TestPostService_LikeToggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author, _ := f.resident(t)
	p := f.post(t, author, false)
	assert.Equal(t, models.PostGeneral, p.Type)

	res, err := f.posts.ToggleLike(ctx, author, p.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, int64(1), res.LikeCount)

	res, err = f.posts.ToggleLike(ctx, author, p.ID)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, int64(0), res.LikeCount)

	other, _ := f.resident(t)
	_, err = f.posts.ToggleLike(ctx, other, p.ID)
	require.NoError(t, err)
	detail, err := f.posts.Get(ctx, author, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), detail.Post.LikeCount)
	assert.False(t, detail.Post.LikedByMe)

	_, err = f.posts.ToggleLike(ctx, author, 9999)
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
}

func TestPostService_AnonymousAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author, _ := f.resident(t)
	reader, _ := f.resident(t)
	admin := f.admin(t)
	p := f.post(t, author, true)

	seen, err := f.posts.Get(ctx, reader, p.ID)
	require.NoError(t, err)
	assert.Equal(t, AnonymousAuthor, seen.Post.AuthorName)
	assert.Zero(t, seen.Post.AuthorID)

	own, err := f.posts.Get(ctx, author, p.ID)
	require.NoError(t, err)
	assert.Equal(t, author.UserID, own.Post.AuthorID)

	moderated, err := f.posts.Get(ctx, admin, p.ID)
	require.NoError(t, err)
	assert.Equal(t, author.UserID, moderated.Post.AuthorID)

	list, err := f.posts.List(ctx, reader, models.PostFilter{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, AnonymousAuthor, list.Items[0].AuthorName)
}

func TestPostService_Announcements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	resident, _ := f.resident(t)
	staff := f.staff(t)

	_, err := f.posts.Create(ctx, resident, &dto.CreatePostRequest{Content: "Cúp nước", Type: models.PostAnnouncement})
	assert.ErrorIs(t, err, apperrors.ErrAnnouncementStaffOnly)

	p, err := f.posts.Create(ctx, staff, &dto.CreatePostRequest{Content: "Cúp nước", Type: models.PostAnnouncement})
	require.NoError(t, err)
	assert.Equal(t, models.PostAnnouncement, p.Type)

	own := f.post(t, resident, false)
	announcement := models.PostAnnouncement
	_, err = f.posts.Update(ctx, resident, own.ID, &dto.UpdatePostRequest{Type: &announcement})
	assert.ErrorIs(t, err, apperrors.ErrAnnouncementStaffOnly)
}

func TestPostService_ModifyPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author, _ := f.resident(t)
	other, _ := f.resident(t)
	admin := f.admin(t)
	p := f.post(t, author, false)

	content := "edited"
	_, err := f.posts.Update(ctx, other, p.ID, &dto.UpdatePostRequest{Content: &content})
	assert.ErrorIs(t, err, appauth.ErrPermissionDenied)

	updated, err := f.posts.Update(ctx, author, p.ID, &dto.UpdatePostRequest{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	assert.ErrorIs(t, f.posts.Delete(ctx, other, p.ID), appauth.ErrPermissionDenied)
	require.NoError(t, f.posts.Delete(ctx, admin, p.ID))
	_, err = f.posts.Get(ctx, author, p.ID)
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
}

func TestPostService_CommentThreads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author, _ := f.resident(t)
	other, _ := f.resident(t)
	p := f.post(t, author, false)

	root := f.comment(t, other, p.ID, nil)
	reply := f.comment(t, author, p.ID, &root.ID)
	nested := f.comment(t, other, p.ID, &reply.ID)
	second := f.comment(t, author, p.ID, nil)

	detail, err := f.posts.Get(ctx, author, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), detail.Post.CommentCount)
	require.Len(t, detail.Comments, 2)
	assert.Equal(t, root.ID, detail.Comments[0].ID)
	require.Len(t, detail.Comments[0].Replies, 2)
	assert.Equal(t, reply.ID, detail.Comments[0].Replies[0].ID)
	assert.Equal(t, nested.ID, detail.Comments[0].Replies[1].ID)
	assert.Equal(t, second.ID, detail.Comments[1].ID)
	assert.Empty(t, detail.Comments[1].Replies)

	elsewhere := f.post(t, other, false)
	_, err = f.posts.AddComment(ctx, author, elsewhere.ID, &dto.CreateCommentRequest{Content: "x", ParentCommentID: &root.ID})
	assert.ErrorIs(t, err, apperrors.ErrParentCommentMismatch)

	missing := int64(9999)
	_, err = f.posts.AddComment(ctx, author, p.ID, &dto.CreateCommentRequest{Content: "x", ParentCommentID: &missing})
	assert.ErrorIs(t, err, apperrors.ErrParentCommentMismatch)
}

func TestPostService_CommentLikesAndDeletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author, _ := f.resident(t)
	commenter, _ := f.resident(t)
	stranger, _ := f.resident(t)
	p := f.post(t, author, false)
	c := f.comment(t, commenter, p.ID, nil)

	res, err := f.posts.ToggleCommentLike(ctx, stranger, p.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, int64(1), res.LikeCount)

	other := f.post(t, stranger, false)
	_, err = f.posts.ToggleCommentLike(ctx, stranger, other.ID, c.ID)
	assert.ErrorIs(t, err, apperrors.ErrCommentNotFound)

	assert.ErrorIs(t, f.posts.DeleteComment(ctx, stranger, p.ID, c.ID), appauth.ErrPermissionDenied)
	// the post author moderates comments on their post
	require.NoError(t, f.posts.DeleteComment(ctx, author, p.ID, c.ID))
	assert.ErrorIs(t, f.posts.DeleteComment(ctx, author, p.ID, c.ID), apperrors.ErrCommentNotFound)
}

func TestBuildThreads(t *testing.T) {
	at := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	id := func(v int64) *int64 { return &v }
	comments := []*models.Comment{
		{ID: 1, CreatedAt: at},
		{ID: 2, ParentCommentID: id(1), CreatedAt: at.Add(time.Minute)},
		{ID: 3, ParentCommentID: id(42), CreatedAt: at.Add(2 * time.Minute)},
		{ID: 4, ParentCommentID: id(2), CreatedAt: at.Add(3 * time.Minute)},
		{ID: 5, ParentCommentID: id(6), CreatedAt: at.Add(4 * time.Minute)},
		{ID: 6, ParentCommentID: id(5), CreatedAt: at.Add(5 * time.Minute)},
	}

	threads := BuildThreads(comments)
	require.GreaterOrEqual(t, len(threads), 2)
	assert.Equal(t, int64(1), threads[0].ID)
	require.Len(t, threads[0].Replies, 2)
	assert.Equal(t, int64(2), threads[0].Replies[0].ID)
	assert.Equal(t, int64(4), threads[0].Replies[1].ID)
	// a reply whose parent is gone surfaces as its own thread
	assert.Equal(t, int64(3), threads[1].ID)

	assert.Empty(t, BuildThreads(nil))
}
