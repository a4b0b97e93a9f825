package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	appauth "github.com/stayease/stayease-api/internal/app/auth"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
	"github.com/stayease/stayease-api/internal/pkg/helpers"
)

// AnonymousAuthor is shown instead of the name on anonymous posts
const AnonymousAuthor = "Ẩn danh"

// PostService handles the community feed
type PostService struct {
	posts  PostStore
	logger zerolog.Logger
}

// NewPostService creates a new PostService
func NewPostService(posts PostStore, logger zerolog.Logger) *PostService {
	return &PostService{posts: posts, logger: logger}
}

// List returns a page of posts, newest first
func (s *PostService) List(ctx context.Context, actor appauth.Actor, filter models.PostFilter) (*dto.ListResponse[*models.Post], error) {
	filter.Page, filter.PageSize = helpers.NormalizePage(filter.Page, filter.PageSize)
	posts, total, err := s.posts.List(ctx, filter, actor.UserID)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	for _, p := range posts {
		maskAuthor(actor, p)
	}
	return &dto.ListResponse[*models.Post]{
		Items:      posts,
		Pagination: helpers.NewPaginationInfo(total, filter.Page, filter.PageSize),
	}, nil
}

// Get returns a post with its comment threads
func (s *PostService) Get(ctx context.Context, actor appauth.Actor, id int64) (*dto.PostDetailResponse, error) {
	post, err := s.posts.GetByID(ctx, id, actor.UserID)
	if err != nil {
		return nil, err
	}
	comments, err := s.posts.ListComments(ctx, id, actor.UserID)
	if err != nil {
		return nil, err
	}
	maskAuthor(actor, post)
	return &dto.PostDetailResponse{Post: post, Comments: BuildThreads(comments)}, nil
}

// Create publishes a post. Announcements are reserved to staff and admins.
func (s *PostService) Create(ctx context.Context, actor appauth.Actor, req *dto.CreatePostRequest) (*models.Post, error) {
	postType := req.Type
	if postType == "" {
		postType = models.PostGeneral
	}
	if !actor.CanPostType(postType) {
		return nil, apperrors.ErrAnnouncementStaffOnly
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.NewValidationError("Nội dung bài viết không được để trống")
	}

	post := &models.Post{
		AuthorID:    actor.UserID,
		Content:     content,
		Type:        postType,
		ImageURL:    req.ImageURL,
		IsAnonymous: req.IsAnonymous,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	s.logger.Debug().Int64("postID", post.ID).Str("type", string(post.Type)).Msg("Post created")
	return s.posts.GetByID(ctx, post.ID, actor.UserID)
}

// Update edits a post of the author; admins may edit any post
func (s *PostService) Update(ctx context.Context, actor appauth.Actor, id int64, req *dto.UpdatePostRequest) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !actor.CanModifyPost(post) {
		return nil, appauth.ErrPermissionDenied
	}

	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		if content == "" {
			return nil, apperrors.NewValidationError("Nội dung bài viết không được để trống")
		}
		post.Content = content
	}
	if req.Type != nil {
		if !actor.CanPostType(*req.Type) {
			return nil, apperrors.ErrAnnouncementStaffOnly
		}
		post.Type = *req.Type
	}
	if req.ImageURL != nil {
		if *req.ImageURL == "" {
			post.ImageURL = nil
		} else {
			post.ImageURL = req.ImageURL
		}
	}
	if req.IsAnonymous != nil {
		post.IsAnonymous = *req.IsAnonymous
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	maskAuthor(actor, post)
	return post, nil
}

// Delete removes a post with its comments and likes
func (s *PostService) Delete(ctx context.Context, actor appauth.Actor, id int64) error {
	post, err := s.posts.GetByID(ctx, id, actor.UserID)
	if err != nil {
		return err
	}
	if !actor.CanModifyPost(post) {
		return appauth.ErrPermissionDenied
	}
	return s.posts.Delete(ctx, id)
}

// ToggleLike likes a post, or removes the like when the user already liked it
func (s *PostService) ToggleLike(ctx context.Context, actor appauth.Actor, postID int64) (*dto.LikeResponse, error) {
	if _, err := s.posts.GetByID(ctx, postID, actor.UserID); err != nil {
		return nil, err
	}
	liked, count, err := s.posts.ToggleLike(ctx, postID, actor.UserID)
	if err != nil {
		return nil, err
	}
	return &dto.LikeResponse{Liked: liked, LikeCount: count}, nil
}

// AddComment comments on a post. A parent must belong to the same post.
func (s *PostService) AddComment(ctx context.Context, actor appauth.Actor, postID int64, req *dto.CreateCommentRequest) (*models.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID, actor.UserID); err != nil {
		return nil, err
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.NewValidationError("Nội dung bình luận không được để trống")
	}

	if req.ParentCommentID != nil {
		parent, err := s.posts.GetComment(ctx, *req.ParentCommentID, actor.UserID)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrCommentNotFound) {
				return nil, apperrors.ErrParentCommentMismatch
			}
			return nil, err
		}
		if parent.PostID != postID {
			return nil, apperrors.ErrParentCommentMismatch
		}
	}

	c := &models.Comment{
		PostID:          postID,
		AuthorID:        actor.UserID,
		ParentCommentID: req.ParentCommentID,
		Content:         content,
	}
	if err := s.posts.CreateComment(ctx, c); err != nil {
		return nil, err
	}
	return s.posts.GetComment(ctx, c.ID, actor.UserID)
}

// DeleteComment removes a comment and its replies
func (s *PostService) DeleteComment(ctx context.Context, actor appauth.Actor, postID, commentID int64) error {
	post, comment, err := s.commentOf(ctx, actor, postID, commentID)
	if err != nil {
		return err
	}
	if !actor.CanDeleteComment(post, comment) {
		return appauth.ErrPermissionDenied
	}
	return s.posts.DeleteComment(ctx, commentID)
}

// ToggleCommentLike likes a comment, or removes the like
func (s *PostService) ToggleCommentLike(ctx context.Context, actor appauth.Actor, postID, commentID int64) (*dto.LikeResponse, error) {
	if _, _, err := s.commentOf(ctx, actor, postID, commentID); err != nil {
		return nil, err
	}
	liked, count, err := s.posts.ToggleCommentLike(ctx, commentID, actor.UserID)
	if err != nil {
		return nil, err
	}
	return &dto.LikeResponse{Liked: liked, LikeCount: count}, nil
}

func (s *PostService) commentOf(ctx context.Context, actor appauth.Actor, postID, commentID int64) (*models.Post, *models.Comment, error) {
	post, err := s.posts.GetByID(ctx, postID, actor.UserID)
	if err != nil {
		return nil, nil, err
	}
	comment, err := s.posts.GetComment(ctx, commentID, actor.UserID)
	if err != nil {
		return nil, nil, err
	}
	if comment.PostID != postID {
		return nil, nil, apperrors.ErrCommentNotFound
	}
	return post, comment, nil
}

func maskAuthor(actor appauth.Actor, p *models.Post) {
	if actor.CanSeeAuthor(p) {
		return
	}
	p.AuthorID = 0
	p.AuthorName = AnonymousAuthor
}

// BuildThreads groups comments (ordered by creation) into root comments with every
// descendant attached to its root. Comments whose parent is missing become roots.
func BuildThreads(comments []*models.Comment) []dto.CommentThread {
	byID := make(map[int64]*models.Comment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}

	rootOf := func(c *models.Comment) int64 {
		cur := c
		for hops := 0; cur.ParentCommentID != nil && hops < len(comments); hops++ {
			parent, ok := byID[*cur.ParentCommentID]
			if !ok {
				break
			}
			cur = parent
		}
		return cur.ID
	}

	threads := []dto.CommentThread{}
	index := make(map[int64]int)
	for _, c := range comments {
		root := rootOf(c)
		if root == c.ID {
			index[c.ID] = len(threads)
			threads = append(threads, dto.CommentThread{Comment: *c, Replies: []models.Comment{}})
		}
	}
	for _, c := range comments {
		root := rootOf(c)
		if root == c.ID {
			continue
		}
		if i, ok := index[root]; ok {
			threads[i].Replies = append(threads[i].Replies, *c)
		}
	}
	return threads
}
