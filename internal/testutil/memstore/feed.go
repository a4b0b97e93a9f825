package memstore

import (
	"context"

	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
)

// Posts implements services.PostStore
type Posts struct{ db *DB }

func (s *Posts) authorName(id int64) string {
	return s.db.t.users[id].FullName
}

func (s *Posts) view(p models.Post, viewerID int64) *models.Post {
	p.AuthorName = s.authorName(p.AuthorID)
	p.LikeCount, p.CommentCount = 0, 0
	for k := range s.db.t.postLikes {
		if k[0] == p.ID {
			p.LikeCount++
		}
	}
	p.LikedByMe = s.db.t.postLikes[pair{p.ID, viewerID}]
	for _, c := range s.db.t.comments {
		if c.PostID == p.ID {
			p.CommentCount++
		}
	}
	return &p
}

func (s *Posts) viewComment(c models.Comment, viewerID int64) *models.Comment {
	c.AuthorName = s.authorName(c.AuthorID)
	c.LikeCount = 0
	for k := range s.db.t.commentLikes {
		if k[0] == c.ID {
			c.LikeCount++
		}
	}
	c.LikedByMe = s.db.t.commentLikes[pair{c.ID, viewerID}]
	return &c
}

func (s *Posts) Create(_ context.Context, p *models.Post) error {
	defer s.db.lock()()
	p.ID = s.db.nextID()
	p.CreatedAt = s.db.Now()
	p.UpdatedAt = p.CreatedAt
	s.db.t.posts[p.ID] = *p
	return nil
}

func (s *Posts) GetByID(_ context.Context, id, viewerID int64) (*models.Post, error) {
	defer s.db.lock()()
	p, ok := s.db.t.posts[id]
	if !ok {
		return nil, apperrors.ErrPostNotFound
	}
	return s.view(p, viewerID), nil
}

func (s *Posts) Update(_ context.Context, p *models.Post) error {
	defer s.db.lock()()
	current, ok := s.db.t.posts[p.ID]
	if !ok {
		return apperrors.ErrPostNotFound
	}
	current.Content = p.Content
	current.Type = p.Type
	current.ImageURL = p.ImageURL
	current.IsAnonymous = p.IsAnonymous
	current.UpdatedAt = s.db.Now()
	p.UpdatedAt = current.UpdatedAt
	s.db.t.posts[p.ID] = current
	return nil
}

func (s *Posts) Delete(_ context.Context, id int64) error {
	defer s.db.lock()()
	if _, ok := s.db.t.posts[id]; !ok {
		return apperrors.ErrPostNotFound
	}
	delete(s.db.t.posts, id)
	for k := range s.db.t.postLikes {
		if k[0] == id {
			delete(s.db.t.postLikes, k)
		}
	}
	for cid, c := range s.db.t.comments {
		if c.PostID == id {
			s.deleteCommentLocked(cid)
		}
	}
	return nil
}

func (s *Posts) List(_ context.Context, f models.PostFilter, viewerID int64) ([]*models.Post, int64, error) {
	defer s.db.lock()()
	var out []*models.Post
	for _, p := range s.db.t.posts {
		if f.Type != nil && p.Type != *f.Type {
			continue
		}
		if f.AuthorID != nil && p.AuthorID != *f.AuthorID {
			continue
		}
		out = append(out, s.view(p, viewerID))
	}
	total := int64(len(out))
	less := func(a, b *models.Post) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	}
	return page(out, less, f.Page, f.PageSize), total, nil
}

func toggle(likes map[pair]bool, key pair) (bool, int64) {
	liked := !likes[key]
	if liked {
		likes[key] = true
	} else {
		delete(likes, key)
	}
	var n int64
	for k := range likes {
		if k[0] == key[0] {
			n++
		}
	}
	return liked, n
}

func (s *Posts) ToggleLike(_ context.Context, postID, userID int64) (bool, int64, error) {
	defer s.db.lock()()
	if _, ok := s.db.t.posts[postID]; !ok {
		return false, 0, apperrors.ErrPostNotFound
	}
	liked, n := toggle(s.db.t.postLikes, pair{postID, userID})
	return liked, n, nil
}

func (s *Posts) CreateComment(_ context.Context, c *models.Comment) error {
	defer s.db.lock()()
	if _, ok := s.db.t.posts[c.PostID]; !ok {
		return apperrors.ErrPostNotFound
	}
	c.ID = s.db.nextID()
	c.CreatedAt = s.db.Now()
	c.UpdatedAt = c.CreatedAt
	s.db.t.comments[c.ID] = *c
	return nil
}

func (s *Posts) GetComment(_ context.Context, id, viewerID int64) (*models.Comment, error) {
	defer s.db.lock()()
	c, ok := s.db.t.comments[id]
	if !ok {
		return nil, apperrors.ErrCommentNotFound
	}
	return s.viewComment(c, viewerID), nil
}

func (s *Posts) ListComments(_ context.Context, postID, viewerID int64) ([]*models.Comment, error) {
	defer s.db.lock()()
	var out []*models.Comment
	for _, c := range s.db.t.comments {
		if c.PostID == postID {
			out = append(out, s.viewComment(c, viewerID))
		}
	}
	less := func(a, b *models.Comment) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	}
	return sortBy(out, less), nil
}

// deleteCommentLocked removes a comment and, like ON DELETE CASCADE, its replies
func (s *Posts) deleteCommentLocked(id int64) {
	delete(s.db.t.comments, id)
	for k := range s.db.t.commentLikes {
		if k[0] == id {
			delete(s.db.t.commentLikes, k)
		}
	}
	for cid, c := range s.db.t.comments {
		if c.ParentCommentID != nil && *c.ParentCommentID == id {
			s.deleteCommentLocked(cid)
		}
	}
}

func (s *Posts) DeleteComment(_ context.Context, id int64) error {
	defer s.db.lock()()
	if _, ok := s.db.t.comments[id]; !ok {
		return apperrors.ErrCommentNotFound
	}
	s.deleteCommentLocked(id)
	return nil
}

func (s *Posts) ToggleCommentLike(_ context.Context, commentID, userID int64) (bool, int64, error) {
	defer s.db.lock()()
	if _, ok := s.db.t.comments[commentID]; !ok {
		return false, 0, apperrors.ErrCommentNotFound
	}
	liked, n := toggle(s.db.t.commentLikes, pair{commentID, userID})
	return liked, n, nil
}
