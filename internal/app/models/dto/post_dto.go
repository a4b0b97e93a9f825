package dto

import "github.com/stayease/stayease-api/internal/app/models"

// CreatePostRequest represents a new feed post
type CreatePostRequest struct {
	Content     string          `json:"content" binding:"required,max=5000"`
	Type        models.PostType `json:"type" binding:"omitempty,oneof=general announcement event complaint suggestion"`
	ImageURL    *string         `json:"imageUrl"`
	IsAnonymous bool            `json:"isAnonymous"`
}

// UpdatePostRequest changes a post; nil leaves a field untouched
type UpdatePostRequest struct {
	Content     *string          `json:"content" binding:"omitempty,min=1,max=5000"`
	Type        *models.PostType `json:"type" binding:"omitempty,oneof=general announcement event complaint suggestion"`
	ImageURL    *string          `json:"imageUrl"`
	IsAnonymous *bool            `json:"isAnonymous"`
}

// CreateCommentRequest adds a comment, optionally replying to another one
type CreateCommentRequest struct {
	Content         string `json:"content" binding:"required,max=2000"`
	ParentCommentID *int64 `json:"parentCommentId" binding:"omitempty,min=1"`
}

// CommentThread is a root comment with its replies flattened under it
type CommentThread struct {
	models.Comment
	Replies []models.Comment `json:"replies"`
}

// PostDetailResponse is a post with its comment threads
type PostDetailResponse struct {
	Post     *models.Post    `json:"post"`
	Comments []CommentThread `json:"comments"`
}

// LikeResponse is the state after a like toggle
type LikeResponse struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}
