package models

import "time"

// PostType classifies feed posts
type PostType string

const (
	PostGeneral      PostType = "general"
	PostAnnouncement PostType = "announcement"
	PostEvent        PostType = "event"
	PostComplaint    PostType = "complaint"
	PostSuggestion   PostType = "suggestion"
)

// Post is a community feed entry
type Post struct {
	ID          int64     `json:"id" db:"id"`
	AuthorID    int64     `json:"authorId" db:"author_id"`
	Content     string    `json:"content" db:"content"`
	Type        PostType  `json:"type" db:"type"`
	ImageURL    *string   `json:"imageUrl,omitempty" db:"image_url"`
	IsAnonymous bool      `json:"isAnonymous" db:"is_anonymous"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	// Computed for the viewing user
	AuthorName   string `json:"authorName" db:"-"`
	LikeCount    int64  `json:"likeCount" db:"-"`
	LikedByMe    bool   `json:"likedByMe" db:"-"`
	CommentCount int64  `json:"commentCount" db:"-"`
}

// Comment belongs to a post and optionally replies to another comment of the same post
type Comment struct {
	ID              int64     `json:"id" db:"id"`
	PostID          int64     `json:"postId" db:"post_id"`
	AuthorID        int64     `json:"authorId" db:"author_id"`
	ParentCommentID *int64    `json:"parentCommentId,omitempty" db:"parent_comment_id"`
	Content         string    `json:"content" db:"content"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`

	AuthorName string `json:"authorName" db:"-"`
	LikeCount  int64  `json:"likeCount" db:"-"`
	LikedByMe  bool   `json:"likedByMe" db:"-"`
}

// PostFilter narrows feed listings
type PostFilter struct {
	Type     *PostType
	AuthorID *int64
	Page     int
	PageSize int
}
