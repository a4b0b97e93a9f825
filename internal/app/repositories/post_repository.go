package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/db"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
)

// postQuery selects posts with counts and the like flag of viewerID
func postQuery(viewerID int64) squirrel.SelectBuilder {
	return psql.Select(
		"p.id", "p.author_id", "p.content", "p.type", "p.image_url", "p.is_anonymous", "p.created_at", "p.updated_at",
		"COALESCE(u.full_name, '')",
		"(SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = p.id)",
	).
		Column(squirrel.Expr("EXISTS(SELECT 1 FROM post_likes pl WHERE pl.post_id = p.id AND pl.user_id = ?)", viewerID)).
		Column("(SELECT COUNT(*) FROM post_comments pc WHERE pc.post_id = p.id)").
		From("posts p").
		LeftJoin("users u ON u.id = p.author_id")
}

// commentQuery selects comments with like count and the like flag of viewerID
func commentQuery(viewerID int64) squirrel.SelectBuilder {
	return psql.Select(
		"c.id", "c.post_id", "c.author_id", "c.parent_comment_id", "c.content", "c.created_at", "c.updated_at",
		"COALESCE(u.full_name, '')",
		"(SELECT COUNT(*) FROM comment_likes cl WHERE cl.comment_id = c.id)",
	).
		Column(squirrel.Expr("EXISTS(SELECT 1 FROM comment_likes cl WHERE cl.comment_id = c.id AND cl.user_id = ?)", viewerID)).
		From("post_comments c").
		LeftJoin("users u ON u.id = c.author_id")
}

// PostRepository handles feed database operations
type PostRepository struct {
	db *db.PostgresDB
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(database *db.PostgresDB) *PostRepository {
	return &PostRepository{db: database}
}

func scanPost(row pgx.Row) (*models.Post, error) {
	p := &models.Post{}
	err := row.Scan(&p.ID, &p.AuthorID, &p.Content, &p.Type, &p.ImageURL, &p.IsAnonymous, &p.CreatedAt, &p.UpdatedAt,
		&p.AuthorName, &p.LikeCount, &p.LikedByMe, &p.CommentCount)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func scanComment(row pgx.Row) (*models.Comment, error) {
	c := &models.Comment{}
	err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.ParentCommentID, &c.Content, &c.CreatedAt, &c.UpdatedAt,
		&c.AuthorName, &c.LikeCount, &c.LikedByMe)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a post
func (r *PostRepository) Create(ctx context.Context, p *models.Post) error {
	err := r.db.Conn(ctx).QueryRow(ctx, `
		INSERT INTO posts (author_id, content, type, image_url, is_anonymous)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		p.AuthorID, p.Content, p.Type, p.ImageURL, p.IsAnonymous,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating post: %w", err)
	}
	return nil
}

// GetByID retrieves a post with counts for viewerID
func (r *PostRepository) GetByID(ctx context.Context, id, viewerID int64) (*models.Post, error) {
	sql, args, err := postQuery(viewerID).Where(squirrel.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, buildErr("get post", err)
	}
	p, err := scanPost(r.db.Conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("error getting post %d: %w", id, err)
	}
	return p, nil
}

// Update writes content, type, image and anonymity
func (r *PostRepository) Update(ctx context.Context, p *models.Post) error {
	err := r.db.Conn(ctx).QueryRow(ctx, `
		UPDATE posts SET content = $2, type = $3, image_url = $4, is_anonymous = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.Content, p.Type, p.ImageURL, p.IsAnonymous,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return apperrors.ErrPostNotFound
		}
		return fmt.Errorf("error updating post %d: %w", p.ID, err)
	}
	return nil
}

// Delete removes a post together with its likes and comments
func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Conn(ctx).Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting post %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPostNotFound
	}
	return nil
}

// List returns a page of posts, newest first
func (r *PostRepository) List(ctx context.Context, filter models.PostFilter, viewerID int64) ([]*models.Post, int64, error) {
	where := squirrel.And{}
	if filter.Type != nil {
		where = append(where, squirrel.Eq{"p.type": *filter.Type})
	}
	if filter.AuthorID != nil {
		where = append(where, squirrel.Eq{"p.author_id": *filter.AuthorID})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("posts p").Where(where).ToSql()
	if err != nil {
		return nil, 0, buildErr("count posts", err)
	}
	var total int64
	if err := r.db.Conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting posts: %w", err)
	}

	sql, args, err := paginate(postQuery(viewerID).Where(where).OrderBy("p.created_at DESC", "p.id DESC"),
		filter.Page, filter.PageSize).ToSql()
	if err != nil {
		return nil, 0, buildErr("list posts", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing posts: %w", err)
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, total, rows.Err()
}

// ToggleLike flips the like of userID on a post and returns the new state and count
func (r *PostRepository) ToggleLike(ctx context.Context, postID, userID int64) (bool, int64, error) {
	conn := r.db.Conn(ctx)
	tag, err := conn.Exec(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, 0, fmt.Errorf("error removing post like: %w", err)
	}
	liked := false
	if tag.RowsAffected() == 0 {
		if _, err := conn.Exec(ctx,
			`INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, postID, userID); err != nil {
			return false, 0, fmt.Errorf("error adding post like: %w", err)
		}
		liked = true
	}

	var count int64
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID).Scan(&count); err != nil {
		return false, 0, fmt.Errorf("error counting post likes: %w", err)
	}
	return liked, count, nil
}

// CreateComment inserts a comment
func (r *PostRepository) CreateComment(ctx context.Context, c *models.Comment) error {
	err := r.db.Conn(ctx).QueryRow(ctx, `
		INSERT INTO post_comments (post_id, author_id, parent_comment_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		c.PostID, c.AuthorID, c.ParentCommentID, c.Content,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating comment: %w", err)
	}
	return nil
}

// GetComment retrieves a comment
func (r *PostRepository) GetComment(ctx context.Context, id, viewerID int64) (*models.Comment, error) {
	sql, args, err := commentQuery(viewerID).Where(squirrel.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, buildErr("get comment", err)
	}
	c, err := scanComment(r.db.Conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrCommentNotFound
		}
		return nil, fmt.Errorf("error getting comment %d: %w", id, err)
	}
	return c, nil
}

// ListComments returns every comment of a post, oldest first
func (r *PostRepository) ListComments(ctx context.Context, postID, viewerID int64) ([]*models.Comment, error) {
	sql, args, err := commentQuery(viewerID).Where(squirrel.Eq{"c.post_id": postID}).OrderBy("c.created_at", "c.id").ToSql()
	if err != nil {
		return nil, buildErr("list comments", err)
	}
	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// DeleteComment removes a comment and its replies
func (r *PostRepository) DeleteComment(ctx context.Context, id int64) error {
	tag, err := r.db.Conn(ctx).Exec(ctx, `DELETE FROM post_comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting comment %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCommentNotFound
	}
	return nil
}

// ToggleCommentLike flips the like of userID on a comment
func (r *PostRepository) ToggleCommentLike(ctx context.Context, commentID, userID int64) (bool, int64, error) {
	conn := r.db.Conn(ctx)
	tag, err := conn.Exec(ctx, `DELETE FROM comment_likes WHERE comment_id = $1 AND user_id = $2`, commentID, userID)
	if err != nil {
		return false, 0, fmt.Errorf("error removing comment like: %w", err)
	}
	liked := false
	if tag.RowsAffected() == 0 {
		if _, err := conn.Exec(ctx,
			`INSERT INTO comment_likes (comment_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, commentID, userID); err != nil {
			return false, 0, fmt.Errorf("error adding comment like: %w", err)
		}
		liked = true
	}

	var count int64
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM comment_likes WHERE comment_id = $1`, commentID).Scan(&count); err != nil {
		return false, 0, fmt.Errorf("error counting comment likes: %w", err)
	}
	return liked, count, nil
}
