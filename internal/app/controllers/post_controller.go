package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/app/services"
	"github.com/stayease/stayease-api/internal/middleware"
)

// PostController handles the community feed
type PostController struct {
	postService *services.PostService
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService) *PostController {
	return &PostController{postService: postService}
}

type postListQuery struct {
	pageQuery
	Type     models.PostType `form:"type" binding:"omitempty,oneof=general announcement event complaint suggestion"`
	AuthorID int64           `form:"authorId" binding:"omitempty,min=1"`
}

// GetAllPosts lists the feed, newest first
// @Summary List posts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param type query string false "Post type"
// @Param authorId query int false "Author"
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[models.Post]}
// @Router /posts [get]
func (c *PostController) GetAllPosts(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var q postListQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	filter := models.PostFilter{Page: q.Page, PageSize: q.PageSize}
	if q.Type != "" {
		filter.Type = &q.Type
	}
	if q.AuthorID > 0 {
		filter.AuthorID = &q.AuthorID
	}

	posts, err := c.postService.List(ctx.Request.Context(), actor, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, posts)
}

// GetPostByID returns a post with its comment threads
// @Summary Get post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.PostDetailResponse}
// @Router /posts/{id} [get]
func (c *PostController) GetPostByID(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	post, err := c.postService.Get(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, post)
}

// CreatePost publishes a post
// @Summary Create post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePostRequest true "Post"
// @Success 201 {object} dto.APIResponse{data=models.Post}
// @Router /posts [post]
func (c *PostController) CreatePost(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.CreatePostRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	post, err := c.postService.Create(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, post, "Đăng bài thành công")
}

// UpdatePost edits a post of the caller
// @Summary Update post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body dto.UpdatePostRequest true "Changes"
// @Success 200 {object} dto.APIResponse{data=models.Post}
// @Router /posts/{id} [put]
func (c *PostController) UpdatePost(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdatePostRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	post, err := c.postService.Update(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, post)
}

// DeletePost removes a post
// @Summary Delete post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse
// @Router /posts/{id} [delete]
func (c *PostController) DeletePost(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.postService.Delete(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Xóa bài viết thành công")
}

// ToggleLike likes or unlikes a post
// @Summary Toggle post like
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.LikeResponse}
// @Router /posts/{id}/like [post]
func (c *PostController) ToggleLike(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	like, err := c.postService.ToggleLike(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, like)
}

// AddComment comments on a post or replies to a comment
// @Summary Add comment
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body dto.CreateCommentRequest true "Comment"
// @Success 201 {object} dto.APIResponse{data=models.Comment}
// @Router /posts/{id}/comments [post]
func (c *PostController) AddComment(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.CreateCommentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	comment, err := c.postService.AddComment(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, comment, "Bình luận thành công")
}

// DeleteComment removes a comment and its replies
// @Summary Delete comment
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param commentId path int true "Comment ID"
// @Success 200 {object} dto.APIResponse
// @Router /posts/{id}/comments/{commentId} [delete]
func (c *PostController) DeleteComment(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	commentID, ok := pathID(ctx, "commentId")
	if !ok {
		return
	}
	if err := c.postService.DeleteComment(ctx.Request.Context(), actor, id, commentID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Xóa bình luận thành công")
}

// ToggleCommentLike likes or unlikes a comment
// @Summary Toggle comment like
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param commentId path int true "Comment ID"
// @Success 200 {object} dto.APIResponse{data=dto.LikeResponse}
// @Router /posts/{id}/comments/{commentId}/like [post]
func (c *PostController) ToggleCommentLike(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	commentID, ok := pathID(ctx, "commentId")
	if !ok {
		return
	}
	like, err := c.postService.ToggleCommentLike(ctx.Request.Context(), actor, id, commentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, like)
}
