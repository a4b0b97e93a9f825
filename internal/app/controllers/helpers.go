// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	appauth "github.com/stayease/stayease-api/internal/app/auth"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/middleware"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
)

// pageQuery is the common page/pageSize query string
type pageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

// pathID parses a positive integer path parameter, writing a 400 otherwise
func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		middleware.RespondBadRequest(ctx, "Mã định danh không hợp lệ")
		return 0, false
	}
	return id, true
}

// currentActor returns the authenticated caller. Routes using it sit behind JWTAuth.
func currentActor(ctx *gin.Context) (appauth.Actor, bool) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrTokenInvalid)
		return appauth.Actor{}, false
	}
	return actor, true
}

func respondOK(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(data, ""))
}

func respondCreated(ctx *gin.Context, data interface{}, message string) {
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(data, message))
}

func respondMessage(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, message))
}
