package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
)

type errorMapping struct {
	category error
	status   int
	code     dto.ErrorCode
	fallback string
}

// Checked in order; the first category in the chain wins.
var errorMappings = []errorMapping{
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Dữ liệu không hợp lệ"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Yêu cầu không hợp lệ"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Vui lòng đăng nhập"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Bạn không có quyền thực hiện thao tác này"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Không tìm thấy tài nguyên"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Tài nguyên đã tồn tại"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Xung đột dữ liệu"},
}

// HandleAPIError writes the error envelope for err. The status comes from the
// error category and the message from the first CustomError in the chain.
func HandleAPIError(c *gin.Context, err error) {
	status, detail := errorDetailFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Unhandled API error")
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

func errorDetailFor(err error) (int, *dto.ErrorDetail) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.category) {
			continue
		}
		code := m.code
		switch {
		case errors.Is(err, apperrors.ErrTokenExpired):
			code = dto.ErrorCodeExpiredToken
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			code = dto.ErrorCodeInvalidCredentials
		case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrTokenRevoked):
			code = dto.ErrorCodeInvalidToken
		case errors.Is(err, apperrors.ErrTokenNotFound):
			code = dto.ErrorCodeTokenNotFound
		}

		message := m.fallback
		if msg, ok := apperrors.UserMessage(err); ok {
			message = msg
		}
		detail := dto.NewErrorDetail(code, message)
		var ce *apperrors.CustomError
		if errors.As(err, &ce) && ce.Details != nil {
			detail = detail.WithDetails(ce.Details)
		}
		return m.status, detail
	}
	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Lỗi hệ thống, vui lòng thử lại sau").
		WithSeverity(dto.ErrorSeverityCritical)
}

// Recovery turns panics into a 500 envelope
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("Recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Lỗi hệ thống, vui lòng thử lại sau").
				WithSeverity(dto.ErrorSeverityCritical)))
	})
}

// NoRoute answers unknown paths with the error envelope
func NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.NewErrorResponse(
		dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Không tìm thấy đường dẫn")))
}
