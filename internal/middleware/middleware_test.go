package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appauth "github.com/stayease/stayease-api/internal/app/auth"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
	"github.com/stayease/stayease-api/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    dto.ErrorCode
		message string
	}{
		{"not found", apperrors.ErrInvoiceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Không tìm thấy hóa đơn"},
		{"wrapped not found", fmt.Errorf("load: %w", apperrors.ErrApartmentNotFound), http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Không tìm thấy căn hộ"},
		{"already exists", apperrors.ErrApartmentAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Số căn hộ đã tồn tại"},
		{"conflict", apperrors.ErrInvoiceAlreadyPaid, http.StatusConflict, dto.ErrorCodeConflict, "Hóa đơn đã được thanh toán"},
		{"forbidden", appauth.ErrAdminOnly, http.StatusForbidden, dto.ErrorCodeForbidden, "Chỉ quản trị viên được thực hiện thao tác này"},
		{"bad request", apperrors.ErrAmountMismatch, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Số tiền không khớp với giao dịch"},
		{"validation", apperrors.NewValidationError("Năm không hợp lệ"), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Năm không hợp lệ"},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Email hoặc mật khẩu không đúng"},
		{"expired", apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Phiên đăng nhập đã hết hạn"},
		{"bare category", apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Xung đột dữ liệu"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Lỗi hệ thống, vui lòng thử lại sau"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/x", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.message, resp.Error.Message)
		})
	}
}

func TestHandleAPIError_Details(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleAPIError(c, apperrors.ErrApartmentHasResident.WithDetails(map[string]interface{}{"residentId": 4}))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"residentId":4`)
}

func newAuthRouter(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Minute,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "stayease-test",
	})
	m := NewAuthMiddleware(jwtService)

	r := gin.New()
	whoami := func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"userId": actor.UserID, "role": actor.Role})
	}
	r.GET("/me", m.JWTAuth(), whoami)
	r.GET("/admin", m.JWTAuth(), m.RoleRequired(models.RoleAdmin), whoami)
	r.GET("/management", m.JWTAuth(), m.RoleRequired(models.RoleAdmin, models.RoleStaff), whoami)
	return r, jwtService
}

func token(t *testing.T, jwtService *auth.JWTService, id int64, role models.Role) string {
	t.Helper()
	pair, err := jwtService.GenerateTokenPair(&models.User{ID: id, Email: "u@stayease.vn", Role: role})
	require.NoError(t, err)
	return pair.AccessToken
}

func TestJWTAuth(t *testing.T) {
	r, jwtService := newAuthRouter(t)
	resident := token(t, jwtService, 7, models.RoleResident)

	t.Run("missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrorCodeUnauthorized, decodeError(t, w).Error.Code)
	})

	t.Run("garbage", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrorCodeInvalidToken, decodeError(t, w).Error.Code)
	})

	t.Run("bearer header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+resident)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"userId":7,"role":"resident"}`, w.Body.String())
	})

	t.Run("query token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?token="+resident, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRoleRequired(t *testing.T) {
	r, jwtService := newAuthRouter(t)
	cases := []struct {
		path   string
		role   models.Role
		status int
	}{
		{"/admin", models.RoleAdmin, http.StatusOK},
		{"/admin", models.RoleStaff, http.StatusForbidden},
		{"/management", models.RoleStaff, http.StatusOK},
		{"/management", models.RoleResident, http.StatusForbidden},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		req.Header.Set("Authorization", "Bearer "+token(t, jwtService, 1, tc.role))
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.status, w.Code, "%s as %s", tc.path, tc.role)
	}
}

func TestJSONCase(t *testing.T) {
	r := gin.New()
	r.Use(JSONCase())
	r.POST("/echo", func(c *gin.Context) {
		var req dto.CreateCommentRequest
		if !BindJSON(c, &req) {
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(req, ""))
	})

	t.Run("snake request, camel response", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"content":"hi","parent_comment_id":3}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"parentCommentId":3`)
	})

	t.Run("snake response on request", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"content":"hi","parentCommentId":3}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(JSONCaseHeader, "snake")
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"parent_comment_id":3`)
		assert.NotContains(t, w.Body.String(), "parentCommentId")
	})

	t.Run("invalid body still reports validation", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"content":`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrorCodeValidationFailed, decodeError(t, w).Error.Code)
	})
}
