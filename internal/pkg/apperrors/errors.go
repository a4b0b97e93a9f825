package apperrors

import "errors"

// Categories. Every user-facing error unwraps to one of these so the HTTP layer
// can pick a status code without knowing the domain.
var (
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrValidationFailed      = errors.New("validation failed")
	ErrBadRequest            = errors.New("bad request")
)

// Authentication errors
var (
	ErrInvalidCredentials = NewCustomError(ErrUnauthorized, "Email hoặc mật khẩu không đúng")
	ErrTokenExpired       = NewCustomError(ErrUnauthorized, "Phiên đăng nhập đã hết hạn")
	ErrTokenInvalid       = NewCustomError(ErrUnauthorized, "Token không hợp lệ")
	ErrTokenNotFound      = NewCustomError(ErrUnauthorized, "Không tìm thấy token")
	ErrTokenRevoked       = NewCustomError(ErrUnauthorized, "Token đã bị thu hồi")
	ErrAccountDisabled    = NewCustomError(ErrPermissionDenied, "Tài khoản đã bị khóa hoặc chưa kích hoạt")
)

// User errors
var (
	ErrUserNotFound       = NewResourceNotFoundError("Không tìm thấy người dùng")
	ErrEmailAlreadyExists = NewCustomError(ErrResourceAlreadyExists, "Email đã được sử dụng")
	ErrNotAResident       = NewBadRequestError("Người dùng không phải là cư dân")
	ErrNotAStaff          = NewBadRequestError("Người dùng không phải là nhân viên")
	ErrUserHasInvoices    = NewConflictError("Người dùng còn hóa đơn, hãy vô hiệu hóa tài khoản thay vì xóa")
)

// Apartment errors
var (
	ErrApartmentNotFound       = NewResourceNotFoundError("Không tìm thấy căn hộ")
	ErrApartmentAlreadyExists  = NewCustomError(ErrResourceAlreadyExists, "Số căn hộ đã tồn tại")
	ErrApartmentNotAvailable   = NewConflictError("Căn hộ không còn trống")
	ErrApartmentHasResident    = NewConflictError("Căn hộ đang có cư dân, không thể xóa")
	ErrApartmentHasInvoices    = NewConflictError("Căn hộ đã có hóa đơn, không thể xóa")
	ErrApartmentStatusLocked   = NewConflictError("Không thể đổi trạng thái căn hộ đang có cư dân")
	ErrApartmentOccupiedManual = NewBadRequestError("Trạng thái 'occupied' chỉ được đặt khi gán cư dân")
)

// Amenity errors
var (
	ErrAmenityNotFound = NewResourceNotFoundError("Không tìm thấy tiện ích")
)

// Invoice and payment errors
var (
	ErrInvoiceNotFound          = NewResourceNotFoundError("Không tìm thấy hóa đơn")
	ErrInvoiceAlreadyPaid       = NewConflictError("Hóa đơn đã được thanh toán")
	ErrInvoiceCancelled         = NewConflictError("Hóa đơn đã bị hủy")
	ErrInvoiceNotPayable        = NewConflictError("Hóa đơn không ở trạng thái có thể thanh toán")
	ErrTransactionNotFound      = NewResourceNotFoundError("Không tìm thấy giao dịch")
	ErrTransactionCodeExists    = NewCustomError(ErrResourceAlreadyExists, "Mã giao dịch đã tồn tại")
	ErrTransactionMismatch      = NewBadRequestError("Mã giao dịch không thuộc hóa đơn này")
	ErrTransactionFinalized     = NewConflictError("Giao dịch đã được xử lý")
	ErrAmountMismatch           = NewBadRequestError("Số tiền không khớp với giao dịch")
	ErrInvalidSignature         = NewForbiddenError("Chữ ký callback không hợp lệ")
	ErrCallbackNotConfigured    = NewForbiddenError("Callback thanh toán chưa được cấu hình")
	ErrInvoiceDuplicatePayment  = NewConflictError("Hóa đơn đã được thanh toán bằng giao dịch khác")
	ErrInvalidPaymentGateway    = NewBadRequestError("Cổng thanh toán không hợp lệ")
	ErrInvoiceDueBeforeIssue    = NewBadRequestError("Hạn thanh toán không được trước ngày phát hành")
	ErrInvoiceAmountNotPositive = NewBadRequestError("Số tiền phải lớn hơn 0")
)

// Feed errors
var (
	ErrPostNotFound          = NewResourceNotFoundError("Không tìm thấy bài viết")
	ErrCommentNotFound       = NewResourceNotFoundError("Không tìm thấy bình luận")
	ErrParentCommentMismatch = NewBadRequestError("Bình luận cha không thuộc bài viết này")
	ErrAnnouncementStaffOnly = NewForbiddenError("Chỉ ban quản lý được đăng thông báo")
)

// Service request errors
var (
	ErrServiceRequestNotFound  = NewResourceNotFoundError("Không tìm thấy yêu cầu dịch vụ")
	ErrInvalidStatusTransition = NewConflictError("Không thể chuyển sang trạng thái này")
	ErrResidentWithoutHome     = NewBadRequestError("Cư dân chưa được gán căn hộ")
	ErrRequestNeedsAssignee    = NewBadRequestError("Hãy phân công nhân viên để bắt đầu xử lý yêu cầu")
)

// Upload errors
var (
	ErrFileTooLarge        = NewBadRequestError("Kích thước tệp vượt quá giới hạn cho phép")
	ErrUnsupportedFileType = NewBadRequestError("Định dạng ảnh không được hỗ trợ (chỉ jpeg, png, gif, webp)")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) *CustomError {
	return NewCustomError(ErrResourceNotFound, message)
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) *CustomError {
	return NewCustomError(ErrConflict, message)
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) *CustomError {
	return NewCustomError(ErrPermissionDenied, message)
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) *CustomError {
	return NewCustomError(ErrBadRequest, message)
}

// NewValidationError creates a new custom error for failed validation with a message
func NewValidationError(message string) *CustomError {
	return NewCustomError(ErrValidationFailed, message)
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with a user-facing message
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails returns a copy of the error carrying context details.
// Package-level sentinels are shared, so they are never mutated in place.
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	return &CustomError{Err: e, Message: e.Message, Details: details}
}

// UserMessage extracts the first user-facing message in the chain, if any.
func UserMessage(err error) (string, bool) {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message, true
	}
	return "", false
}
