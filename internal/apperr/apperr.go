package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code 机器可读的错误码
type Code string

const (
	CodeAuthRequired     Code = "AUTH_REQUIRED"
	CodeForbidden        Code = "FORBIDDEN"
	CodeValidation       Code = "VALIDATION_ERROR"
	CodeNotFound         Code = "NOT_FOUND"
	CodeConflict         Code = "CONFLICT"
	CodeMethodNotAllowed Code = "METHOD_NOT_ALLOWED"
	CodeRateLimited      Code = "RATE_LIMITED"
	CodeInternal         Code = "INTERNAL_ERROR"
)

var statusByCode = map[Code]int{
	CodeAuthRequired:     http.StatusUnauthorized,
	CodeForbidden:        http.StatusForbidden,
	CodeValidation:       http.StatusBadRequest,
	CodeNotFound:         http.StatusNotFound,
	CodeConflict:         http.StatusConflict,
	CodeMethodNotAllowed: http.StatusMethodNotAllowed,
	CodeRateLimited:      http.StatusTooManyRequests,
	CodeInternal:         http.StatusInternalServerError,
}

// AppError 统一的接口错误
type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Status  int    `json:"-"`
	cause   error
}

func (e *AppError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.cause
}

func newErr(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: statusByCode[code]}
}

func AuthRequired() *AppError {
	return newErr(CodeAuthRequired, "Authentication required")
}

// Unauthorized 凭据错误
func Unauthorized(message string) *AppError {
	return newErr(CodeAuthRequired, message)
}

func Forbidden(message string) *AppError {
	return newErr(CodeForbidden, message)
}

// ItemForbidden 条目不存在或无权访问，统一返回 403 以免泄露存在性
func ItemForbidden() *AppError {
	return newErr(CodeForbidden, "Item not found or access denied")
}

func Validation(field, message string) *AppError {
	e := newErr(CodeValidation, message)
	e.Field = field
	return e
}

func NotFound(resource string) *AppError {
	return newErr(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func Conflict(message string) *AppError {
	return newErr(CodeConflict, message)
}

func MethodNotAllowed() *AppError {
	return newErr(CodeMethodNotAllowed, "Method not allowed")
}

func RateLimited() *AppError {
	return newErr(CodeRateLimited, "Too many attempts, please try again later")
}

// Internal 包装底层错误，对外只暴露通用信息
func Internal(cause error) *AppError {
	e := newErr(CodeInternal, "Server error")
	e.cause = cause
	return e
}

// From 将任意错误转换为 AppError
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// Is 判断错误码
func Is(err error, code Code) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
