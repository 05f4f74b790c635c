package service

import (
	"errors"
	"strings"
)

var (
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrEmailTaken           = errors.New("email already registered")
	ErrEmailDomain          = errors.New("email domain not allowed")
	ErrCodeInvalid          = errors.New("verification code invalid or expired")
	ErrComplaintNotFound    = errors.New("complaint not found")
	ErrListingNotFound      = errors.New("listing not found")
	ErrReportNotFound       = errors.New("report not found")
	ErrFacultyProfile       = errors.New("Faculty profile not found.")
	ErrSessionCodeExhausted = errors.New("could not allocate a unique session code")
)

// ValidationError 入参校验失败，Fields 为出错字段的说明
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Fields, ", ")
}

func invalid(fields ...string) error {
	return &ValidationError{Fields: fields}
}
