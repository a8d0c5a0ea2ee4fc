package domain

import "errors"

// Auth errors
var (
	ErrValidation         = errors.New("invalid input")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrSessionNotFound    = errors.New("session not found, please login again")
	ErrForbidden          = errors.New("forbidden")
	ErrUserNotFound       = errors.New("user not found")
)

// Activation errors
var (
	ErrTicketInvalid = errors.New("activation ticket is invalid or expired")
	ErrCodeMismatch  = errors.New("activation code does not match")
)

// Course errors
var (
	ErrCourseNotFound = errors.New("course not found")
	ErrNotEnrolled    = errors.New("user is not enrolled in this course")
)
