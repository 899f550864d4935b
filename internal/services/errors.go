package services

import "errors"

var (
	ErrListingNotFound    = errors.New("listing not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrUnsupportedFormat  = errors.New("unsupported image format")
	ErrCorruptImage       = errors.New("corrupt or unreadable image")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)
