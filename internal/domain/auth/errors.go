package auth

import "errors"

var (
	ErrMissingToken = errors.New("authentication token is required")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrInvalidClaim = errors.New("token is missing employee_id or has an unknown role")
)
