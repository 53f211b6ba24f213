package user

import "errors"

var (
	ErrIdentityMissing         = errors.New("authenticated identity not found in context")
	ErrInvalidRole             = errors.New("invalid role")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
