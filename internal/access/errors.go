package access

import "errors"

var (
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidUser  = errors.New("invalid_user")
	ErrInvalidScope = errors.New("invalid_scope")
)
