package auth

import "errors"

var (
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrTokenExpired          = errors.New("token has expired")
	ErrActorRequired         = errors.New("token carries no user id")
	ErrManagerAccessRequired = errors.New("manager or owner access required")
	ErrOwnerAccessRequired   = errors.New("owner access required")
)
