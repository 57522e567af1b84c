package services

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid inputs")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidStatus      = errors.New("status must be approved or rejected")
)
