package services

import "errors"

// Health errors
var (
	ErrCheckNameRequired = errors.New("health check name is required")
	ErrCheckExists       = errors.New("health check already registered")
	ErrNotReady          = errors.New("service not ready")
)
