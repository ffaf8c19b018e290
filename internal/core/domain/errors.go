package domain

import "errors"

var (
	ErrAuthRequired = errors.New("authentication required")
	ErrUnauthorized = errors.New("session token rejected")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrBackend      = errors.New("backend request failed")
)
