package services

import "errors"

// Common service errors
var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidState = errors.New("invalid state transition")
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicate    = errors.New("duplicate record")
	ErrNoCalendar   = errors.New("academic calendar is not configured")
	ErrUnavailable  = errors.New("background worker is not running")
)
