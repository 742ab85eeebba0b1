package internal

import "fmt"

// AppError is the error shape surfaced in API responses.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(code int, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// ValidationError rejects out-of-range user input before any side effect.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InsufficientDataError is raised only after a real sync and every fallback
// window have been exhausted.
type InsufficientDataError struct {
	WindowDays int
	Available  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf(
		"not enough sleep data for a %d-day window (%d days available); try a smaller window or enable example data",
		e.WindowDays, e.Available)
}
