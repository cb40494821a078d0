package services

import (
	"errors"
	"strings"
)

// Common errors
var (
	ErrNoteNotFound       = errors.New("note not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrResourceExists     = errors.New("resource already exists")
	ErrInternal           = errors.New("internal server error")
)

// FieldError names a single invalid request field.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

// ValidationError carries field-level detail back to the caller.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Msg)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
