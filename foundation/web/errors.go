package web

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// FieldError describes a single invalid request field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// Error carries the HTTP status that should be reported for err.
type Error struct {
	Err    error
	Status int
	Fields []FieldError
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("request error: status %d", e.Status)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewRequestError(err error, status int) error {
	return &Error{Err: err, Status: status}
}

func NewFieldsError(status int, fields ...FieldError) error {
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f.Field+": "+f.Error)
	}

	return &Error{
		Err:    errors.New(strings.Join(msgs, "; ")),
		Status: status,
		Fields: fields,
	}
}

// AsRequestError returns the *Error in err's chain, if any.
func AsRequestError(err error) (*Error, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
