package errors

import (
	"fmt"
	"strings"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation is returned when a local precondition fails
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrTransport is returned when the storefront could not be reached or answered with a non-2xx status.
// Body holds the raw response body when one was received.
type ErrTransport struct {
	Op         string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *ErrTransport) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ErrTransport) Unwrap() error {
	return e.Err
}

// ErrParse is returned when a response could not be decoded
type ErrParse struct {
	Op  string
	Err error
}

func (e *ErrParse) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *ErrParse) Unwrap() error {
	return e.Err
}

// ErrShortfall is returned when the storefront cannot fulfill some cart lines
type ErrShortfall struct {
	Items   []string
	Message string
}

func (e *ErrShortfall) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Items, ", "))
	}
	return "insufficient stock: " + strings.Join(e.Items, ", ")
}
