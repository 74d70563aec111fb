package estimate

import (
	"errors"
	"fmt"
)

// ErrUnknownField is returned when an edit names a field that is not a
// mutable item field.
var ErrUnknownField = errors.New("unknown item field")

// LoadError reports a document that is missing, malformed or unreachable.
// It is distinct from a valid document with no sections.
type LoadError struct {
	Source string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	msg := "load estimate"
	if e.Source != "" {
		msg += " from " + e.Source
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error { return e.Err }

// NotFoundError reports an edit or toggle that references a section or item
// absent from the document. ItemID is empty when the section is missing.
type NotFoundError struct {
	SectionID string
	ItemID    string
}

func (e *NotFoundError) Error() string {
	if e.ItemID == "" {
		return fmt.Sprintf("section %q not found", e.SectionID)
	}
	return fmt.Sprintf("item %q not found in section %q", e.ItemID, e.SectionID)
}

// IsNotFound reports whether err is or wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsLoadError reports whether err is or wraps a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}
