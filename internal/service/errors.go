package service

import (
	"fmt"
	"strings"
)

// MissingIDsError is returned by the all-or-nothing bulk operations when
// some of the requested IDs do not exist. It wraps the entity's NotFound
// sentinel so errors.Is checks keep working, while carrying the missing ID
// list for the boundary to report.
type MissingIDsError struct {
	Resource string
	IDs      []int64
	sentinel error
}

// Error implements the error interface.
func (e *MissingIDsError) Error() string {
	parts := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("%ss with ids %s not found", e.Resource, strings.Join(parts, ", "))
}

// Unwrap returns the NotFound sentinel to support errors.Is.
func (e *MissingIDsError) Unwrap() error {
	return e.sentinel
}
