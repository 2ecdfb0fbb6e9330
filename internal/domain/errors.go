// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyEmail is returned when a user email is empty.
	ErrEmptyEmail = errors.New("email cannot be empty")

	// ErrEmptyPassword is returned when a user password is empty.
	ErrEmptyPassword = errors.New("password cannot be empty")

	// ErrEmptyName is returned when a product name is empty.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrNegativePrice is returned when a product price is negative or not
	// a valid decimal.
	ErrNegativePrice = errors.New("price must be a non-negative decimal")

	// ErrNegativeStock is returned when a product stock count is negative.
	ErrNegativeStock = errors.New("stock must be non-negative")
)
