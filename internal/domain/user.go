package domain

import "time"

// User represents a registered user of the storefront.
//
// The password is stored as given; the response projection in the service
// layer is responsible for never exposing it. DeletedAt is the soft-delete
// mark: a non-nil value hides the row from every read.
type User struct {
	ID        int64
	Email     string
	Password  string
	FirstName string
	LastName  string
	IsActive  bool
	CreatedAt time.Time
	DeletedAt *time.Time
}

// NewUser creates a User with the creation timestamp set. The ID is assigned
// by the store on insert.
func NewUser(email, password, firstName, lastName string, isActive bool) *User {
	return &User{
		Email:     email,
		Password:  password,
		FirstName: firstName,
		LastName:  lastName,
		IsActive:  isActive,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if u.Password == "" {
		return ErrEmptyPassword
	}
	return nil
}
