package service

import (
	"log/slog"
	"time"

	"github.com/tnguyen/storefront/internal/domain"
	"github.com/tnguyen/storefront/internal/store"
)

// CreateUserInput is the payload for creating a user.
type CreateUserInput struct {
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"  validate:"required"`
	IsActive  *bool  `json:"isActive"  validate:"omitempty"`
}

// UpdateUserInput is the partial payload for updating a user. Nil fields are
// left untouched.
type UpdateUserInput struct {
	Email     *string `json:"email"     validate:"omitempty,email"`
	Password  *string `json:"password"  validate:"omitempty,min=6"`
	FirstName *string `json:"firstName" validate:"omitempty,min=1"`
	LastName  *string `json:"lastName"  validate:"omitempty,min=1"`
	IsActive  *bool   `json:"isActive"  validate:"omitempty"`
}

// UserDTO is the externally visible projection of a user. The password is
// never part of it.
type UserDTO struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserService is the CRUD engine instantiated for users, with the email
// uniqueness constraint attached.
type UserService struct {
	*Crud[domain.User, CreateUserInput, UpdateUserInput, UserDTO]
}

// NewUserService creates the user resource service.
func NewUserService(repo store.Repository[domain.User], log *slog.Logger) *UserService {
	return &UserService{Crud: NewCrud(repo, userDescriptor, log)}
}

var userDescriptor = Descriptor[domain.User, CreateUserInput, UpdateUserInput, UserDTO]{
	Name:     "user",
	NotFound: store.ErrUserNotFound,
	Conflict: store.ErrEmailExists,
	ID:       func(u *domain.User) int64 { return u.ID },
	New: func(in CreateUserInput) *domain.User {
		active := true
		if in.IsActive != nil {
			active = *in.IsActive
		}
		return domain.NewUser(in.Email, in.Password, in.FirstName, in.LastName, active)
	},
	Changes: func(in UpdateUserInput) store.Changes {
		changes := store.Changes{}
		if in.Email != nil {
			changes["email"] = *in.Email
		}
		if in.Password != nil {
			changes["password"] = *in.Password
		}
		if in.FirstName != nil {
			changes["first_name"] = *in.FirstName
		}
		if in.LastName != nil {
			changes["last_name"] = *in.LastName
		}
		if in.IsActive != nil {
			changes["is_active"] = *in.IsActive
		}
		return changes
	},
	Project: func(u *domain.User) UserDTO {
		return UserDTO{
			ID:        u.ID,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			IsActive:  u.IsActive,
			CreatedAt: u.CreatedAt,
		}
	},
	Columns: map[string]string{
		"id":        "id",
		"email":     "email",
		"firstName": "first_name",
		"lastName":  "last_name",
		"isActive":  "is_active",
		"createdAt": "created_at",
	},
	UniqueFilter: func(in CreateUserInput) store.Filter {
		return store.Filter{"email": in.Email}
	},
	UniqueUpdateFilter: func(in UpdateUserInput, current *domain.User) (store.Filter, bool) {
		if in.Email == nil || *in.Email == current.Email {
			return nil, false
		}
		return store.Filter{"email": *in.Email}, true
	},
}
