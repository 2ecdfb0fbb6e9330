package postgres

import (
	"log/slog"

	"github.com/tnguyen/storefront/internal/domain"
	"github.com/tnguyen/storefront/internal/store"
)

// userTable maps domain.User onto the users table. The partial unique index
// on email (active rows only) backs the conflict detection; the store
// translates its violation into store.ErrEmailExists.
var userTable = Table[domain.User]{
	Name: "users",
	Columns: []string{
		"id", "email", "password", "first_name", "last_name",
		"is_active", "created_at",
	},
	Fields: func(u *domain.User) []any {
		return []any{
			&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName,
			&u.IsActive, &u.CreatedAt,
		}
	},
	Values: func(u *domain.User) []any {
		return []any{
			u.Email, u.Password, u.FirstName, u.LastName,
			u.IsActive, u.CreatedAt,
		}
	},
	SetID:      func(u *domain.User, id int64) { u.ID = id },
	SoftDelete: true,
	Duplicate:  store.ErrEmailExists,
}

// NewUserStore creates the PostgreSQL repository for users.
func NewUserStore(db store.DBTX, log *slog.Logger) store.Repository[domain.User] {
	return New(db, userTable, log)
}
