package store

import (
	"context"
	"database/sql"
)

// Direction is the sort order for a single field.
type Direction string

const (
	// Ascending sorts smallest first.
	Ascending Direction = "ASC"
	// Descending sorts largest first.
	Descending Direction = "DESC"
)

// Sort maps a column name to a sort direction. Iteration order is not
// significant; implementations must produce a deterministic ORDER BY by
// sorting the keys.
type Sort map[string]Direction

// Filter is an equality predicate: every entry must match for a row to be
// selected. A nil or empty Filter matches all rows. Keys are column names;
// implementations must reject columns that are not part of the entity with
// ErrInvalidField.
type Filter map[string]any

// Changes is a partial update: a set of column/value pairs to apply.
// Implementations must reject unknown columns with ErrInvalidField.
type Changes map[string]any

// Page is a window into a filtered result set.
type Page struct {
	Offset int
	Limit  int
	Sort   Sort
}

// Repository is the generic persistence interface the CRUD service is built
// on. One instance exists per entity type. Implementations hide soft-deleted
// rows from every operation except Restore.
//
// All "not found" conditions surface as ErrNotFound (or an entity-specific
// wrapper); unique constraint violations surface as ErrDuplicate (or a
// wrapper such as ErrEmailExists).
type Repository[T any] interface {
	// Insert saves a new entity and assigns its store-generated ID.
	Insert(ctx context.Context, entity *T) error

	// InsertMany saves a batch of entities in one statement, assigning IDs
	// in order.
	InsertMany(ctx context.Context, entities []*T) error

	// FindByID retrieves an entity by its ID.
	// Returns ErrNotFound if no visible row matches.
	FindByID(ctx context.Context, id int64) (*T, error)

	// FindByIDs retrieves the subset of the given IDs that exist.
	// Missing IDs are not an error.
	FindByIDs(ctx context.Context, ids []int64) ([]*T, error)

	// FindOneBy retrieves the first entity matching the filter.
	// Returns ErrNotFound if no visible row matches.
	FindOneBy(ctx context.Context, filter Filter) (*T, error)

	// Find retrieves all entities matching the filter in the given order.
	Find(ctx context.Context, filter Filter, sort Sort) ([]*T, error)

	// FindAndCount retrieves one page of entities matching the filter
	// together with the total match count. The page contents and the count
	// come from a single query so they are consistent with each other.
	FindAndCount(ctx context.Context, filter Filter, page Page) ([]*T, int64, error)

	// Count returns the number of entities matching the filter.
	Count(ctx context.Context, filter Filter) (int64, error)

	// Exists reports whether at least one entity matches the filter.
	Exists(ctx context.Context, filter Filter) (bool, error)

	// Update applies the changes to the entity with the given ID and
	// returns the number of rows affected.
	Update(ctx context.Context, id int64, changes Changes) (int64, error)

	// UpdateMany applies the same changes to every entity in the ID set and
	// returns the number of rows affected.
	UpdateMany(ctx context.Context, ids []int64, changes Changes) (int64, error)

	// UpdateBy applies the changes to every entity matching the filter and
	// returns the number of rows affected.
	UpdateBy(ctx context.Context, filter Filter, changes Changes) (int64, error)

	// Delete permanently removes the entity with the given ID and returns
	// the number of rows affected.
	Delete(ctx context.Context, id int64) (int64, error)

	// DeleteMany permanently removes every entity in the ID set and returns
	// the number of rows affected.
	DeleteMany(ctx context.Context, ids []int64) (int64, error)

	// DeleteBy permanently removes every entity matching the filter and
	// returns the number of rows affected.
	DeleteBy(ctx context.Context, filter Filter) (int64, error)

	// SoftDelete marks the entity as deleted without removing its row.
	// Returns the number of rows affected; 0 means the entity does not
	// exist or is already soft-deleted.
	SoftDelete(ctx context.Context, id int64) (int64, error)

	// Restore clears the soft-delete mark. Returns the number of rows
	// affected; 0 means the entity does not exist or is not currently
	// soft-deleted.
	Restore(ctx context.Context, id int64) (int64, error)

	// WithTx returns a Repository bound to the provided transaction.
	// The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) Repository[T]
}
