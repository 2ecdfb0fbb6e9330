package postgres

// Table describes how an entity maps onto a PostgreSQL table. Columns lists
// every selectable column in a fixed order, with "id" first; Fields and
// Values must align with that order.
type Table[T any] struct {
	// Name is the table name.
	Name string

	// Columns are the selectable columns, "id" first. The soft-delete
	// column is not listed; it is managed by the store.
	Columns []string

	// Fields returns scan destinations aligned with Columns.
	Fields func(e *T) []any

	// Values returns insert values aligned with Columns[1:]. The id is
	// assigned by the database.
	Values func(e *T) []any

	// SetID records the database-assigned id on the entity.
	SetID func(e *T, id int64)

	// SoftDelete marks whether the table carries a deleted_at column.
	// When set, every read and write excludes soft-deleted rows.
	SoftDelete bool

	// Touch names a timestamp column refreshed on every update, or "" for
	// tables without one.
	Touch string

	// Duplicate is the sentinel returned when an insert or update trips a
	// unique constraint. Defaults to store.ErrDuplicate when nil.
	Duplicate error
}

// columnSet returns the set of updatable/filterable columns.
func (t Table[T]) columnSet() map[string]struct{} {
	set := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		set[c] = struct{}{}
	}
	return set
}
