package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tnguyen/storefront/internal/platform/logger"
	"github.com/tnguyen/storefront/internal/store"
)

// PostgreSQL error codes
const pgUniqueViolationCode = "23505"

// Store is a generic PostgreSQL implementation of store.Repository.
// It accepts a database connection or transaction that is initialized and
// managed by the caller.
type Store[T any] struct {
	db     store.DBTX
	table  Table[T]
	cols   map[string]struct{}
	logger *slog.Logger
}

// New creates a Store for the given table descriptor.
// If logger is nil, the process default logger is used.
func New[T any](db store.DBTX, table Table[T], log *slog.Logger) *Store[T] {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store[T]{
		db:     db,
		table:  table,
		cols:   table.columnSet(),
		logger: log.With(slog.String("component", table.Name+"_store")),
	}
}

// WithTx returns a Store bound to the provided transaction.
func (s *Store[T]) WithTx(tx *sql.Tx) store.Repository[T] {
	return &Store[T]{db: tx, table: s.table, cols: s.cols, logger: s.logger}
}

var _ store.Repository[struct{}] = (*Store[struct{}])(nil)

// Insert implements store.Repository.Insert.
// Returns the table's duplicate sentinel if a unique constraint is violated.
func (s *Store[T]) Insert(ctx context.Context, entity *T) error {
	cols := s.table.Columns[1:]
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		s.table.Name,
		strings.Join(cols, ", "),
		placeholders(1, len(cols)),
	)

	var id int64
	err := s.db.QueryRowContext(ctx, query, s.table.Values(entity)...).Scan(&id)
	if err != nil {
		return s.translate(ctx, "insert", err)
	}
	s.table.SetID(entity, id)
	return nil
}

// InsertMany implements store.Repository.InsertMany. The batch goes out as a
// single multi-row INSERT, so either every entity is created or none are.
func (s *Store[T]) InsertMany(ctx context.Context, entities []*T) error {
	if len(entities) == 0 {
		return nil
	}

	cols := s.table.Columns[1:]
	rows := make([]string, 0, len(entities))
	args := make([]any, 0, len(entities)*len(cols))
	for i, e := range entities {
		rows = append(rows, "("+placeholders(i*len(cols)+1, len(cols))+")")
		args = append(args, s.table.Values(e)...)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s RETURNING id",
		s.table.Name,
		strings.Join(cols, ", "),
		strings.Join(rows, ", "),
	)

	result, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return s.translate(ctx, "insert many", err)
	}
	defer func() { _ = result.Close() }()

	i := 0
	for result.Next() {
		var id int64
		if err := result.Scan(&id); err != nil {
			return s.translate(ctx, "insert many", err)
		}
		s.table.SetID(entities[i], id)
		i++
	}
	return result.Err()
}

// FindByID implements store.Repository.FindByID.
func (s *Store[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE id = $1%s",
		strings.Join(s.table.Columns, ", "),
		s.table.Name,
		s.visibleClause(),
	)

	entity := new(T)
	err := s.db.QueryRowContext(ctx, query, id).Scan(s.table.Fields(entity)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, s.translate(ctx, "find by id", err)
	}
	return entity, nil
}

// FindByIDs implements store.Repository.FindByIDs. IDs with no matching row
// are silently omitted from the result.
func (s *Store[T]) FindByIDs(ctx context.Context, ids []int64) ([]*T, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE id = ANY($1)%s ORDER BY id",
		strings.Join(s.table.Columns, ", "),
		s.table.Name,
		s.visibleClause(),
	)
	return s.queryMany(ctx, "find by ids", query, ids)
}

// FindOneBy implements store.Repository.FindOneBy.
func (s *Store[T]) FindOneBy(ctx context.Context, filter store.Filter) (*T, error) {
	where, args, err := s.whereClause(filter, 1)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s%s LIMIT 1",
		strings.Join(s.table.Columns, ", "),
		s.table.Name,
		where,
	)

	entity := new(T)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(s.table.Fields(entity)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, s.translate(ctx, "find one by", err)
	}
	return entity, nil
}

// Find implements store.Repository.Find.
func (s *Store[T]) Find(ctx context.Context, filter store.Filter, order store.Sort) ([]*T, error) {
	where, args, err := s.whereClause(filter, 1)
	if err != nil {
		return nil, err
	}
	orderBy, err := s.orderClause(order)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s%s%s",
		strings.Join(s.table.Columns, ", "),
		s.table.Name,
		where,
		orderBy,
	)
	return s.queryMany(ctx, "find", query, args...)
}

// FindAndCount implements store.Repository.FindAndCount. The total comes
// from a window function in the same statement as the page, so both reflect
// one snapshot of the table.
func (s *Store[T]) FindAndCount(
	ctx context.Context,
	filter store.Filter,
	page store.Page,
) ([]*T, int64, error) {
	where, args, err := s.whereClause(filter, 1)
	if err != nil {
		return nil, 0, err
	}
	orderBy, err := s.orderClause(page.Sort)
	if err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(
		"SELECT %s, COUNT(*) OVER() AS total FROM %s%s%s LIMIT $%d OFFSET $%d",
		strings.Join(s.table.Columns, ", "),
		s.table.Name,
		where,
		orderBy,
		n+1,
		n+2,
	)
	args = append(args, page.Limit, page.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, s.translate(ctx, "find and count", err)
	}
	defer func() { _ = rows.Close() }()

	var total int64
	items := make([]*T, 0, page.Limit)
	for rows.Next() {
		entity := new(T)
		if err := rows.Scan(append(s.table.Fields(entity), &total)...); err != nil {
			return nil, 0, s.translate(ctx, "find and count", err)
		}
		items = append(items, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, s.translate(ctx, "find and count", err)
	}

	// An empty page beyond the last row yields no rows at all, so the
	// window total is unavailable and needs its own query.
	if len(items) == 0 {
		total, err = s.Count(ctx, filter)
		if err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

// Count implements store.Repository.Count.
func (s *Store[T]) Count(ctx context.Context, filter store.Filter) (int64, error) {
	where, args, err := s.whereClause(filter, 1)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", s.table.Name, where)

	var count int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, s.translate(ctx, "count", err)
	}
	return count, nil
}

// Exists implements store.Repository.Exists.
func (s *Store[T]) Exists(ctx context.Context, filter store.Filter) (bool, error) {
	where, args, err := s.whereClause(filter, 1)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s%s)", s.table.Name, where)

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, s.translate(ctx, "exists", err)
	}
	return exists, nil
}

// Update implements store.Repository.Update.
func (s *Store[T]) Update(ctx context.Context, id int64, changes store.Changes) (int64, error) {
	set, args, err := s.setClause(changes)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $%d%s",
		s.table.Name,
		set,
		len(args)+1,
		s.visibleClause(),
	)
	return s.exec(ctx, "update", query, append(args, id)...)
}

// UpdateMany implements store.Repository.UpdateMany.
func (s *Store[T]) UpdateMany(
	ctx context.Context,
	ids []int64,
	changes store.Changes,
) (int64, error) {
	set, args, err := s.setClause(changes)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = ANY($%d)%s",
		s.table.Name,
		set,
		len(args)+1,
		s.visibleClause(),
	)
	return s.exec(ctx, "update many", query, append(args, ids)...)
}

// UpdateBy implements store.Repository.UpdateBy.
func (s *Store[T]) UpdateBy(
	ctx context.Context,
	filter store.Filter,
	changes store.Changes,
) (int64, error) {
	set, args, err := s.setClause(changes)
	if err != nil {
		return 0, err
	}
	where, whereArgs, err := s.whereClause(filter, len(args)+1)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf("UPDATE %s SET %s%s", s.table.Name, set, where)
	return s.exec(ctx, "update by", query, append(args, whereArgs...)...)
}

// Delete implements store.Repository.Delete. This is a hard delete; the row
// is removed regardless of its soft-delete state.
func (s *Store[T]) Delete(ctx context.Context, id int64) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.table.Name)
	return s.exec(ctx, "delete", query, id)
}

// DeleteMany implements store.Repository.DeleteMany.
func (s *Store[T]) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ANY($1)", s.table.Name)
	return s.exec(ctx, "delete many", query, ids)
}

// DeleteBy implements store.Repository.DeleteBy.
func (s *Store[T]) DeleteBy(ctx context.Context, filter store.Filter) (int64, error) {
	where, args, err := s.whereClause(filter, 1)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf("DELETE FROM %s%s", s.table.Name, where)
	return s.exec(ctx, "delete by", query, args...)
}

// SoftDelete implements store.Repository.SoftDelete.
func (s *Store[T]) SoftDelete(ctx context.Context, id int64) (int64, error) {
	if !s.table.SoftDelete {
		return 0, fmt.Errorf("%w: %s does not support soft delete",
			store.ErrUpdateFailed, s.table.Name)
	}
	query := fmt.Sprintf(
		"UPDATE %s SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL",
		s.table.Name,
	)
	return s.exec(ctx, "soft delete", query, id)
}

// Restore implements store.Repository.Restore.
func (s *Store[T]) Restore(ctx context.Context, id int64) (int64, error) {
	if !s.table.SoftDelete {
		return 0, fmt.Errorf("%w: %s does not support soft delete",
			store.ErrUpdateFailed, s.table.Name)
	}
	query := fmt.Sprintf(
		"UPDATE %s SET deleted_at = NULL WHERE id = $1 AND deleted_at IS NOT NULL",
		s.table.Name,
	)
	return s.exec(ctx, "restore", query, id)
}

// queryMany runs a SELECT returning any number of entities.
func (s *Store[T]) queryMany(
	ctx context.Context,
	op, query string,
	args ...any,
) ([]*T, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.translate(ctx, op, err)
	}
	defer func() { _ = rows.Close() }()

	var items []*T
	for rows.Next() {
		entity := new(T)
		if err := rows.Scan(s.table.Fields(entity)...); err != nil {
			return nil, s.translate(ctx, op, err)
		}
		items = append(items, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, s.translate(ctx, op, err)
	}
	return items, nil
}

// exec runs a mutating statement and returns the affected row count.
func (s *Store[T]) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, s.translate(ctx, op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, s.translate(ctx, op, err)
	}
	return affected, nil
}

// translate converts driver errors into store sentinels. Anything that is
// not a recognized constraint violation is logged and wrapped in a
// StoreError naming the table and operation, keeping the driver error
// reachable through errors.Is/As.
func (s *Store[T]) translate(ctx context.Context, op string, err error) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
		log.Debug("unique constraint violation",
			slog.String("operation", op),
			slog.String("constraint", pgErr.ConstraintName))
		if s.table.Duplicate != nil {
			return s.table.Duplicate
		}
		return store.ErrDuplicate
	}

	log.Error("database operation failed",
		slog.String("operation", op),
		slog.String("table", s.table.Name),
		slog.String("error", err.Error()))
	return store.NewStoreError(s.table.Name, op, "unexpected database error", err)
}

// visibleClause appends the soft-delete guard to single-row WHERE clauses.
func (s *Store[T]) visibleClause() string {
	if s.table.SoftDelete {
		return " AND deleted_at IS NULL"
	}
	return ""
}

// whereClause builds a WHERE clause from an equality filter. Keys are
// processed in sorted order so the generated SQL is deterministic.
func (s *Store[T]) whereClause(filter store.Filter, start int) (string, []any, error) {
	conds := make([]string, 0, len(filter)+1)
	args := make([]any, 0, len(filter))

	for _, col := range sortedKeys(filter) {
		if _, ok := s.cols[col]; !ok {
			return "", nil, fmt.Errorf("%w: %q", store.ErrInvalidField, col)
		}
		if filter[col] == nil {
			conds = append(conds, col+" IS NULL")
			continue
		}
		conds = append(conds, fmt.Sprintf("%s = $%d", col, start+len(args)))
		args = append(args, filter[col])
	}
	if s.table.SoftDelete {
		conds = append(conds, "deleted_at IS NULL")
	}

	if len(conds) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// setClause builds the SET list for an update, appending the touch column
// when the table declares one.
func (s *Store[T]) setClause(changes store.Changes) (string, []any, error) {
	if len(changes) == 0 {
		return "", nil, fmt.Errorf("%w: no changes given", store.ErrInvalidEntity)
	}

	sets := make([]string, 0, len(changes)+1)
	args := make([]any, 0, len(changes))
	for _, col := range sortedChangeKeys(changes) {
		if _, ok := s.cols[col]; !ok {
			return "", nil, fmt.Errorf("%w: %q", store.ErrInvalidField, col)
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)+1))
		args = append(args, changes[col])
	}
	if s.table.Touch != "" {
		sets = append(sets, s.table.Touch+" = now()")
	}
	return strings.Join(sets, ", "), args, nil
}

// placeholders renders "$start, $start+1, ..." for n arguments.
func placeholders(start, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "$%d", start+i)
	}
	return b.String()
}

func sortedKeys(m store.Filter) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedChangeKeys(m store.Changes) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// orderClause builds ORDER BY from a sort spec, validating columns and
// directions. A stable id tiebreaker keeps pagination deterministic.
func (s *Store[T]) orderClause(order store.Sort) (string, error) {
	if len(order) == 0 {
		return " ORDER BY id ASC", nil
	}

	cols := make([]string, 0, len(order))
	for k := range order {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	parts := make([]string, 0, len(cols)+1)
	for _, col := range cols {
		if _, ok := s.cols[col]; !ok {
			return "", fmt.Errorf("%w: %q", store.ErrInvalidField, col)
		}
		dir := order[col]
		if dir != store.Ascending && dir != store.Descending {
			return "", fmt.Errorf("%w: sort direction %q", store.ErrInvalidField, dir)
		}
		parts = append(parts, col+" "+string(dir))
	}
	parts = append(parts, "id ASC")
	return " ORDER BY " + strings.Join(parts, ", "), nil
}
