package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/tnguyen/storefront/internal/store"
)

// Query is a service-level equality predicate keyed by DTO field names
// (e.g. "isActive"). Fields are translated to columns through the entity
// descriptor; unknown fields fail with store.ErrInvalidField.
type Query map[string]any

// Descriptor binds the generic CRUD engine to one entity type: how to build
// an entity from create input, turn update input into column changes,
// project an entity into its response DTO, and which field (if any) carries
// a uniqueness constraint.
//
// T is the entity, C the create input, U the update input, and R the
// response DTO.
type Descriptor[T, C, U, R any] struct {
	// Name is the resource name used in logs ("user", "product").
	Name string

	// NotFound is the sentinel returned when the resource is absent.
	NotFound error

	// Conflict is the sentinel returned when the uniqueness constraint is
	// violated. Required when UniqueFilter is set.
	Conflict error

	// ID extracts the entity's identifier.
	ID func(*T) int64

	// New builds a fresh entity from create input.
	New func(C) *T

	// Changes turns update input into the column changes to apply. Fields
	// left unset in the input must be absent from the result.
	Changes func(U) store.Changes

	// Project is the response projection (toDTO). It strips internal-only
	// fields and coerces stored values deterministically.
	Project func(*T) R

	// Columns maps DTO field names to column names for filters and sorts.
	Columns map[string]string

	// UniqueFilter returns the predicate that must match no existing record
	// for the create input to be admissible, or nil when the entity has no
	// uniqueness constraint.
	UniqueFilter func(C) store.Filter

	// UniqueUpdateFilter reports the uniqueness predicate to re-check when
	// the update input touches the constrained field with a value different
	// from the current one.
	UniqueUpdateFilter func(U, *T) (store.Filter, bool)
}

// Crud is the generic resource service. It owns no state beyond its
// repository and descriptor, so a single value is safe for concurrent use.
//
// The uniqueness fast path here is advisory: two concurrent creates can both
// pass it. The authoritative signal is the store's unique index, whose
// violation the repository translates into the same Conflict sentinel.
type Crud[T, C, U, R any] struct {
	repo store.Repository[T]
	desc Descriptor[T, C, U, R]
	log  *slog.Logger

	// txDB, when set, makes the bulk operations run their existence guard
	// and mutation inside one transaction.
	txDB *sql.DB
}

// NewCrud creates the CRUD engine for one entity type.
func NewCrud[T, C, U, R any](
	repo store.Repository[T],
	desc Descriptor[T, C, U, R],
	log *slog.Logger,
) *Crud[T, C, U, R] {
	if repo == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("repo cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Crud[T, C, U, R]{
		repo: repo,
		desc: desc,
		log:  log.With(slog.String("component", desc.Name+"_service")),
	}
}

// WithTxDB attaches the database handle used to make bulk operations
// transactional. Without it the guards and mutations run as separate
// statements, which is how the in-memory repository is exercised in tests.
func (s *Crud[T, C, U, R]) WithTxDB(db *sql.DB) *Crud[T, C, U, R] {
	s.txDB = db
	return s
}

// inTx runs fn against a transaction-bound repository when a database
// handle is attached, or against the plain repository otherwise.
func (s *Crud[T, C, U, R]) inTx(ctx context.Context, fn func(repo store.Repository[T]) error) error {
	if s.txDB == nil {
		return fn(s.repo)
	}
	return store.RunInTransaction(ctx, s.txDB, func(ctx context.Context, tx *sql.Tx) error {
		return fn(s.repo.WithTx(tx))
	})
}

// Create persists a new resource and returns its projection.
// Fails with the Conflict sentinel when the uniqueness constraint is
// already taken.
func (s *Crud[T, C, U, R]) Create(ctx context.Context, input C) (R, error) {
	var zero R

	if s.desc.UniqueFilter != nil {
		taken, err := s.repo.Exists(ctx, s.desc.UniqueFilter(input))
		if err != nil {
			return zero, fmt.Errorf("failed to check %s uniqueness: %w", s.desc.Name, err)
		}
		if taken {
			s.log.Debug("create rejected by uniqueness fast path")
			return zero, s.desc.Conflict
		}
	}

	entity := s.desc.New(input)
	if err := s.repo.Insert(ctx, entity); err != nil {
		return zero, fmt.Errorf("failed to create %s: %w", s.desc.Name, err)
	}

	s.log.Info("resource created", slog.Int64("id", s.desc.ID(entity)))
	return s.desc.Project(entity), nil
}

// CreateMany persists a batch of resources in one statement and returns
// their projections in input order. When the entity carries a uniqueness
// constraint, every item is checked against the store and against the
// earlier items of the same batch.
func (s *Crud[T, C, U, R]) CreateMany(ctx context.Context, inputs []C) ([]R, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one %s is required",
			store.ErrInvalidEntity, s.desc.Name)
	}

	entities := make([]*T, len(inputs))
	for i, input := range inputs {
		entities[i] = s.desc.New(input)
	}

	err := s.inTx(ctx, func(repo store.Repository[T]) error {
		if s.desc.UniqueFilter != nil {
			seen := make(map[string]struct{}, len(inputs))
			for _, input := range inputs {
				filter := s.desc.UniqueFilter(input)
				key := filterKey(filter)
				if _, dup := seen[key]; dup {
					return s.desc.Conflict
				}
				seen[key] = struct{}{}

				taken, err := repo.Exists(ctx, filter)
				if err != nil {
					return fmt.Errorf("failed to check %s uniqueness: %w", s.desc.Name, err)
				}
				if taken {
					return s.desc.Conflict
				}
			}
		}

		if err := repo.InsertMany(ctx, entities); err != nil {
			return fmt.Errorf("failed to create %ss: %w", s.desc.Name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("resources created", slog.Int("count", len(entities)))
	return s.project(entities), nil
}

// FindAll returns the projections of every resource matching the query.
// A nil query matches everything.
func (s *Crud[T, C, U, R]) FindAll(ctx context.Context, query Query) ([]R, error) {
	filter, err := s.mapQuery(query)
	if err != nil {
		return nil, err
	}
	entities, err := s.repo.Find(ctx, filter, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list %ss: %w", s.desc.Name, err)
	}
	return s.project(entities), nil
}

// FindOne returns the projection of the resource with the given ID.
// Fails with the NotFound sentinel when the ID is non-positive or absent.
func (s *Crud[T, C, U, R]) FindOne(ctx context.Context, id int64) (R, error) {
	var zero R
	if id <= 0 {
		return zero, s.desc.NotFound
	}
	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return zero, s.desc.NotFound
		}
		return zero, fmt.Errorf("failed to find %s: %w", s.desc.Name, err)
	}
	return s.desc.Project(entity), nil
}

// FindByID is an alias for FindOne.
func (s *Crud[T, C, U, R]) FindByID(ctx context.Context, id int64) (R, error) {
	return s.FindOne(ctx, id)
}

// FindByIDs returns the projections of whichever of the given IDs exist.
// Missing IDs are not an error; an empty ID set is.
func (s *Crud[T, C, U, R]) FindByIDs(ctx context.Context, ids []int64) ([]R, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: %s ids are required", store.ErrInvalidEntity, s.desc.Name)
	}
	entities, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to find %ss: %w", s.desc.Name, err)
	}
	return s.project(entities), nil
}

// FindOneBy returns the projection of the first resource matching the query.
// Fails with NotFound when nothing matches and with a bad-request error when
// the query is empty.
func (s *Crud[T, C, U, R]) FindOneBy(ctx context.Context, query Query) (R, error) {
	var zero R
	if len(query) == 0 {
		return zero, fmt.Errorf("%w: search criteria is required", store.ErrInvalidEntity)
	}
	filter, err := s.mapQuery(query)
	if err != nil {
		return zero, err
	}
	entity, err := s.repo.FindOneBy(ctx, filter)
	if err != nil {
		if store.IsNotFoundError(err) {
			return zero, s.desc.NotFound
		}
		return zero, fmt.Errorf("failed to find %s: %w", s.desc.Name, err)
	}
	return s.desc.Project(entity), nil
}

// Count returns the number of resources matching the query.
func (s *Crud[T, C, U, R]) Count(ctx context.Context, query Query) (int64, error) {
	filter, err := s.mapQuery(query)
	if err != nil {
		return 0, err
	}
	count, err := s.repo.Count(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count %ss: %w", s.desc.Name, err)
	}
	return count, nil
}

// Exists reports whether at least one resource matches the query.
func (s *Crud[T, C, U, R]) Exists(ctx context.Context, query Query) (bool, error) {
	if len(query) == 0 {
		return false, fmt.Errorf("%w: search criteria is required", store.ErrInvalidEntity)
	}
	filter, err := s.mapQuery(query)
	if err != nil {
		return false, err
	}
	exists, err := s.repo.Exists(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check %s existence: %w", s.desc.Name, err)
	}
	return exists, nil
}

// Update applies a partial update to the resource with the given ID and
// returns the resulting projection read back from the store. If the update
// touches the uniqueness-constrained field with a new value, the constraint
// is re-checked first.
func (s *Crud[T, C, U, R]) Update(ctx context.Context, id int64, input U) (R, error) {
	var zero R
	if id <= 0 {
		return zero, fmt.Errorf("%w: %s id is required", store.ErrInvalidEntity, s.desc.Name)
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return zero, s.desc.NotFound
		}
		return zero, fmt.Errorf("failed to load %s for update: %w", s.desc.Name, err)
	}

	changes := s.desc.Changes(input)
	if len(changes) == 0 {
		// Nothing to apply; the current projection is the result.
		return s.desc.Project(current), nil
	}

	if s.desc.UniqueUpdateFilter != nil {
		if filter, check := s.desc.UniqueUpdateFilter(input, current); check {
			taken, err := s.repo.Exists(ctx, filter)
			if err != nil {
				return zero, fmt.Errorf("failed to check %s uniqueness: %w", s.desc.Name, err)
			}
			if taken {
				return zero, s.desc.Conflict
			}
		}
	}

	if _, err := s.repo.Update(ctx, id, changes); err != nil {
		return zero, fmt.Errorf("failed to update %s: %w", s.desc.Name, err)
	}

	// The update and this read are separate statements; a concurrent hard
	// delete in between surfaces as NotFound here.
	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return zero, s.desc.NotFound
		}
		return zero, fmt.Errorf("failed to read %s after update: %w", s.desc.Name, err)
	}

	s.log.Info("resource updated", slog.Int64("id", id))
	return s.desc.Project(updated), nil
}

// UpdateMany applies the same partial update to every resource in the ID
// set. The operation is all-or-nothing: if any ID is absent, it fails with
// NotFound naming every missing ID and modifies nothing.
func (s *Crud[T, C, U, R]) UpdateMany(ctx context.Context, ids []int64, input U) ([]R, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: %s ids are required", store.ErrInvalidEntity, s.desc.Name)
	}

	changes := s.desc.Changes(input)

	var updated []*T
	err := s.inTx(ctx, func(repo store.Repository[T]) error {
		existing, err := repo.FindByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to load %ss for update: %w", s.desc.Name, err)
		}
		if missing := s.missingIDs(ids, existing); len(missing) > 0 {
			return s.notFoundIDs(missing)
		}

		if len(changes) == 0 {
			updated = existing
			return nil
		}

		if _, err := repo.UpdateMany(ctx, ids, changes); err != nil {
			return fmt.Errorf("failed to update %ss: %w", s.desc.Name, err)
		}

		updated, err = repo.FindByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to read %ss after update: %w", s.desc.Name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("resources updated", slog.Int("count", len(ids)))
	return s.project(updated), nil
}

// UpdateBy applies the partial update to every resource matching the query
// and returns the projections of the records matching it afterwards.
func (s *Crud[T, C, U, R]) UpdateBy(ctx context.Context, query Query, input U) ([]R, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: search criteria is required", store.ErrInvalidEntity)
	}
	filter, err := s.mapQuery(query)
	if err != nil {
		return nil, err
	}

	changes := s.desc.Changes(input)
	if len(changes) > 0 {
		if _, err := s.repo.UpdateBy(ctx, filter, changes); err != nil {
			return nil, fmt.Errorf("failed to update %ss: %w", s.desc.Name, err)
		}
	}

	entities, err := s.repo.Find(ctx, filter, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read %ss after update: %w", s.desc.Name, err)
	}
	return s.project(entities), nil
}

// Delete permanently removes the resource with the given ID. Fails with
// NotFound when it does not exist; reports whether a row was removed.
func (s *Crud[T, C, U, R]) Delete(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, fmt.Errorf("%w: %s id is required", store.ErrInvalidEntity, s.desc.Name)
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			return false, s.desc.NotFound
		}
		return false, fmt.Errorf("failed to load %s for delete: %w", s.desc.Name, err)
	}

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", s.desc.Name, err)
	}

	s.log.Info("resource deleted", slog.Int64("id", id))
	return affected > 0, nil
}

// DeleteMany permanently removes every resource in the ID set. Like
// UpdateMany it is all-or-nothing: any missing ID fails the whole call with
// NotFound naming the absentees.
func (s *Crud[T, C, U, R]) DeleteMany(ctx context.Context, ids []int64) (bool, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return false, fmt.Errorf("%w: %s ids are required", store.ErrInvalidEntity, s.desc.Name)
	}

	var affected int64
	err := s.inTx(ctx, func(repo store.Repository[T]) error {
		existing, err := repo.FindByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to load %ss for delete: %w", s.desc.Name, err)
		}
		if missing := s.missingIDs(ids, existing); len(missing) > 0 {
			return s.notFoundIDs(missing)
		}

		affected, err = repo.DeleteMany(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to delete %ss: %w", s.desc.Name, err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	s.log.Info("resources deleted", slog.Int("count", len(ids)))
	return affected > 0, nil
}

// DeleteBy permanently removes every resource matching the query and
// reports whether any row was removed.
func (s *Crud[T, C, U, R]) DeleteBy(ctx context.Context, query Query) (bool, error) {
	if len(query) == 0 {
		return false, fmt.Errorf("%w: search criteria is required", store.ErrInvalidEntity)
	}
	filter, err := s.mapQuery(query)
	if err != nil {
		return false, err
	}
	affected, err := s.repo.DeleteBy(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to delete %ss: %w", s.desc.Name, err)
	}
	return affected > 0, nil
}

// SoftDelete marks the resource as deleted without removing its row.
// Fails with NotFound when the resource is absent or already soft-deleted.
func (s *Crud[T, C, U, R]) SoftDelete(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, fmt.Errorf("%w: %s id is required", store.ErrInvalidEntity, s.desc.Name)
	}
	affected, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to soft delete %s: %w", s.desc.Name, err)
	}
	if affected == 0 {
		return false, s.desc.NotFound
	}
	s.log.Info("resource soft deleted", slog.Int64("id", id))
	return true, nil
}

// Restore reverses a soft delete. No row affected, whether the resource is
// missing or simply not soft-deleted, fails with NotFound.
func (s *Crud[T, C, U, R]) Restore(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, fmt.Errorf("%w: %s id is required", store.ErrInvalidEntity, s.desc.Name)
	}
	affected, err := s.repo.Restore(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to restore %s: %w", s.desc.Name, err)
	}
	if affected == 0 {
		return false, s.desc.NotFound
	}
	s.log.Info("resource restored", slog.Int64("id", id))
	return true, nil
}

// Paginate returns one page of matching resources with its metadata. The
// page contents and the total come from a single repository read, so the
// metadata is consistent with the items.
func (s *Crud[T, C, U, R]) Paginate(
	ctx context.Context,
	opts PageOptions,
	query Query,
) (Paginated[R], error) {
	var zero Paginated[R]

	opts = opts.normalized()
	filter, err := s.mapQuery(query)
	if err != nil {
		return zero, err
	}
	sortSpec, err := s.mapSort(opts.Sort)
	if err != nil {
		return zero, err
	}

	page := store.Page{
		Offset: (opts.Page - 1) * opts.Limit,
		Limit:  opts.Limit,
		Sort:   sortSpec,
	}
	entities, total, err := s.repo.FindAndCount(ctx, filter, page)
	if err != nil {
		return zero, fmt.Errorf("failed to paginate %ss: %w", s.desc.Name, err)
	}

	return Paginated[R]{
		Items: s.project(entities),
		Meta:  pageMeta(total, opts.Page, opts.Limit),
	}, nil
}

// ToDTO exposes the response projection (toDTO).
func (s *Crud[T, C, U, R]) ToDTO(entity *T) R {
	return s.desc.Project(entity)
}

// FromDTO exposes the update-input-to-changes mapping (fromDTO): a
// structural merge of the set fields into column changes, without coercion.
func (s *Crud[T, C, U, R]) FromDTO(input U) store.Changes {
	return s.desc.Changes(input)
}

// project maps a slice of entities into DTOs, always returning a non-nil
// slice so list responses encode as [] rather than null.
func (s *Crud[T, C, U, R]) project(entities []*T) []R {
	out := make([]R, len(entities))
	for i, e := range entities {
		out[i] = s.desc.Project(e)
	}
	return out
}

// mapQuery translates DTO field names to columns.
func (s *Crud[T, C, U, R]) mapQuery(query Query) (store.Filter, error) {
	if len(query) == 0 {
		return nil, nil
	}
	filter := make(store.Filter, len(query))
	for field, value := range query {
		col, ok := s.desc.Columns[field]
		if !ok {
			return nil, fmt.Errorf("%w: %q", store.ErrInvalidField, field)
		}
		filter[col] = value
	}
	return filter, nil
}

// mapSort translates a DTO-level sort spec to columns and directions.
func (s *Crud[T, C, U, R]) mapSort(sortSpec map[string]string) (store.Sort, error) {
	if len(sortSpec) == 0 {
		return nil, nil
	}
	out := make(store.Sort, len(sortSpec))
	for field, dir := range sortSpec {
		col, ok := s.desc.Columns[field]
		if !ok {
			return nil, fmt.Errorf("%w: %q", store.ErrInvalidField, field)
		}
		switch strings.ToLower(dir) {
		case "asc":
			out[col] = store.Ascending
		case "desc":
			out[col] = store.Descending
		default:
			return nil, fmt.Errorf("%w: sort direction %q", store.ErrInvalidField, dir)
		}
	}
	return out, nil
}

// missingIDs returns the requested IDs that have no matching entity.
func (s *Crud[T, C, U, R]) missingIDs(ids []int64, found []*T) []int64 {
	present := make(map[int64]struct{}, len(found))
	for _, e := range found {
		present[s.desc.ID(e)] = struct{}{}
	}
	var missing []int64
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// notFoundIDs wraps the NotFound sentinel naming every missing ID.
func (s *Crud[T, C, U, R]) notFoundIDs(missing []int64) error {
	return &MissingIDsError{
		Resource: s.desc.Name,
		IDs:      missing,
		sentinel: s.desc.NotFound,
	}
}

// filterKey renders a filter as a stable string for intra-batch duplicate
// detection.
func filterKey(filter store.Filter) string {
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	// Deterministic regardless of map iteration order.
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%v;", k, filter[k])
	}
	return b.String()
}

// dedupe removes duplicate IDs preserving first-seen order.
func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
