// Package storetest provides an in-memory store.Repository implementation
// for exercising the service and HTTP layers without a database. It
// reproduces the persistence contract the services rely on: soft-deleted
// rows are invisible to every operation except Restore, and uniqueness
// applies to live rows only.
package storetest

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/tnguyen/storefront/internal/domain"
	"github.com/tnguyen/storefront/internal/store"
)

// Adapter tells the in-memory repository how to read and mutate one entity
// type by column name, mirroring what the SQL layer does with real rows.
type Adapter[T any] struct {
	ID         func(*T) int64
	SetID      func(*T, int64)
	DeletedAt  func(*T) *time.Time
	SetDeleted func(*T, *time.Time)
	Col        func(*T, string) any
	Apply      func(*T, store.Changes)
	Clone      func(*T) *T
}

// Repo is an in-memory store.Repository backed by a slice of rows.
type Repo[T any] struct {
	mu     sync.Mutex
	rows   []*T
	nextID int64
	ad     Adapter[T]

	// unique names a column enforced unique among live rows; dup is the
	// error reported on violation.
	unique string
	dup    error
}

// New creates an empty repository for the given adapter.
func New[T any](ad Adapter[T]) *Repo[T] {
	return &Repo[T]{ad: ad}
}

// WithUnique enforces uniqueness of the given column among live rows,
// reporting dup on violation.
func (r *Repo[T]) WithUnique(column string, dup error) *Repo[T] {
	r.unique = column
	r.dup = dup
	return r
}

func (r *Repo[T]) live(e *T) bool {
	return r.ad.DeletedAt(e) == nil
}

func (r *Repo[T]) matches(e *T, filter store.Filter) bool {
	for col, want := range filter {
		got := r.ad.Col(e, col)
		if want == nil {
			if got != nil {
				return false
			}
			continue
		}
		if got != want {
			return false
		}
	}
	return true
}

func (r *Repo[T]) findLive(filter store.Filter) []*T {
	var out []*T
	for _, e := range r.rows {
		if r.live(e) && r.matches(e, filter) {
			out = append(out, e)
		}
	}
	return out
}

func compareVals(a, b any) int {
	switch av := a.(type) {
	case int64:
		bv := b.(int64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	case int:
		bv := b.(int)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	case string:
		bv := b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	case time.Time:
		bv := b.(time.Time)
		switch {
		case av.Before(bv):
			return -1
		case av.After(bv):
			return 1
		}
	}
	return 0
}

func (r *Repo[T]) sortRows(rows []*T, spec store.Sort) {
	cols := make([]string, 0, len(spec))
	for col := range spec {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	sort.SliceStable(rows, func(i, j int) bool {
		for _, col := range cols {
			c := compareVals(r.ad.Col(rows[i], col), r.ad.Col(rows[j], col))
			if c == 0 {
				continue
			}
			if spec[col] == store.Descending {
				return c > 0
			}
			return c < 0
		}
		return r.ad.ID(rows[i]) < r.ad.ID(rows[j])
	})
}

func (r *Repo[T]) checkUnique(e *T, pending []*T) error {
	if r.unique == "" {
		return nil
	}
	want := r.ad.Col(e, r.unique)
	for _, other := range r.rows {
		if r.live(other) && r.ad.Col(other, r.unique) == want {
			return r.dup
		}
	}
	for _, other := range pending {
		if r.ad.Col(other, r.unique) == want {
			return r.dup
		}
	}
	return nil
}

func (r *Repo[T]) Insert(_ context.Context, entity *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkUnique(entity, nil); err != nil {
		return err
	}
	r.nextID++
	r.ad.SetID(entity, r.nextID)
	r.rows = append(r.rows, r.ad.Clone(entity))
	return nil
}

func (r *Repo[T]) InsertMany(_ context.Context, entities []*T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []*T
	for _, e := range entities {
		if err := r.checkUnique(e, pending); err != nil {
			return err
		}
		pending = append(pending, e)
	}
	for _, e := range entities {
		r.nextID++
		r.ad.SetID(e, r.nextID)
		r.rows = append(r.rows, r.ad.Clone(e))
	}
	return nil
}

func (r *Repo[T]) FindByID(_ context.Context, id int64) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.rows {
		if r.live(e) && r.ad.ID(e) == id {
			return r.ad.Clone(e), nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *Repo[T]) FindByIDs(_ context.Context, ids []int64) ([]*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idSet := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}
	var out []*T
	for _, e := range r.rows {
		if _, ok := idSet[r.ad.ID(e)]; ok && r.live(e) {
			out = append(out, r.ad.Clone(e))
		}
	}
	return out, nil
}

func (r *Repo[T]) FindOneBy(_ context.Context, filter store.Filter) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matches := r.findLive(filter)
	if len(matches) == 0 {
		return nil, store.ErrNotFound
	}
	return r.ad.Clone(matches[0]), nil
}

func (r *Repo[T]) Find(_ context.Context, filter store.Filter, sortSpec store.Sort) ([]*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matches := r.findLive(filter)
	r.sortRows(matches, sortSpec)
	out := make([]*T, len(matches))
	for i, e := range matches {
		out[i] = r.ad.Clone(e)
	}
	return out, nil
}

func (r *Repo[T]) FindAndCount(
	_ context.Context,
	filter store.Filter,
	page store.Page,
) ([]*T, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matches := r.findLive(filter)
	total := int64(len(matches))
	r.sortRows(matches, page.Sort)

	start := page.Offset
	if start > len(matches) {
		start = len(matches)
	}
	end := start + page.Limit
	if end > len(matches) {
		end = len(matches)
	}
	out := make([]*T, 0, end-start)
	for _, e := range matches[start:end] {
		out = append(out, r.ad.Clone(e))
	}
	return out, total, nil
}

func (r *Repo[T]) Count(_ context.Context, filter store.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.findLive(filter))), nil
}

func (r *Repo[T]) Exists(_ context.Context, filter store.Filter) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.findLive(filter)) > 0, nil
}

func (r *Repo[T]) Update(_ context.Context, id int64, changes store.Changes) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.rows {
		if r.live(e) && r.ad.ID(e) == id {
			r.ad.Apply(e, changes)
			return 1, nil
		}
	}
	return 0, nil
}

func (r *Repo[T]) UpdateMany(_ context.Context, ids []int64, changes store.Changes) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idSet := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}
	var affected int64
	for _, e := range r.rows {
		if _, ok := idSet[r.ad.ID(e)]; ok && r.live(e) {
			r.ad.Apply(e, changes)
			affected++
		}
	}
	return affected, nil
}

func (r *Repo[T]) UpdateBy(_ context.Context, filter store.Filter, changes store.Changes) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var affected int64
	for _, e := range r.findLive(filter) {
		r.ad.Apply(e, changes)
		affected++
	}
	return affected, nil
}

func (r *Repo[T]) remove(keep func(*T) bool) int64 {
	var affected int64
	kept := r.rows[:0]
	for _, e := range r.rows {
		if keep(e) {
			kept = append(kept, e)
		} else {
			affected++
		}
	}
	r.rows = kept
	return affected
}

func (r *Repo[T]) Delete(_ context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Hard delete removes the row regardless of its soft-delete state,
	// like the SQL DELETE does.
	return r.remove(func(e *T) bool {
		return r.ad.ID(e) != id
	}), nil
}

func (r *Repo[T]) DeleteMany(_ context.Context, ids []int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idSet := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}
	return r.remove(func(e *T) bool {
		_, ok := idSet[r.ad.ID(e)]
		return !ok
	}), nil
}

func (r *Repo[T]) DeleteBy(_ context.Context, filter store.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remove(func(e *T) bool {
		return !(r.live(e) && r.matches(e, filter))
	}), nil
}

func (r *Repo[T]) SoftDelete(_ context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.rows {
		if r.live(e) && r.ad.ID(e) == id {
			now := time.Now().UTC()
			r.ad.SetDeleted(e, &now)
			return 1, nil
		}
	}
	return 0, nil
}

func (r *Repo[T]) Restore(_ context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.rows {
		if !r.live(e) && r.ad.ID(e) == id {
			r.ad.SetDeleted(e, nil)
			return 1, nil
		}
	}
	return 0, nil
}

func (r *Repo[T]) WithTx(_ *sql.Tx) store.Repository[T] {
	return r
}

// NewUsers creates an in-memory user repository with the live-row email
// uniqueness constraint attached.
func NewUsers() *Repo[domain.User] {
	return New(Adapter[domain.User]{
		ID:         func(u *domain.User) int64 { return u.ID },
		SetID:      func(u *domain.User, id int64) { u.ID = id },
		DeletedAt:  func(u *domain.User) *time.Time { return u.DeletedAt },
		SetDeleted: func(u *domain.User, t *time.Time) { u.DeletedAt = t },
		Col: func(u *domain.User, col string) any {
			switch col {
			case "id":
				return u.ID
			case "email":
				return u.Email
			case "password":
				return u.Password
			case "first_name":
				return u.FirstName
			case "last_name":
				return u.LastName
			case "is_active":
				return u.IsActive
			case "created_at":
				return u.CreatedAt
			}
			return nil
		},
		Apply: func(u *domain.User, changes store.Changes) {
			for col, v := range changes {
				switch col {
				case "email":
					u.Email = v.(string)
				case "password":
					u.Password = v.(string)
				case "first_name":
					u.FirstName = v.(string)
				case "last_name":
					u.LastName = v.(string)
				case "is_active":
					u.IsActive = v.(bool)
				}
			}
		},
		Clone: func(u *domain.User) *domain.User {
			c := *u
			return &c
		},
	}).WithUnique("email", store.ErrEmailExists)
}

// NewProducts creates an in-memory product repository.
func NewProducts() *Repo[domain.Product] {
	return New(Adapter[domain.Product]{
		ID:         func(p *domain.Product) int64 { return p.ID },
		SetID:      func(p *domain.Product, id int64) { p.ID = id },
		DeletedAt:  func(p *domain.Product) *time.Time { return p.DeletedAt },
		SetDeleted: func(p *domain.Product, t *time.Time) { p.DeletedAt = t },
		Col: func(p *domain.Product, col string) any {
			switch col {
			case "id":
				return p.ID
			case "name":
				return p.Name
			case "description":
				return p.Description
			case "price":
				return p.Price
			case "stock":
				return p.Stock
			case "is_active":
				return p.IsActive
			case "created_at":
				return p.CreatedAt
			case "updated_at":
				return p.UpdatedAt
			}
			return nil
		},
		Apply: func(p *domain.Product, changes store.Changes) {
			for col, v := range changes {
				switch col {
				case "name":
					p.Name = v.(string)
				case "description":
					p.Description = v.(string)
				case "price":
					p.Price = v.(string)
				case "stock":
					p.Stock = v.(int)
				case "is_active":
					p.IsActive = v.(bool)
				}
			}
			p.UpdatedAt = time.Now().UTC()
		},
		Clone: func(p *domain.Product) *domain.Product {
			c := *p
			return &c
		},
	})
}
