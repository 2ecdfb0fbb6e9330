package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnguyen/storefront/internal/domain"
	"github.com/tnguyen/storefront/internal/store"
)

// The SQL generation helpers never touch the db handle, so the test stores
// are built without a connection.
func testProductStore() *Store[domain.Product] {
	return &Store[domain.Product]{
		table: productTable,
		cols:  productTable.columnSet(),
	}
}

func testUserStore() *Store[domain.User] {
	return &Store[domain.User]{
		table: userTable,
		cols:  userTable.columnSet(),
	}
}

func TestWhereClause(t *testing.T) {
	s := testProductStore()

	t.Run("keys are emitted in sorted order", func(t *testing.T) {
		where, args, err := s.whereClause(store.Filter{
			"stock": 3,
			"name":  "Widget",
		}, 1)

		require.NoError(t, err)
		assert.Equal(t, " WHERE name = $1 AND stock = $2 AND deleted_at IS NULL", where)
		assert.Equal(t, []any{"Widget", 3}, args)
	})

	t.Run("nil value becomes IS NULL without a placeholder", func(t *testing.T) {
		where, args, err := s.whereClause(store.Filter{"description": nil}, 1)

		require.NoError(t, err)
		assert.Equal(t, " WHERE description IS NULL AND deleted_at IS NULL", where)
		assert.Empty(t, args)
	})

	t.Run("empty filter still guards soft-deleted rows", func(t *testing.T) {
		where, args, err := s.whereClause(nil, 1)

		require.NoError(t, err)
		assert.Equal(t, " WHERE deleted_at IS NULL", where)
		assert.Empty(t, args)
	})

	t.Run("unknown column is rejected", func(t *testing.T) {
		_, _, err := s.whereClause(store.Filter{"password": "x"}, 1)
		assert.ErrorIs(t, err, store.ErrInvalidField)
	})

	t.Run("placeholder numbering honors the start offset", func(t *testing.T) {
		where, args, err := s.whereClause(store.Filter{"name": "Widget"}, 4)

		require.NoError(t, err)
		assert.Equal(t, " WHERE name = $4 AND deleted_at IS NULL", where)
		assert.Len(t, args, 1)
	})
}

func TestSetClause(t *testing.T) {
	t.Run("appends the touch column", func(t *testing.T) {
		s := testProductStore()

		set, args, err := s.setClause(store.Changes{"price": "5.50", "name": "W"})

		require.NoError(t, err)
		assert.Equal(t, "name = $1, price = $2, updated_at = now()", set)
		assert.Equal(t, []any{"W", "5.50"}, args)
	})

	t.Run("tables without a touch column get none", func(t *testing.T) {
		s := testUserStore()

		set, _, err := s.setClause(store.Changes{"email": "a@x.com"})

		require.NoError(t, err)
		assert.Equal(t, "email = $1", set)
	})

	t.Run("empty changes are rejected", func(t *testing.T) {
		s := testProductStore()
		_, _, err := s.setClause(store.Changes{})
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("unknown column is rejected", func(t *testing.T) {
		s := testProductStore()
		_, _, err := s.setClause(store.Changes{"rating": 5})
		assert.ErrorIs(t, err, store.ErrInvalidField)
	})
}

func TestOrderClause(t *testing.T) {
	s := testProductStore()

	t.Run("defaults to id ascending", func(t *testing.T) {
		order, err := s.orderClause(nil)
		require.NoError(t, err)
		assert.Equal(t, " ORDER BY id ASC", order)
	})

	t.Run("always carries the id tiebreaker", func(t *testing.T) {
		order, err := s.orderClause(store.Sort{"price": store.Descending})
		require.NoError(t, err)
		assert.Equal(t, " ORDER BY price DESC, id ASC", order)
	})

	t.Run("multiple columns sort deterministically", func(t *testing.T) {
		order, err := s.orderClause(store.Sort{
			"stock": store.Ascending,
			"name":  store.Descending,
		})
		require.NoError(t, err)
		assert.Equal(t, " ORDER BY name DESC, stock ASC, id ASC", order)
	})

	t.Run("unknown column is rejected", func(t *testing.T) {
		_, err := s.orderClause(store.Sort{"rating": store.Ascending})
		assert.ErrorIs(t, err, store.ErrInvalidField)
	})

	t.Run("invalid direction is rejected", func(t *testing.T) {
		_, err := s.orderClause(store.Sort{"name": "SIDEWAYS"})
		assert.ErrorIs(t, err, store.ErrInvalidField)
	})
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "$1", placeholders(1, 1))
	assert.Equal(t, "$1, $2, $3", placeholders(1, 3))
	assert.Equal(t, "$4, $5", placeholders(4, 2))
	assert.Empty(t, placeholders(1, 0))
}

func TestTableDescriptors(t *testing.T) {
	t.Run("user columns line up with field scans", func(t *testing.T) {
		var u domain.User
		assert.Len(t, userTable.Fields(&u), len(userTable.Columns))
		assert.Len(t, userTable.Values(&u), len(userTable.Columns)-1)
		assert.Equal(t, "id", userTable.Columns[0])
	})

	t.Run("product columns line up with field scans", func(t *testing.T) {
		var p domain.Product
		assert.Len(t, productTable.Fields(&p), len(productTable.Columns))
		assert.Len(t, productTable.Values(&p), len(productTable.Columns)-1)
		assert.Equal(t, "id", productTable.Columns[0])
	})

	t.Run("user duplicates map to the email sentinel", func(t *testing.T) {
		assert.ErrorIs(t, userTable.Duplicate, store.ErrEmailExists)
	})
}

func TestTranslate(t *testing.T) {
	s := testUserStore()
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("unique violation maps to the table's duplicate sentinel", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_active_uniq"}

		err := s.translate(ctx, "insert", pgErr)

		assert.ErrorIs(t, err, store.ErrEmailExists)
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})

	t.Run("other driver errors are wrapped with table and operation", func(t *testing.T) {
		cause := errors.New("connection reset")

		err := s.translate(ctx, "find by id", cause)

		var serr *store.StoreError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "users", serr.Entity)
		assert.Equal(t, "find by id", serr.Operation)
		assert.ErrorIs(t, err, cause)
	})
}
