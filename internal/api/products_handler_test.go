package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnguyen/storefront/internal/api/shared"
	"github.com/tnguyen/storefront/internal/service"
)

const validProductBody = `{
	"name": "Widget",
	"description": "A fine widget",
	"price": 9.99
}`

func createTestProduct(t *testing.T, router http.Handler) service.ProductDTO {
	t.Helper()
	rec := doRequest(t, router, http.MethodPost, "/products", validProductBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	return decodeBody[service.ProductDTO](t, rec)
}

func TestProductsCreate(t *testing.T) {
	t.Run("price is a JSON number", func(t *testing.T) {
		router := newTestRouter()

		rec := doRequest(t, router, http.MethodPost, "/products", validProductBody)

		require.Equal(t, http.StatusCreated, rec.Code)
		dto := decodeBody[service.ProductDTO](t, rec)
		assert.Equal(t, 9.99, dto.Price)
		assert.Equal(t, "Widget", dto.Name)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
		assert.IsType(t, float64(0), raw["price"])
	})

	t.Run("negative price is rejected", func(t *testing.T) {
		router := newTestRouter()

		rec := doRequest(t, router, http.MethodPost, "/products",
			`{"name": "W", "description": "d", "price": -1}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing name is rejected", func(t *testing.T) {
		router := newTestRouter()

		rec := doRequest(t, router, http.MethodPost, "/products",
			`{"description": "d", "price": 1}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestProductsCreateBulk(t *testing.T) {
	t.Run("creates all items in order", func(t *testing.T) {
		router := newTestRouter()

		rec := doRequest(t, router, http.MethodPost, "/products/bulk",
			`[{"name": "A", "description": "d", "price": 1},
			  {"name": "B", "description": "d", "price": 2}]`)

		require.Equal(t, http.StatusCreated, rec.Code)
		dtos := decodeBody[[]service.ProductDTO](t, rec)
		require.Len(t, dtos, 2)
		assert.Equal(t, "A", dtos[0].Name)
		assert.Equal(t, "B", dtos[1].Name)
	})

	t.Run("empty array is rejected", func(t *testing.T) {
		router := newTestRouter()

		rec := doRequest(t, router, http.MethodPost, "/products/bulk", `[]`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unrecognized property on any item rejects the batch", func(t *testing.T) {
		router := newTestRouter()

		rec := doRequest(t, router, http.MethodPost, "/products/bulk",
			`[{"name": "A", "description": "d", "price": 1},
			  {"name": "B", "description": "d", "price": 2, "sku": "X-1"}]`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		env := decodeBody[shared.ErrorEnvelope](t, rec)
		assert.Equal(t, "Validation failed", env.Error.Message)
		raw, err := json.Marshal(env.Error.Details)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"field": "sku", "errors": ["should not exist"]}]`, string(raw))

		list := doRequest(t, router, http.MethodGet, "/products", "")
		assert.JSONEq(t, "[]", list.Body.String())
	})

	t.Run("one invalid item rejects the batch", func(t *testing.T) {
		router := newTestRouter()

		rec := doRequest(t, router, http.MethodPost, "/products/bulk",
			`[{"name": "A", "description": "d", "price": 1},
			  {"name": "", "description": "d", "price": 2}]`)

		require.Equal(t, http.StatusBadRequest, rec.Code)

		// Nothing was created.
		list := doRequest(t, router, http.MethodGet, "/products", "")
		assert.JSONEq(t, "[]", list.Body.String())
	})
}

func TestProductsList(t *testing.T) {
	router := newTestRouter()
	for i := 1; i <= 15; i++ {
		body := fmt.Sprintf(`{"name": "P%02d", "description": "d", "price": %d}`, i, i)
		rec := doRequest(t, router, http.MethodPost, "/products", body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	t.Run("plain list without paging parameters", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/products", "")
		require.Equal(t, http.StatusOK, rec.Code)
		dtos := decodeBody[[]service.ProductDTO](t, rec)
		assert.Len(t, dtos, 15)
	})

	t.Run("page parameter switches to the paginated envelope", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/products?page=2&limit=10", "")
		require.Equal(t, http.StatusOK, rec.Code)

		page := decodeBody[service.Paginated[service.ProductDTO]](t, rec)
		assert.Len(t, page.Items, 5)
		assert.Equal(t, int64(15), page.Meta.Total)
		assert.Equal(t, 2, page.Meta.Page)
		assert.False(t, page.Meta.HasNextPage)
	})

	t.Run("limit alone also paginates", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/products?limit=4", "")
		require.Equal(t, http.StatusOK, rec.Code)

		page := decodeBody[service.Paginated[service.ProductDTO]](t, rec)
		assert.Len(t, page.Items, 4)
		assert.Equal(t, 1, page.Meta.Page)
	})
}

func TestProductsUpdateBulk(t *testing.T) {
	t.Run("applies one patch to every id", func(t *testing.T) {
		router := newTestRouter()
		a := createTestProduct(t, router)
		b := createTestProduct(t, router)

		body := fmt.Sprintf(`{"ids": [%d, %d], "data": {"price": 5.5}}`, a.ID, b.ID)
		rec := doRequest(t, router, http.MethodPut, "/products/bulk", body)

		require.Equal(t, http.StatusOK, rec.Code)
		dtos := decodeBody[[]service.ProductDTO](t, rec)
		require.Len(t, dtos, 2)
		for _, dto := range dtos {
			assert.Equal(t, 5.5, dto.Price)
		}
	})

	t.Run("missing ids fail the batch and are named", func(t *testing.T) {
		router := newTestRouter()
		a := createTestProduct(t, router)

		body := fmt.Sprintf(`{"ids": [%d, 999], "data": {"price": 5.5}}`, a.ID)
		rec := doRequest(t, router, http.MethodPut, "/products/bulk", body)

		require.Equal(t, http.StatusNotFound, rec.Code)
		env := decodeBody[shared.ErrorEnvelope](t, rec)
		assert.False(t, env.Success)
		assert.Contains(t, env.Error.Message, "999")

		raw, err := json.Marshal(env.Error.Details)
		require.NoError(t, err)
		assert.JSONEq(t, `{"missingIds": [999]}`, string(raw))

		// The existing product is untouched.
		got := doRequest(t, router, http.MethodGet, fmt.Sprintf("/products/%d", a.ID), "")
		dto := decodeBody[service.ProductDTO](t, got)
		assert.Equal(t, 9.99, dto.Price)
	})

	t.Run("empty id list is rejected", func(t *testing.T) {
		router := newTestRouter()

		rec := doRequest(t, router, http.MethodPut, "/products/bulk",
			`{"ids": [], "data": {"price": 5.5}}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestProductsDelete(t *testing.T) {
	t.Run("returns a bare boolean", func(t *testing.T) {
		router := newTestRouter()
		dto := createTestProduct(t, router)

		rec := doRequest(t, router, http.MethodDelete, fmt.Sprintf("/products/%d", dto.ID), "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "true", rec.Body.String())

		got := doRequest(t, router, http.MethodGet, fmt.Sprintf("/products/%d", dto.ID), "")
		assert.Equal(t, http.StatusNotFound, got.Code)
	})

	t.Run("missing product", func(t *testing.T) {
		router := newTestRouter()

		rec := doRequest(t, router, http.MethodDelete, "/products/42", "")

		require.Equal(t, http.StatusNotFound, rec.Code)
		env := decodeBody[shared.ErrorEnvelope](t, rec)
		assert.Equal(t, "Product not found", env.Error.Message)
	})
}

func TestProductsDeleteBulk(t *testing.T) {
	t.Run("removes every id", func(t *testing.T) {
		router := newTestRouter()
		a := createTestProduct(t, router)
		b := createTestProduct(t, router)

		body := fmt.Sprintf(`[%d, %d]`, a.ID, b.ID)
		rec := doRequest(t, router, http.MethodDelete, "/products/bulk", body)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "true", rec.Body.String())
	})

	t.Run("missing id fails and removes nothing", func(t *testing.T) {
		router := newTestRouter()
		a := createTestProduct(t, router)

		rec := doRequest(t, router, http.MethodDelete, "/products/bulk",
			fmt.Sprintf(`[%d, 999]`, a.ID))

		require.Equal(t, http.StatusNotFound, rec.Code)

		got := doRequest(t, router, http.MethodGet, fmt.Sprintf("/products/%d", a.ID), "")
		assert.Equal(t, http.StatusOK, got.Code)
	})
}

func TestProductsSoftDeleteAndRestore(t *testing.T) {
	router := newTestRouter()
	dto := createTestProduct(t, router)
	path := fmt.Sprintf("/products/%d", dto.ID)

	rec := doRequest(t, router, http.MethodDelete, path+"/soft", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"affected": true}`, rec.Body.String())

	// Soft-deleted products are invisible to reads.
	got := doRequest(t, router, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, got.Code)

	rec = doRequest(t, router, http.MethodPost, path+"/restore", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"affected": true}`, rec.Body.String())

	got = doRequest(t, router, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, got.Code)
	restored := decodeBody[service.ProductDTO](t, got)
	assert.Equal(t, 9.99, restored.Price)

	// Restoring a live product affects nothing.
	rec = doRequest(t, router, http.MethodPost, path+"/restore", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductsUpdate(t *testing.T) {
	router := newTestRouter()
	dto := createTestProduct(t, router)
	path := fmt.Sprintf("/products/%d", dto.ID)

	rec := doRequest(t, router, http.MethodPut, path, `{"stock": 7}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeBody[service.ProductDTO](t, rec)
	assert.Equal(t, 7, updated.Stock)
	assert.Equal(t, 9.99, updated.Price)
}
