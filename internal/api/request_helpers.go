package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tnguyen/storefront/internal/api/shared"
	"github.com/tnguyen/storefront/internal/service"
)

// getPathID extracts the numeric id path parameter. It writes a 400
// response and returns false when the parameter is not a valid integer.
func getPathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid id", nil)
		return 0, false
	}
	return id, true
}

// respondDecodeError writes the enveloped response for a body that could
// not be decoded. Properties outside the input shape surface as a
// per-field validation failure; anything else is a malformed payload.
func respondDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var unknown *shared.UnknownFieldError
	if errors.As(err, &unknown) {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation failed",
			[]shared.FieldError{{Field: unknown.Field, Errors: []string{"should not exist"}}})
		return
	}
	shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format", nil)
}

// decodeAndValidate decodes the request body into v and runs the declared
// validation rules. On failure it writes the enveloped error response and
// returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		respondDecodeError(w, r, err)
		return false
	}
	if fieldErrs := shared.ValidateRequest(v); fieldErrs != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation failed", fieldErrs)
		return false
	}
	return true
}

// decodeAndValidateSlice decodes a JSON array body into items and
// validates every element. The first element with violations fails the
// whole request, matching the all-or-nothing bulk semantics downstream.
func decodeAndValidateSlice[T any](w http.ResponseWriter, r *http.Request, items *[]T) bool {
	if err := shared.DecodeJSON(r, items); err != nil {
		respondDecodeError(w, r, err)
		return false
	}
	if len(*items) == 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Request body must be a non-empty array", nil)
		return false
	}
	for i := range *items {
		if fieldErrs := shared.ValidateRequest(&(*items)[i]); fieldErrs != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Validation failed", fieldErrs)
			return false
		}
	}
	return true
}

// decodeIDList decodes a JSON array of numeric ids.
func decodeIDList(w http.ResponseWriter, r *http.Request, ids *[]int64) bool {
	if err := shared.DecodeJSON(r, ids); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format", nil)
		return false
	}
	if len(*ids) == 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Request body must be a non-empty array of ids", nil)
		return false
	}
	return true
}

// parsePageOptions reads page, limit, and sort from the query string.
// sort has the form "field:asc,other:desc"; a bare "field" sorts ascending.
// Returns false after writing a 400 response when a value is malformed.
func parsePageOptions(w http.ResponseWriter, r *http.Request) (service.PageOptions, bool) {
	var opts service.PageOptions

	q := r.URL.Query()
	for name, dst := range map[string]*int{"page": &opts.Page, "limit": &opts.Limit} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			shared.RespondWithError(w, r, http.StatusBadRequest,
				"Invalid "+name+" parameter", nil)
			return service.PageOptions{}, false
		}
		*dst = v
	}

	if raw := q.Get("sort"); raw != "" {
		opts.Sort = make(map[string]string)
		for _, part := range strings.Split(raw, ",") {
			field, dir, found := strings.Cut(strings.TrimSpace(part), ":")
			if !found {
				dir = "asc"
			}
			if field == "" {
				shared.RespondWithError(w, r, http.StatusBadRequest,
					"Invalid sort parameter", nil)
				return service.PageOptions{}, false
			}
			opts.Sort[field] = dir
		}
	}

	return opts, true
}
