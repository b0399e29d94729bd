package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eldview/eldview/internal/api/models"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// Pagination bounds for list endpoints.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// decodeJSON decodes the request body into v and rejects trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON body: unexpected data after the object")
	}
	return nil
}

// pathID parses a positive int64 URL parameter.
func pathID(r *http.Request, name string) (int64, *models.FieldError) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &models.FieldError{Field: name, Message: "must be a positive integer", Code: "INVALID_ID"}
	}
	return id, nil
}

// queryInt64 parses an optional non-negative integer query parameter.
func queryInt64(r *http.Request, name string) (int64, *models.FieldError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, &models.FieldError{Field: name, Message: "must be a non-negative integer", Code: "INVALID_NUMBER"}
	}
	return v, nil
}

// pageSize parses ?limit=, defaulting to DefaultPageSize.
func pageSize(r *http.Request) (int, *models.FieldError) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return DefaultPageSize, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > MaxPageSize {
		return 0, &models.FieldError{
			Field:   "limit",
			Message: fmt.Sprintf("must be between 1 and %d", MaxPageSize),
			Code:    "OUT_OF_RANGE",
		}
	}
	return n, nil
}

// location resolves the IANA zone name given in field, returning fallback
// for "".
func location(field, name string, fallback *time.Location) (*time.Location, *models.FieldError) {
	if name == "" {
		return fallback, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, &models.FieldError{Field: field, Message: "unknown time zone " + strconv.Quote(name), Code: "INVALID_TIMEZONE"}
	}
	return loc, nil
}

// collect gathers the non-nil field errors.
func collect(errs ...*models.FieldError) []models.FieldError {
	var out []models.FieldError
	for _, e := range errs {
		if e != nil {
			out = append(out, *e)
		}
	}
	return out
}
