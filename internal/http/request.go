package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"moneywise/internal/core"
)

// maxBodySize bounds request bodies; transaction payloads are tiny.
const maxBodySize = 64 * 1024

// parseListQuery builds a query pipeline from URL parameters. Unknown period,
// type, or direction values are rejected rather than silently ignored.
func parseListQuery(r *http.Request) (core.Query, error) {
	params := r.URL.Query()

	q := core.Query{
		Search:   sanitizeInput(params.Get("search")),
		Category: sanitizeInput(params.Get("category")),
	}

	if v := strings.TrimSpace(params.Get("type")); v != "" {
		t := core.Type(v)
		if !t.Valid() {
			return core.Query{}, fmt.Errorf("unknown type %q", v)
		}
		q.Type = t
	}

	if v := strings.TrimSpace(params.Get("period")); v != "" {
		p := core.Period(v)
		if !p.Valid() {
			return core.Query{}, fmt.Errorf("unknown period %q", v)
		}
		q.Period = p
	}

	if v := strings.TrimSpace(params.Get("date")); v != "" {
		ref, err := core.ParseDate(v)
		if err != nil {
			return core.Query{}, fmt.Errorf("invalid reference date %q", v)
		}
		q.Reference = ref
	}

	switch v := strings.TrimSpace(params.Get("sort")); v {
	case "", "date", "amount", "title", "category", "createdAt":
		q.SortField = core.SortField(v)
	default:
		return core.Query{}, fmt.Errorf("unknown sort field %q", v)
	}

	switch v := strings.TrimSpace(params.Get("dir")); v {
	case "", "asc", "desc":
		q.Direction = core.SortDirection(v)
	default:
		return core.Query{}, fmt.Errorf("unknown sort direction %q", v)
	}

	q.Page = parseIntParam(params.Get("page"), 1)
	q.PageSize = parseIntParam(params.Get("size"), core.DefaultPageSize)

	return q, nil
}

func parseIntParam(v string, fallback int) int {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return fallback
}

// decodeDraft reads a transaction draft from the request body.
func decodeDraft(r *http.Request) (core.Draft, error) {
	var d core.Draft
	if err := decodeJSON(r, &d); err != nil {
		return core.Draft{}, err
	}
	d.Title = sanitizeInput(d.Title)
	d.Description = sanitizeInput(d.Description)
	d.Category = sanitizeInput(d.Category)
	return d, nil
}

// decodePatch reads a partial update from the request body.
func decodePatch(r *http.Request) (core.Patch, error) {
	var p core.Patch
	if err := decodeJSON(r, &p); err != nil {
		return core.Patch{}, err
	}
	if p.Title != nil {
		*p.Title = sanitizeInput(*p.Title)
	}
	if p.Description != nil {
		*p.Description = sanitizeInput(*p.Description)
	}
	if p.Category != nil {
		*p.Category = sanitizeInput(*p.Category)
	}
	return p, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func decodeLogin(r *http.Request) (loginRequest, error) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		return loginRequest{}, err
	}
	return req, nil
}

func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodySize)
	defer io.Copy(io.Discard, body)

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}
