package hyzhttp

import (
	"net/url"
	"sort"
	"strings"
)

// Request describes an outbound call independently of the wire transport.
// It is a plain data holder: execution reads it and only writes the Method
// field when a per-verb helper is used.
type Request struct {
	// Method is the HTTP verb; the per-verb helpers set it.
	Method string
	// Path is the target URL and may already contain a query string.
	Path string
	// Headers are copied verbatim onto the wire request; duplicate keys
	// overwrite, insertion order is irrelevant.
	Headers map[string]string
	// Query parameters are percent-encoded and appended to Path.
	Query map[string]string
	// Body is serialized as JSON for POST/PUT/PATCH. GET and DELETE never
	// carry a body regardless of this field.
	Body any
}

// SetHeader sets a request header, initializing the map on first use.
func (r *Request) SetHeader(key, value string) *Request {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
	return r
}

// SetQuery sets a query parameter, initializing the map on first use.
func (r *Request) SetQuery(key, value string) *Request {
	if r.Query == nil {
		r.Query = make(map[string]string)
	}
	r.Query[key] = value
	return r
}

// RequestAPI returns the target URL with query parameters appended. Each key
// and value is percent-encoded (spaces as %20, not '+'); parameters join with
// '&' when Path already contains a '?', otherwise the first one is introduced
// with '?'. Keys are emitted in sorted order so the result is deterministic.
// The method is pure: it never mutates the request.
func (r *Request) RequestAPI() string {
	if len(r.Query) == 0 {
		return r.Path
	}

	keys := make([]string, 0, len(r.Query))
	for k := range r.Query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(r.Path)
	sep := "?"
	if strings.Contains(r.Path, "?") {
		sep = "&"
	}
	for _, k := range keys {
		b.WriteString(sep)
		b.WriteString(escapeQuery(k))
		b.WriteByte('=')
		b.WriteString(escapeQuery(r.Query[k]))
		sep = "&"
	}
	return b.String()
}

// escapeQuery percent-encodes a query component. QueryEscape emits form
// encoding ('+' for space), which some servers reject outside form bodies.
func escapeQuery(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
