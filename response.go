package hyzhttp

import (
	"encoding/json"
	"net/http"
	"time"
)

// Response is the outcome of a successful (2xx) call: the body is fully read
// so the transport connection is back in the pool by the time callers see it.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// DecodeJSON unmarshals the response body into v. Field matching is
// case-insensitive, so camelCase payloads bind to exported Go fields without
// tags. Failures are reported as DeserializationFailure errors.
func (r *Response) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &ClientError{
			Type:       ErrorTypeDeserialization,
			Message:    "failed to decode response body",
			Cause:      err,
			StatusCode: r.StatusCode,
			Timestamp:  time.Now(),
		}
	}
	return nil
}
