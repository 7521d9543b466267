package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/buran83/makechat/internal/http/response"
)

const payloadContextKey contextKey = "payload"

// Payload is the decoded JSON request body, exposed to handlers as a
// generic key-value document.
type Payload map[string]any

// String returns the value under key if it is a JSON string.
func (p Payload) String(key string) (string, bool) {
	v, ok := p[key].(string)
	return v, ok
}

// Bool returns the value under key if it is a JSON boolean, otherwise def.
func (p Payload) Bool(key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}

// DecodeJSON parses a declared request body into a Payload and attaches it
// to the request context. Requests without a body pass through untouched.
// The parser's own diagnostic is relayed verbatim for malformed documents.
func DecodeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Bad request",
				"Could not read the request body.")
			return
		}
		if len(raw) == 0 {
			response.Error(w, http.StatusBadRequest, "Empty request body",
				"A valid JSON document is required.")
			return
		}
		var payload Payload
		if err := json.Unmarshal(raw, &payload); err != nil {
			response.Error(w, http.StatusBadRequest, "Malformed JSON", err.Error())
			return
		}
		ctx := context.WithValue(r.Context(), payloadContextKey, payload)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PayloadFromContext returns the decoded request body, if any.
func PayloadFromContext(ctx context.Context) (Payload, bool) {
	p, ok := ctx.Value(payloadContextKey).(Payload)
	return p, ok
}
