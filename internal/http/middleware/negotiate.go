package middleware

import (
	"net/http"
	"strings"

	"github.com/buran83/makechat/internal/http/response"
)

// Negotiate enforces the JSON-only contract before any body handling. The
// Accept header must allow a JSON response, and mutating methods must
// declare a JSON request body. Both violations answer 406 so clients see a
// single failure mode for media type mismatches.
func Negotiate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(r.Header.Get("Accept")) {
			response.Error(w, http.StatusNotAcceptable, "Not acceptable",
				"This API only supports responses encoded as JSON.")
			return
		}
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			ct := r.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "application/json") {
				response.Error(w, http.StatusNotAcceptable, "Not acceptable",
					"This API only supports requests encoded as JSON.")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func acceptsJSON(accept string) bool {
	if accept == "" {
		return true
	}
	for _, part := range strings.Split(accept, ",") {
		media := strings.TrimSpace(part)
		if i := strings.IndexByte(media, ';'); i >= 0 {
			media = strings.TrimSpace(media[:i])
		}
		switch media {
		case "*/*", "application/*", "application/json":
			return true
		}
	}
	return false
}
