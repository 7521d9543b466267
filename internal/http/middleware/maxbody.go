package middleware

import (
	"fmt"
	"net/http"

	"github.com/buran83/makechat/internal/http/response"
)

// MaxBody rejects requests whose declared content length exceeds limit
// bytes. It runs before body decode so oversized payloads are never
// buffered. The read path is capped as well for clients that lie about
// their length.
func MaxBody(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				response.Error(w, http.StatusRequestEntityTooLarge,
					"Request body is too large",
					fmt.Sprintf("The size of the request is too large. The body must not exceed %d bytes in length.", limit))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
