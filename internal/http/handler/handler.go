// Package handler holds the HTTP endpoint implementations. Handlers read
// the decoded payload and resolved user from the request context; guards
// and body decoding run in the middleware chain before them.
package handler

import (
	"fmt"
	"net/http"

	"github.com/buran83/makechat/internal/http/middleware"
	"github.com/buran83/makechat/internal/http/response"
)

// requireParam reads a required string field from the request payload. A
// missing or non-string field answers the request with the missing
// parameter error and reports false.
func requireParam(w http.ResponseWriter, payload middleware.Payload, name string) (string, bool) {
	value, ok := payload.String(name)
	if !ok || value == "" {
		response.Error(w, http.StatusBadRequest, "Missing parameter",
			fmt.Sprintf("The %s parameter is required.", name))
		return "", false
	}
	return value, true
}

// payloadOrError fetches the decoded body, answering with the empty body
// error when the middleware attached none.
func payloadOrError(w http.ResponseWriter, r *http.Request) (middleware.Payload, bool) {
	payload, ok := middleware.PayloadFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusBadRequest, "Empty request body",
			"A valid JSON document is required.")
		return nil, false
	}
	return payload, true
}
