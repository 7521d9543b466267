// Package response owns the wire formats shared by every handler: JSON
// results, {title, description} error bodies and the paginated envelope.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// Error writes the error contract shared by all failure responses. Title is
// a short category; description carries the human-readable detail. Store
// validation errors are relayed into description byte-for-byte, so existing
// clients keep seeing the exact text they match on.
func Error(w http.ResponseWriter, status int, title, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"title":       title,
		"description": description,
	})
}

// JSON serializes v as the response body.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes the plain success marker used by endpoints with no document to
// return.
func OK(w http.ResponseWriter) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Page is the paginated envelope. NextPage and PrevPage serialize as JSON
// null at the collection boundaries; clients rely on null rather than
// absent keys.
type Page struct {
	Status     string  `json:"status"`
	Items      any     `json:"items"`
	NextPage   *string `json:"next_page"`
	PrevPage   *string `json:"prev_page"`
	TotalPages string  `json:"total_pages"`
}

// NewPage builds the envelope for the [offset, offset+limit) window of a
// collection with total elements. An empty collection has "0" total pages.
func NewPage(path string, items any, total int64, offset, limit int) Page {
	page := Page{
		Status:     "ok",
		Items:      items,
		TotalPages: strconv.Itoa(totalPages(total, limit)),
	}
	if int64(offset+limit) < total {
		next := fmt.Sprintf("%s?offset=%d&limit=%d", path, offset+limit, limit)
		page.NextPage = &next
	}
	if offset > 0 {
		prev := fmt.Sprintf("%s?offset=%d&limit=%d", path, offset-limit, limit)
		page.PrevPage = &prev
	}
	return page
}

func totalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return int(pages)
}

// PageParams reads offset/limit query parameters, falling back to 0 and the
// per-resource default. The limit ceiling is enforced by the repository
// layer as well; clamping here keeps the navigation links honest.
func PageParams(r *http.Request, defaultLimit, maxLimit int) (offset, limit int) {
	query := r.URL.Query()
	offset, _ = strconv.Atoi(query.Get("offset"))
	if offset < 0 {
		offset = 0
	}
	limit, _ = strconv.Atoi(query.Get("limit"))
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return offset, limit
}
