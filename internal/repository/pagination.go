package repository

// MaxLimit is the hard ceiling on requested page sizes; it bounds query cost
// regardless of what the client asks for.
const MaxLimit = 100

// PageRequest is an offset/limit window into a collection. A zero Limit means
// "use the resource default".
type PageRequest struct {
	Offset int
	Limit  int
}

// PageResult is one window of a collection plus the total count needed to
// build navigation links.
type PageResult[T any] struct {
	Items  []T
	Total  int64
	Offset int
	Limit  int
}

func normalizePageRequest(req PageRequest, defaultLimit int) PageRequest {
	if req.Offset < 0 {
		req.Offset = 0
	}
	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}
	if req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}
	return req
}

// calcTotalPages is ceil(total/limit); an empty collection has zero pages.
func calcTotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return int(pages)
}
