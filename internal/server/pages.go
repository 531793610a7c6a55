package server

import (
	"net/http"

	"github.com/technopolitica/loadouts/internal/metrics"
	"github.com/technopolitica/loadouts/internal/paging"
)

// pageRequest reads the cursor and limit query parameters. Malformed values
// never fail the request: a bad cursor restarts from the top and a bad limit
// falls back to the default.
func pageRequest(r *http.Request, maxLimit int) (cursor *paging.Cursor, limit int) {
	query := r.URL.Query()
	return paging.Decode(query.Get("cursor")), paging.ParseLimit(query.Get("limit"), maxLimit)
}

func respondPage[T any](w http.ResponseWriter, r *http.Request, list string, page paging.Page[T]) {
	respondPageAs(w, r, list, page, page)
}

// respondPageAs responds with body, a wrapper around page carrying extra
// fields.
func respondPageAs[T any](w http.ResponseWriter, r *http.Request, list string, page paging.Page[T], body any) {
	metrics.RecordPage(list, len(page.Items), page.HasMore)
	respond(w, r, http.StatusOK, body)
}
