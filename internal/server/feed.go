package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/technopolitica/loadouts/internal/db"
	"github.com/technopolitica/loadouts/internal/domain"
	"github.com/technopolitica/loadouts/internal/paging"
)

func NewFeedRouter() *chi.Mux {
	feedRouter := chi.NewRouter()
	feedRouter.Use(requireCompleteUser)
	feedRouter.Get("/", func(w http.ResponseWriter, r *http.Request) {
		cursor, limit := pageRequest(r, paging.MaxFeedLimit)
		page, err := GetRepository(r).FollowingFeed(r.Context(), db.FeedParams{
			UserID: GetAuthInfo(r).UserID,
			Limit:  limit,
			Cursor: cursor,
		})
		if err != nil {
			failure(w, r, err, domain.ApiErrorFetchFailed, "Unable to load feed.")
			return
		}
		respondPage(w, r, "feed", page)
	})
	return feedRouter
}
