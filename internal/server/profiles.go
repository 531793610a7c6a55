package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/technopolitica/loadouts/internal/db"
	"github.com/technopolitica/loadouts/internal/domain"
	"github.com/technopolitica/loadouts/internal/paging"
)

type followListResponse struct {
	Profile domain.FollowListOwner `json:"profile"`
	paging.Page[domain.FollowListItem]
}

func followList(direction domain.FollowDirection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo := GetRepository(r)
		owner, err := repo.PublicProfileByHandle(r.Context(), chi.URLParam(r, "handle"))
		if err != nil {
			failure(w, r, err, domain.ApiErrorFetchFailed, "Unable to load profile.")
			return
		}
		cursor, limit := pageRequest(r, paging.MaxFollowListLimit)
		page, err := repo.ListFollows(r.Context(), db.FollowListParams{
			TargetUserID: owner.ID,
			Direction:    direction,
			ViewerUserID: viewerID(r),
			Limit:        limit,
			Cursor:       cursor,
		})
		if err != nil {
			failure(w, r, err, domain.ApiErrorFetchFailed, "Unable to load "+string(direction)+".")
			return
		}
		respondPageAs(w, r, string(direction), page, followListResponse{
			Profile: domain.FollowListOwner{Handle: owner.Handle, DisplayName: owner.DisplayName},
			Page:    page,
		})
	}
}

func NewProfilesRouter() *chi.Mux {
	profilesRouter := chi.NewRouter()
	profilesRouter.Get("/{handle}", func(w http.ResponseWriter, r *http.Request) {
		page, err := GetRepository(r).ProfilePage(r.Context(), chi.URLParam(r, "handle"), viewerID(r))
		if err != nil {
			failure(w, r, err, domain.ApiErrorFetchFailed, "Unable to load profile.")
			return
		}
		respond(w, r, http.StatusOK, page)
	})
	profilesRouter.Get("/{handle}/followers", followList(domain.FollowersDirection))
	profilesRouter.Get("/{handle}/following", followList(domain.FollowingDirection))
	return profilesRouter
}
