package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/technopolitica/loadouts/internal/domain"
)

type followResponse struct {
	Following    bool   `json:"following"`
	TargetHandle string `json:"targetHandle"`
}

func NewFollowsRouter() *chi.Mux {
	followsRouter := chi.NewRouter()
	followsRouter.Use(requireCompleteUser)
	followsRouter.Post("/", func(w http.ResponseWriter, r *http.Request) {
		var payload followPayload
		if message, ok := decodePayload(r, &payload); !ok {
			badRequest(w, r, message)
			return
		}
		if strings.TrimSpace(payload.TargetHandle) == "" {
			respondError(w, r, http.StatusBadRequest, domain.ApiErrorTargetRequired, "Target handle is required.")
			return
		}
		target, _, err := GetRepository(r).Follow(r.Context(), GetAuthInfo(r).UserID, payload.TargetHandle)
		if err != nil {
			failure(w, r, err, domain.ApiErrorFollowFailed, "Failed to follow.")
			return
		}
		respond(w, r, http.StatusOK, followResponse{Following: true, TargetHandle: *target.Handle})
	})
	followsRouter.Delete("/{targetHandle}", func(w http.ResponseWriter, r *http.Request) {
		target, err := GetRepository(r).Unfollow(r.Context(), GetAuthInfo(r).UserID, chi.URLParam(r, "targetHandle"))
		if err != nil {
			failure(w, r, err, domain.ApiErrorUnfollowFailed, "Failed to unfollow.")
			return
		}
		respond(w, r, http.StatusOK, followResponse{Following: false, TargetHandle: *target.Handle})
	})
	return followsRouter
}
