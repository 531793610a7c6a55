package server

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/technopolitica/loadouts/internal/domain"
)

const maxCommentLength = 2000

func NewLikesRouter() *chi.Mux {
	likesRouter := chi.NewRouter()
	likesRouter.Use(requireCompleteUser)
	likesRouter.Post("/", func(w http.ResponseWriter, r *http.Request) {
		var payload likePayload
		if message, ok := decodePayload(r, &payload); !ok {
			badRequest(w, r, message)
			return
		}
		if strings.TrimSpace(payload.CollectionID) == "" {
			badRequest(w, r, "collectionId: missing required field")
			return
		}
		state, err := GetRepository(r).ToggleLike(r.Context(), payload.CollectionID, GetAuthInfo(r).UserID)
		if err != nil {
			failure(w, r, err, domain.ApiErrorLikeFailed, "Failed to update like.")
			return
		}
		respond(w, r, http.StatusOK, state)
	})
	return likesRouter
}

// commentBody trims body and reports whether it is a postable comment.
func commentBody(body string) (string, bool) {
	body = strings.TrimSpace(body)
	return body, body != "" && utf8.RuneCountInString(body) <= maxCommentLength
}

func invalidComment(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusBadRequest, domain.ApiErrorInvalidComment, "Comments must be between 1 and 2000 characters.")
}

func NewCommentsRouter() *chi.Mux {
	commentsRouter := chi.NewRouter()
	commentsRouter.Use(requireCompleteUser)
	commentsRouter.Post("/", func(w http.ResponseWriter, r *http.Request) {
		var payload commentPayload
		if message, ok := decodePayload(r, &payload); !ok {
			badRequest(w, r, message)
			return
		}
		body, ok := commentBody(payload.Body)
		if !ok {
			invalidComment(w, r)
			return
		}
		comment, err := GetRepository(r).CreateComment(r.Context(), payload.CollectionID, GetAuthInfo(r).UserID, body)
		if err != nil {
			failure(w, r, err, domain.ApiErrorSaveFailed, "Failed to post comment.")
			return
		}
		respond(w, r, http.StatusCreated, comment)
	})
	commentsRouter.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
		var payload commentUpdatePayload
		if message, ok := decodePayload(r, &payload); !ok {
			badRequest(w, r, message)
			return
		}
		body, ok := commentBody(payload.Body)
		if !ok {
			invalidComment(w, r)
			return
		}
		comment, err := GetRepository(r).UpdateComment(r.Context(), chi.URLParam(r, "id"), GetAuthInfo(r).UserID, body)
		if err != nil {
			failure(w, r, err, domain.ApiErrorUpdateFailed, "Failed to update comment.")
			return
		}
		respond(w, r, http.StatusOK, comment)
	})
	commentsRouter.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
		err := GetRepository(r).DeleteComment(r.Context(), chi.URLParam(r, "id"), GetAuthInfo(r).UserID)
		if err != nil {
			failure(w, r, err, domain.ApiErrorDeleteFailed, "Failed to delete comment.")
			return
		}
		respondOK(w, r)
	})
	return commentsRouter
}
