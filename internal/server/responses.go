package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/technopolitica/loadouts/internal/db"
	"github.com/technopolitica/loadouts/internal/domain"
)

type dataEnvelope struct {
	Data any `json:"data"`
}

func respond(w http.ResponseWriter, r *http.Request, status int, data any) {
	render.Status(r, status)
	render.JSON(w, r, dataEnvelope{Data: data})
}

type okResponse struct {
	OK bool `json:"ok"`
}

func respondOK(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, okResponse{OK: true})
}

func respondAPIError(w http.ResponseWriter, r *http.Request, status int, apiErr domain.ApiError) {
	render.Status(r, status)
	render.JSON(w, r, apiErr)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code domain.ApiErrorCode, message string) {
	respondAPIError(w, r, status, domain.ApiError{Code: code, Message: message})
}

func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	respondError(w, r, http.StatusBadRequest, domain.ApiErrorBadRequest, message)
}

// failure maps repository errors onto the error envelope. Errors without a
// more specific meaning are logged and reported with fallback.
func failure(w http.ResponseWriter, r *http.Request, err error, fallback domain.ApiErrorCode, message string) {
	var apiErr domain.ApiError
	switch {
	case errors.As(err, &apiErr):
		status := http.StatusBadRequest
		if apiErr.Code == domain.ApiErrorProductNotFound || apiErr.Code == domain.ApiErrorNotFound {
			status = http.StatusNotFound
		}
		respondAPIError(w, r, status, apiErr)
	case errors.Is(err, db.ErrNotFound):
		respondError(w, r, http.StatusNotFound, domain.ApiErrorNotFound, "Not found.")
	case errors.Is(err, db.ErrForbidden):
		respondError(w, r, http.StatusForbidden, domain.ApiErrorForbidden, "You do not have access to this resource.")
	case errors.Is(err, db.ErrUsernameImmutable):
		respondError(w, r, http.StatusConflict, domain.ApiErrorUsernameImmutable, "Username cannot be changed once set.")
	case errors.Is(err, db.ErrUsernameTaken):
		respondError(w, r, http.StatusConflict, domain.ApiErrorTaken, "This username is already taken.")
	case errors.Is(err, db.ErrConflict):
		respondError(w, r, http.StatusConflict, domain.ApiErrorConflict, "This resource already exists.")
	case errors.Is(err, db.ErrSelfFollow):
		respondError(w, r, http.StatusBadRequest, domain.ApiErrorSelfFollow, "You cannot follow yourself.")
	case errors.Is(err, db.ErrInvalidCategory):
		respondError(w, r, http.StatusBadRequest, domain.ApiErrorInvalidCategory, "Choose a category between cat-001 and cat-100.")
	default:
		getLogger(r).WithError(err).WithField("code", fallback).Error(message)
		respondError(w, r, http.StatusInternalServerError, fallback, message)
	}
}
