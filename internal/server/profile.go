package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/technopolitica/loadouts/internal/domain"
)

type usernameAvailability struct {
	Available          bool    `json:"available"`
	NormalizedUsername string  `json:"normalizedUsername"`
	Reason             *string `json:"reason"`
	Message            *string `json:"message"`
}

func NewAuthRouter() *chi.Mux {
	authRouter := chi.NewRouter()
	authRouter.Post("/username-available", func(w http.ResponseWriter, r *http.Request) {
		var payload usernameAvailabilityPayload
		// An unreadable body is treated as an empty username.
		_ = render.DecodeJSON(r.Body, &payload)

		validation := domain.ValidateUsername(payload.Username)
		if !validation.OK {
			reason := string(validation.Code)
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, usernameAvailability{
				NormalizedUsername: validation.NormalizedUsername,
				Reason:             &reason,
				Message:            &validation.Message,
			})
			return
		}

		available, err := GetRepository(r).IsUsernameAvailable(r.Context(), validation.NormalizedUsername, viewerID(r))
		if err != nil {
			failure(w, r, err, domain.ApiErrorCheckFailed, "Failed to check username.")
			return
		}
		response := usernameAvailability{Available: available, NormalizedUsername: validation.NormalizedUsername}
		if !available {
			reason, message := string(domain.ApiErrorTaken), "This username is already taken."
			response.Reason, response.Message = &reason, &message
		}
		render.JSON(w, r, response)
	})
	return authRouter
}

func NewOwnProfileRouter() *chi.Mux {
	profileRouter := chi.NewRouter()
	profileRouter.With(requireUser).Post("/setup", func(w http.ResponseWriter, r *http.Request) {
		var payload profileSetupPayload
		if message, ok := decodePayload(r, &payload); !ok {
			badRequest(w, r, message)
			return
		}
		validation := domain.ValidateUsername(payload.Username)
		if !validation.OK {
			respondAPIError(w, r, http.StatusBadRequest, domain.ApiError{
				Code:    domain.ApiErrorCode(validation.Code),
				Message: validation.Message,
			})
			return
		}
		displayName := strings.TrimSpace(payload.DisplayName)
		if displayName == "" {
			respondError(w, r, http.StatusBadRequest, domain.ApiErrorDisplayNameRequired, "Display name is required.")
			return
		}

		profile, err := GetRepository(r).SetupProfile(r.Context(), domain.ProfileSetup{
			UserID:      GetAuthInfo(r).UserID,
			Username:    validation.NormalizedUsername,
			DisplayName: displayName,
		})
		if err != nil {
			failure(w, r, err, domain.ApiErrorSaveFailed, "Failed to complete profile.")
			return
		}
		respond(w, r, http.StatusOK, profile)
	})

	profileRouter.Group(func(completeRouter chi.Router) {
		completeRouter.Use(requireCompleteUser)
		completeRouter.Get("/", func(w http.ResponseWriter, r *http.Request) {
			respond(w, r, http.StatusOK, GetProfile(r))
		})
		completeRouter.Put("/", func(w http.ResponseWriter, r *http.Request) {
			var payload profileUpdatePayload
			if message, ok := decodePayload(r, &payload); !ok {
				badRequest(w, r, message)
				return
			}
			displayName := strings.TrimSpace(payload.DisplayName)
			if displayName == "" {
				respondError(w, r, http.StatusBadRequest, domain.ApiErrorDisplayNameRequired, "Display name is required.")
				return
			}
			profile, err := GetRepository(r).UpdateProfile(r.Context(), domain.ProfileUpdate{
				UserID:      GetAuthInfo(r).UserID,
				DisplayName: displayName,
				Bio:         strings.TrimSpace(payload.Bio),
				AvatarURL:   strings.TrimSpace(payload.AvatarURL),
				Interests:   domain.SanitizeInterests(payload.Interests),
			})
			if err != nil {
				failure(w, r, err, domain.ApiErrorUpdateFailed, "Failed to update profile.")
				return
			}
			respond(w, r, http.StatusOK, profile)
		})
	})
	return profileRouter
}
