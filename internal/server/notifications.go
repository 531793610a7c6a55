package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/technopolitica/loadouts/internal/db"
	"github.com/technopolitica/loadouts/internal/domain"
	"github.com/technopolitica/loadouts/internal/paging"
)

func notificationParams(r *http.Request) db.NotificationListParams {
	cursor, limit := pageRequest(r, paging.MaxNotificationLimit)
	return db.NotificationListParams{
		RecipientID: GetAuthInfo(r).UserID,
		Limit:       limit,
		Cursor:      cursor,
	}
}

func NewNotificationsRouter() *chi.Mux {
	notificationsRouter := chi.NewRouter()
	notificationsRouter.Use(requireCompleteUser)
	notificationsRouter.Get("/", func(w http.ResponseWriter, r *http.Request) {
		page, err := GetRepository(r).ListNotifications(r.Context(), notificationParams(r))
		if err != nil {
			failure(w, r, err, domain.ApiErrorFetchFailed, "Unable to load notifications.")
			return
		}
		respondPage(w, r, "notifications", page)
	})
	// The inbox view marks what it shows as read. The plain listing above
	// never does.
	notificationsRouter.Get("/inbox", func(w http.ResponseWriter, r *http.Request) {
		page, err := GetRepository(r).NotificationInbox(r.Context(), notificationParams(r))
		if err != nil {
			failure(w, r, err, domain.ApiErrorFetchFailed, "Unable to load notifications.")
			return
		}
		respondPage(w, r, "notifications_inbox", page)
	})
	notificationsRouter.Patch("/", func(w http.ResponseWriter, r *http.Request) {
		var payload markReadPayload
		if r.ContentLength != 0 {
			if message, ok := decodePayload(r, &payload); !ok {
				badRequest(w, r, message)
				return
			}
		}
		_, err := GetRepository(r).MarkNotificationsRead(r.Context(), GetAuthInfo(r).UserID, payload.IDs)
		if err != nil {
			failure(w, r, err, domain.ApiErrorUpdateFailed, "Unable to update notifications.")
			return
		}
		respondOK(w, r)
	})
	return notificationsRouter
}
