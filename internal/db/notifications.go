package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/technopolitica/loadouts/internal/domain"
	"github.com/technopolitica/loadouts/internal/metrics"
	"github.com/technopolitica/loadouts/internal/paging"
)

//go:embed queries/insert-notification.sql
var insertNotificationQuery string

// CreateNotification records an event for its recipient. Notifying yourself
// and repeating an identical notification are no-ops.
func (repo Repository) CreateNotification(ctx context.Context, notification domain.NewNotification) error {
	if !repo.features.Notifications || notification.RecipientID == notification.ActorID {
		return nil
	}
	_, err := repo.Exec(ctx, insertNotificationQuery, pgx.NamedArgs{
		"recipient_id": notification.RecipientID,
		"actor_id":     notification.ActorID,
		"type":         string(notification.Type),
		"entity_type":  notification.EntityType,
		"entity_id":    notification.EntityID,
		"metadata":     notification.Metadata,
	})
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// notifyQuietly is used where the triggering action must succeed even if the
// notification cannot be stored.
func (repo Repository) notifyQuietly(ctx context.Context, notification domain.NewNotification) {
	err := repo.CreateNotification(ctx, notification)
	if err != nil {
		repo.log.WithError(err).WithField("type", notification.Type).Warn("failed to create notification")
		metrics.RecordSideEffectFailure("notification")
	}
}

type NotificationListParams struct {
	RecipientID string
	Limit       int
	Cursor      *paging.Cursor
}

//go:embed queries/list-notifications.sql
var listNotificationsQuery string

// ListNotifications returns a page of the recipient's notifications. Seeing a
// non-empty page counts as receiving a first notification.
func (repo Repository) ListNotifications(ctx context.Context, params NotificationListParams) (page paging.Page[domain.NotificationItem], err error) {
	if !repo.features.Notifications {
		page = paging.EmptyPage[domain.NotificationItem]()
		return
	}
	limit := paging.ClampLimit(params.Limit, paging.MaxNotificationLimit)

	notifications, err := collectAll[NotificationDTO](repo.Query(ctx, listNotificationsQuery, repo.withKeyset(pgx.NamedArgs{
		"recipient_id": params.RecipientID,
	}, params.Cursor, limit)))
	if err != nil {
		return
	}
	pageRows, nextCursor, hasMore := paging.Slice(notifications, limit, func(row NotificationDTO) paging.Cursor {
		return paging.CursorAt(row.CreatedAt, row.ID)
	})

	actorIDs := make([]string, 0, len(pageRows))
	for _, row := range pageRows {
		actorIDs = append(actorIDs, row.ActorID)
	}
	actors, err := repo.ProfilesByIDs(ctx, actorIDs)
	if err != nil {
		return
	}

	page = paging.Map(pageRows, nextCursor, hasMore, func(row NotificationDTO) (domain.NotificationItem, bool) {
		actor := actors[row.ActorID]
		return domain.NotificationItem{
			ID:         row.ID,
			Type:       domain.NotificationType(row.Type),
			EntityType: row.EntityType,
			EntityID:   row.EntityID,
			Metadata:   row.Metadata,
			IsRead:     row.IsRead,
			CreatedAt:  row.CreatedAt,
			Actor: domain.NotificationActor{
				ID:          row.ActorID,
				Handle:      actor.Handle,
				DisplayName: actor.DisplayName,
				AvatarURL:   actor.AvatarURL,
			},
		}, true
	})
	if len(page.Items) > 0 {
		repo.trackMilestoneQuietly(ctx, params.RecipientID, domain.MilestoneFirstNotificationReceived, domain.Record{}.
			With("source", "notifications_api").
			With("notificationId", page.Items[0].ID))
	}
	return
}

//go:embed queries/mark-notifications-read.sql
var markNotificationsReadQuery string

// MarkNotificationsRead marks the given notifications read, or every unread
// notification of the recipient when ids is empty.
func (repo Repository) MarkNotificationsRead(ctx context.Context, recipientID string, ids []string) (marked int64, err error) {
	if !repo.features.Notifications {
		return
	}
	if ids == nil {
		ids = []string{}
	}
	res, err := repo.Exec(ctx, markNotificationsReadQuery, pgx.NamedArgs{"recipient_id": recipientID, "ids": ids})
	if err != nil {
		err = fmt.Errorf("failed to mark notifications read: %w", err)
		return
	}
	marked = res.RowsAffected()
	return
}

// NotificationInbox is the page a user views in their inbox: fetching it marks
// the unread notifications on the page as read. Items keep the read state
// they had when fetched.
func (repo Repository) NotificationInbox(ctx context.Context, params NotificationListParams) (page paging.Page[domain.NotificationItem], err error) {
	page, err = repo.ListNotifications(ctx, params)
	if err != nil || len(page.Items) == 0 {
		return
	}
	unread := make([]string, 0, len(page.Items))
	for _, item := range page.Items {
		if !item.IsRead {
			unread = append(unread, item.ID)
		}
	}
	if len(unread) == 0 {
		return
	}
	_, err = repo.MarkNotificationsRead(ctx, params.RecipientID, unread)
	return
}
