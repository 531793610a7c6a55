package domain

import "time"

type NotificationType string

const (
	NotificationFollow           NotificationType = "follow"
	NotificationLike             NotificationType = "like"
	NotificationComment          NotificationType = "comment"
	NotificationLoadoutPublished NotificationType = "loadout_published"
)

type NotificationActor struct {
	ID          string  `json:"id"`
	Handle      *string `json:"handle"`
	DisplayName *string `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl"`
}

type NotificationItem struct {
	ID         string            `json:"id"`
	Type       NotificationType  `json:"type"`
	EntityType string            `json:"entityType"`
	EntityID   *string           `json:"entityId"`
	Metadata   Record            `json:"metadata"`
	IsRead     bool              `json:"isRead"`
	CreatedAt  time.Time         `json:"createdAt"`
	Actor      NotificationActor `json:"actor"`
}

type NewNotification struct {
	RecipientID string
	ActorID     string
	Type        NotificationType
	EntityType  string
	EntityID    *string
	Metadata    Record
}

type MilestoneEvent string

const (
	MilestoneSignupCompleted           MilestoneEvent = "signup_completed"
	MilestoneFirstLoadoutCreated       MilestoneEvent = "first_loadout_created"
	MilestoneFirstFollow               MilestoneEvent = "first_follow"
	MilestoneFirstNotificationReceived MilestoneEvent = "first_notification_received"
)
