package domain

import (
	"context"
	"time"
)

// NotificationType represents the kind of alert
type NotificationType string

const (
	NotificationTypeReminder     NotificationType = "reminder"
	NotificationTypeStatusUpdate NotificationType = "status_update"
	NotificationTypeDeadline     NotificationType = "deadline"
	NotificationTypeMeeting      NotificationType = "meeting"
	NotificationTypeContract     NotificationType = "contract"
	NotificationTypeMessage      NotificationType = "message"
	NotificationTypePayment      NotificationType = "payment"
)

// Priority represents notification urgency
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Related item types
const (
	RelatedItemRequest  = "request"
	RelatedItemMeeting  = "meeting"
	RelatedItemContract = "contract"
)

// Notification is a user-facing alert produced by the notification engine
type Notification struct {
	ID              int64            `json:"id"`
	UserID          int64            `json:"userId"`
	Title           string           `json:"title"`
	Message         string           `json:"message"`
	Type            NotificationType `json:"type"`
	RelatedItemID   *int64           `json:"relatedItemId,omitempty"`
	RelatedItemType string           `json:"relatedItemType,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	IsRead          bool             `json:"isRead"`
	Priority        Priority         `json:"priority"`
	ScheduledFor    *time.Time       `json:"scheduledFor,omitempty"`
}

// NotificationCreate represents notification creation data
type NotificationCreate struct {
	UserID          int64            `json:"userId" validate:"required"`
	Title           string           `json:"title" validate:"required,max=255"`
	Message         string           `json:"message" validate:"required"`
	Type            NotificationType `json:"type" validate:"required,oneof=reminder status_update deadline meeting contract message payment"`
	RelatedItemID   *int64           `json:"relatedItemId,omitempty"`
	RelatedItemType string           `json:"relatedItemType,omitempty" validate:"omitempty,oneof=request meeting contract"`
	Priority        Priority         `json:"priority" validate:"required,oneof=low medium high"`
	ScheduledFor    *time.Time       `json:"scheduledFor,omitempty"`
}

// NotificationStore holds notifications for the lifetime of the service.
// Ids handed out by NextID are strictly increasing and never reused.
type NotificationStore interface {
	NextID(ctx context.Context) (int64, error)
	Save(ctx context.Context, notification *Notification) error
	Get(ctx context.Context, id int64) (*Notification, error)
	// MarkRead flags a stored notification as read in one step, so a
	// concurrent Delete is never undone. Unknown ids return (nil, nil).
	MarkRead(ctx context.Context, id int64) (*Notification, error)
	ListByUser(ctx context.Context, userID int64) ([]Notification, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
