package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ethdomperin2018/ai-assist/internal/api/middleware"
	"github.com/ethdomperin2018/ai-assist/internal/api/response"
	"github.com/ethdomperin2018/ai-assist/internal/domain"
	"github.com/ethdomperin2018/ai-assist/internal/service"
)

// NotificationHandler handles notification and reminder endpoints
type NotificationHandler struct {
	notificationService *service.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List handles listing the caller's notifications. Staff may pass ?userId=.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	userID := claims.UserID
	if raw := r.URL.Query().Get("userId"); raw != "" {
		if !claims.IsStaff() {
			response.Forbidden(w, "staff access required")
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			response.BadRequest(w, "invalid userId")
			return
		}
		userID = id
	}

	notifications, err := h.notificationService.GetUserNotifications(r.Context(), userID)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.OK(w, notifications)
}

// Create handles creating an arbitrary notification
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.NotificationCreate
	if !decodeJSON(w, r, &input) {
		return
	}

	notification, err := h.notificationService.CreateNotification(r.Context(), input)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Created(w, notification)
}

// owned loads a notification the caller may act on, writing the error response otherwise
func (h *NotificationHandler) owned(w http.ResponseWriter, r *http.Request) (int64, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return 0, false
	}

	id, ok := pathID(w, r, "notificationID")
	if !ok {
		return 0, false
	}

	notification, err := h.notificationService.GetNotification(r.Context(), id)
	if err != nil {
		response.InternalError(w, err)
		return 0, false
	}
	if notification == nil || (notification.UserID != claims.UserID && !claims.IsStaff()) {
		response.NotFound(w, "notification not found")
		return 0, false
	}

	return id, true
}

// MarkRead handles marking a notification as read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.owned(w, r)
	if !ok {
		return
	}

	notification, err := h.notificationService.MarkAsRead(r.Context(), id)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if notification == nil {
		response.NotFound(w, "notification not found")
		return
	}

	response.OK(w, notification)
}

// Delete handles deleting a notification
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.owned(w, r)
	if !ok {
		return
	}

	deleted, err := h.notificationService.DeleteNotification(r.Context(), id)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if !deleted {
		response.NotFound(w, "notification not found")
		return
	}

	response.OK(w, map[string]bool{"deleted": true})
}

// CheckDeadlines runs the reminder scan once
func (h *NotificationHandler) CheckDeadlines(w http.ResponseWriter, r *http.Request) {
	summary, err := h.notificationService.CheckDeadlinesAndCreateReminders(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.OK(w, summary)
}

// reminder adapts a single-notification reminder operation keyed by a path id
func reminder(param, notFound string, create func(ctx context.Context, id int64) (*domain.Notification, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, param)
		if !ok {
			return
		}

		notification, err := create(r.Context(), id)
		if err != nil {
			response.InternalError(w, err)
			return
		}
		if notification == nil {
			response.NotFound(w, notFound)
			return
		}

		response.Created(w, notification)
	}
}

// DeadlineReminder handles POST /requests/{requestID}/reminders/deadline
func (h *NotificationHandler) DeadlineReminder(w http.ResponseWriter, r *http.Request) {
	reminder("requestID", "request not found", h.notificationService.CreateDeadlineReminder)(w, r)
}

// StatusReminder handles POST /requests/{requestID}/reminders/status
func (h *NotificationHandler) StatusReminder(w http.ResponseWriter, r *http.Request) {
	reminder("requestID", "no completed steps for request", h.notificationService.CreateStatusUpdateNotification)(w, r)
}

// MeetingReminder handles POST /meetings/{meetingID}/reminder
func (h *NotificationHandler) MeetingReminder(w http.ResponseWriter, r *http.Request) {
	reminder("meetingID", "meeting not found", h.notificationService.CreateMeetingReminder)(w, r)
}

// ContractReminder handles POST /contracts/{contractID}/reminder
func (h *NotificationHandler) ContractReminder(w http.ResponseWriter, r *http.Request) {
	reminder("contractID", "contract not found", h.notificationService.CreateContractReminder)(w, r)
}

// NotifyTeam handles fanning a new request out to the team
func (h *NotificationHandler) NotifyTeam(w http.ResponseWriter, r *http.Request) {
	requestID, ok := pathID(w, r, "requestID")
	if !ok {
		return
	}

	notifications, err := h.notificationService.NotifyTeamAboutNewRequest(r.Context(), requestID)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Created(w, notifications)
}
