package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ethdomperin2018/ai-assist/internal/domain"
	"github.com/ethdomperin2018/ai-assist/internal/events"
	"github.com/ethdomperin2018/ai-assist/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Deadline reminder thresholds are percentages of completed steps
const (
	earlyStageProgress  = 25
	almostDoneProgress  = 75
	meetingReminderLead = 30 * time.Minute
	meetingLookahead    = 24 * time.Hour
	meetingTimeLayout   = "Mon Jan 2, 2006 at 3:04 PM MST"
	unknownRequestTitle = "Unknown request"
)

// ReminderSummary reports what a deadline scan produced
type ReminderSummary struct {
	DeadlineReminders int `json:"deadlineReminders"`
	MeetingReminders  int `json:"meetingReminders"`
}

// NotificationService synthesizes priority-tagged alerts from request,
// step, meeting and contract state
type NotificationService struct {
	store     domain.NotificationStore
	repo      domain.Store
	publisher events.Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	store domain.NotificationStore,
	repo domain.Store,
	publisher events.Publisher,
	m *metrics.Metrics,
) *NotificationService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &NotificationService{
		store:     store,
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		now:       time.Now,
	}
}

// CreateNotification stores a new unread notification under the next id
func (s *NotificationService) CreateNotification(ctx context.Context, input domain.NotificationCreate) (*domain.Notification, error) {
	id, err := s.store.NextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate notification id: %w", err)
	}

	n := &domain.Notification{
		ID:              id,
		UserID:          input.UserID,
		Title:           input.Title,
		Message:         input.Message,
		Type:            input.Type,
		RelatedItemID:   input.RelatedItemID,
		RelatedItemType: input.RelatedItemType,
		CreatedAt:       s.now(),
		IsRead:          false,
		Priority:        input.Priority,
		ScheduledFor:    input.ScheduledFor,
	}

	if err := s.store.Save(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to save notification: %w", err)
	}

	s.metrics.Notifications.WithLabelValues(string(n.Type)).Inc()
	if err := s.publisher.Publish(ctx, events.NotificationSubject(n.UserID), n); err != nil {
		log.Warn().Err(err).Int64("notification_id", n.ID).Msg("Failed to publish notification")
	}

	return n, nil
}

// GetUserNotifications returns a user's notifications, newest first
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID int64) ([]domain.Notification, error) {
	notifications, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	sort.SliceStable(notifications, func(i, j int) bool {
		a, b := notifications[i], notifications[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	return notifications, nil
}

// GetNotification returns one notification, or (nil, nil) when unknown
func (s *NotificationService) GetNotification(ctx context.Context, id int64) (*domain.Notification, error) {
	n, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

// MarkAsRead flags a notification as read. Unknown ids return (nil, nil).
func (s *NotificationService) MarkAsRead(ctx context.Context, id int64) (*domain.Notification, error) {
	n, err := s.store.MarkRead(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return n, nil
}

// DeleteNotification removes a notification, reporting whether it existed
func (s *NotificationService) DeleteNotification(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete notification: %w", err)
	}
	return deleted, nil
}

// CreateDeadlineReminder tells the request owner how far along the request is
func (s *NotificationService) CreateDeadlineReminder(ctx context.Context, requestID int64) (*domain.Notification, error) {
	request, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	if request == nil {
		return nil, nil
	}

	steps, err := s.repo.GetStepsByRequestID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get steps: %w", err)
	}

	progress := Progress(steps)

	var message string
	var priority domain.Priority
	switch {
	case progress < earlyStageProgress:
		message = fmt.Sprintf("Request \"%s\" is still in the early stages. Consider prioritizing this request to meet deadlines.", request.Title)
		priority = domain.PriorityHigh
	case progress < almostDoneProgress:
		message = fmt.Sprintf("Request \"%s\" is %d%% complete. Make sure to complete the remaining steps on time.", request.Title, progress)
		priority = domain.PriorityMedium
	default:
		message = fmt.Sprintf("Request \"%s\" is almost complete (%d%%). Finish the remaining steps to complete this request.", request.Title, progress)
		priority = domain.PriorityLow
	}

	return s.CreateNotification(ctx, domain.NotificationCreate{
		UserID:          request.UserID,
		Title:           "Progress Update: " + request.Title,
		Message:         message,
		Type:            domain.NotificationTypeDeadline,
		RelatedItemID:   &requestID,
		RelatedItemType: domain.RelatedItemRequest,
		Priority:        priority,
	})
}

// Progress is the rounded percentage of completed steps, 0 for no steps
func Progress(steps []domain.Step) int {
	if len(steps) == 0 {
		return 0
	}
	completed := 0
	for _, st := range steps {
		if st.Status == domain.StepStatusCompleted {
			completed++
		}
	}
	return int(math.Round(float64(completed) / float64(len(steps)) * 100))
}

// CreateMeetingReminder alerts the meeting owner 30 minutes ahead of the meeting
func (s *NotificationService) CreateMeetingReminder(ctx context.Context, meetingID int64) (*domain.Notification, error) {
	meeting, err := s.repo.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}
	if meeting == nil {
		return nil, nil
	}

	until := meeting.ScheduledFor.Sub(s.now())
	priority := domain.PriorityLow
	switch {
	case until < time.Hour:
		priority = domain.PriorityHigh
	case until < 24*time.Hour:
		priority = domain.PriorityMedium
	}

	requestTitle := unknownRequestTitle
	request, err := s.repo.GetRequest(ctx, meeting.RequestID)
	if err != nil {
		log.Warn().Err(err).Int64("meeting_id", meetingID).Msg("Failed to load meeting request")
	} else if request != nil {
		requestTitle = request.Title
	}

	scheduledFor := meeting.ScheduledFor.Add(-meetingReminderLead)
	return s.CreateNotification(ctx, domain.NotificationCreate{
		UserID: meeting.UserID,
		Title:  "Upcoming Meeting: " + meeting.Topic,
		Message: fmt.Sprintf("You have a meeting about \"%s\" scheduled for %s. Duration: %d minutes.",
			requestTitle, meeting.ScheduledFor.Format(meetingTimeLayout), meeting.Duration),
		Type:            domain.NotificationTypeMeeting,
		RelatedItemID:   &meetingID,
		RelatedItemType: domain.RelatedItemMeeting,
		Priority:        priority,
		ScheduledFor:    &scheduledFor,
	})
}

// CreateContractReminder asks the client to review a contract
func (s *NotificationService) CreateContractReminder(ctx context.Context, contractID int64) (*domain.Notification, error) {
	contract, err := s.repo.GetContract(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	if contract == nil {
		return nil, nil
	}

	return s.CreateNotification(ctx, domain.NotificationCreate{
		UserID:          contract.UserID,
		Title:           "Contract Ready for Review",
		Message:         "Your contract is ready for review and signature. Please review and approve or request revisions.",
		Type:            domain.NotificationTypeContract,
		RelatedItemID:   &contractID,
		RelatedItemType: domain.RelatedItemContract,
		Priority:        domain.PriorityHigh,
	})
}

// NotifyTeamAboutNewRequest notifies every admin and team member of a new request
func (s *NotificationService) NotifyTeamAboutNewRequest(ctx context.Context, requestID int64) ([]domain.Notification, error) {
	request, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	if request == nil {
		return []domain.Notification{}, nil
	}

	users, err := s.repo.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	notifications := []domain.Notification{}
	for _, user := range users {
		if !user.IsStaff() {
			continue
		}
		n, err := s.CreateNotification(ctx, domain.NotificationCreate{
			UserID:          user.ID,
			Title:           "New Request Assigned",
			Message:         fmt.Sprintf("A new request \"%s\" has been created and needs team attention.", request.Title),
			Type:            domain.NotificationTypeStatusUpdate,
			RelatedItemID:   &requestID,
			RelatedItemType: domain.RelatedItemRequest,
			Priority:        domain.PriorityMedium,
		})
		if err != nil {
			return notifications, err
		}
		notifications = append(notifications, *n)
	}

	return notifications, nil
}

// CreateStatusUpdateNotification reports the most recently completed step to the request owner.
// It returns (nil, nil) when the request is unknown or nothing is completed yet.
func (s *NotificationService) CreateStatusUpdateNotification(ctx context.Context, requestID int64) (*domain.Notification, error) {
	request, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	if request == nil {
		return nil, nil
	}

	steps, err := s.repo.GetStepsByRequestID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get steps: %w", err)
	}

	var latest *domain.Step
	for i := range steps {
		st := &steps[i]
		if st.Status != domain.StepStatusCompleted || st.CompletedAt == nil {
			continue
		}
		if latest == nil || st.CompletedAt.After(*latest.CompletedAt) {
			latest = st
		}
	}
	if latest == nil {
		return nil, nil
	}

	return s.CreateNotification(ctx, domain.NotificationCreate{
		UserID:          request.UserID,
		Title:           "Request Progress Update",
		Message:         fmt.Sprintf("Step \"%s\" has been completed for your request \"%s\".", latest.Title, request.Title),
		Type:            domain.NotificationTypeStatusUpdate,
		RelatedItemID:   &requestID,
		RelatedItemType: domain.RelatedItemRequest,
		Priority:        domain.PriorityMedium,
	})
}

// CheckDeadlinesAndCreateReminders creates a deadline reminder for every open
// request and a meeting reminder for every meeting in the next 24 hours.
// Only a failure to list requests is returned; per-item failures are logged.
func (s *NotificationService) CheckDeadlinesAndCreateReminders(ctx context.Context) (*ReminderSummary, error) {
	requests, err := s.repo.GetAllRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	summary := &ReminderSummary{}

	for _, request := range requests {
		if request.Status.IsTerminal() {
			continue
		}
		n, err := s.CreateDeadlineReminder(ctx, request.ID)
		if err != nil {
			log.Error().Err(err).Int64("request_id", request.ID).Msg("Failed to create deadline reminder")
			continue
		}
		if n != nil {
			summary.DeadlineReminders++
		}
	}

	now := s.now()
	horizon := now.Add(meetingLookahead)
	for _, request := range requests {
		meetings, err := s.repo.GetMeetingsByRequestID(ctx, request.ID)
		if err != nil {
			log.Error().Err(err).Int64("request_id", request.ID).Msg("Failed to list meetings")
			continue
		}
		for _, meeting := range meetings {
			if meeting.Status == domain.MeetingStatusCancelled ||
				meeting.ScheduledFor.Before(now) || meeting.ScheduledFor.After(horizon) {
				continue
			}
			n, err := s.CreateMeetingReminder(ctx, meeting.ID)
			if err != nil {
				log.Error().Err(err).Int64("meeting_id", meeting.ID).Msg("Failed to create meeting reminder")
				continue
			}
			if n != nil {
				summary.MeetingReminders++
			}
		}
	}

	s.metrics.ReminderRuns.Inc()
	log.Info().
		Int("deadline_reminders", summary.DeadlineReminders).
		Int("meeting_reminders", summary.MeetingReminders).
		Msg("Deadline check completed")

	return summary, nil
}
