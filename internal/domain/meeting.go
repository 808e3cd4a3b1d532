package domain

import (
	"context"
	"time"
)

// MeetingStatus represents the state of a scheduled meeting
type MeetingStatus string

const (
	MeetingStatusScheduled MeetingStatus = "scheduled"
	MeetingStatusCompleted MeetingStatus = "completed"
	MeetingStatusCancelled MeetingStatus = "cancelled"
)

// Meeting represents a call between a client and the team about a request
type Meeting struct {
	ID           int64         `json:"id"`
	RequestID    int64         `json:"requestId"`
	UserID       int64         `json:"userId"`
	TeamMemberID *int64        `json:"teamMemberId,omitempty"`
	ScheduledFor time.Time     `json:"scheduledFor"`
	Duration     int           `json:"duration"` // In minutes
	Topic        string        `json:"topic"`
	Status       MeetingStatus `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// MeetingRepository defines the interface for meeting storage
type MeetingRepository interface {
	GetMeeting(ctx context.Context, id int64) (*Meeting, error)
	GetMeetingsByRequestID(ctx context.Context, requestID int64) ([]Meeting, error)
}
