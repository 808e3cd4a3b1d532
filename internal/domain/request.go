package domain

import (
	"context"
	"time"
)

// RequestStatus represents the lifecycle state of a client request
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusInProgress RequestStatus = "in_progress"
	RequestStatusCompleted  RequestStatus = "completed"
	RequestStatusCancelled  RequestStatus = "cancelled"
)

// IsTerminal reports whether no further work is expected on the request
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusCompleted || s == RequestStatusCancelled
}

// Request represents a free-text service request submitted by a client
type Request struct {
	ID           int64         `json:"id"`
	UserID       int64         `json:"userId"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Status       RequestStatus `json:"status"`
	CostEstimate *int64        `json:"costEstimate,omitempty"` // In cents
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	CompletedAt  *time.Time    `json:"completedAt,omitempty"`
}

// StepStatus represents the progress of a single plan step
type StepStatus string

const (
	StepStatusPending    StepStatus = "pending"
	StepStatusInProgress StepStatus = "in_progress"
	StepStatusCompleted  StepStatus = "completed"
)

// Step is one unit of work in a request plan
type Step struct {
	ID             int64      `json:"id"`
	RequestID      int64      `json:"requestId"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	AssignedTo     Assignee   `json:"assignedTo"`
	Status         StepStatus `json:"status"`
	Order          int        `json:"order"`
	EstimatedHours *int       `json:"estimatedHours,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

// HoursOr returns the estimated hours, or def when the step has no estimate
func (s *Step) HoursOr(def int) int {
	if s.EstimatedHours == nil || *s.EstimatedHours == 0 {
		return def
	}
	return *s.EstimatedHours
}

// StepUpdate represents a partial step update; nil fields are left untouched
type StepUpdate struct {
	Status     *StepStatus
	AssignedTo *Assignee
}

// RequestRepository defines the interface for request storage
type RequestRepository interface {
	GetRequest(ctx context.Context, id int64) (*Request, error)
	GetAllRequests(ctx context.Context) ([]Request, error)
	GetRequestsByUserID(ctx context.Context, userID int64) ([]Request, error)
}

// StepRepository defines the interface for step storage
type StepRepository interface {
	GetStep(ctx context.Context, id int64) (*Step, error)
	GetStepsByRequestID(ctx context.Context, requestID int64) ([]Step, error)
	UpdateStep(ctx context.Context, id int64, update StepUpdate) (*Step, error)
}
