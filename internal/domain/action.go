package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ActionType identifies an inbound workspace action
type ActionType string

const (
	ActionJoinWorkspace  ActionType = "join_workspace"
	ActionLeaveWorkspace ActionType = "leave_workspace"
	ActionUpdateStep     ActionType = "update_step"
	ActionAssignTask     ActionType = "assign_task"
	ActionAddComment     ActionType = "add_comment"
	ActionEditDocument   ActionType = "edit_document"
	ActionPing           ActionType = "ping"
)

// FrameType identifies an outbound workspace frame
type FrameType string

const (
	FrameUserJoined      FrameType = "user_joined"
	FrameUserLeft        FrameType = "user_left"
	FrameWorkspaceState  FrameType = "workspace_state"
	FrameStepUpdated     FrameType = "step_updated"
	FrameTaskAssigned    FrameType = "task_assigned"
	FrameCommentAdded    FrameType = "comment_added"
	FrameDocumentUpdated FrameType = "document_updated"
	FramePong            FrameType = "pong"
	FramePing            FrameType = "ping"
)

// ActionPayload is implemented by every concrete action payload
type ActionPayload interface {
	ActionType() ActionType
}

type JoinWorkspacePayload struct{}

type LeaveWorkspacePayload struct{}

type UpdateStepPayload struct {
	StepID int64      `json:"stepId" validate:"required"`
	Status StepStatus `json:"status" validate:"required,oneof=pending in_progress completed"`
	Notes  string     `json:"notes,omitempty"`
}

// AssignTaskPayload reassigns a step. A missing or null assignee is invalid.
type AssignTaskPayload struct {
	StepID     int64     `json:"stepId" validate:"required"`
	AssignedTo *Assignee `json:"assignedTo" validate:"required"`
}

type AddCommentPayload struct {
	Content string `json:"content" validate:"required"`
}

// EditDocumentPayload is relayed verbatim to the workspace
type EditDocumentPayload struct {
	Raw json.RawMessage
}

type PingPayload struct{}

func (JoinWorkspacePayload) ActionType() ActionType  { return ActionJoinWorkspace }
func (LeaveWorkspacePayload) ActionType() ActionType { return ActionLeaveWorkspace }
func (UpdateStepPayload) ActionType() ActionType     { return ActionUpdateStep }
func (AssignTaskPayload) ActionType() ActionType     { return ActionAssignTask }
func (AddCommentPayload) ActionType() ActionType     { return ActionAddComment }
func (EditDocumentPayload) ActionType() ActionType   { return ActionEditDocument }
func (PingPayload) ActionType() ActionType           { return ActionPing }

func (p EditDocumentPayload) MarshalJSON() ([]byte, error) {
	if len(p.Raw) == 0 {
		return []byte("null"), nil
	}
	return p.Raw, nil
}

// WorkspaceAction is a message sent by a workspace participant
type WorkspaceAction struct {
	Type      ActionType    `json:"type"`
	UserID    int64         `json:"userId"`
	RequestID int64         `json:"requestId"`
	UserName  string        `json:"userName"`
	Payload   ActionPayload `json:"payload"`
	Timestamp time.Time     `json:"timestamp"`
}

type actionEnvelope struct {
	Type      ActionType      `json:"type"`
	UserID    int64           `json:"userId"`
	RequestID int64           `json:"requestId"`
	UserName  string          `json:"userName"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp *time.Time      `json:"timestamp"`
}

// DecodeAction parses a raw frame into a WorkspaceAction with a typed payload
func DecodeAction(data []byte) (*WorkspaceAction, error) {
	var env actionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode action: %w", err)
	}

	action := &WorkspaceAction{
		Type:      env.Type,
		UserID:    env.UserID,
		RequestID: env.RequestID,
		UserName:  env.UserName,
		Timestamp: time.Now(),
	}
	if env.Timestamp != nil {
		action.Timestamp = *env.Timestamp
	}

	var payload ActionPayload
	switch env.Type {
	case ActionJoinWorkspace:
		payload = JoinWorkspacePayload{}
	case ActionLeaveWorkspace:
		payload = LeaveWorkspacePayload{}
	case ActionPing:
		payload = PingPayload{}
	case ActionEditDocument:
		payload = EditDocumentPayload{Raw: env.Payload}
	case ActionUpdateStep:
		var p UpdateStepPayload
		if err := decodePayload(env.Payload, &p); err != nil {
			return nil, err
		}
		payload = p
	case ActionAssignTask:
		var p AssignTaskPayload
		if err := decodePayload(env.Payload, &p); err != nil {
			return nil, err
		}
		payload = p
	case ActionAddComment:
		var p AddCommentPayload
		if err := decodePayload(env.Payload, &p); err != nil {
			return nil, err
		}
		payload = p
	default:
		return nil, fmt.Errorf("unknown action type: %q", env.Type)
	}

	action.Payload = payload
	return action, nil
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return fmt.Errorf("missing payload")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}
	return nil
}

// Frame is an outbound message sent to workspace participants
type Frame struct {
	Type      FrameType `json:"type"`
	UserID    int64     `json:"userId,omitempty"`
	RequestID int64     `json:"requestId,omitempty"`
	UserName  string    `json:"userName,omitempty"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// RosterPayload carries the current participant list
type RosterPayload struct {
	ActiveUsers []ActiveUser `json:"activeUsers"`
}

// StepPayload carries a step changed through the workspace
type StepPayload struct {
	Step  *Step  `json:"step"`
	Notes string `json:"notes,omitempty"`
}

// CommentPayload carries a comment added through the workspace
type CommentPayload struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
