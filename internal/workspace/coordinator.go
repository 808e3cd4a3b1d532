// Package workspace coordinates live collaboration sessions on requests.
//
// Participants connect over a message transport, join one or more request
// workspaces and exchange actions. The coordinator keeps the roster of each
// workspace, persists step and comment changes through the store and fans
// out the resulting frames to every participant of the request.
package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ethdomperin2018/ai-assist/internal/domain"
	"github.com/ethdomperin2018/ai-assist/internal/events"
	"github.com/ethdomperin2018/ai-assist/internal/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Participant is the authenticated user behind a connection
type Participant struct {
	UserID   int64
	Username string
	Role     domain.UserRole
}

func (p Participant) isStaff() bool {
	return p.Role == domain.UserRoleAdmin || p.Role == domain.UserRoleTeamMember
}

// client is the connection record of one transport
type client struct {
	id         string
	transport  Transport
	user       Participant
	requestIDs map[int64]struct{}
}

// Coordinator owns workspace sessions and the connection registry
type Coordinator struct {
	repo      domain.Store
	sessions  *SessionStore
	publisher events.Publisher
	metrics   *metrics.Metrics
	validate  *validator.Validate
	now       func() time.Time

	mu      sync.RWMutex
	clients map[string]*client
}

// NewCoordinator creates a coordinator backed by repo
func NewCoordinator(repo domain.Store, publisher events.Publisher, m *metrics.Metrics) *Coordinator {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Coordinator{
		repo:      repo,
		sessions:  NewSessionStore(),
		publisher: publisher,
		metrics:   m,
		validate:  validator.New(),
		now:       time.Now,
		clients:   make(map[string]*client),
	}
}

// Connect registers a new transport for user and returns its client id
func (c *Coordinator) Connect(t Transport, user Participant) string {
	id := uuid.NewString()

	c.mu.Lock()
	c.clients[id] = &client{
		id:         id,
		transport:  t,
		user:       user,
		requestIDs: make(map[int64]struct{}),
	}
	c.mu.Unlock()

	c.metrics.ActiveConnections.Inc()
	log.Debug().Str("client_id", id).Msg("Workspace client connected")
	return id
}

// Disconnect removes a client, leaving every workspace it had joined
func (c *Coordinator) Disconnect(ctx context.Context, clientID string) {
	c.mu.Lock()
	cl, ok := c.clients[clientID]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.clients, clientID)
	userID, userName := cl.user.UserID, cl.user.Username
	joined := make([]int64, 0, len(cl.requestIDs))
	for id := range cl.requestIDs {
		joined = append(joined, id)
	}
	c.mu.Unlock()

	for _, requestID := range joined {
		c.leave(ctx, userID, userName, requestID)
	}

	c.metrics.ActiveConnections.Dec()
	log.Debug().Str("client_id", clientID).Int("workspaces", len(joined)).Msg("Workspace client disconnected")
}

// HandleMessage decodes one inbound frame and applies it. Malformed or
// invalid frames are logged and dropped, as are frames that speak for
// another user or target a workspace the connection has not joined.
func (c *Coordinator) HandleMessage(ctx context.Context, clientID string, data []byte) {
	action, err := domain.DecodeAction(data)
	if err != nil {
		c.drop(clientID, "malformed", err)
		return
	}
	if err := c.validateAction(action); err != nil {
		c.drop(clientID, "invalid", err)
		return
	}

	c.mu.RLock()
	cl, ok := c.clients[clientID]
	var user Participant
	var joined bool
	if ok {
		user = cl.user
		_, joined = cl.requestIDs[action.RequestID]
	}
	c.mu.RUnlock()
	if !ok {
		return
	}

	switch {
	case action.Type == domain.ActionPing:
	case action.UserID != user.UserID:
		c.drop(clientID, "forbidden", fmt.Errorf("frame for user %d on connection of user %d", action.UserID, user.UserID))
		return
	case action.Type != domain.ActionJoinWorkspace && !joined:
		c.drop(clientID, "not_joined", fmt.Errorf("workspace %d not joined", action.RequestID))
		return
	}
	action.UserID = user.UserID
	action.UserName = user.Username

	c.metrics.Actions.WithLabelValues(string(action.Type)).Inc()

	switch p := action.Payload.(type) {
	case domain.JoinWorkspacePayload:
		c.handleJoin(ctx, clientID, user, action)
	case domain.LeaveWorkspacePayload:
		c.handleLeave(ctx, clientID, action)
	case domain.UpdateStepPayload:
		c.handleUpdateStep(ctx, action, p)
	case domain.AssignTaskPayload:
		c.handleAssignTask(ctx, action, p)
	case domain.AddCommentPayload:
		c.handleAddComment(ctx, action, p)
	case domain.EditDocumentPayload:
		c.handleEditDocument(ctx, action, p)
	case domain.PingPayload:
		c.handlePing(clientID, action)
	}
}

func (c *Coordinator) validateAction(action *domain.WorkspaceAction) error {
	if action.Type != domain.ActionPing {
		if action.UserID <= 0 {
			return fmt.Errorf("userId is required")
		}
		if action.RequestID <= 0 {
			return fmt.Errorf("requestId is required")
		}
	}
	if err := c.validate.Struct(action.Payload); err != nil {
		return fmt.Errorf("invalid %s payload: %w", action.Type, err)
	}
	return nil
}

func (c *Coordinator) drop(clientID, reason string, err error) {
	c.metrics.DroppedActions.WithLabelValues(reason).Inc()
	log.Warn().Err(err).Str("client_id", clientID).Str("reason", reason).Msg("Dropped workspace action")
}

// canJoin reports whether user may see the workspace of requestID: staff
// may join any request, clients only their own
func (c *Coordinator) canJoin(ctx context.Context, user Participant, requestID int64) (bool, error) {
	if user.isStaff() {
		return true, nil
	}
	request, err := c.repo.GetRequest(ctx, requestID)
	if err != nil {
		return false, fmt.Errorf("failed to get request: %w", err)
	}
	return request != nil && request.UserID == user.UserID, nil
}

func (c *Coordinator) handleJoin(ctx context.Context, clientID string, user Participant, action *domain.WorkspaceAction) {
	allowed, err := c.canJoin(ctx, user, action.RequestID)
	if err != nil {
		log.Error().Err(err).Int64("request_id", action.RequestID).Msg("Failed to authorize workspace join")
		return
	}
	if !allowed {
		c.drop(clientID, "forbidden", fmt.Errorf("user %d may not join request %d", user.UserID, action.RequestID))
		return
	}

	c.mu.Lock()
	cl, ok := c.clients[clientID]
	if !ok {
		c.mu.Unlock()
		return
	}
	cl.requestIDs[action.RequestID] = struct{}{}
	c.mu.Unlock()

	now := c.now()
	c.sessions.Ensure(action.RequestID, now)
	c.metrics.ActiveWorkspaces.Set(float64(c.sessions.Len()))

	if !c.sessions.Touch(action.RequestID, action.UserID, now) {
		u, err := c.repo.GetUser(ctx, action.UserID)
		if err != nil {
			log.Error().Err(err).Int64("user_id", action.UserID).Msg("Failed to load workspace user")
		} else if u != nil {
			c.sessions.Add(action.RequestID, domain.ActiveUser{
				ID:           u.ID,
				Username:     u.Username,
				FullName:     u.FullName,
				Role:         u.Role,
				JoinedAt:     now,
				LastActivity: now,
			}, now)
		}
	}

	roster := c.sessions.Roster(action.RequestID)
	c.Broadcast(ctx, action.RequestID, domain.Frame{
		Type:      domain.FrameUserJoined,
		UserID:    action.UserID,
		RequestID: action.RequestID,
		UserName:  action.UserName,
		Payload:   domain.RosterPayload{ActiveUsers: roster},
		Timestamp: now,
	})

	snapshot, err := c.snapshot(ctx, action.RequestID)
	if err != nil {
		log.Error().Err(err).Int64("request_id", action.RequestID).Msg("Failed to build workspace state")
		return
	}
	snapshot.ActiveUsers = roster
	c.send(clientID, domain.Frame{
		Type:      domain.FrameWorkspaceState,
		RequestID: action.RequestID,
		Payload:   snapshot,
		Timestamp: c.now(),
	})
}

// snapshot loads the request context sent once to a joining participant
func (c *Coordinator) snapshot(ctx context.Context, requestID int64) (*domain.WorkspaceSnapshot, error) {
	request, err := c.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	steps, err := c.repo.GetStepsByRequestID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get steps: %w", err)
	}
	messages, err := c.repo.GetMessagesByRequestID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	comments := []domain.Message{}
	for _, m := range messages {
		if m.Type == domain.MessageTypeComment {
			comments = append(comments, m)
		}
	}
	if steps == nil {
		steps = []domain.Step{}
	}

	return &domain.WorkspaceSnapshot{
		Request:  request,
		Steps:    steps,
		Messages: comments,
	}, nil
}

func (c *Coordinator) handleLeave(ctx context.Context, clientID string, action *domain.WorkspaceAction) {
	c.leave(ctx, action.UserID, action.UserName, action.RequestID)

	c.mu.Lock()
	if cl, ok := c.clients[clientID]; ok {
		delete(cl.requestIDs, action.RequestID)
	}
	c.mu.Unlock()
}

func (c *Coordinator) leave(ctx context.Context, userID int64, userName string, requestID int64) {
	roster, alive := c.sessions.Remove(requestID, userID, c.now())
	c.metrics.ActiveWorkspaces.Set(float64(c.sessions.Len()))
	if !alive {
		return
	}

	c.Broadcast(ctx, requestID, domain.Frame{
		Type:      domain.FrameUserLeft,
		UserID:    userID,
		RequestID: requestID,
		UserName:  userName,
		Payload:   domain.RosterPayload{ActiveUsers: roster},
		Timestamp: c.now(),
	})
}

// ownedStep returns the step when it belongs to requestID, nil otherwise
func (c *Coordinator) ownedStep(ctx context.Context, stepID, requestID int64) (*domain.Step, error) {
	step, err := c.repo.GetStep(ctx, stepID)
	if err != nil {
		return nil, fmt.Errorf("failed to get step: %w", err)
	}
	if step == nil || step.RequestID != requestID {
		return nil, nil
	}
	return step, nil
}

func (c *Coordinator) handleUpdateStep(ctx context.Context, action *domain.WorkspaceAction, p domain.UpdateStepPayload) {
	step, err := c.ownedStep(ctx, p.StepID, action.RequestID)
	if err != nil {
		log.Error().Err(err).Int64("step_id", p.StepID).Msg("Failed to update step")
		return
	}
	if step == nil {
		log.Debug().Int64("step_id", p.StepID).Int64("request_id", action.RequestID).Msg("Ignoring update for step outside workspace")
		return
	}

	status := p.Status
	updated, err := c.repo.UpdateStep(ctx, p.StepID, domain.StepUpdate{Status: &status})
	if err != nil {
		log.Error().Err(err).Int64("step_id", p.StepID).Msg("Failed to update step")
		return
	}
	if updated == nil {
		log.Warn().Int64("step_id", p.StepID).Msg("Step removed before update")
		return
	}

	c.Broadcast(ctx, action.RequestID, domain.Frame{
		Type:      domain.FrameStepUpdated,
		UserID:    action.UserID,
		RequestID: action.RequestID,
		UserName:  action.UserName,
		Payload:   domain.StepPayload{Step: updated, Notes: p.Notes},
		Timestamp: c.now(),
	})
}

func (c *Coordinator) handleAssignTask(ctx context.Context, action *domain.WorkspaceAction, p domain.AssignTaskPayload) {
	step, err := c.ownedStep(ctx, p.StepID, action.RequestID)
	if err != nil {
		log.Error().Err(err).Int64("step_id", p.StepID).Msg("Failed to assign task")
		return
	}
	if step == nil {
		log.Debug().Int64("step_id", p.StepID).Int64("request_id", action.RequestID).Msg("Ignoring assignment for step outside workspace")
		return
	}

	updated, err := c.repo.UpdateStep(ctx, p.StepID, domain.StepUpdate{AssignedTo: p.AssignedTo})
	if err != nil {
		log.Error().Err(err).Int64("step_id", p.StepID).Msg("Failed to assign task")
		return
	}
	if updated == nil {
		log.Warn().Int64("step_id", p.StepID).Msg("Step removed before assignment")
		return
	}

	c.Broadcast(ctx, action.RequestID, domain.Frame{
		Type:      domain.FrameTaskAssigned,
		UserID:    action.UserID,
		RequestID: action.RequestID,
		UserName:  action.UserName,
		Payload:   domain.StepPayload{Step: updated},
		Timestamp: c.now(),
	})
}

func (c *Coordinator) handleAddComment(ctx context.Context, action *domain.WorkspaceAction, p domain.AddCommentPayload) {
	msg, err := c.repo.CreateMessage(ctx, domain.MessageCreate{
		RequestID: action.RequestID,
		SenderID:  strconv.FormatInt(action.UserID, 10),
		Content:   p.Content,
		Type:      domain.MessageTypeComment,
	})
	if err != nil {
		log.Error().Err(err).Int64("request_id", action.RequestID).Msg("Failed to add comment")
		return
	}

	c.Broadcast(ctx, action.RequestID, domain.Frame{
		Type:      domain.FrameCommentAdded,
		UserID:    action.UserID,
		RequestID: action.RequestID,
		UserName:  action.UserName,
		Payload:   domain.CommentPayload{Content: msg.Content, Timestamp: msg.Timestamp},
		Timestamp: c.now(),
	})
}

func (c *Coordinator) handleEditDocument(ctx context.Context, action *domain.WorkspaceAction, p domain.EditDocumentPayload) {
	c.Broadcast(ctx, action.RequestID, domain.Frame{
		Type:      domain.FrameDocumentUpdated,
		UserID:    action.UserID,
		RequestID: action.RequestID,
		UserName:  action.UserName,
		Payload:   p,
		Timestamp: c.now(),
	})
}

func (c *Coordinator) handlePing(clientID string, action *domain.WorkspaceAction) {
	now := c.now()

	c.mu.RLock()
	var joined []int64
	if cl, ok := c.clients[clientID]; ok {
		for id := range cl.requestIDs {
			joined = append(joined, id)
		}
	}
	c.mu.RUnlock()

	for _, requestID := range joined {
		c.sessions.Touch(requestID, action.UserID, now)
	}

	c.send(clientID, domain.Frame{Type: domain.FramePong, Timestamp: now})
}

// Broadcast delivers frame to every open connection that joined requestID
// and publishes it on the event bus. Closed or saturated connections are skipped.
func (c *Coordinator) Broadcast(ctx context.Context, requestID int64, frame domain.Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		log.Error().Err(err).Str("type", string(frame.Type)).Msg("Failed to encode workspace frame")
		return
	}

	c.mu.RLock()
	targets := make([]Transport, 0, len(c.clients))
	for _, cl := range c.clients {
		if _, ok := cl.requestIDs[requestID]; ok {
			targets = append(targets, cl.transport)
		}
	}
	c.mu.RUnlock()

	for _, t := range targets {
		if !t.IsOpen() {
			continue
		}
		if err := t.Send(data); err != nil {
			log.Warn().Err(err).Int64("request_id", requestID).Msg("Skipped workspace participant")
			continue
		}
		c.metrics.BroadcastFrames.WithLabelValues(string(frame.Type)).Inc()
	}

	if err := c.publisher.Publish(ctx, events.WorkspaceSubject(requestID, string(frame.Type)), frame); err != nil {
		log.Warn().Err(err).Int64("request_id", requestID).Msg("Failed to publish workspace frame")
	}
}

// send delivers a frame to a single client
func (c *Coordinator) send(clientID string, frame domain.Frame) {
	c.mu.RLock()
	cl, ok := c.clients[clientID]
	c.mu.RUnlock()
	if !ok || !cl.transport.IsOpen() {
		return
	}

	data, err := json.Marshal(frame)
	if err != nil {
		log.Error().Err(err).Str("type", string(frame.Type)).Msg("Failed to encode workspace frame")
		return
	}
	if err := cl.transport.Send(data); err != nil {
		log.Warn().Err(err).Str("client_id", clientID).Msg("Failed to send workspace frame")
		return
	}
	c.metrics.BroadcastFrames.WithLabelValues(string(frame.Type)).Inc()
}

// GetWorkspaceState returns a snapshot of the session for requestID
func (c *Coordinator) GetWorkspaceState(requestID int64) (*domain.WorkspaceState, bool) {
	return c.sessions.Get(requestID)
}

// GetAllActiveWorkspaces returns every live session
func (c *Coordinator) GetAllActiveWorkspaces() []domain.WorkspaceState {
	return c.sessions.All()
}

// Close closes every live connection. The transports' read loops then
// run the usual disconnect cleanup.
func (c *Coordinator) Close() {
	c.mu.RLock()
	transports := make([]Transport, 0, len(c.clients))
	for _, cl := range c.clients {
		transports = append(transports, cl.transport)
	}
	c.mu.RUnlock()

	for _, t := range transports {
		if err := t.Close(); err != nil {
			log.Debug().Err(err).Msg("Failed to close workspace transport")
		}
	}
}
