// Package memory provides an in-process implementation of domain.Store.
// It backs tests and single-node development deployments.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ethdomperin2018/ai-assist/internal/domain"
)

// Store keeps every entity in maps keyed by id
type Store struct {
	mu sync.RWMutex

	users     map[int64]domain.User
	requests  map[int64]domain.Request
	steps     map[int64]domain.Step
	messages  map[int64]domain.Message
	meetings  map[int64]domain.Meeting
	contracts map[int64]domain.Contract

	nextUserID     int64
	nextRequestID  int64
	nextStepID     int64
	nextMessageID  int64
	nextMeetingID  int64
	nextContractID int64
}

var _ domain.Store = (*Store)(nil)

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:          make(map[int64]domain.User),
		requests:       make(map[int64]domain.Request),
		steps:          make(map[int64]domain.Step),
		messages:       make(map[int64]domain.Message),
		meetings:       make(map[int64]domain.Meeting),
		contracts:      make(map[int64]domain.Contract),
		nextUserID:     1,
		nextRequestID:  1,
		nextStepID:     1,
		nextMessageID:  1,
		nextMeetingID:  1,
		nextContractID: 1,
	}
}

// AddUser inserts a user; a zero ID is replaced with the next free id
func (s *Store) AddUser(u domain.User) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = assignID(u.ID, &s.nextUserID)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	s.users[u.ID] = u
	return u
}

// AddRequest inserts a request; a zero ID is replaced with the next free id
func (s *Store) AddRequest(r domain.Request) domain.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = assignID(r.ID, &s.nextRequestID)
	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = now
	}
	if r.Status == "" {
		r.Status = domain.RequestStatusPending
	}
	s.requests[r.ID] = r
	return r
}

// AddStep inserts a step; a zero ID is replaced with the next free id
func (s *Store) AddStep(st domain.Step) domain.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.ID = assignID(st.ID, &s.nextStepID)
	now := time.Now()
	if st.CreatedAt.IsZero() {
		st.CreatedAt = now
	}
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = now
	}
	if st.Status == "" {
		st.Status = domain.StepStatusPending
	}
	s.steps[st.ID] = st
	return st
}

// AddMeeting inserts a meeting; a zero ID is replaced with the next free id
func (s *Store) AddMeeting(m domain.Meeting) domain.Meeting {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = assignID(m.ID, &s.nextMeetingID)
	if m.Status == "" {
		m.Status = domain.MeetingStatusScheduled
	}
	s.meetings[m.ID] = m
	return m
}

// AddContract inserts a contract; a zero ID is replaced with the next free id
func (s *Store) AddContract(c domain.Contract) domain.Contract {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = assignID(c.ID, &s.nextContractID)
	if c.Status == "" {
		c.Status = domain.ContractStatusDraft
	}
	s.contracts[c.ID] = c
	return c
}

func assignID(id int64, next *int64) int64 {
	if id == 0 {
		id = *next
	}
	if id >= *next {
		*next = id + 1
	}
	return id
}

func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *Store) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *Store) GetRequest(ctx context.Context, id int64) (*domain.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *Store) GetAllRequests(ctx context.Context) ([]domain.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	requests := make([]domain.Request, 0, len(s.requests))
	for _, r := range s.requests {
		requests = append(requests, r)
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].ID < requests[j].ID })
	return requests, nil
}

func (s *Store) GetRequestsByUserID(ctx context.Context, userID int64) ([]domain.Request, error) {
	all, _ := s.GetAllRequests(ctx)
	var requests []domain.Request
	for _, r := range all {
		if r.UserID == userID {
			requests = append(requests, r)
		}
	}
	return requests, nil
}

func (s *Store) GetStep(ctx context.Context, id int64) (*domain.Step, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.steps[id]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (s *Store) GetStepsByRequestID(ctx context.Context, requestID int64) ([]domain.Step, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var steps []domain.Step
	for _, st := range s.steps {
		if st.RequestID == requestID {
			steps = append(steps, st)
		}
	}
	sort.Slice(steps, func(i, j int) bool {
		if steps[i].Order != steps[j].Order {
			return steps[i].Order < steps[j].Order
		}
		return steps[i].ID < steps[j].ID
	})
	return steps, nil
}

func (s *Store) UpdateStep(ctx context.Context, id int64, update domain.StepUpdate) (*domain.Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.steps[id]
	if !ok {
		return nil, nil
	}

	now := time.Now()
	if update.Status != nil {
		wasCompleted := st.Status == domain.StepStatusCompleted
		st.Status = *update.Status
		switch {
		case st.Status != domain.StepStatusCompleted:
			st.CompletedAt = nil
		case !wasCompleted || st.CompletedAt == nil:
			st.CompletedAt = &now
		}
	}
	if update.AssignedTo != nil {
		st.AssignedTo = *update.AssignedTo
	}
	st.UpdatedAt = now

	s.steps[id] = st
	return &st, nil
}

func (s *Store) CreateMessage(ctx context.Context, input domain.MessageCreate) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := domain.Message{
		ID:        assignID(0, &s.nextMessageID),
		RequestID: input.RequestID,
		SenderID:  input.SenderID,
		Content:   input.Content,
		Type:      input.Type,
		Timestamp: time.Now(),
	}
	if msg.Type == "" {
		msg.Type = domain.MessageTypeChat
	}
	s.messages[msg.ID] = msg
	return &msg, nil
}

func (s *Store) GetMessagesByRequestID(ctx context.Context, requestID int64) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var messages []domain.Message
	for _, m := range s.messages {
		if m.RequestID == requestID {
			messages = append(messages, m)
		}
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].ID < messages[j].ID })
	return messages, nil
}

func (s *Store) GetMeeting(ctx context.Context, id int64) (*domain.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.meetings[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (s *Store) GetMeetingsByRequestID(ctx context.Context, requestID int64) ([]domain.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var meetings []domain.Meeting
	for _, m := range s.meetings {
		if m.RequestID == requestID {
			meetings = append(meetings, m)
		}
	}
	sort.Slice(meetings, func(i, j int) bool { return meetings[i].ScheduledFor.Before(meetings[j].ScheduledFor) })
	return meetings, nil
}

func (s *Store) GetContract(ctx context.Context, id int64) (*domain.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contracts[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}
