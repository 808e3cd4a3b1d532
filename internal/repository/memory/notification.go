package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ethdomperin2018/ai-assist/internal/domain"
)

// NotificationStore is the process-local notification store.
// Contents are lost on restart.
type NotificationStore struct {
	mu            sync.RWMutex
	notifications map[int64]domain.Notification
	lastID        int64
}

var _ domain.NotificationStore = (*NotificationStore)(nil)

// NewNotificationStore creates an empty store
func NewNotificationStore() *NotificationStore {
	return &NotificationStore{notifications: make(map[int64]domain.Notification)}
}

func (s *NotificationStore) NextID(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	return s.lastID, nil
}

func (s *NotificationStore) Save(ctx context.Context, n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.ID] = *n
	return nil
}

func (s *NotificationStore) Get(ctx context.Context, id int64) (*domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notifications[id]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, id int64) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return nil, nil
	}
	n.IsRead = true
	s.notifications[id] = n
	return &n, nil
}

func (s *NotificationStore) ListByUser(ctx context.Context, userID int64) ([]domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []domain.Notification{}
	for _, n := range s.notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *NotificationStore) Delete(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notifications[id]; !ok {
		return false, nil
	}
	delete(s.notifications, id)
	return true, nil
}
