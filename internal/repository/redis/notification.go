package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/ethdomperin2018/ai-assist/internal/domain"
	"github.com/redis/go-redis/v9"
)

// markReadAttempts bounds the optimistic retries of MarkRead
const markReadAttempts = 5

const (
	notificationSeqKey     = "notification:seq"
	notificationPrefix     = "notification:"
	userNotificationPrefix = "notifications:user:"
)

// NotificationStore keeps notifications in Redis so several service
// instances share one id sequence and one set of per-user lists.
type NotificationStore struct {
	client *Client
}

var _ domain.NotificationStore = (*NotificationStore)(nil)

// NewNotificationStore creates a Redis-backed notification store
func NewNotificationStore(client *Client) *NotificationStore {
	return &NotificationStore{client: client}
}

func notificationKey(id int64) string {
	return notificationPrefix + strconv.FormatInt(id, 10)
}

func userNotificationsKey(userID int64) string {
	return userNotificationPrefix + strconv.FormatInt(userID, 10)
}

// NextID returns the next value of the shared sequence
func (s *NotificationStore) NextID(ctx context.Context) (int64, error) {
	id, err := s.client.rdb.Incr(ctx, notificationSeqKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate notification id: %w", err)
	}
	return id, nil
}

// Save writes the notification and indexes it under its user
func (s *NotificationStore) Save(ctx context.Context, n *domain.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	pipe := s.client.rdb.TxPipeline()
	pipe.Set(ctx, notificationKey(n.ID), data, 0)
	pipe.SAdd(ctx, userNotificationsKey(n.UserID), n.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}

	return nil
}

// Get retrieves a notification by ID
func (s *NotificationStore) Get(ctx context.Context, id int64) (*domain.Notification, error) {
	data, err := s.client.rdb.Get(ctx, notificationKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	var n domain.Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notification: %w", err)
	}

	return &n, nil
}

// MarkRead flags a notification as read. The key is watched between read
// and write, and the write only lands if the key still exists.
func (s *NotificationStore) MarkRead(ctx context.Context, id int64) (*domain.Notification, error) {
	key := notificationKey(id)

	for attempt := 0; attempt < markReadAttempts; attempt++ {
		var result *domain.Notification
		err := s.client.rdb.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					return nil
				}
				return err
			}

			var n domain.Notification
			if err := json.Unmarshal(data, &n); err != nil {
				return fmt.Errorf("failed to unmarshal notification: %w", err)
			}
			if n.IsRead {
				result = &n
				return nil
			}

			n.IsRead = true
			updated, err := json.Marshal(&n)
			if err != nil {
				return fmt.Errorf("failed to marshal notification: %w", err)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.SetXX(ctx, key, updated, redis.KeepTTL)
				return nil
			})
			if err != nil {
				return err
			}
			result = &n
			return nil
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to mark notification read: %w", err)
		}
		return result, nil
	}

	return nil, fmt.Errorf("failed to mark notification read: %w", redis.TxFailedErr)
}

// ListByUser returns a user's notifications in id order
func (s *NotificationStore) ListByUser(ctx context.Context, userID int64) ([]domain.Notification, error) {
	members, err := s.client.rdb.SMembers(ctx, userNotificationsKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list notification ids: %w", err)
	}
	if len(members) == 0 {
		return []domain.Notification{}, nil
	}

	keys := make([]string, 0, len(members))
	for _, m := range members {
		keys = append(keys, notificationPrefix+m)
	}

	values, err := s.client.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load notifications: %w", err)
	}

	notifications := make([]domain.Notification, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Deleted between SMEMBERS and MGET
			continue
		}
		var n domain.Notification
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			return nil, fmt.Errorf("failed to unmarshal notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	sort.Slice(notifications, func(i, j int) bool { return notifications[i].ID < notifications[j].ID })
	return notifications, nil
}

// Delete removes a notification, reporting whether it existed
func (s *NotificationStore) Delete(ctx context.Context, id int64) (bool, error) {
	n, err := s.Get(ctx, id)
	if err != nil || n == nil {
		return false, err
	}

	pipe := s.client.rdb.TxPipeline()
	del := pipe.Del(ctx, notificationKey(id))
	pipe.SRem(ctx, userNotificationsKey(n.UserID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to delete notification: %w", err)
	}

	return del.Val() > 0, nil
}
