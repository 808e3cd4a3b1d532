package postgres

import (
	"context"
	"fmt"

	"github.com/ethdomperin2018/ai-assist/internal/domain"
)

// MessageRepository implements domain.MessageRepository
type MessageRepository struct {
	db *DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// CreateMessage inserts a new message and returns the stored row
func (r *MessageRepository) CreateMessage(ctx context.Context, input domain.MessageCreate) (*domain.Message, error) {
	query := `
		INSERT INTO messages (request_id, sender_id, content, type, timestamp)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, request_id, sender_id, content, type, timestamp
	`

	msgType := input.Type
	if msgType == "" {
		msgType = domain.MessageTypeChat
	}

	var m domain.Message
	err := r.db.Pool.QueryRow(ctx, query, input.RequestID, input.SenderID, input.Content, msgType).Scan(
		&m.ID,
		&m.RequestID,
		&m.SenderID,
		&m.Content,
		&m.Type,
		&m.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	return &m, nil
}

// GetMessagesByRequestID retrieves the messages of a request, oldest first
func (r *MessageRepository) GetMessagesByRequestID(ctx context.Context, requestID int64) ([]domain.Message, error) {
	query := `
		SELECT id, request_id, sender_id, content, type, timestamp
		FROM messages
		WHERE request_id = $1
		ORDER BY timestamp, id
	`

	rows, err := r.db.Pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.RequestID, &m.SenderID, &m.Content, &m.Type, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}
