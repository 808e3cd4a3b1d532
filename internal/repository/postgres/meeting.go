package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethdomperin2018/ai-assist/internal/domain"
	"github.com/jackc/pgx/v5"
)

const meetingColumns = `id, request_id, user_id, team_member_id, scheduled_for, duration, topic, status, created_at, updated_at`

// MeetingRepository implements domain.MeetingRepository
type MeetingRepository struct {
	db *DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// GetMeeting retrieves a meeting by ID
func (r *MeetingRepository) GetMeeting(ctx context.Context, id int64) (*domain.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE id = $1`

	m, err := scanMeeting(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}

	return m, nil
}

// GetMeetingsByRequestID lists the meetings of a request by schedule
func (r *MeetingRepository) GetMeetingsByRequestID(ctx context.Context, requestID int64) ([]domain.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE request_id = $1 ORDER BY scheduled_for`

	rows, err := r.db.Pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	defer rows.Close()

	var meetings []domain.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meeting: %w", err)
		}
		meetings = append(meetings, *m)
	}

	return meetings, rows.Err()
}

func scanMeeting(row pgx.Row) (*domain.Meeting, error) {
	var m domain.Meeting
	if err := row.Scan(
		&m.ID,
		&m.RequestID,
		&m.UserID,
		&m.TeamMemberID,
		&m.ScheduledFor,
		&m.Duration,
		&m.Topic,
		&m.Status,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}
