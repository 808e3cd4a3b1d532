package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ethdomperin2018/ai-assist/internal/domain"
)

// Store implements domain.Store over database/sql
type Store struct {
	db *DB
}

var _ domain.Store = (*Store)(nil)

// NewStore creates a store over an open DB
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const userColumns = `id, username, email, full_name, role, created_at`

func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	row := s.db.SQL.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.Role, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (s *Store) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.SQL.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const requestColumns = `id, user_id, title, description, status, cost_estimate, created_at, updated_at, completed_at`

func (s *Store) GetRequest(ctx context.Context, id int64) (*domain.Request, error) {
	row := s.db.SQL.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = ?`, id)

	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return req, nil
}

func (s *Store) GetAllRequests(ctx context.Context) ([]domain.Request, error) {
	return s.listRequests(ctx, `SELECT `+requestColumns+` FROM requests ORDER BY id`)
}

func (s *Store) GetRequestsByUserID(ctx context.Context, userID int64) ([]domain.Request, error) {
	return s.listRequests(ctx, `SELECT `+requestColumns+` FROM requests WHERE user_id = ? ORDER BY id`, userID)
}

func (s *Store) listRequests(ctx context.Context, query string, args ...any) ([]domain.Request, error) {
	rows, err := s.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []domain.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}

func scanRequest(row scanner) (*domain.Request, error) {
	var (
		req          domain.Request
		costEstimate sql.NullInt64
		completedAt  sql.NullTime
	)
	if err := row.Scan(
		&req.ID,
		&req.UserID,
		&req.Title,
		&req.Description,
		&req.Status,
		&costEstimate,
		&req.CreatedAt,
		&req.UpdatedAt,
		&completedAt,
	); err != nil {
		return nil, err
	}
	if costEstimate.Valid {
		req.CostEstimate = &costEstimate.Int64
	}
	if completedAt.Valid {
		req.CompletedAt = &completedAt.Time
	}
	return &req, nil
}

func (s *Store) stepColumns() string {
	return `id, request_id, title, description, assigned_to, status, ` + s.db.quote("order") +
		`, estimated_hours, created_at, updated_at, completed_at`
}

func (s *Store) GetStep(ctx context.Context, id int64) (*domain.Step, error) {
	return s.getStep(ctx, s.db.SQL, id)
}

func (s *Store) getStep(ctx context.Context, q querier, id int64) (*domain.Step, error) {
	row := q.QueryRowContext(ctx, `SELECT `+s.stepColumns()+` FROM steps WHERE id = ?`, id)

	step, err := scanStep(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get step: %w", err)
	}
	return step, nil
}

func (s *Store) GetStepsByRequestID(ctx context.Context, requestID int64) ([]domain.Step, error) {
	query := `SELECT ` + s.stepColumns() + ` FROM steps WHERE request_id = ? ORDER BY ` + s.db.quote("order") + `, id`

	rows, err := s.db.SQL.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	defer rows.Close()

	var steps []domain.Step
	for rows.Next() {
		step, err := scanStep(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		steps = append(steps, *step)
	}
	return steps, rows.Err()
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// UpdateStep applies a partial update inside a transaction and returns the new row
func (s *Store) UpdateStep(ctx context.Context, id int64, update domain.StepUpdate) (*domain.Step, error) {
	tx, err := s.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := s.getStep(ctx, tx, id)
	if err != nil || current == nil {
		return nil, err
	}

	now := time.Now().UTC()
	status := current.Status
	completedAt := current.CompletedAt
	if update.Status != nil {
		status = *update.Status
		switch {
		case status != domain.StepStatusCompleted:
			completedAt = nil
		case current.Status != domain.StepStatusCompleted || completedAt == nil:
			completedAt = &now
		}
	}
	assignedTo := current.AssignedTo
	if update.AssignedTo != nil {
		assignedTo = *update.AssignedTo
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE steps SET status = ?, assigned_to = ?, completed_at = ?, updated_at = ? WHERE id = ?`,
		string(status), assignedTo.String(), completedAt, now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update step: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit step update: %w", err)
	}

	current.Status = status
	current.AssignedTo = assignedTo
	current.CompletedAt = completedAt
	current.UpdatedAt = now
	return current, nil
}

func scanStep(row scanner) (*domain.Step, error) {
	var (
		st          domain.Step
		hours       sql.NullInt64
		completedAt sql.NullTime
	)
	if err := row.Scan(
		&st.ID,
		&st.RequestID,
		&st.Title,
		&st.Description,
		&st.AssignedTo,
		&st.Status,
		&st.Order,
		&hours,
		&st.CreatedAt,
		&st.UpdatedAt,
		&completedAt,
	); err != nil {
		return nil, err
	}
	if hours.Valid {
		h := int(hours.Int64)
		st.EstimatedHours = &h
	}
	if completedAt.Valid {
		st.CompletedAt = &completedAt.Time
	}
	return &st, nil
}

func (s *Store) CreateMessage(ctx context.Context, input domain.MessageCreate) (*domain.Message, error) {
	msg := domain.Message{
		RequestID: input.RequestID,
		SenderID:  input.SenderID,
		Content:   input.Content,
		Type:      input.Type,
		Timestamp: time.Now().UTC(),
	}
	if msg.Type == "" {
		msg.Type = domain.MessageTypeChat
	}

	res, err := s.db.SQL.ExecContext(ctx,
		`INSERT INTO messages (request_id, sender_id, content, type, `+s.db.quote("timestamp")+`) VALUES (?, ?, ?, ?, ?)`,
		msg.RequestID, msg.SenderID, msg.Content, string(msg.Type), msg.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	msg.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read message id: %w", err)
	}
	return &msg, nil
}

func (s *Store) GetMessagesByRequestID(ctx context.Context, requestID int64) ([]domain.Message, error) {
	ts := s.db.quote("timestamp")
	rows, err := s.db.SQL.QueryContext(ctx,
		`SELECT id, request_id, sender_id, content, type, `+ts+` FROM messages WHERE request_id = ? ORDER BY `+ts+`, id`,
		requestID,
	)
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

const meetingColumns = `id, request_id, user_id, team_member_id, scheduled_for, duration, topic, status, created_at, updated_at`

func (s *Store) GetMeeting(ctx context.Context, id int64) (*domain.Meeting, error) {
	row := s.db.SQL.QueryRowContext(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id = ?`, id)

	m, err := scanMeeting(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}
	return m, nil
}

func (s *Store) GetMeetingsByRequestID(ctx context.Context, requestID int64) ([]domain.Meeting, error) {
	rows, err := s.db.SQL.QueryContext(ctx,
		`SELECT `+meetingColumns+` FROM meetings WHERE request_id = ? ORDER BY scheduled_for`, requestID)
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

func scanMeeting(row scanner) (*domain.Meeting, error) {
	var (
		m          domain.Meeting
		teamMember sql.NullInt64
	)
	if err := row.Scan(
		&m.ID,
		&m.RequestID,
		&m.UserID,
		&teamMember,
		&m.ScheduledFor,
		&m.Duration,
		&m.Topic,
		&m.Status,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if teamMember.Valid {
		m.TeamMemberID = &teamMember.Int64
	}
	return &m, nil
}

func (s *Store) GetContract(ctx context.Context, id int64) (*domain.Contract, error) {
	row := s.db.SQL.QueryRowContext(ctx, `
		SELECT id, request_id, user_id, content, status, reviewed_by, reviewed_at,
			created_at, updated_at, signed_at
		FROM contracts WHERE id = ?`, id)

	var (
		c          domain.Contract
		reviewedBy sql.NullInt64
		reviewedAt sql.NullTime
		signedAt   sql.NullTime
	)
	err := row.Scan(
		&c.ID,
		&c.RequestID,
		&c.UserID,
		&c.Content,
		&c.Status,
		&reviewedBy,
		&reviewedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
		&signedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	if reviewedBy.Valid {
		c.ReviewedBy = &reviewedBy.Int64
	}
	if reviewedAt.Valid {
		c.ReviewedAt = &reviewedAt.Time
	}
	if signedAt.Valid {
		c.SignedAt = &signedAt.Time
	}
	return &c, nil
}
