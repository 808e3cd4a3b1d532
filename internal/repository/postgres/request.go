package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethdomperin2018/ai-assist/internal/domain"
	"github.com/jackc/pgx/v5"
)

const requestColumns = `id, user_id, title, description, status, cost_estimate, created_at, updated_at, completed_at`

// RequestRepository implements domain.RequestRepository
type RequestRepository struct {
	db *DB
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// GetRequest retrieves a request by ID
func (r *RequestRepository) GetRequest(ctx context.Context, id int64) (*domain.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1`

	req, err := scanRequest(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	return req, nil
}

// GetAllRequests lists every request ordered by id
func (r *RequestRepository) GetAllRequests(ctx context.Context) ([]domain.Request, error) {
	return r.list(ctx, `SELECT `+requestColumns+` FROM requests ORDER BY id`)
}

// GetRequestsByUserID lists the requests owned by a user
func (r *RequestRepository) GetRequestsByUserID(ctx context.Context, userID int64) ([]domain.Request, error) {
	return r.list(ctx, `SELECT `+requestColumns+` FROM requests WHERE user_id = $1 ORDER BY id`, userID)
}

func (r *RequestRepository) list(ctx context.Context, query string, args ...any) ([]domain.Request, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
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

func scanRequest(row pgx.Row) (*domain.Request, error) {
	var req domain.Request
	if err := row.Scan(
		&req.ID,
		&req.UserID,
		&req.Title,
		&req.Description,
		&req.Status,
		&req.CostEstimate,
		&req.CreatedAt,
		&req.UpdatedAt,
		&req.CompletedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}
