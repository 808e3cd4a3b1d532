package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethdomperin2018/ai-assist/internal/domain"
	"github.com/jackc/pgx/v5"
)

const stepColumns = `id, request_id, title, description, assigned_to, status, "order", estimated_hours, created_at, updated_at, completed_at`

// StepRepository implements domain.StepRepository
type StepRepository struct {
	db *DB
}

// NewStepRepository creates a new step repository
func NewStepRepository(db *DB) *StepRepository {
	return &StepRepository{db: db}
}

// GetStep retrieves a step by ID
func (r *StepRepository) GetStep(ctx context.Context, id int64) (*domain.Step, error) {
	query := `SELECT ` + stepColumns + ` FROM steps WHERE id = $1`

	step, err := scanStep(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get step: %w", err)
	}

	return step, nil
}

// GetStepsByRequestID lists the steps of a request in plan order
func (r *StepRepository) GetStepsByRequestID(ctx context.Context, requestID int64) ([]domain.Step, error) {
	query := `SELECT ` + stepColumns + ` FROM steps WHERE request_id = $1 ORDER BY "order", id`

	rows, err := r.db.Pool.Query(ctx, query, requestID)
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

// UpdateStep applies a partial update. completed_at is stamped when the step
// enters completed and cleared when it leaves.
func (r *StepRepository) UpdateStep(ctx context.Context, id int64, update domain.StepUpdate) (*domain.Step, error) {
	query := `
		UPDATE steps SET
			status = COALESCE($2, status),
			assigned_to = COALESCE($3, assigned_to),
			completed_at = CASE
				WHEN $2::text IS NULL THEN completed_at
				WHEN $2::text = 'completed' AND status = 'completed' THEN COALESCE(completed_at, NOW())
				WHEN $2::text = 'completed' THEN NOW()
				ELSE NULL
			END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + stepColumns

	var status, assignedTo *string
	if update.Status != nil {
		s := string(*update.Status)
		status = &s
	}
	if update.AssignedTo != nil {
		a := update.AssignedTo.String()
		assignedTo = &a
	}

	step, err := scanStep(r.db.Pool.QueryRow(ctx, query, id, status, assignedTo))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update step: %w", err)
	}

	return step, nil
}

func scanStep(row pgx.Row) (*domain.Step, error) {
	var s domain.Step
	if err := row.Scan(
		&s.ID,
		&s.RequestID,
		&s.Title,
		&s.Description,
		&s.AssignedTo,
		&s.Status,
		&s.Order,
		&s.EstimatedHours,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.CompletedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}
