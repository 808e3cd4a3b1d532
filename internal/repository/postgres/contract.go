package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethdomperin2018/ai-assist/internal/domain"
	"github.com/jackc/pgx/v5"
)

// ContractRepository implements domain.ContractRepository
type ContractRepository struct {
	db *DB
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *DB) *ContractRepository {
	return &ContractRepository{db: db}
}

// GetContract retrieves a contract by ID
func (r *ContractRepository) GetContract(ctx context.Context, id int64) (*domain.Contract, error) {
	query := `
		SELECT id, request_id, user_id, content, status, reviewed_by, reviewed_at,
			created_at, updated_at, signed_at
		FROM contracts
		WHERE id = $1
	`

	var c domain.Contract
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.RequestID,
		&c.UserID,
		&c.Content,
		&c.Status,
		&c.ReviewedBy,
		&c.ReviewedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.SignedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}

	return &c, nil
}
