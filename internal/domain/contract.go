package domain

import (
	"context"
	"time"
)

// ContractStatus represents the state of a drafted contract
type ContractStatus string

const (
	ContractStatusDraft     ContractStatus = "draft"
	ContractStatusSent      ContractStatus = "sent"
	ContractStatusSigned    ContractStatus = "signed"
	ContractStatusCancelled ContractStatus = "cancelled"
)

// Contract represents a contract drafted for a request
type Contract struct {
	ID         int64          `json:"id"`
	RequestID  int64          `json:"requestId"`
	UserID     int64          `json:"userId"`
	Content    string         `json:"content"`
	Status     ContractStatus `json:"status"`
	ReviewedBy *int64         `json:"reviewedBy,omitempty"`
	ReviewedAt *time.Time     `json:"reviewedAt,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	SignedAt   *time.Time     `json:"signedAt,omitempty"`
}

// ContractRepository defines the interface for contract storage
type ContractRepository interface {
	GetContract(ctx context.Context, id int64) (*Contract, error)
}
