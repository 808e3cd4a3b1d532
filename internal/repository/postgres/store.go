package postgres

import "github.com/ethdomperin2018/ai-assist/internal/domain"

// Store bundles the postgres repositories into a domain.Store
type Store struct {
	*UserRepository
	*RequestRepository
	*StepRepository
	*MessageRepository
	*MeetingRepository
	*ContractRepository
}

var _ domain.Store = (*Store)(nil)

// NewStore creates every repository over one pool
func NewStore(db *DB) *Store {
	return &Store{
		UserRepository:     NewUserRepository(db),
		RequestRepository:  NewRequestRepository(db),
		StepRepository:     NewStepRepository(db),
		MessageRepository:  NewMessageRepository(db),
		MeetingRepository:  NewMeetingRepository(db),
		ContractRepository: NewContractRepository(db),
	}
}
