package domain

// Store is the CRUD persistence collaborator consumed by the core services.
// Lookups of a missing id return (nil, nil); only infrastructure failures
// surface as errors.
type Store interface {
	UserRepository
	RequestRepository
	StepRepository
	MessageRepository
	MeetingRepository
	ContractRepository
}
