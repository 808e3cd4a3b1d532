package service

import (
	"context"

	"github.com/ethdomperin2018/ai-assist/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockStore mocks the domain.Store persistence collaborator
type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockStore) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockStore) GetRequest(ctx context.Context, id int64) (*domain.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Request), args.Error(1)
}

func (m *MockStore) GetAllRequests(ctx context.Context) ([]domain.Request, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Request), args.Error(1)
}

func (m *MockStore) GetRequestsByUserID(ctx context.Context, userID int64) ([]domain.Request, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Request), args.Error(1)
}

func (m *MockStore) GetStep(ctx context.Context, id int64) (*domain.Step, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Step), args.Error(1)
}

func (m *MockStore) GetStepsByRequestID(ctx context.Context, requestID int64) ([]domain.Step, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Step), args.Error(1)
}

func (m *MockStore) UpdateStep(ctx context.Context, id int64, update domain.StepUpdate) (*domain.Step, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Step), args.Error(1)
}

func (m *MockStore) CreateMessage(ctx context.Context, input domain.MessageCreate) (*domain.Message, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockStore) GetMessagesByRequestID(ctx context.Context, requestID int64) ([]domain.Message, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockStore) GetMeeting(ctx context.Context, id int64) (*domain.Meeting, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Meeting), args.Error(1)
}

func (m *MockStore) GetMeetingsByRequestID(ctx context.Context, requestID int64) ([]domain.Meeting, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Meeting), args.Error(1)
}

func (m *MockStore) GetContract(ctx context.Context, id int64) (*domain.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contract), args.Error(1)
}

// MockAIAnalyzer mocks the AI collaborator
type MockAIAnalyzer struct {
	mock.Mock
}

func (m *MockAIAnalyzer) AnalyzeRequest(ctx context.Context, description string) (*domain.AIAnalysis, error) {
	args := m.Called(ctx, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AIAnalysis), args.Error(1)
}

func (m *MockAIAnalyzer) AvailableProviders() []string {
	args := m.Called()
	return args.Get(0).([]string)
}
