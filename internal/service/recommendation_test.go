package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ethdomperin2018/ai-assist/internal/domain"
	"github.com/ethdomperin2018/ai-assist/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func hours(h int) *int { return &h }

const retreatDescription = "Plan a corporate retreat for the sales team in Lisbon"

func seedRetreatHistory(repo *memory.Store, count int, titles ...string) {
	for i := 0; i < count; i++ {
		req := repo.AddRequest(domain.Request{UserID: 1, Title: "Retreat", Description: retreatDescription, Status: domain.RequestStatusCompleted})
		for order, title := range titles {
			repo.AddStep(domain.Step{
				RequestID:      req.ID,
				Title:          title,
				AssignedTo:     domain.AssignHuman(""),
				Status:         domain.StepStatusCompleted,
				Order:          order,
				EstimatedHours: hours(2 + i*2),
			})
		}
	}
}

func TestRecommendationService_GetRecommendedSteps_FromHistory(t *testing.T) {
	repo := memory.NewStore()
	seedRetreatHistory(repo, 2, "Book venue", "Arrange catering", "Send invitations")
	// unrelated and unfinished requests never contribute
	repo.AddRequest(domain.Request{UserID: 1, Description: retreatDescription, Status: domain.RequestStatusInProgress})
	repo.AddRequest(domain.Request{UserID: 1, Description: "Fix the office printer", Status: domain.RequestStatusCompleted})

	ai := new(MockAIAnalyzer)
	svc := NewRecommendationService(repo, ai)

	recs, err := svc.GetRecommendedSteps(context.Background(), retreatDescription, 1)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	first := recs[0]
	assert.Equal(t, "Book venue", first.Title)
	assert.Equal(t, 40, first.Score.Score)
	assert.InDelta(t, 2.0/3.0, first.Score.Confidence, 1e-9)
	assert.Equal(t, 3.0, first.EstimatedHours)
	assert.Equal(t, []string{
		"Similar to steps in 2 successful requests",
		"Typically takes 3.0 hours to complete",
	}, first.Score.Reasons)

	ai.AssertNotCalled(t, "AnalyzeRequest", mock.Anything, mock.Anything)
}

func TestRecommendationService_GetRecommendedSteps_CapsAtFive(t *testing.T) {
	repo := memory.NewStore()
	seedRetreatHistory(repo, 1, "Book venue", "Arrange catering", "Send invitations", "Hire photographer", "Plan activities", "Organise transport")

	recs, err := NewRecommendationService(repo, nil).GetRecommendedSteps(context.Background(), retreatDescription, 1)
	require.NoError(t, err)
	assert.Len(t, recs, 5)
}

func TestRecommendationService_GetRecommendedSteps_AIFallback(t *testing.T) {
	repo := memory.NewStore()
	seedRetreatHistory(repo, 1, "Book venue")

	ai := new(MockAIAnalyzer)
	ai.On("AnalyzeRequest", mock.Anything, retreatDescription).Return(&domain.AIAnalysis{
		Plan: []domain.AIStep{
			{Step: "Book venue", AssignedTo: domain.AssignHuman(""), EstimatedHours: 2},
			{Step: "Send invitations", AssignedTo: domain.AssignAI(), EstimatedHours: 1},
			{Step: "Send invitations", AssignedTo: domain.AssignAI(), EstimatedHours: 1},
			{Step: "Hire a DJ", AssignedTo: domain.AssignHuman(""), EstimatedHours: 0.5},
		},
	}, nil)

	recs, err := NewRecommendationService(repo, ai).GetRecommendedSteps(context.Background(), retreatDescription, 1)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, "Book venue", recs[0].Title)
	assert.Equal(t, 20, recs[0].Score.Score)

	assert.Equal(t, "Send invitations", recs[1].Title)
	assert.Equal(t, "AI-recommended step: Send invitations", recs[1].Description)
	assert.Equal(t, 75, recs[1].Score.Score)
	assert.Equal(t, 0.7, recs[1].Score.Confidence)
	assert.True(t, recs[1].AssignedTo.IsAI())

	assert.Equal(t, "Estimated to take 0.5 hours to complete", recs[2].Score.Reasons[1])
	ai.AssertExpectations(t)
}

func TestRecommendationService_GetRecommendedSteps_AIFailure(t *testing.T) {
	ai := new(MockAIAnalyzer)
	ai.On("AnalyzeRequest", mock.Anything, mock.Anything).Return(nil, errors.New("provider down"))

	recs, err := NewRecommendationService(memory.NewStore(), ai).GetRecommendedSteps(context.Background(), "Anything at all", 1)
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestRecommendationService_GetRecommendedSteps_StoreFailure(t *testing.T) {
	repo := new(MockStore)
	repo.On("GetAllRequests", mock.Anything).Return(nil, errors.New("connection reset"))

	_, err := NewRecommendationService(repo, nil).GetRecommendedSteps(context.Background(), "desc", 1)
	assert.ErrorContains(t, err, "connection reset")
}

func TestAnalyzeStepPatterns_GreedyFirstMatch(t *testing.T) {
	steps := []domain.Step{
		{Title: "Book the venue"},
		{Title: "Send invitations"},
		{Title: "Book the venue early"},
		{Title: "Send invitations"},
		{Title: "Send invitations"},
	}

	patterns := analyzeStepPatterns(steps)
	require.Len(t, patterns, 2)
	assert.Equal(t, "Send invitations", patterns[0].title)
	assert.Equal(t, 3, patterns[0].frequency())
	assert.Equal(t, "Book the venue", patterns[1].title)
	assert.Equal(t, 2, patterns[1].frequency())
}

func TestRecommendationService_GetResourceRecommendations(t *testing.T) {
	repo := memory.NewStore()
	repo.AddUser(domain.User{Username: "client", FullName: "Carla Client", Role: domain.UserRoleClient})
	repo.AddUser(domain.User{Username: "alice", FullName: "Alice Smith", Role: domain.UserRoleTeamMember})
	repo.AddUser(domain.User{Username: "bob", FullName: "Bob Jones", Role: domain.UserRoleAdmin})
	repo.AddUser(domain.User{Username: "dana", FullName: "Dana Idle", Role: domain.UserRoleTeamMember})

	const description = "Review the legal contract for the office lease"

	past := repo.AddRequest(domain.Request{UserID: 1, Description: description, Status: domain.RequestStatusCompleted})
	repo.AddStep(domain.Step{RequestID: past.ID, Title: "Read lease", AssignedTo: domain.AssignHuman("alice"), Status: domain.StepStatusCompleted})

	other := repo.AddRequest(domain.Request{UserID: 1, Description: "Organise a birthday party", Status: domain.RequestStatusCompleted})
	repo.AddStep(domain.Step{RequestID: other.ID, Title: "Buy cake", AssignedTo: domain.AssignHuman("bob"), Status: domain.StepStatusCompleted})

	target := repo.AddRequest(domain.Request{UserID: 1, Description: description})

	ai := new(MockAIAnalyzer)
	ai.On("AvailableProviders").Return([]string{"anthropic", "openai", "unknown"})

	recs, err := NewRecommendationService(repo, ai).GetResourceRecommendations(context.Background(), target.ID)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, domain.ResourceTeamMember, recs[0].Type)
	assert.Equal(t, "Alice Smith", recs[0].Name)
	assert.Equal(t, 100, recs[0].Score.Score)
	assert.Equal(t, 1.0, recs[0].Score.Confidence)
	assert.Equal(t, "Worked on 1 similar requests", recs[0].Score.Reasons[0])

	assert.Equal(t, domain.ResourceProvider, recs[1].Type)
	assert.Equal(t, "Anthropic", recs[1].Name)
	assert.Equal(t, 90, recs[1].Score.Score)
	assert.Equal(t, 0.9, recs[1].Score.Confidence)

	assert.Equal(t, "Openai", recs[2].Name)
	assert.Equal(t, 70, recs[2].Score.Score)
}

func TestRecommendationService_GetResourceRecommendations_UnknownRequest(t *testing.T) {
	recs, err := NewRecommendationService(memory.NewStore(), nil).GetResourceRecommendations(context.Background(), 42)
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestRecommendationService_GetOptimizationRecommendations(t *testing.T) {
	ctx := context.Background()

	t.Run("human research step is a cost candidate", func(t *testing.T) {
		repo := memory.NewStore()
		req := repo.AddRequest(domain.Request{UserID: 1, Title: "Market study"})
		repo.AddStep(domain.Step{RequestID: req.ID, Title: "Research competitors", AssignedTo: domain.AssignHuman(""), EstimatedHours: hours(3)})
		repo.AddStep(domain.Step{RequestID: req.ID, Title: "Research suppliers", AssignedTo: domain.AssignHuman("alice"), Status: domain.StepStatusCompleted, EstimatedHours: hours(5)})

		recs, err := NewRecommendationService(repo, nil).GetOptimizationRecommendations(ctx, req.ID)
		require.NoError(t, err)
		require.Len(t, recs, 1)

		rec := recs[0]
		assert.Equal(t, domain.OptimizationCost, rec.Type)
		assert.Equal(t, 85, rec.Score.Score)
		assert.Equal(t, 0.8, rec.Score.Confidence)
		require.NotNil(t, rec.PotentialSavings)
		assert.Equal(t, 300.0, *rec.PotentialSavings)
		require.NotNil(t, rec.PotentialTimeReduction)
		assert.Equal(t, 3.0, *rec.PotentialTimeReduction)
		assert.Contains(t, rec.Description, `"Research competitors"`)
	})

	t.Run("missing estimate saves two hours", func(t *testing.T) {
		repo := memory.NewStore()
		req := repo.AddRequest(domain.Request{UserID: 1})
		repo.AddStep(domain.Step{RequestID: req.ID, Title: "Write blog post", AssignedTo: domain.AssignHuman("")})

		recs, err := NewRecommendationService(repo, nil).GetOptimizationRecommendations(ctx, req.ID)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, 80, recs[0].Score.Score)
		assert.Equal(t, 200.0, *recs[0].PotentialSavings)
	})

	t.Run("similar steps can be combined", func(t *testing.T) {
		repo := memory.NewStore()
		req := repo.AddRequest(domain.Request{UserID: 1})
		repo.AddStep(domain.Step{RequestID: req.ID, Title: "Prepare press release", AssignedTo: domain.AssignAI(), EstimatedHours: hours(2)})
		repo.AddStep(domain.Step{RequestID: req.ID, Title: "Prepare press release copy", AssignedTo: domain.AssignAI(), EstimatedHours: hours(4)})

		recs, err := NewRecommendationService(repo, nil).GetOptimizationRecommendations(ctx, req.ID)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, domain.OptimizationTime, recs[0].Type)
		assert.Equal(t, 80, recs[0].Score.Score)
		assert.Equal(t, 0.75, recs[0].Score.Confidence)
		assert.Equal(t, 2.0, *recs[0].PotentialTimeReduction)
		assert.Nil(t, recs[0].PotentialSavings)
		assert.Equal(t, "Steps have 75% similarity", recs[0].Score.Reasons[0])
	})

	t.Run("quality gates only while in progress", func(t *testing.T) {
		repo := memory.NewStore()
		pending := repo.AddRequest(domain.Request{UserID: 1})
		repo.AddStep(domain.Step{RequestID: pending.ID, Title: "Final sign-off", AssignedTo: domain.AssignAI()})

		recs, err := NewRecommendationService(repo, nil).GetOptimizationRecommendations(ctx, pending.ID)
		require.NoError(t, err)
		assert.Empty(t, recs)

		active := repo.AddRequest(domain.Request{UserID: 1, Status: domain.RequestStatusInProgress})
		repo.AddStep(domain.Step{RequestID: active.ID, Title: "Final sign-off", AssignedTo: domain.AssignAI()})

		recs, err = NewRecommendationService(repo, nil).GetOptimizationRecommendations(ctx, active.ID)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, domain.OptimizationQuality, recs[0].Type)
		assert.Equal(t, 85, recs[0].Score.Score)
		assert.Equal(t, 0.8, recs[0].Score.Confidence)
	})

	t.Run("unknown request", func(t *testing.T) {
		recs, err := NewRecommendationService(memory.NewStore(), nil).GetOptimizationRecommendations(ctx, 9)
		require.NoError(t, err)
		assert.NotNil(t, recs)
		assert.Empty(t, recs)
	})
}
