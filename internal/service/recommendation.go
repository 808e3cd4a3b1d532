package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ethdomperin2018/ai-assist/internal/domain"
	"github.com/ethdomperin2018/ai-assist/internal/similarity"
	"github.com/rs/zerolog/log"
)

// Scoring constants. HourlyRate prices human hours saved by automation.
const (
	HourlyRate = 100.0

	similarRequestThreshold   = 0.6
	stepPatternThreshold      = 0.7
	teamMemberThreshold       = 0.4
	duplicateStepThreshold    = 0.6
	maxPatternRecommendations = 5
	minHistoricalSteps        = 3

	aiStepScore      = 75
	aiStepConfidence = 0.7

	defaultSavedHours       = 2
	defaultStepHours        = 1
	duplicateStepScore      = 80
	qualityReviewScore      = 85
	qualityReviewConfidence = 0.8
)

var qualityKeywords = []string{"final", "review", "approve", "deliver", "submit"}

// automationRule marks a step as a candidate for AI reassignment
type automationRule struct {
	keywords   []string
	score      int
	confidence float64
	reason     string
}

// Rules are checked in order; the first match wins
var automationRules = []automationRule{
	{
		keywords:   []string{"research", "gather", "collect", "information"},
		score:      85,
		confidence: 0.8,
		reason:     "Research and information gathering tasks can be efficiently handled by AI.",
	},
	{
		keywords:   []string{"write", "draft", "create", "content", "summary"},
		score:      80,
		confidence: 0.75,
		reason:     "Content creation and drafting can be handled by AI with human review.",
	},
	{
		keywords:   []string{"analyze", "report", "summarize", "data"},
		score:      75,
		confidence: 0.7,
		reason:     "Data analysis and report generation can be partially automated with AI.",
	},
}

// providerProfile describes when an AI provider suits a request
type providerProfile struct {
	keywords     []string
	matchedScore int
	defaultScore int
	description  string
	reasons      []string
}

var providerProfiles = map[string]providerProfile{
	"openai": {
		keywords:     []string{"general", "creative", "writing", "content"},
		matchedScore: 85,
		defaultScore: 70,
		description:  "OpenAI is recommended for general tasks and creative content generation.",
		reasons:      []string{"Good for general purpose tasks", "Strong at creative writing and content generation"},
	},
	"anthropic": {
		keywords:     []string{"legal", "document", "contract", "analysis"},
		matchedScore: 90,
		defaultScore: 65,
		description:  "Anthropic Claude is ideal for legal document analysis and contract drafting.",
		reasons:      []string{"Excellent at understanding complex documents", "Strong reasoning capabilities"},
	},
	"perplexity": {
		keywords:     []string{"research", "information", "summarize", "data"},
		matchedScore: 90,
		defaultScore: 60,
		description:  "Perplexity AI excels at research tasks and information retrieval.",
		reasons:      []string{"Specializes in research and information gathering", "Access to recent information"},
	},
	"xai": {
		keywords:     []string{"technical", "coding", "debug", "programming"},
		matchedScore: 88,
		defaultScore: 65,
		description:  "xAI/Grok is recommended for technical and coding-related tasks.",
		reasons:      []string{"Strong technical problem-solving abilities", "Good at coding and debugging tasks"},
	},
	"gemini": {
		keywords:     []string{"multimodal", "image", "translate", "video"},
		matchedScore: 85,
		defaultScore: 60,
		description:  "Google Gemini is recommended for multimodal and translation tasks.",
		reasons:      []string{"Handles images and video alongside text", "Broad language coverage"},
	},
	"deepseek": {
		keywords:     []string{"math", "algorithm", "optimization", "reasoning"},
		matchedScore: 85,
		defaultScore: 60,
		description:  "DeepSeek is recommended for mathematical and algorithmic reasoning.",
		reasons:      []string{"Strong step-by-step reasoning", "Cost efficient for long analyses"},
	},
	"ollama": {
		keywords:     []string{"private", "confidential", "internal", "offline"},
		matchedScore: 80,
		defaultScore: 50,
		description:  "A self-hosted Ollama model keeps confidential material on your own infrastructure.",
		reasons:      []string{"Data never leaves the deployment", "No per-token cost"},
	},
}

// RecommendationService scores and ranks step, resource and optimization
// suggestions from completed requests, with an AI fallback for thin history
type RecommendationService struct {
	repo domain.Store
	ai   AIAnalyzer
}

// NewRecommendationService creates a new recommendation service
func NewRecommendationService(repo domain.Store, ai AIAnalyzer) *RecommendationService {
	return &RecommendationService{
		repo: repo,
		ai:   ai,
	}
}

// stepPattern is a cluster of similar steps from past requests
type stepPattern struct {
	title       string
	description string
	assignedTo  domain.Assignee
	steps       []domain.Step
}

func (p *stepPattern) frequency() int {
	return len(p.steps)
}

func (p *stepPattern) averageHours() float64 {
	total := 0
	for _, st := range p.steps {
		total += st.HoursOr(defaultStepHours)
	}
	return float64(total) / float64(len(p.steps))
}

// GetRecommendedSteps suggests steps for a new request description
func (s *RecommendationService) GetRecommendedSteps(ctx context.Context, description string, userID int64) ([]domain.StepRecommendation, error) {
	requests, err := s.repo.GetAllRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	var similarSteps []domain.Step
	for _, request := range requests {
		if request.Status != domain.RequestStatusCompleted {
			continue
		}
		if similarity.Similarity(request.Description, description) <= similarRequestThreshold {
			continue
		}
		steps, err := s.repo.GetStepsByRequestID(ctx, request.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get steps: %w", err)
		}
		similarSteps = append(similarSteps, steps...)
	}

	patterns := analyzeStepPatterns(similarSteps)

	recommendations := []domain.StepRecommendation{}
	for i, pattern := range patterns {
		if i == maxPatternRecommendations {
			break
		}
		freq := pattern.frequency()
		hours := pattern.averageHours()
		recommendations = append(recommendations, domain.StepRecommendation{
			Title:          pattern.title,
			Description:    pattern.description,
			AssignedTo:     pattern.assignedTo,
			EstimatedHours: hours,
			Score: domain.RecommendationScore{
				Score:      min(100, freq*20),
				Confidence: float64(freq) / float64(len(patterns)),
				Reasons: []string{
					fmt.Sprintf("Similar to steps in %d successful requests", freq),
					fmt.Sprintf("Typically takes %.1f hours to complete", hours),
				},
			},
		})
	}

	if len(recommendations) >= minHistoricalSteps || s.ai == nil {
		return recommendations, nil
	}

	analysis, err := s.ai.AnalyzeRequest(ctx, description)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("AI step recommendations unavailable")
		return recommendations, nil
	}

	seen := make(map[string]struct{}, len(recommendations))
	for _, r := range recommendations {
		seen[r.Title] = struct{}{}
	}
	for _, step := range analysis.Plan {
		if _, dup := seen[step.Step]; dup {
			continue
		}
		seen[step.Step] = struct{}{}
		recommendations = append(recommendations, domain.StepRecommendation{
			Title:          step.Step,
			Description:    "AI-recommended step: " + step.Step,
			AssignedTo:     step.AssignedTo,
			EstimatedHours: step.EstimatedHours,
			Score: domain.RecommendationScore{
				Score:      aiStepScore,
				Confidence: aiStepConfidence,
				Reasons: []string{
					"Recommended by AI based on request description",
					fmt.Sprintf("Estimated to take %s hours to complete", formatHours(step.EstimatedHours)),
				},
			},
		})
	}

	return recommendations, nil
}

// analyzeStepPatterns clusters steps greedily by title similarity. A step
// joins the first existing pattern it matches, so the result depends on input order.
func analyzeStepPatterns(steps []domain.Step) []*stepPattern {
	var patterns []*stepPattern
	for _, st := range steps {
		matched := false
		for _, p := range patterns {
			if similarity.Similarity(st.Title, p.title) > stepPatternThreshold {
				p.steps = append(p.steps, st)
				matched = true
				break
			}
		}
		if !matched {
			patterns = append(patterns, &stepPattern{
				title:       st.Title,
				description: st.Description,
				assignedTo:  st.AssignedTo,
				steps:       []domain.Step{st},
			})
		}
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].frequency() > patterns[j].frequency()
	})
	return patterns
}

// GetResourceRecommendations suggests team members and AI providers for a request
func (s *RecommendationService) GetResourceRecommendations(ctx context.Context, requestID int64) ([]domain.ResourceRecommendation, error) {
	request, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	if request == nil {
		return []domain.ResourceRecommendation{}, nil
	}

	users, err := s.repo.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	history, err := s.completedHistory(ctx)
	if err != nil {
		return nil, err
	}

	recommendations := []domain.ResourceRecommendation{}

	for _, member := range users {
		if !member.IsStaff() {
			continue
		}

		var total float64
		worked := 0
		for _, past := range history {
			if !past.workedBy(member.Username) {
				continue
			}
			total += similarity.Similarity(past.request.Description, request.Description)
			worked++
		}
		if worked == 0 {
			continue
		}

		avg := total / float64(worked)
		if avg <= teamMemberThreshold {
			continue
		}

		pct := int(math.Round(avg * 100))
		recommendations = append(recommendations, domain.ResourceRecommendation{
			Type:        domain.ResourceTeamMember,
			Name:        member.FullName,
			Description: member.FullName + " has experience with similar requests.",
			Score: domain.RecommendationScore{
				Score:      min(100, pct),
				Confidence: math.Min(1, avg+0.2),
				Reasons: []string{
					fmt.Sprintf("Worked on %d similar requests", worked),
					fmt.Sprintf("%d%% similarity to previous work", pct),
				},
			},
		})
	}

	if s.ai != nil {
		for _, provider := range s.ai.AvailableProviders() {
			profile, ok := providerProfiles[provider]
			if !ok {
				continue
			}
			score := profile.defaultScore
			if similarity.ContainsKeywords(request.Description, profile.keywords...) {
				score = profile.matchedScore
			}
			recommendations = append(recommendations, domain.ResourceRecommendation{
				Type:        domain.ResourceProvider,
				Name:        capitalize(provider),
				Description: profile.description,
				Score: domain.RecommendationScore{
					Score:      score,
					Confidence: float64(score) / 100,
					Reasons:    append([]string(nil), profile.reasons...),
				},
			})
		}
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Score.Score > recommendations[j].Score.Score
	})

	return recommendations, nil
}

type completedRequest struct {
	request domain.Request
	steps   []domain.Step
}

func (c completedRequest) workedBy(username string) bool {
	if username == "" {
		return false
	}
	for _, st := range c.steps {
		if st.AssignedTo.Username() == username {
			return true
		}
	}
	return false
}

func (s *RecommendationService) completedHistory(ctx context.Context) ([]completedRequest, error) {
	requests, err := s.repo.GetAllRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	var history []completedRequest
	for _, r := range requests {
		if r.Status != domain.RequestStatusCompleted {
			continue
		}
		steps, err := s.repo.GetStepsByRequestID(ctx, r.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get steps: %w", err)
		}
		history = append(history, completedRequest{request: r, steps: steps})
	}
	return history, nil
}

// GetOptimizationRecommendations suggests cost, time and quality improvements for a request
func (s *RecommendationService) GetOptimizationRecommendations(ctx context.Context, requestID int64) ([]domain.OptimizationRecommendation, error) {
	request, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	if request == nil {
		return []domain.OptimizationRecommendation{}, nil
	}

	steps, err := s.repo.GetStepsByRequestID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get steps: %w", err)
	}

	recommendations := []domain.OptimizationRecommendation{}

	// Human work that AI could take over
	for _, st := range steps {
		if !st.AssignedTo.IsHuman() || st.Status == domain.StepStatusCompleted {
			continue
		}
		rule, ok := matchAutomationRule(st.Title + " " + st.Description)
		if !ok {
			continue
		}

		hours := float64(st.HoursOr(defaultSavedHours))
		savings := hours * HourlyRate
		recommendations = append(recommendations, domain.OptimizationRecommendation{
			Type:                   domain.OptimizationCost,
			Description:            fmt.Sprintf("Consider using AI for the step \"%s\". %s", st.Title, rule.reason),
			PotentialSavings:       &savings,
			PotentialTimeReduction: &hours,
			Score: domain.RecommendationScore{
				Score:      rule.score,
				Confidence: rule.confidence,
				Reasons: []string{
					rule.reason,
					fmt.Sprintf("Potential cost saving of $%s", formatHours(savings)),
					fmt.Sprintf("Potential time saving of %s hours", formatHours(hours)),
				},
			},
		})
	}

	// Redundant steps
	for i := 0; i < len(steps); i++ {
		for j := i + 1; j < len(steps); j++ {
			first, second := steps[i], steps[j]
			sim := similarity.Similarity(first.Title+" "+first.Description, second.Title+" "+second.Description)
			if sim <= duplicateStepThreshold {
				continue
			}

			reduction := float64(min(first.HoursOr(defaultStepHours), second.HoursOr(defaultStepHours)))
			recommendations = append(recommendations, domain.OptimizationRecommendation{
				Type:                   domain.OptimizationTime,
				Description:            fmt.Sprintf("Consider combining similar steps: \"%s\" and \"%s\"", first.Title, second.Title),
				PotentialTimeReduction: &reduction,
				Score: domain.RecommendationScore{
					Score:      duplicateStepScore,
					Confidence: sim,
					Reasons: []string{
						fmt.Sprintf("Steps have %d%% similarity", int(math.Round(sim*100))),
						fmt.Sprintf("Combining could save %s hours", formatHours(reduction)),
					},
				},
			})
		}
	}

	// Quality gates before critical steps
	if request.Status == domain.RequestStatusInProgress {
		for _, st := range steps {
			if !similarity.ContainsKeywords(st.Title, qualityKeywords...) &&
				!similarity.ContainsKeywords(st.Description, qualityKeywords...) {
				continue
			}
			recommendations = append(recommendations, domain.OptimizationRecommendation{
				Type:        domain.OptimizationQuality,
				Description: fmt.Sprintf("Add a quality review step before \"%s\" to ensure high-quality delivery.", st.Title),
				Score: domain.RecommendationScore{
					Score:      qualityReviewScore,
					Confidence: qualityReviewConfidence,
					Reasons: []string{
						"Critical final step that benefits from quality control",
						"Quality reviews reduce client revision requests",
					},
				},
			})
		}
	}

	return recommendations, nil
}

func matchAutomationRule(text string) (automationRule, bool) {
	for _, rule := range automationRules {
		if similarity.ContainsKeywords(text, rule.keywords...) {
			return rule, true
		}
	}
	return automationRule{}, false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// formatHours prints whole numbers without a fraction
func formatHours(h float64) string {
	if h == math.Trunc(h) {
		return fmt.Sprintf("%.0f", h)
	}
	return fmt.Sprintf("%g", h)
}
