package domain

// RecommendationScore qualifies a recommendation
type RecommendationScore struct {
	Score      int      `json:"score"`      // 0-100
	Confidence float64  `json:"confidence"` // 0-1
	Reasons    []string `json:"reasons"`
}

// StepRecommendation suggests a plan step for a new request
type StepRecommendation struct {
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	AssignedTo     Assignee            `json:"assignedTo"`
	EstimatedHours float64             `json:"estimatedHours"`
	Score          RecommendationScore `json:"score"`
}

// ResourceType is the kind of recommended resource
type ResourceType string

const (
	ResourceTeamMember ResourceType = "team_member"
	ResourceTool       ResourceType = "tool"
	ResourceService    ResourceType = "service"
	ResourceProvider   ResourceType = "provider"
)

// ResourceRecommendation suggests a person or provider for a request
type ResourceRecommendation struct {
	Type        ResourceType        `json:"type"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Score       RecommendationScore `json:"score"`
}

// OptimizationType is the dimension an optimization improves
type OptimizationType string

const (
	OptimizationCost    OptimizationType = "cost"
	OptimizationTime    OptimizationType = "time"
	OptimizationQuality OptimizationType = "quality"
)

// OptimizationRecommendation suggests a change to an existing plan
type OptimizationRecommendation struct {
	Type                   OptimizationType    `json:"type"`
	Description            string              `json:"description"`
	PotentialSavings       *float64            `json:"potentialSavings,omitempty"`
	PotentialTimeReduction *float64            `json:"potentialTimeReduction,omitempty"`
	Score                  RecommendationScore `json:"score"`
}
