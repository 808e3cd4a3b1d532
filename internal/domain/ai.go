package domain

// AIStep is one step of an AI-generated plan
type AIStep struct {
	Step           string   `json:"step"`
	AssignedTo     Assignee `json:"assignedTo"`
	EstimatedHours float64  `json:"estimatedHours"`
}

// CostRange is an estimated cost interval in USD
type CostRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ContractDraft is a generated service contract
type ContractDraft struct {
	ContractContent string `json:"contractContent"`
}

// AIAnalysis is the plan produced by an AI provider for a request description
type AIAnalysis struct {
	Plan              []AIStep  `json:"plan"`
	CostEstimateRange CostRange `json:"costEstimateRange"`
	Summary           string    `json:"summary"`
}
