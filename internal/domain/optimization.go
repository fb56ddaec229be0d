package domain

// Optimization strategies reported on results.
const (
	StrategyGreedy = "greedy"
	StrategyDP     = "dp"
)

// OptimizeOptions tunes a single optimization call. The zero value selects
// the sustainability-first greedy strategy with no score floor.
type OptimizeOptions struct {
	MinScore                 float64 `json:"minScore"`
	PrioritizeSustainability *bool   `json:"prioritizeSustainability,omitempty"`
	AllowPartial             bool    `json:"allowPartial"` // reserved, not consulted
}

// SustainabilityFirst reports whether the greedy score-per-cost strategy
// should be used. Defaults to true when the option is omitted.
func (o OptimizeOptions) SustainabilityFirst() bool {
	return o.PrioritizeSustainability == nil || *o.PrioritizeSustainability
}

// SelectedItem is a product chosen by the optimizer with its quantity.
type SelectedItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Savings compares the optimized selection against the original input list.
type Savings struct {
	Economic   float64 `json:"economic"`
	Carbon     float64 `json:"carbon"`
	Percentage float64 `json:"percentage"`
}

// OptimizationResult is the outcome of one optimization call. Produced fresh
// per call; the input product slice is never mutated.
type OptimizationResult struct {
	Selected    []SelectedItem `json:"selected"`
	TotalCost   float64        `json:"totalCost"`
	TotalScore  float64        `json:"totalScore"`
	TotalCarbon float64        `json:"totalCarbon"`
	Savings     Savings        `json:"savings"`
	BudgetUsed  float64        `json:"budgetUsed"`
	Strategy    string         `json:"strategy,omitempty"`
	Message     string         `json:"message,omitempty"`
}

// ListDecision records the swap-or-keep outcome for one shopping list item.
type ListDecision struct {
	Original    Product  `json:"original"`
	Chosen      *Product `json:"chosen,omitempty"`
	Substituted bool     `json:"substituted"`
	Dropped     bool     `json:"dropped"`
}

// ListOptimizationResult is the outcome of optimizing a whole shopping list.
type ListOptimizationResult struct {
	Items       []ListDecision `json:"items"`
	TotalCost   float64        `json:"totalCost"`
	TotalScore  float64        `json:"totalScore"`
	TotalCarbon float64        `json:"totalCarbon"`
	Savings     Savings        `json:"savings"`
	BudgetUsed  float64        `json:"budgetUsed"`
	Message     string         `json:"message,omitempty"`
}
