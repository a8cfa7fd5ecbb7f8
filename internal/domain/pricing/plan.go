package pricing

// Plan is an entry of the subscription gate's static catalogue.
type Plan struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Price    string   `json:"price" yaml:"price"`
	Period   string   `json:"period" yaml:"period"`
	Popular  bool     `json:"popular" yaml:"popular"`
	Features []string `json:"features" yaml:"features"`
}

// DefaultPlanID is the plan selected when the subscription gate opens.
const DefaultPlanID = "monthly"

// DefaultPlans returns the subscription gate's catalogue.
func DefaultPlans() []Plan {
	return []Plan{
		{
			ID:       "monthly",
			Name:     "Monthly",
			Price:    "$9.99",
			Period:   "month",
			Features: []string{"Full access to all content", "Cancel anytime", "Premium support"},
		},
		{
			ID:       "yearly",
			Name:     "Yearly",
			Price:    "$99.99",
			Period:   "year",
			Popular:  true,
			Features: []string{"Full access to all content", "Cancel anytime", "Premium support", "Save 17%"},
		},
		{
			ID:       "lifetime",
			Name:     "Lifetime",
			Price:    "$299.99",
			Period:   "one-time",
			Features: []string{"Full access to all content", "Lifetime updates", "Premium support", "No recurring fees"},
		},
	}
}
