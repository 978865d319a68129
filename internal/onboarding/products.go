package onboarding

// Product is one catalog entry surfaced on the completion screen.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Category    string `json:"category"`
}

// Products returns the static recommendation catalog. It is the same for every
// customer; selection logic lives client-side.
func Products() []Product {
	return []Product{
		{
			ID:          "1",
			Name:        "Biashara Loan",
			Description: "Competitive interest rates for SMEs to scale operations.",
			Icon:        "💰",
			Category:    "Finance",
		},
		{
			ID:          "2",
			Name:        "KRA Tax Buddy",
			Description: "Automated VAT and Income Tax filing assistance.",
			Icon:        "📊",
			Category:    "Compliance",
		},
		{
			ID:          "3",
			Name:        "Corporate Shield",
			Description: "Comprehensive insurance for office assets and staff.",
			Icon:        "🛡️",
			Category:    "Insurance",
		},
		{
			ID:          "4",
			Name:        "Trade Connect",
			Description: "Exclusive access to regional East African trade networks.",
			Icon:        "🌍",
			Category:    "Networking",
		},
	}
}
