package domain

import (
	"fmt"
	"strings"
)

// Strategy selects the cart optimization policy
type Strategy string

const (
	// StrategyMaxSavings fills category quotas with the highest-savings offers first
	StrategyMaxSavings Strategy = "max_savings"
	// StrategyVariety prefers offers from retailers and products not yet in the cart
	StrategyVariety Strategy = "variety"
	// StrategySingleStore builds the whole cart from the single best retailer
	StrategySingleStore Strategy = "single_store"
)

// ParseStrategy resolves a strategy name case-insensitively
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "max_savings", "maxsavings", "savings":
		return StrategyMaxSavings, nil
	case "variety":
		return StrategyVariety, nil
	case "single_store", "singlestore", "single_retailer":
		return StrategySingleStore, nil
	}
	return "", fmt.Errorf("%w: unknown strategy %q", ErrInvalidRequest, s)
}

// CartRequirement asks for a quantity of products from one category
type CartRequirement struct {
	Category string `json:"category" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
}

// CartConstraint bounds a cart optimization run
type CartConstraint struct {
	Budget   float64  `json:"budget"`
	Strategy Strategy `json:"strategy"`
}

// CartItem is one selected offer, tagged with the requirement it fills
type CartItem struct {
	Offer       ProductOffer `json:"offer"`
	Requirement string       `json:"requirement"`
}

// UnmetRequirement records a category whose requested quantity could not be
// fully filled within budget and availability. A non-empty unmet list is a
// normal optimizer outcome, not a failure.
type UnmetRequirement struct {
	Category  string `json:"category"`
	Shortfall int    `json:"shortfall"`
}

// CartResult is the outcome of one optimization call. It is created fresh
// per call and never mutated after return.
type CartResult struct {
	Items        []CartItem         `json:"items"`
	TotalCost    float64            `json:"totalCost"`
	TotalSavings float64            `json:"totalSavings"`
	Retailers    []string           `json:"retailers"`
	Unmet        []UnmetRequirement `json:"unmet"`
}
