package models

import "time"

// ReferralCode grants a percentage discount at checkout and attributes the
// sale to an agent. Code comparisons are case-insensitive everywhere.
type ReferralCode struct {
	AgentName       string    `json:"agentName" db:"agent_name"`
	Email           string    `json:"email" db:"email"`
	Code            string    `json:"code" db:"code"`
	DiscountPercent float64   `json:"discountPercent" db:"discount_percent"`
	Active          bool      `json:"active" db:"active"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

// ValidationResult is the public answer to "is this code good".
// DiscountPercent and AgentName are only present when Valid is true.
type ValidationResult struct {
	Valid           bool    `json:"valid"`
	DiscountPercent float64 `json:"discountPercent,omitempty"`
	AgentName       string  `json:"agentName,omitempty"`
}
