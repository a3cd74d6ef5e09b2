package models

import "time"

// Per-1K-token pricing used to derive cost from accumulated counts
const (
	InputTokenPricePer1K  = 0.00015
	OutputTokenPricePer1K = 0.0006
)

// TokenUsage accumulates AI token consumption for a user.
// Counters only ever increase; Cost is derived, never stored raw.
type TokenUsage struct {
	UserID       string
	InputTokens  int64
	OutputTokens int64
	UpdatedAt    time.Time
}

// Add accumulates one generation call's token counts
func (u *TokenUsage) Add(inputTokens, outputTokens int64) {
	u.InputTokens += inputTokens
	u.OutputTokens += outputTokens
}

// Cost returns the derived dollar cost of the accumulated usage
func (u *TokenUsage) Cost() float64 {
	return float64(u.InputTokens)/1000*InputTokenPricePer1K +
		float64(u.OutputTokens)/1000*OutputTokenPricePer1K
}
