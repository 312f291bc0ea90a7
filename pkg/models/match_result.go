package models

import (
	"time"

	"github.com/Ramsey-B/clover/pkg/database"
)

// Match-type tiers, ordered strongest to weakest
const (
	MatchTypeExact          = "exact"
	MatchTypeHighConfidence = "high_confidence"
	MatchTypePotential      = "potential"
	MatchTypeLowConfidence  = "low_confidence"
)

// Match methods identify which strategy produced a result
const (
	MatchMethodExactFields      = "exact_fields"
	MatchMethodVectorSimilarity = "vector_similarity"
	MatchMethodFuzzyString      = "fuzzy_string"
)

// MatchResult is a persisted pairing of an incoming record to a customer.
// ConfidenceLevel may differ from SimilarityScore after business-rule
// adjustment; MatchCriteria records the evidence for the pairing.
type MatchResult struct {
	MatchID            string                         `json:"match_id" db:"match_id"`
	IncomingCustomerID string                         `json:"incoming_customer_id" db:"incoming_customer_id"`
	MatchedCustomerID  string                         `json:"matched_customer_id" db:"matched_customer_id"`
	SimilarityScore    float64                        `json:"similarity_score" db:"similarity_score"`
	MatchType          string                         `json:"match_type" db:"match_type"`
	ConfidenceLevel    float64                        `json:"confidence_level" db:"confidence_level"`
	MatchCriteria      database.JSONB[map[string]any] `json:"match_criteria" db:"match_criteria"`
	CreatedDate        time.Time                      `json:"created_date" db:"created_date"`
	Reviewed           bool                           `json:"reviewed" db:"reviewed"`
	ReviewerNotes      *string                        `json:"reviewer_notes,omitempty" db:"reviewer_notes"`
}

// ReviewMatchRequest marks a match result reviewed
type ReviewMatchRequest struct {
	Notes *string `json:"notes,omitempty"`
}

// MatchResultListResponse is the response for listing match results
type MatchResultListResponse struct {
	Items      []MatchResult `json:"items"`
	TotalCount int           `json:"total_count"`
}
