package matching

import "github.com/Ramsey-B/clover/pkg/models"

// DetermineMatchType buckets a similarity score into a match-type tier.
// Scores below the potential boundary fall through to low_confidence; callers
// are expected to have already applied their own minimum threshold.
func DetermineMatchType(score float64, tiers TierTable) string {
	switch {
	case score >= tiers.Exact:
		return models.MatchTypeExact
	case score >= tiers.HighConfidence:
		return models.MatchTypeHighConfidence
	case score >= tiers.Potential:
		return models.MatchTypePotential
	default:
		return models.MatchTypeLowConfidence
	}
}

// TierRank orders match types strongest to weakest for comparisons.
func TierRank(matchType string) int {
	switch matchType {
	case models.MatchTypeExact:
		return 3
	case models.MatchTypeHighConfidence:
		return 2
	case models.MatchTypePotential:
		return 1
	default:
		return 0
	}
}
