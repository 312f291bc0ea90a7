// Package matching implements the multi-strategy customer matching pipeline:
// exact-field matching, vector similarity, fuzzy string matching, business
// rule adjustment, and result persistence, orchestrated by a hybrid strategy
// that short-circuits from high-precision to high-recall matchers.
package matching

// TierTable holds the score boundaries used to bucket a similarity score
// into a match-type tier.
type TierTable struct {
	Exact          float64 // similarity >= Exact -> "exact"
	HighConfidence float64 // similarity >= HighConfidence -> "high_confidence"
	Potential      float64 // similarity >= Potential -> "potential"
}

// Config contains the tunable thresholds and weights for the pipeline.
// All values are injected at construction so tests can override per call.
type Config struct {
	// Exact matcher field weights and minimum score
	ExactCompanyWeight float64
	ExactEmailWeight   float64
	ExactPhoneWeight   float64
	ExactMinScore      float64

	// Vector matcher
	VectorThreshold float64
	VectorLimit     int

	// Fuzzy matcher
	FuzzyThreshold float64
	FuzzyLimit     int

	Tiers TierTable

	// Business rule multipliers
	IndustryBoost       float64
	CityBoost           float64
	CountryPenalty      float64
	RevenueBoost        float64
	RevenueRatioMin     float64
	RevenueBoostEnabled bool
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		ExactCompanyWeight: 0.4,
		ExactEmailWeight:   0.4,
		ExactPhoneWeight:   0.2,
		ExactMinScore:      0.4,

		VectorThreshold: 0.7,
		VectorLimit:     5,

		FuzzyThreshold: 0.8,
		FuzzyLimit:     10,

		Tiers: TierTable{
			Exact:          0.95,
			HighConfidence: 0.85,
			Potential:      0.75,
		},

		IndustryBoost:       1.2,
		CityBoost:           1.1,
		CountryPenalty:      0.8,
		RevenueBoost:        1.1,
		RevenueRatioMin:     0.8,
		RevenueBoostEnabled: true,
	}
}
