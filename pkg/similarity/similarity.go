// Package similarity provides the field-level comparison primitives used by
// the business rules engine and the comparison display. All functions are
// pure and treat nil inputs as missing values.
package similarity

import (
	"math"
	"strings"

	"github.com/Ramsey-B/clover/pkg/normalizers"
)

// Comparison statuses, strongest to weakest
const (
	StatusExact      = "exact"
	StatusSimilar    = "similar"
	StatusSameDomain = "same_domain"
	StatusRelated    = "related"
	StatusDifferent  = "different"
	StatusMissing    = "missing"
)

// Comparison is the outcome of comparing one field across two records
type Comparison struct {
	Status string  `json:"status"`
	Score  float64 `json:"score"`
}

// CompareText compares two free-text fields (company name, city, industry,
// country, website). Equality after lowercase/trim is exact; substring
// containment is similar.
func CompareText(a, b *string) Comparison {
	if isMissing(a) || isMissing(b) {
		return Comparison{Status: StatusMissing}
	}

	aClean := strings.ToLower(strings.TrimSpace(*a))
	bClean := strings.ToLower(strings.TrimSpace(*b))

	if aClean == bClean {
		return Comparison{Status: StatusExact, Score: 1.0}
	}
	if strings.Contains(aClean, bClean) || strings.Contains(bClean, aClean) {
		return Comparison{Status: StatusSimilar, Score: 0.8}
	}
	return Comparison{Status: StatusDifferent}
}

// CompareNormalized compares two text fields after running both through the
// named normalizer chain, so field-specific noise (corporate suffixes, URL
// schemes, name honorifics) does not register as a difference.
func CompareNormalized(a, b *string, chain ...string) Comparison {
	if isMissing(a) || isMissing(b) {
		return Comparison{Status: StatusMissing}
	}

	aClean := normalizers.ApplyChain(*a, chain...)
	bClean := normalizers.ApplyChain(*b, chain...)
	if aClean == "" || bClean == "" {
		return Comparison{Status: StatusMissing}
	}

	if aClean == bClean {
		return Comparison{Status: StatusExact, Score: 1.0}
	}
	if strings.Contains(aClean, bClean) || strings.Contains(bClean, aClean) {
		return Comparison{Status: StatusSimilar, Score: 0.8}
	}
	return Comparison{Status: StatusDifferent}
}

// CompareEmail compares two email addresses. A shared domain (the text after
// "@") still counts for something even when the local parts differ.
func CompareEmail(a, b *string) Comparison {
	if isMissing(a) || isMissing(b) {
		return Comparison{Status: StatusMissing}
	}

	aClean := normalizers.NormalizeEmail(*a)
	bClean := normalizers.NormalizeEmail(*b)

	if aClean == bClean {
		return Comparison{Status: StatusExact, Score: 1.0}
	}
	if strings.Contains(aClean, bClean) || strings.Contains(bClean, aClean) {
		return Comparison{Status: StatusSimilar, Score: 0.8}
	}
	if domain(aClean) != "" && domain(aClean) == domain(bClean) {
		return Comparison{Status: StatusSameDomain, Score: 0.7}
	}
	return Comparison{Status: StatusDifferent}
}

// ComparePhone compares two phone numbers after stripping formatting. The
// last ten digits absorb country-code and formatting differences.
func ComparePhone(a, b *string) Comparison {
	if isMissing(a) || isMissing(b) {
		return Comparison{Status: StatusMissing}
	}

	aDigits := normalizers.NormalizePhone(*a)
	bDigits := normalizers.NormalizePhone(*b)
	if aDigits == "" || bDigits == "" {
		return Comparison{Status: StatusMissing}
	}

	if aDigits == bDigits {
		return Comparison{Status: StatusExact, Score: 1.0}
	}
	if len(aDigits) >= 10 && len(bDigits) >= 10 && aDigits[len(aDigits)-10:] == bDigits[len(bDigits)-10:] {
		return Comparison{Status: StatusSimilar, Score: 0.8}
	}
	return Comparison{Status: StatusDifferent}
}

// CompareNumeric compares two numeric fields against tolerance bands.
// Relative difference is |a-b| / max(a, b). Within similarTol the values are
// similar; within relatedTol they are related.
func CompareNumeric(a, b *float64, similarTol, relatedTol float64) Comparison {
	if a == nil || b == nil {
		return Comparison{Status: StatusMissing}
	}

	if *a == *b {
		return Comparison{Status: StatusExact, Score: 1.0}
	}

	diff := RelativeDifference(*a, *b)
	switch {
	case diff <= similarTol:
		return Comparison{Status: StatusSimilar, Score: 0.8}
	case diff <= relatedTol:
		return Comparison{Status: StatusRelated, Score: 0.5}
	default:
		return Comparison{Status: StatusDifferent}
	}
}

// CompareRevenue compares annual revenue (10% similar, 25% related)
func CompareRevenue(a, b *float64) Comparison {
	return CompareNumeric(a, b, 0.10, 0.25)
}

// CompareEmployeeCount compares employee counts (20% similar, 50% related)
func CompareEmployeeCount(a, b *int) Comparison {
	var af, bf *float64
	if a != nil {
		v := float64(*a)
		af = &v
	}
	if b != nil {
		v := float64(*b)
		bf = &v
	}
	return CompareNumeric(af, bf, 0.20, 0.50)
}

// RelativeDifference returns |a-b| / max(a, b), or 0 when both are zero
func RelativeDifference(a, b float64) float64 {
	m := math.Max(math.Abs(a), math.Abs(b))
	if m == 0 {
		return 0
	}
	return math.Abs(a-b) / m
}

// RevenueRatio returns min(a, b) / max(a, b), used by the business rules
// engine. Zero or missing revenue yields 0.
func RevenueRatio(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	return math.Min(a, b) / math.Max(a, b)
}

func isMissing(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func domain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return email[at+1:]
}
