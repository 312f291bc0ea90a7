package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func TestCompareText(t *testing.T) {
	tests := []struct {
		name     string
		a, b     *string
		expected string
	}{
		{"exact ignoring case", strPtr("Acme Corp"), strPtr("acme corp"), StatusExact},
		{"substring", strPtr("Acme"), strPtr("Acme Corporation"), StatusSimilar},
		{"different", strPtr("Acme"), strPtr("Globex"), StatusDifferent},
		{"nil left", nil, strPtr("Acme"), StatusMissing},
		{"nil right", strPtr("Acme"), nil, StatusMissing},
		{"empty string", strPtr("  "), strPtr("Acme"), StatusMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CompareText(tt.a, tt.b).Status)
		})
	}
}

func TestCompareNormalized(t *testing.T) {
	tests := []struct {
		name     string
		a, b     *string
		chain    []string
		expected string
	}{
		{"corporate suffixes", strPtr("Acme Inc."), strPtr("ACME Incorporated"), []string{"ncompany"}, StatusExact},
		{"url scheme and www", strPtr("https://www.acme.com/"), strPtr("acme.com"), []string{"nwebsite"}, StatusExact},
		{"name honorifics", strPtr("John Smith Jr."), strPtr("john smith"), []string{"nname"}, StatusExact},
		{"genuinely different", strPtr("Acme Inc"), strPtr("Globex Corp"), []string{"ncompany"}, StatusDifferent},
		{"missing", nil, strPtr("Acme"), []string{"ncompany"}, StatusMissing},
		{"normalized away entirely", strPtr("&"), strPtr("Acme Inc"), []string{"ncompany"}, StatusMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CompareNormalized(tt.a, tt.b, tt.chain...).Status)
		})
	}
}

func TestCompareEmail(t *testing.T) {
	tests := []struct {
		name     string
		a, b     *string
		expected string
	}{
		{"exact ignoring case", strPtr("John@Acme.com"), strPtr("john@acme.com"), StatusExact},
		{"same domain", strPtr("john@acme.com"), strPtr("jane@acme.com"), StatusSameDomain},
		{"different domain", strPtr("john@acme.com"), strPtr("john@globex.com"), StatusDifferent},
		{"missing", nil, strPtr("john@acme.com"), StatusMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CompareEmail(tt.a, tt.b).Status)
		})
	}
}

func TestComparePhone(t *testing.T) {
	tests := []struct {
		name     string
		a, b     *string
		expected string
	}{
		{"exact after normalization", strPtr("(555) 123-4567"), strPtr("555-123-4567"), StatusExact},
		{"country code difference", strPtr("+1-555-123-4567"), strPtr("555-123-4567"), StatusSimilar},
		{"different numbers", strPtr("555-123-4567"), strPtr("555-999-0000"), StatusDifferent},
		{"no digits", strPtr("ext only"), strPtr("555-123-4567"), StatusMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComparePhone(tt.a, tt.b).Status)
		})
	}
}

func TestCompareRevenue(t *testing.T) {
	tests := []struct {
		name     string
		a, b     *float64
		expected string
	}{
		{"equal", floatPtr(1000000), floatPtr(1000000), StatusExact},
		{"within 10 percent", floatPtr(1000000), floatPtr(950000), StatusSimilar},
		{"within 25 percent", floatPtr(1000000), floatPtr(800000), StatusRelated},
		{"far apart", floatPtr(1000000), floatPtr(100000), StatusDifferent},
		{"missing", nil, floatPtr(1000000), StatusMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CompareRevenue(tt.a, tt.b).Status)
		})
	}
}

func TestCompareEmployeeCount(t *testing.T) {
	assert.Equal(t, StatusExact, CompareEmployeeCount(intPtr(100), intPtr(100)).Status)
	assert.Equal(t, StatusSimilar, CompareEmployeeCount(intPtr(100), intPtr(85)).Status)
	assert.Equal(t, StatusRelated, CompareEmployeeCount(intPtr(100), intPtr(60)).Status)
	assert.Equal(t, StatusDifferent, CompareEmployeeCount(intPtr(100), intPtr(10)).Status)
	assert.Equal(t, StatusMissing, CompareEmployeeCount(nil, intPtr(10)).Status)
}

func TestRevenueRatio(t *testing.T) {
	assert.InDelta(t, 0.5, RevenueRatio(500000, 1000000), 0.0001)
	assert.InDelta(t, 0.5, RevenueRatio(1000000, 500000), 0.0001)
	assert.Equal(t, 0.0, RevenueRatio(0, 1000000))
	assert.Equal(t, 1.0, RevenueRatio(42, 42))
}

func TestSequenceRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		min  float64
		max  float64
	}{
		{"identical", "Microsoft Corp", "Microsoft Corp", 1.0, 1.0},
		{"single typo", "Microsft Corp", "Microsoft Corp", 0.9, 1.0},
		{"unrelated", "Acme", "Globex", 0.0, 0.3},
		{"both empty", "", "", 1.0, 1.0},
		{"one empty", "Acme", "", 0.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SequenceRatio(tt.a, tt.b)
			assert.GreaterOrEqual(t, got, tt.min)
			assert.LessOrEqual(t, got, tt.max)
		})
	}
}

func TestSequenceRatioIsSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"Microsft Corp", "Microsoft Corp"},
		{"Acme Widgets", "Acme Widget Co"},
		{"abc", "xyz"},
	}
	for _, p := range pairs {
		assert.InDelta(t, SequenceRatio(p[0], p[1]), SequenceRatio(p[1], p[0]), 1e-9)
	}
}

func TestSequenceRatioBounds(t *testing.T) {
	pairs := [][2]string{
		{"", "anything"},
		{"a", "a"},
		{"International Business Machines", "IBM"},
		{"Acme Corp", "Acme Corporation"},
	}
	for _, p := range pairs {
		got := SequenceRatio(p[0], p[1])
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
	}
}
