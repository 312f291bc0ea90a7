package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/similarity"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func fieldByName(t *testing.T, fields []FieldComparison, name string) FieldComparison {
	t.Helper()
	for _, f := range fields {
		if f.FieldName == name {
			return f
		}
	}
	t.Fatalf("field %q not found", name)
	return FieldComparison{}
}

func TestCompare(t *testing.T) {
	incoming := &models.IncomingCustomer{
		CompanyName:   "Acme Corp",
		ContactName:   strPtr("Jane Doe"),
		Email:         strPtr("jane@acme.com"),
		Phone:         strPtr("(555) 123-4567"),
		AnnualRevenue: floatPtr(1_000_000),
		City:          strPtr("Austin"),
	}
	customer := &models.Customer{
		CustomerID:    "c-1",
		CompanyName:   "ACME CORP",
		ContactName:   strPtr("John Doe"),
		Email:         strPtr("john@acme.com"),
		Phone:         strPtr("555-123-4567"),
		AnnualRevenue: floatPtr(1_050_000),
		City:          strPtr("Dallas"),
	}

	fields := Compare(incoming, customer)
	require.Len(t, fields, 11)

	assert.Equal(t, similarity.StatusExact, fieldByName(t, fields, "Company Name").Status)
	assert.Equal(t, similarity.StatusSameDomain, fieldByName(t, fields, "Email").Status)
	assert.Equal(t, similarity.StatusExact, fieldByName(t, fields, "Phone").Status)
	assert.Equal(t, similarity.StatusSimilar, fieldByName(t, fields, "Annual Revenue").Status)
	assert.Equal(t, similarity.StatusDifferent, fieldByName(t, fields, "City").Status)
	assert.Equal(t, similarity.StatusMissing, fieldByName(t, fields, "Website").Status)

	revenue := fieldByName(t, fields, "Annual Revenue")
	require.NotNil(t, revenue.IncomingValue)
	assert.Equal(t, "1000000.00", *revenue.IncomingValue)
}

func TestCompare_NormalizesFieldNoise(t *testing.T) {
	incoming := &models.IncomingCustomer{
		CompanyName: "Acme Inc.",
		ContactName: strPtr("John Smith Jr."),
		Website:     strPtr("https://www.acme.com/"),
	}
	customer := &models.Customer{
		CompanyName: "ACME Incorporated",
		ContactName: strPtr("john smith"),
		Website:     strPtr("acme.com"),
	}

	fields := Compare(incoming, customer)

	assert.Equal(t, similarity.StatusExact, fieldByName(t, fields, "Company Name").Status)
	assert.Equal(t, similarity.StatusExact, fieldByName(t, fields, "Contact Name").Status)
	assert.Equal(t, similarity.StatusExact, fieldByName(t, fields, "Website").Status)
}

func TestCompare_AllMissing(t *testing.T) {
	fields := Compare(&models.IncomingCustomer{}, &models.Customer{})

	for _, f := range fields {
		if f.FieldName == "Company Name" {
			continue
		}
		assert.Equal(t, similarity.StatusMissing, f.Status, f.FieldName)
	}
}

func TestBuildMatchComparison(t *testing.T) {
	result := &models.MatchResult{
		MatchID:            "m-1",
		IncomingCustomerID: "inc-1",
		MatchedCustomerID:  "c-1",
		SimilarityScore:    0.92,
		ConfidenceLevel:    0.95,
		MatchType:          models.MatchTypeHighConfidence,
	}

	comparison := BuildMatchComparison(result,
		&models.IncomingCustomer{IncomingCustomerID: "inc-1", CompanyName: "Acme"},
		&models.Customer{CustomerID: "c-1", CompanyName: "Acme"},
	)

	assert.Equal(t, "m-1", comparison.MatchID)
	assert.Equal(t, 0.95, comparison.ConfidenceLevel)
	assert.Len(t, comparison.Fields, 11)
	assert.Equal(t, similarity.StatusExact, comparison.Fields[0].Status)
}
