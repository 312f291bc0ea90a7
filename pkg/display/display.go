// Package display renders side-by-side field comparisons between an incoming
// record and a matched customer for the review UI.
package display

import (
	"fmt"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/similarity"
)

// FieldComparison is one row of a side-by-side comparison.
type FieldComparison struct {
	FieldName     string  `json:"field_name"`
	IncomingValue *string `json:"incoming_value"`
	MatchedValue  *string `json:"matched_value"`
	Status        string  `json:"match_status"`
	Score         float64 `json:"similarity_score"`
}

// MatchComparison pairs a match with its per-field breakdown.
type MatchComparison struct {
	MatchID            string            `json:"match_id"`
	IncomingCustomerID string            `json:"incoming_customer_id"`
	MatchedCustomerID  string            `json:"matched_customer_id"`
	SimilarityScore    float64           `json:"similarity_score"`
	ConfidenceLevel    float64           `json:"confidence_level"`
	MatchType          string            `json:"match_type"`
	Fields             []FieldComparison `json:"fields"`
}

// Compare produces the per-field breakdown for an incoming record against a
// matched customer. Field order is fixed for stable rendering.
func Compare(incoming *models.IncomingCustomer, customer *models.Customer) []FieldComparison {
	companyName := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}

	fields := []FieldComparison{
		row("Company Name", companyName(incoming.CompanyName), companyName(customer.CompanyName),
			similarity.CompareNormalized(companyName(incoming.CompanyName), companyName(customer.CompanyName), "ncompany")),
		row("Contact Name", incoming.ContactName, customer.ContactName,
			similarity.CompareNormalized(incoming.ContactName, customer.ContactName, "nname")),
		row("Email", incoming.Email, customer.Email,
			similarity.CompareEmail(incoming.Email, customer.Email)),
		row("Phone", incoming.Phone, customer.Phone,
			similarity.ComparePhone(incoming.Phone, customer.Phone)),
		row("Industry", incoming.Industry, customer.Industry,
			similarity.CompareText(incoming.Industry, customer.Industry)),
		row("Annual Revenue", formatRevenue(incoming.AnnualRevenue), formatRevenue(customer.AnnualRevenue),
			similarity.CompareRevenue(incoming.AnnualRevenue, customer.AnnualRevenue)),
		row("Employee Count", formatCount(incoming.EmployeeCount), formatCount(customer.EmployeeCount),
			similarity.CompareEmployeeCount(incoming.EmployeeCount, customer.EmployeeCount)),
		row("City", incoming.City, customer.City,
			similarity.CompareText(incoming.City, customer.City)),
		row("State/Province", incoming.StateProvince, customer.StateProvince,
			similarity.CompareText(incoming.StateProvince, customer.StateProvince)),
		row("Country", incoming.Country, customer.Country,
			similarity.CompareText(incoming.Country, customer.Country)),
		row("Website", incoming.Website, customer.Website,
			similarity.CompareNormalized(incoming.Website, customer.Website, "nwebsite")),
	}

	return fields
}

// BuildMatchComparison attaches the field breakdown to a persisted match.
func BuildMatchComparison(result *models.MatchResult, incoming *models.IncomingCustomer, customer *models.Customer) MatchComparison {
	return MatchComparison{
		MatchID:            result.MatchID,
		IncomingCustomerID: result.IncomingCustomerID,
		MatchedCustomerID:  result.MatchedCustomerID,
		SimilarityScore:    result.SimilarityScore,
		ConfidenceLevel:    result.ConfidenceLevel,
		MatchType:          result.MatchType,
		Fields:             Compare(incoming, customer),
	}
}

func row(name string, incoming, matched *string, cmp similarity.Comparison) FieldComparison {
	return FieldComparison{
		FieldName:     name,
		IncomingValue: incoming,
		MatchedValue:  matched,
		Status:        cmp.Status,
		Score:         cmp.Score,
	}
}

func formatRevenue(v *float64) *string {
	if v == nil {
		return nil
	}
	s := fmt.Sprintf("%.2f", *v)
	return &s
}

func formatCount(v *int) *string {
	if v == nil {
		return nil
	}
	s := fmt.Sprintf("%d", *v)
	return &s
}
