package matching

import (
	"context"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalizers"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// ExactMatcher finds customers sharing a normalized company name, email, or
// phone with the incoming record and scores them by weighted field equality.
type ExactMatcher struct {
	logger ectologger.Logger
	store  ReferenceStore
	cfg    Config
}

// NewExactMatcher creates a new exact-field matcher
func NewExactMatcher(logger ectologger.Logger, store ReferenceStore, cfg Config) *ExactMatcher {
	return &ExactMatcher{
		logger: logger,
		store:  store,
		cfg:    cfg,
	}
}

// Match returns all candidates whose weighted exact-field score meets the
// configured minimum. An incoming record with no usable comparison fields
// yields an empty result, not an error.
func (m *ExactMatcher) Match(ctx context.Context, incoming *models.IncomingCustomer) ([]Candidate, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.ExactMatcher.Match")
	defer span.End()

	company := normalizers.Lowercase(strings.TrimSpace(incoming.CompanyName))
	email := ""
	if incoming.Email != nil {
		email = normalizers.NormalizeEmail(*incoming.Email)
	}
	phone := ""
	if incoming.Phone != nil {
		phone = normalizers.NormalizePhone(*incoming.Phone)
	}

	if company == "" && email == "" && phone == "" {
		m.logger.WithContext(ctx).WithFields(map[string]any{
			"incoming_customer_id": incoming.IncomingCustomerID,
		}).Debug("No usable fields for exact matching")
		return nil, nil
	}

	customers, err := m.store.FindByExactFields(ctx, company, email, phone)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(customers))
	for _, customer := range customers {
		score, criteria := m.score(company, email, phone, &customer)
		if score < m.cfg.ExactMinScore {
			continue
		}

		candidates = append(candidates, Candidate{
			Customer:    customer,
			Similarity:  score,
			MatchType:   models.MatchTypeExact,
			MatchMethod: models.MatchMethodExactFields,
			Confidence:  score,
			Criteria:    criteria,
		})
	}

	m.logger.WithContext(ctx).WithFields(map[string]any{
		"incoming_customer_id": incoming.IncomingCustomerID,
		"candidate_count":      len(candidates),
	}).Debug("Exact matching completed")

	return candidates, nil
}

func (m *ExactMatcher) score(company, email, phone string, customer *models.Customer) (float64, map[string]any) {
	score := 0.0
	criteria := map[string]any{
		"matched_company": customer.CompanyName,
	}

	if company != "" && normalizers.Lowercase(strings.TrimSpace(customer.CompanyName)) == company {
		score += m.cfg.ExactCompanyWeight
		criteria["exact_company_name"] = true
	}
	if email != "" && customer.Email != nil && normalizers.NormalizeEmail(*customer.Email) == email {
		score += m.cfg.ExactEmailWeight
		criteria["exact_email"] = true
	}
	if phone != "" && customer.Phone != nil && normalizers.NormalizePhone(*customer.Phone) == phone {
		score += m.cfg.ExactPhoneWeight
		criteria["exact_phone"] = true
	}

	return score, criteria
}
