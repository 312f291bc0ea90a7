package matching

import (
	"context"
	"sort"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/similarity"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// FuzzyMatcher finds customers whose company or contact name is close to the
// incoming record's by string-sequence similarity. It is the recall-oriented
// fallback for typos and abbreviations.
type FuzzyMatcher struct {
	logger ectologger.Logger
	store  ReferenceStore
	cfg    Config
}

// NewFuzzyMatcher creates a new fuzzy string matcher
func NewFuzzyMatcher(logger ectologger.Logger, store ReferenceStore, cfg Config) *FuzzyMatcher {
	return &FuzzyMatcher{
		logger: logger,
		store:  store,
		cfg:    cfg,
	}
}

// Match returns the top candidates whose best-field sequence similarity meets
// the configured threshold, sorted descending. The store's trigram search is
// only a prefilter; the sequence ratio computed here is the score that counts.
func (m *FuzzyMatcher) Match(ctx context.Context, incoming *models.IncomingCustomer) ([]Candidate, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.FuzzyMatcher.Match")
	defer span.End()

	name := strings.TrimSpace(incoming.CompanyName)
	if name == "" {
		return nil, nil
	}

	// Cast a wide net: the trigram prefilter uses half the threshold and a
	// multiple of the limit so near misses survive to the rescoring pass.
	hits, err := m.store.FindByFuzzy(ctx, name, m.cfg.FuzzyThreshold/2, m.cfg.FuzzyLimit*5)
	if err != nil {
		return nil, err
	}

	nameLower := strings.ToLower(name)
	contactLower := ""
	if incoming.ContactName != nil {
		contactLower = strings.ToLower(strings.TrimSpace(*incoming.ContactName))
	}

	candidates := make([]Candidate, 0, len(hits))
	for _, hit := range hits {
		best := similarity.SequenceRatio(nameLower, strings.ToLower(hit.Customer.CompanyName))
		matchedField := "company_name"

		if contactLower != "" && hit.Customer.ContactName != nil {
			contactSim := similarity.SequenceRatio(contactLower, strings.ToLower(*hit.Customer.ContactName))
			if contactSim > best {
				best = contactSim
				matchedField = "contact_name"
			}
		}

		if best < m.cfg.FuzzyThreshold {
			continue
		}

		candidates = append(candidates, Candidate{
			Customer:    hit.Customer,
			Similarity:  best,
			MatchType:   models.MatchTypePotential,
			MatchMethod: models.MatchMethodFuzzyString,
			Confidence:  best,
			Criteria: map[string]any{
				"fuzzy_similarity": best,
				"matched_field":    matchedField,
				"matched_company":  hit.Customer.CompanyName,
			},
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
	if len(candidates) > m.cfg.FuzzyLimit {
		candidates = candidates[:m.cfg.FuzzyLimit]
	}

	m.logger.WithContext(ctx).WithFields(map[string]any{
		"incoming_customer_id": incoming.IncomingCustomerID,
		"candidate_count":      len(candidates),
	}).Debug("Fuzzy matching completed")

	return candidates, nil
}
