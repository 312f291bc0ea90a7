package matching

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// VectorMatcher finds customers by nearest-neighbor search over precomputed
// profile embeddings and buckets each hit into a match-type tier.
type VectorMatcher struct {
	logger ectologger.Logger
	store  ReferenceStore
	cfg    Config
}

// NewVectorMatcher creates a new vector-similarity matcher
func NewVectorMatcher(logger ectologger.Logger, store ReferenceStore, cfg Config) *VectorMatcher {
	return &VectorMatcher{
		logger: logger,
		store:  store,
		cfg:    cfg,
	}
}

// Match returns the nearest customers above the similarity threshold. An
// incoming record without an embedding yields an empty result, not an error.
func (m *VectorMatcher) Match(ctx context.Context, incoming *models.IncomingCustomer) ([]Candidate, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.VectorMatcher.Match")
	defer span.End()

	if incoming.ProfileEmbedding == nil {
		m.logger.WithContext(ctx).WithFields(map[string]any{
			"incoming_customer_id": incoming.IncomingCustomerID,
		}).Debug("No embedding available for vector matching")
		return nil, nil
	}

	hits, err := m.store.FindByVector(ctx, incoming.ProfileEmbedding.Slice(), m.cfg.VectorThreshold, m.cfg.VectorLimit)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(hits))
	for _, hit := range hits {
		criteria := map[string]any{
			"vector_similarity": hit.Similarity,
			"matched_company":   hit.Customer.CompanyName,
		}
		if hit.Customer.ContactName != nil {
			criteria["matched_contact"] = *hit.Customer.ContactName
		}

		candidates = append(candidates, Candidate{
			Customer:    hit.Customer,
			Similarity:  hit.Similarity,
			MatchType:   DetermineMatchType(hit.Similarity, m.cfg.Tiers),
			MatchMethod: models.MatchMethodVectorSimilarity,
			Confidence:  hit.Similarity,
			Criteria:    criteria,
		})
	}

	m.logger.WithContext(ctx).WithFields(map[string]any{
		"incoming_customer_id": incoming.IncomingCustomerID,
		"candidate_count":      len(candidates),
	}).Debug("Vector matching completed")

	return candidates, nil
}
