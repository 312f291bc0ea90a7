package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func newTestService(reference *fakeReferenceStore, incoming *fakeIncomingStore, results *fakeResultStore) *Service {
	return NewService(testLogger(), nil, reference, incoming, results, DefaultConfig())
}

func incomingRecord() *models.IncomingCustomer {
	return &models.IncomingCustomer{
		IncomingCustomerID: "inc-1",
		CompanyName:        "Acme Corp",
		Email:              strPtr("sales@acme.com"),
		ProfileEmbedding:   vecPtr([]float32{0.1, 0.2, 0.3}),
	}
}

func TestService_ExactShortCircuits(t *testing.T) {
	reference := &fakeReferenceStore{
		exactCustomers: []models.Customer{{
			CustomerID:  "c-1",
			CompanyName: "Acme Corp",
			Email:       strPtr("sales@acme.com"),
		}},
		vectorHits: []VectorHit{{Customer: models.Customer{CustomerID: "c-9", CompanyName: "Acme Inc"}, Similarity: 0.9}},
	}
	incoming := &fakeIncomingStore{record: incomingRecord()}
	results := &fakeResultStore{}

	run, err := newTestService(reference, incoming, results).MatchIncoming(context.Background(), "inc-1")
	require.NoError(t, err)

	assert.Equal(t, StrategyExact, run.Strategy)
	require.Len(t, run.Results, 1)
	assert.Equal(t, "c-1", run.Results[0].MatchedCustomerID)
	assert.Zero(t, reference.vectorCalls, "vector search should be skipped when exact matched")
	assert.Zero(t, reference.fuzzyCalls, "fuzzy search should be skipped when exact matched")
	assert.Equal(t, 1, incoming.markedCount)
}

func TestService_FallsThroughToVector(t *testing.T) {
	reference := &fakeReferenceStore{
		vectorHits: []VectorHit{{Customer: models.Customer{CustomerID: "c-2", CompanyName: "Acme Corporation"}, Similarity: 0.92}},
	}
	incoming := &fakeIncomingStore{record: incomingRecord()}
	results := &fakeResultStore{}

	run, err := newTestService(reference, incoming, results).MatchIncoming(context.Background(), "inc-1")
	require.NoError(t, err)

	assert.Equal(t, StrategyVector, run.Strategy)
	require.Len(t, run.Results, 1)
	assert.Equal(t, models.MatchTypeHighConfidence, run.Results[0].MatchType)
	assert.Equal(t, 1, reference.exactCalls)
	assert.Zero(t, reference.fuzzyCalls)
}

func TestService_FallsThroughToFuzzy(t *testing.T) {
	reference := &fakeReferenceStore{
		fuzzyHits: []FuzzyHit{{Customer: models.Customer{CustomerID: "c-3", CompanyName: "Acme Corpp"}, Similarity: 0.6}},
	}
	incoming := &fakeIncomingStore{record: incomingRecord()}
	results := &fakeResultStore{}

	run, err := newTestService(reference, incoming, results).MatchIncoming(context.Background(), "inc-1")
	require.NoError(t, err)

	assert.Equal(t, StrategyFuzzy, run.Strategy)
	require.Len(t, run.Results, 1)
	assert.Equal(t, models.MatchTypePotential, run.Results[0].MatchType)
	assert.Equal(t, "company_name", run.Results[0].MatchCriteria.Data["matched_field"])
}

func TestService_NoMatchesStillProcessed(t *testing.T) {
	reference := &fakeReferenceStore{}
	incoming := &fakeIncomingStore{record: incomingRecord()}
	results := &fakeResultStore{}

	run, err := newTestService(reference, incoming, results).MatchIncoming(context.Background(), "inc-1")
	require.NoError(t, err)

	assert.Equal(t, StrategyNone, run.Strategy)
	assert.Empty(t, run.Results)
	assert.Empty(t, results.saved)
	assert.Equal(t, 1, incoming.markedCount, "zero matches is a valid outcome and must mark the record processed")
}

func TestService_VectorFailureDegradesToFuzzy(t *testing.T) {
	reference := &fakeReferenceStore{
		vectorErr: errors.New("ivfflat index corrupted"),
		fuzzyHits: []FuzzyHit{{Customer: models.Customer{CustomerID: "c-4", CompanyName: "Acme Corp"}, Similarity: 0.9}},
	}
	incoming := &fakeIncomingStore{record: incomingRecord()}
	results := &fakeResultStore{}

	run, err := newTestService(reference, incoming, results).MatchIncoming(context.Background(), "inc-1")
	require.NoError(t, err, "a vector failure must not abort the chain")
	assert.Equal(t, StrategyFuzzy, run.Strategy)
	require.Len(t, run.Results, 1)
}

func TestService_ExactStoreErrorIsFatal(t *testing.T) {
	reference := &fakeReferenceStore{exactErr: errors.New("connection refused")}
	incoming := &fakeIncomingStore{record: incomingRecord()}

	_, err := newTestService(reference, incoming, &fakeResultStore{}).MatchIncoming(context.Background(), "inc-1")
	assert.Error(t, err)
	assert.Zero(t, incoming.markedCount)
}

func TestService_GetFailurePropagates(t *testing.T) {
	incoming := &fakeIncomingStore{getErr: errors.New("sql: no rows in result set")}

	_, err := newTestService(&fakeReferenceStore{}, incoming, &fakeResultStore{}).MatchIncoming(context.Background(), "missing")
	assert.Error(t, err)
}

func TestService_BusinessRulesAdjustPersistedConfidence(t *testing.T) {
	record := incomingRecord()
	record.Industry = strPtr("Software")
	record.City = strPtr("Seattle")

	reference := &fakeReferenceStore{
		vectorHits: []VectorHit{{
			Customer: models.Customer{
				CustomerID:  "c-5",
				CompanyName: "Acme Corporation",
				Industry:    strPtr("Software"),
				City:        strPtr("Seattle"),
			},
			Similarity: 0.8,
		}},
	}
	incoming := &fakeIncomingStore{record: record}
	results := &fakeResultStore{}

	run, err := newTestService(reference, incoming, results).MatchIncoming(context.Background(), "inc-1")
	require.NoError(t, err)
	require.Len(t, run.Results, 1)

	// 0.8 * 1.2 * 1.1 = 1.056, clamped
	result := run.Results[0]
	assert.InDelta(t, 1.0, result.ConfidenceLevel, 1e-9)
	assert.InDelta(t, 0.8, result.SimilarityScore, 1e-9)
	assert.InDelta(t, 1.056, result.MatchCriteria.Data["adjusted_score"].(float64), 1e-9)
	assert.Equal(t, true, result.MatchCriteria.Data["industry_match"])
	assert.Equal(t, true, result.MatchCriteria.Data["location_match"])
}

func TestService_MatchWithStrategy(t *testing.T) {
	reference := &fakeReferenceStore{
		exactCustomers: []models.Customer{{
			CustomerID:  "c-1",
			CompanyName: "Acme Corp",
			Email:       strPtr("sales@acme.com"),
		}},
	}
	incoming := &fakeIncomingStore{record: incomingRecord()}
	results := &fakeResultStore{}
	service := newTestService(reference, incoming, results)

	t.Run("single strategy does not persist", func(t *testing.T) {
		candidates, err := service.MatchWithStrategy(context.Background(), "inc-1", StrategyExact)
		require.NoError(t, err)
		assert.Len(t, candidates, 1)
		assert.Empty(t, results.saved)
		assert.Zero(t, incoming.markedCount)
	})

	t.Run("vector errors are surfaced", func(t *testing.T) {
		reference.vectorErr = errors.New("extension missing")
		_, err := service.MatchWithStrategy(context.Background(), "inc-1", StrategyVector)
		assert.Error(t, err)
	})

	t.Run("unknown strategy rejected", func(t *testing.T) {
		_, err := service.MatchWithStrategy(context.Background(), "inc-1", "phonetic")
		assert.Error(t, err)
	})
}
