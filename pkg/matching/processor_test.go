package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func candidateFor(customerID string, confidence float64, method string) Candidate {
	return Candidate{
		Customer:    models.Customer{CustomerID: customerID, CompanyName: customerID + " Co"},
		Similarity:  confidence,
		MatchType:   models.MatchTypePotential,
		MatchMethod: method,
		Confidence:  confidence,
		Criteria:    map[string]any{"matched_company": customerID + " Co"},
	}
}

func TestDeduplicate(t *testing.T) {
	t.Run("keeps highest confidence per customer", func(t *testing.T) {
		exact := []Candidate{candidateFor("c-1", 0.8, models.MatchMethodExactFields)}
		fuzzy := []Candidate{
			candidateFor("c-1", 0.95, models.MatchMethodFuzzyString),
			candidateFor("c-2", 0.82, models.MatchMethodFuzzyString),
		}

		deduped := Deduplicate(exact, fuzzy)
		require.Len(t, deduped, 2)
		assert.Equal(t, "c-1", deduped[0].Customer.CustomerID)
		assert.Equal(t, 0.95, deduped[0].Confidence)
		assert.Equal(t, models.MatchMethodFuzzyString, deduped[0].MatchMethod)
		assert.Equal(t, "c-2", deduped[1].Customer.CustomerID)
	})

	t.Run("sorts descending by confidence", func(t *testing.T) {
		deduped := Deduplicate([]Candidate{
			candidateFor("c-1", 0.6, models.MatchMethodFuzzyString),
			candidateFor("c-2", 0.9, models.MatchMethodFuzzyString),
			candidateFor("c-3", 0.75, models.MatchMethodFuzzyString),
		})
		require.Len(t, deduped, 3)
		assert.Equal(t, "c-2", deduped[0].Customer.CustomerID)
		assert.Equal(t, "c-3", deduped[1].Customer.CustomerID)
		assert.Equal(t, "c-1", deduped[2].Customer.CustomerID)
	})

	t.Run("ties break deterministically by customer id", func(t *testing.T) {
		deduped := Deduplicate([]Candidate{
			candidateFor("c-b", 0.8, models.MatchMethodFuzzyString),
			candidateFor("c-a", 0.8, models.MatchMethodFuzzyString),
		})
		require.Len(t, deduped, 2)
		assert.Equal(t, "c-a", deduped[0].Customer.CustomerID)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Deduplicate())
		assert.Empty(t, Deduplicate(nil, []Candidate{}))
	})
}

func TestResultProcessor_Process(t *testing.T) {
	record := &models.IncomingCustomer{
		IncomingCustomerID: "inc-1",
		CompanyName:        "Acme Corp",
	}

	t.Run("persists results and marks processed", func(t *testing.T) {
		results := &fakeResultStore{}
		incoming := &fakeIncomingStore{}
		processor := NewResultProcessor(testLogger(), nil, results, incoming)

		out, err := processor.Process(context.Background(), record, []Candidate{
			candidateFor("c-1", 0.9, models.MatchMethodExactFields),
			candidateFor("c-2", 0.8, models.MatchMethodExactFields),
		})
		require.NoError(t, err)
		require.Len(t, out, 2)
		require.Len(t, results.saved, 2)

		first := out[0]
		assert.NotEmpty(t, first.MatchID)
		assert.Equal(t, "inc-1", first.IncomingCustomerID)
		assert.Equal(t, "c-1", first.MatchedCustomerID)
		assert.Equal(t, 0.9, first.SimilarityScore)
		assert.Equal(t, 0.9, first.ConfidenceLevel)
		assert.False(t, first.CreatedDate.IsZero())
		assert.Equal(t, "c-1 Co", first.MatchCriteria.Data["matched_company"])

		assert.Equal(t, "inc-1", incoming.processedID)
		assert.Equal(t, 1, incoming.markedCount)
	})

	t.Run("no candidates still marks processed without saving", func(t *testing.T) {
		results := &fakeResultStore{}
		incoming := &fakeIncomingStore{}
		processor := NewResultProcessor(testLogger(), nil, results, incoming)

		out, err := processor.Process(context.Background(), record)
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.Empty(t, results.saved)
		assert.Equal(t, 1, incoming.markedCount)
	})

	t.Run("saves and status flip commit together", func(t *testing.T) {
		results := &fakeResultStore{}
		incoming := &fakeIncomingStore{}
		transactor := &fakeTransactor{}
		processor := NewResultProcessor(testLogger(), transactor, results, incoming)

		_, err := processor.Process(context.Background(), record, []Candidate{
			candidateFor("c-1", 0.9, models.MatchMethodExactFields),
		})
		require.NoError(t, err)
		require.Equal(t, 1, transactor.opens)
		assert.True(t, transactor.tx.committed)
		assert.False(t, transactor.tx.rolledBack)
	})

	t.Run("mark failure rolls the saves back", func(t *testing.T) {
		results := &fakeResultStore{}
		incoming := &fakeIncomingStore{markErr: errors.New("connection reset")}
		transactor := &fakeTransactor{}
		processor := NewResultProcessor(testLogger(), transactor, results, incoming)

		_, err := processor.Process(context.Background(), record, []Candidate{
			candidateFor("c-1", 0.9, models.MatchMethodExactFields),
		})
		require.Error(t, err)
		assert.False(t, transactor.tx.committed)
		assert.True(t, transactor.tx.rolledBack)
	})

	t.Run("save failure leaves record unprocessed", func(t *testing.T) {
		results := &fakeResultStore{saveErr: errors.New("deadlock detected")}
		incoming := &fakeIncomingStore{}
		processor := NewResultProcessor(testLogger(), nil, results, incoming)

		_, err := processor.Process(context.Background(), record, []Candidate{
			candidateFor("c-1", 0.9, models.MatchMethodExactFields),
		})
		assert.Error(t, err)
		assert.Zero(t, incoming.markedCount)
	})
}
