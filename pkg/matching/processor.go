package matching

import (
	"context"
	"sort"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// ResultProcessor merges matcher outputs, deduplicates them by target
// customer, and persists the survivors. It is the only pipeline component
// that mutates stored state.
type ResultProcessor struct {
	logger   ectologger.Logger
	tx       Transactor
	results  ResultStore
	incoming IncomingStore
}

// NewResultProcessor creates a new result processor
func NewResultProcessor(logger ectologger.Logger, tx Transactor, results ResultStore, incoming IncomingStore) *ResultProcessor {
	return &ResultProcessor{
		logger:   logger,
		tx:       tx,
		results:  results,
		incoming: incoming,
	}
}

// Process merges the candidate lists, keeps the highest-confidence occurrence
// per target customer, sorts descending by confidence, persists each survivor
// as a MatchResult, and marks the incoming record processed. The saves and
// the status change share one transaction so a failure between them cannot
// leave persisted rows on a still-pending record. Re-running on the same
// record appends duplicate rows unless the caller clears prior results first.
func (p *ResultProcessor) Process(ctx context.Context, record *models.IncomingCustomer, lists ...[]Candidate) ([]models.MatchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.ResultProcessor.Process")
	defer span.End()

	deduped := Deduplicate(lists...)

	now := time.Now().UTC()
	results := make([]models.MatchResult, 0, len(deduped))
	rows := make([]*models.MatchResult, 0, len(deduped))
	for _, c := range deduped {
		criteria := c.Criteria
		if criteria == nil {
			criteria = map[string]any{}
		}
		criteria["match_method"] = c.MatchMethod

		result := models.MatchResult{
			MatchID:            uuid.New().String(),
			IncomingCustomerID: record.IncomingCustomerID,
			MatchedCustomerID:  c.Customer.CustomerID,
			SimilarityScore:    c.Similarity,
			MatchType:          c.MatchType,
			ConfidenceLevel:    c.Confidence,
			MatchCriteria:      database.JSONB[map[string]any]{Data: criteria},
			CreatedDate:        now,
		}
		results = append(results, result)
		rows = append(rows, &results[len(results)-1])
	}

	var tx database.Tx
	if p.tx != nil {
		var err error
		ctx, tx, err = p.tx.GetTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback(ctx)
	}

	if len(rows) > 0 {
		if err := p.results.SaveBatch(ctx, rows); err != nil {
			return nil, err
		}
	}

	if err := p.incoming.MarkProcessed(ctx, record.IncomingCustomerID, now); err != nil {
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"incoming_customer_id": record.IncomingCustomerID,
		"result_count":         len(results),
	}).Info("Match results persisted")

	return results, nil
}

// Deduplicate merges candidate lists, keeping the highest-confidence
// occurrence per target customer, and sorts descending by confidence.
// Ties break toward the higher raw similarity, then the customer id for
// deterministic output.
func Deduplicate(lists ...[]Candidate) []Candidate {
	best := make(map[string]Candidate)
	order := make([]string, 0)

	for _, list := range lists {
		for _, c := range list {
			existing, ok := best[c.Customer.CustomerID]
			if !ok {
				best[c.Customer.CustomerID] = c
				order = append(order, c.Customer.CustomerID)
				continue
			}
			if c.Confidence > existing.Confidence {
				best[c.Customer.CustomerID] = c
			}
		}
	}

	deduped := make([]Candidate, 0, len(best))
	for _, id := range order {
		deduped = append(deduped, best[id])
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		if deduped[i].Confidence != deduped[j].Confidence {
			return deduped[i].Confidence > deduped[j].Confidence
		}
		if deduped[i].Similarity != deduped[j].Similarity {
			return deduped[i].Similarity > deduped[j].Similarity
		}
		return deduped[i].Customer.CustomerID < deduped[j].Customer.CustomerID
	})

	return deduped
}
