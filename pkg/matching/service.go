package matching

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Strategy names reported on run results and metrics
const (
	StrategyExact  = "exact"
	StrategyVector = "vector"
	StrategyFuzzy  = "fuzzy"
	StrategyNone   = "none"
)

// RunResult summarizes one orchestrated matching run
type RunResult struct {
	IncomingCustomerID string               `json:"incoming_customer_id"`
	Strategy           string               `json:"strategy"`
	Results            []models.MatchResult `json:"results"`
}

// Service orchestrates the hybrid matching strategy: exact first, vector if
// exact found nothing, fuzzy if vector found nothing, then business rules
// and result persistence on whatever survived.
type Service struct {
	logger    ectologger.Logger
	exact     *ExactMatcher
	vector    *VectorMatcher
	fuzzy     *FuzzyMatcher
	rules     *RulesEngine
	processor *ResultProcessor
	incoming  IncomingStore
}

// NewService wires the pipeline against the given stores. A nil Transactor
// skips transactional persistence, which in-memory stores rely on.
func NewService(
	logger ectologger.Logger,
	tx Transactor,
	reference ReferenceStore,
	incoming IncomingStore,
	results ResultStore,
	cfg Config,
) *Service {
	return &Service{
		logger:    logger,
		exact:     NewExactMatcher(logger, reference, cfg),
		vector:    NewVectorMatcher(logger, reference, cfg),
		fuzzy:     NewFuzzyMatcher(logger, reference, cfg),
		rules:     NewRulesEngine(logger, cfg),
		processor: NewResultProcessor(logger, tx, results, incoming),
		incoming:  incoming,
	}
}

// MatchIncoming runs the hybrid strategy for one incoming record and persists
// the outcome. Zero matches across all strategies is a valid result: the
// record is marked processed with no rows.
func (s *Service) MatchIncoming(ctx context.Context, incomingCustomerID string) (*RunResult, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Service.MatchIncoming")
	defer span.End()

	start := time.Now()

	record, err := s.incoming.Get(ctx, incomingCustomerID)
	if err != nil {
		return nil, err
	}

	candidates, strategy, err := s.runHybrid(ctx, record)
	if err != nil {
		metrics.MatchRunsTotal.WithLabelValues(strategy, "error").Inc()
		return nil, err
	}

	for i := range candidates {
		s.rules.Apply(record, &candidates[i])
	}

	results, err := s.processor.Process(ctx, record, candidates)
	if err != nil {
		metrics.MatchRunsTotal.WithLabelValues(strategy, "error").Inc()
		return nil, err
	}

	metrics.MatchRunsTotal.WithLabelValues(strategy, "success").Inc()
	metrics.MatchDuration.WithLabelValues(strategy).Observe(time.Since(start).Seconds())
	metrics.MatchCandidatesFound.WithLabelValues(strategy).Observe(float64(len(results)))

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"incoming_customer_id": incomingCustomerID,
		"strategy":             strategy,
		"match_count":          len(results),
	}).Info("Matching run completed")

	return &RunResult{
		IncomingCustomerID: incomingCustomerID,
		Strategy:           strategy,
		Results:            results,
	}, nil
}

// runHybrid walks the strategy chain. Higher-precision strategies
// short-circuit lower-precision ones so weak candidates never dilute a
// strong result set. A vector failure degrades to no candidates instead of
// aborting the chain; exact and fuzzy store errors are fatal.
func (s *Service) runHybrid(ctx context.Context, record *models.IncomingCustomer) ([]Candidate, string, error) {
	candidates, err := s.exact.Match(ctx, record)
	if err != nil {
		return nil, StrategyExact, err
	}
	if len(candidates) > 0 {
		return candidates, StrategyExact, nil
	}

	candidates, err = s.vector.Match(ctx, record)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"incoming_customer_id": record.IncomingCustomerID,
		}).Warn("Vector matching failed; falling through to fuzzy")
		candidates = nil
	}
	if len(candidates) > 0 {
		return candidates, StrategyVector, nil
	}

	candidates, err = s.fuzzy.Match(ctx, record)
	if err != nil {
		return nil, StrategyFuzzy, err
	}
	if len(candidates) > 0 {
		return candidates, StrategyFuzzy, nil
	}

	return nil, StrategyNone, nil
}

// MatchWithStrategy runs a single matcher for analysis without applying
// business rules or persisting anything. Matcher errors are surfaced.
func (s *Service) MatchWithStrategy(ctx context.Context, incomingCustomerID string, strategy string) ([]Candidate, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Service.MatchWithStrategy")
	defer span.End()

	record, err := s.incoming.Get(ctx, incomingCustomerID)
	if err != nil {
		return nil, err
	}

	switch strategy {
	case StrategyExact:
		return s.exact.Match(ctx, record)
	case StrategyVector:
		return s.vector.Match(ctx, record)
	case StrategyFuzzy:
		return s.fuzzy.Match(ctx, record)
	default:
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "unknown matching strategy %q", strategy)
	}
}
