package integration

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/embedding"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/processor"
)

// memoryStore is an in-memory stand-in for the Postgres repositories so the
// full pipeline (embed, match, adjust, dedup, persist) can run in process.
type memoryStore struct {
	mu        sync.Mutex
	customers []models.Customer
	incoming  map[string]*models.IncomingCustomer
	results   []*models.MatchResult

	vectorHits []matching.VectorHit
	fuzzyHits  []matching.FuzzyHit
	exactErr   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{incoming: make(map[string]*models.IncomingCustomer)}
}

func (s *memoryStore) FindByExactFields(_ context.Context, companyName, email, phone string) ([]models.Customer, error) {
	if s.exactErr != nil {
		return nil, s.exactErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// The matcher sends normalized values; compare like the real repository's
	// LOWER(TRIM(...)) predicates.
	var found []models.Customer
	for _, c := range s.customers {
		if companyName != "" && strings.EqualFold(strings.TrimSpace(c.CompanyName), companyName) {
			found = append(found, c)
			continue
		}
		if email != "" && c.Email != nil && strings.EqualFold(strings.TrimSpace(*c.Email), email) {
			found = append(found, c)
		}
	}
	return found, nil
}

func (s *memoryStore) FindByVector(context.Context, []float32, float64, int) ([]matching.VectorHit, error) {
	return s.vectorHits, nil
}

func (s *memoryStore) FindByFuzzy(context.Context, string, float64, int) ([]matching.FuzzyHit, error) {
	return s.fuzzyHits, nil
}

func (s *memoryStore) Create(_ context.Context, record *models.IncomingCustomer) (*models.IncomingCustomer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.IncomingCustomerID = uuid.New().String()
	record.ProcessingStatus = models.ProcessingStatusPending
	record.RequestDate = time.Now().UTC()
	s.incoming[record.IncomingCustomerID] = record
	return record, nil
}

func (s *memoryStore) Get(_ context.Context, id string) (*models.IncomingCustomer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.incoming[id]
	if !ok {
		return nil, errors.New("sql: no rows in result set")
	}
	return record, nil
}

func (s *memoryStore) UpdateEmbedding(_ context.Context, record *models.IncomingCustomer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incoming[record.IncomingCustomerID].ProfileEmbedding = record.ProfileEmbedding
	return nil
}

func (s *memoryStore) MarkProcessed(_ context.Context, id string, processedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incoming[id].ProcessingStatus = models.ProcessingStatusProcessed
	s.incoming[id].ProcessedDate = &processedAt
	return nil
}

func (s *memoryStore) MarkFailed(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incoming[id].ProcessingStatus = models.ProcessingStatusFailed
	return nil
}

func (s *memoryStore) ListPending(_ context.Context, limit int) ([]models.IncomingCustomer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pending []models.IncomingCustomer
	for _, record := range s.incoming {
		if record.ProcessingStatus == models.ProcessingStatusPending {
			pending = append(pending, *record)
			if len(pending) == limit {
				break
			}
		}
	}
	return pending, nil
}

func (s *memoryStore) SaveBatch(_ context.Context, results []*models.MatchResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, results...)
	return nil
}

func (s *memoryStore) savedResults() []*models.MatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.MatchResult(nil), s.results...)
}

type staticEmbedder struct{}

func (staticEmbedder) EmbedText(context.Context, string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func newPipeline(store *memoryStore) (*processor.Processor, *matching.Service) {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	embedService := embedding.NewService(logger, staticEmbedder{})
	matcher := matching.NewService(logger, nil, store, store, store, matching.DefaultConfig())
	return processor.NewProcessor(logger, store, embedService, matcher, nil), matcher
}

func strPtr(s string) *string { return &s }

func referenceCustomer(company string, email string) models.Customer {
	vec := pgvector.NewVector([]float32{0.1, 0.2, 0.3})
	c := models.Customer{
		CustomerID:           uuid.New().String(),
		CompanyName:          company,
		FullProfileEmbedding: &vec,
	}
	if email != "" {
		c.Email = &email
	}
	return c
}

func TestPipeline_ExactMatchEndToEnd(t *testing.T) {
	store := newMemoryStore()
	target := referenceCustomer("Acme Corp", "info@acme.com")
	store.customers = []models.Customer{target, referenceCustomer("Other Co", "")}

	proc, _ := newPipeline(store)

	record, err := store.Create(context.Background(), &models.IncomingCustomer{
		CompanyName: "Acme Corp",
		Email:       strPtr("info@acme.com"),
	})
	require.NoError(t, err)

	require.NoError(t, proc.ProcessRecord(context.Background(), record))

	results := store.savedResults()
	require.Len(t, results, 1)
	assert.Equal(t, target.CustomerID, results[0].MatchedCustomerID)
	assert.Equal(t, record.IncomingCustomerID, results[0].IncomingCustomerID)
	assert.Equal(t, models.MatchTypeExact, results[0].MatchType)
	assert.Equal(t, models.MatchMethodExactFields, results[0].MatchCriteria.Data["match_method"])

	stored, err := store.Get(context.Background(), record.IncomingCustomerID)
	require.NoError(t, err)
	assert.Equal(t, models.ProcessingStatusProcessed, stored.ProcessingStatus)
	require.NotNil(t, stored.ProcessedDate)
	assert.NotNil(t, stored.ProfileEmbedding)
}

func TestPipeline_ExactMatchByCompanyNameOnly(t *testing.T) {
	store := newMemoryStore()
	target := referenceCustomer("Acme Corp", "")
	store.customers = []models.Customer{target}

	proc, _ := newPipeline(store)

	// Case and whitespace differences must not defeat the exact strategy.
	record, err := store.Create(context.Background(), &models.IncomingCustomer{
		CompanyName: "  ACME CORP ",
	})
	require.NoError(t, err)

	require.NoError(t, proc.ProcessRecord(context.Background(), record))

	results := store.savedResults()
	require.Len(t, results, 1)
	assert.Equal(t, target.CustomerID, results[0].MatchedCustomerID)
	assert.Equal(t, models.MatchMethodExactFields, results[0].MatchCriteria.Data["match_method"])
}

func TestPipeline_FallsThroughToVector(t *testing.T) {
	store := newMemoryStore()
	similar := referenceCustomer("Acme Corporation", "")
	store.vectorHits = []matching.VectorHit{{Customer: similar, Similarity: 0.91}}

	proc, _ := newPipeline(store)

	record, err := store.Create(context.Background(), &models.IncomingCustomer{
		CompanyName: "Acme Corp",
	})
	require.NoError(t, err)

	require.NoError(t, proc.ProcessRecord(context.Background(), record))

	results := store.savedResults()
	require.Len(t, results, 1)
	assert.Equal(t, similar.CustomerID, results[0].MatchedCustomerID)
	assert.Equal(t, models.MatchTypeHighConfidence, results[0].MatchType)
	assert.Equal(t, models.MatchMethodVectorSimilarity, results[0].MatchCriteria.Data["match_method"])
	assert.InDelta(t, 0.91, results[0].SimilarityScore, 1e-9)
}

func TestPipeline_FallsThroughToFuzzy(t *testing.T) {
	store := newMemoryStore()
	typo := referenceCustomer("Acme Corporatin", "")
	store.fuzzyHits = []matching.FuzzyHit{{Customer: typo, Similarity: 0.85}}

	proc, _ := newPipeline(store)

	record, err := store.Create(context.Background(), &models.IncomingCustomer{
		CompanyName: "Acme Corporation",
	})
	require.NoError(t, err)

	require.NoError(t, proc.ProcessRecord(context.Background(), record))

	results := store.savedResults()
	require.Len(t, results, 1)
	assert.Equal(t, typo.CustomerID, results[0].MatchedCustomerID)
	assert.Equal(t, models.MatchMethodFuzzyString, results[0].MatchCriteria.Data["match_method"])
}

func TestPipeline_BusinessRulesAdjustConfidence(t *testing.T) {
	store := newMemoryStore()
	similar := referenceCustomer("Acme Corporation", "")
	similar.Industry = strPtr("Manufacturing")
	similar.City = strPtr("Springfield")
	store.vectorHits = []matching.VectorHit{{Customer: similar, Similarity: 0.80}}

	proc, _ := newPipeline(store)

	record, err := store.Create(context.Background(), &models.IncomingCustomer{
		CompanyName: "Acme Corp",
		Industry:    strPtr("Manufacturing"),
		City:        strPtr("Springfield"),
	})
	require.NoError(t, err)

	require.NoError(t, proc.ProcessRecord(context.Background(), record))

	results := store.savedResults()
	require.Len(t, results, 1)
	// 0.80 * 1.2 * 1.1 = 1.056, clamped; the raw product survives in criteria
	assert.Equal(t, 1.0, results[0].ConfidenceLevel)
	assert.InDelta(t, 0.80, results[0].SimilarityScore, 1e-9)
	assert.InDelta(t, 1.056, results[0].MatchCriteria.Data["adjusted_score"].(float64), 1e-9)
}

func TestPipeline_NoMatchesStillProcessed(t *testing.T) {
	store := newMemoryStore()
	proc, _ := newPipeline(store)

	record, err := store.Create(context.Background(), &models.IncomingCustomer{
		CompanyName: "Nobody Knows This Company",
	})
	require.NoError(t, err)

	require.NoError(t, proc.ProcessRecord(context.Background(), record))

	assert.Empty(t, store.savedResults())
	stored, err := store.Get(context.Background(), record.IncomingCustomerID)
	require.NoError(t, err)
	assert.Equal(t, models.ProcessingStatusProcessed, stored.ProcessingStatus)
}

func TestPipeline_MatchFailureMarksRecordFailed(t *testing.T) {
	store := newMemoryStore()
	store.exactErr = errors.New("connection refused")

	proc, _ := newPipeline(store)

	record, err := store.Create(context.Background(), &models.IncomingCustomer{
		CompanyName: "Acme Corp",
	})
	require.NoError(t, err)

	require.Error(t, proc.ProcessRecord(context.Background(), record))

	stored, err := store.Get(context.Background(), record.IncomingCustomerID)
	require.NoError(t, err)
	assert.Equal(t, models.ProcessingStatusFailed, stored.ProcessingStatus)
}

func TestWorker_DrainsPendingRecords(t *testing.T) {
	store := newMemoryStore()
	target := referenceCustomer("Acme Corp", "")
	store.customers = []models.Customer{target}

	proc, _ := newPipeline(store)
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})

	for i := 0; i < 3; i++ {
		_, err := store.Create(context.Background(), &models.IncomingCustomer{
			CompanyName: "Acme Corp",
		})
		require.NoError(t, err)
	}

	worker := processor.NewWorker(logger, proc, store, processor.WorkerConfig{
		PollInterval: 10 * time.Millisecond,
		Concurrency:  2,
		BatchSize:    10,
	})
	require.NoError(t, worker.Start(context.Background()))

	require.Eventually(t, func() bool {
		pending, err := store.ListPending(context.Background(), 10)
		return err == nil && len(pending) == 0
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, worker.Stop())
	assert.Len(t, store.savedResults(), 3)
}
