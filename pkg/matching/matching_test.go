package matching

import (
	"context"
	"database/sql"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func vecPtr(v []float32) *pgvector.Vector {
	vec := pgvector.NewVector(v)
	return &vec
}

type fakeReferenceStore struct {
	exactCustomers []models.Customer
	exactErr       error
	vectorHits     []VectorHit
	vectorErr      error
	fuzzyHits      []FuzzyHit
	fuzzyErr       error

	exactCalls     int
	vectorCalls    int
	fuzzyCalls     int
	fuzzyThreshold float64
	fuzzyLimit     int
}

func (s *fakeReferenceStore) FindByExactFields(_ context.Context, _, _, _ string) ([]models.Customer, error) {
	s.exactCalls++
	return s.exactCustomers, s.exactErr
}

func (s *fakeReferenceStore) FindByVector(_ context.Context, _ []float32, _ float64, _ int) ([]VectorHit, error) {
	s.vectorCalls++
	return s.vectorHits, s.vectorErr
}

func (s *fakeReferenceStore) FindByFuzzy(_ context.Context, _ string, threshold float64, limit int) ([]FuzzyHit, error) {
	s.fuzzyCalls++
	s.fuzzyThreshold = threshold
	s.fuzzyLimit = limit
	return s.fuzzyHits, s.fuzzyErr
}

type fakeIncomingStore struct {
	record      *models.IncomingCustomer
	getErr      error
	markErr     error
	processedID string
	processedAt time.Time
	markedCount int
}

func (s *fakeIncomingStore) Get(_ context.Context, _ string) (*models.IncomingCustomer, error) {
	return s.record, s.getErr
}

func (s *fakeIncomingStore) MarkProcessed(_ context.Context, id string, processedAt time.Time) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.processedID = id
	s.processedAt = processedAt
	s.markedCount++
	return nil
}

type fakeResultStore struct {
	saved   []*models.MatchResult
	saveErr error
}

func (s *fakeResultStore) SaveBatch(_ context.Context, results []*models.MatchResult) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, results...)
	return nil
}

type fakeTx struct {
	open       bool
	committed  bool
	rolledBack bool
}

func (t *fakeTx) IsOpen() bool { return t.open }

func (t *fakeTx) Commit(context.Context) error {
	t.open = false
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if !t.open {
		return nil
	}
	t.open = false
	t.rolledBack = true
	return nil
}

func (t *fakeTx) ExecContext(context.Context, string, ...any) (sql.Result, error) { return nil, nil }
func (t *fakeTx) GetContext(context.Context, any, string, ...any) error           { return nil }
func (t *fakeTx) SelectContext(context.Context, any, string, ...any) error        { return nil }
func (t *fakeTx) QueryxContext(context.Context, string, ...any) (*sqlx.Rows, error) {
	return nil, nil
}
func (t *fakeTx) Rebind(q string) string { return q }

type fakeTransactor struct {
	tx    *fakeTx
	opens int
}

func (f *fakeTransactor) GetTx(ctx context.Context, _ *sql.TxOptions) (context.Context, database.Tx, error) {
	f.opens++
	f.tx = &fakeTx{open: true}
	return ctx, f.tx, nil
}
