package matching

import (
	"context"
	"database/sql"
	"time"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
)

// Candidate is an in-memory proposed pairing of an incoming record to a
// reference customer. It is produced by a matcher, adjusted by the rules
// engine, and persisted by the result processor.
type Candidate struct {
	Customer    models.Customer `json:"customer"`
	Similarity  float64         `json:"similarity"` // raw matcher score in [0, 1]
	MatchType   string          `json:"match_type"`
	MatchMethod string          `json:"match_method"`
	Confidence  float64         `json:"confidence"` // similarity after business-rule adjustment
	Criteria    map[string]any  `json:"criteria"`
}

// VectorHit pairs a customer with its cosine similarity to the query vector
type VectorHit struct {
	Customer   models.Customer
	Similarity float64
}

// FuzzyHit pairs a customer with its store-side trigram similarity. The
// fuzzy matcher treats this as a prefilter and recomputes the definitive
// sequence ratio in process.
type FuzzyHit struct {
	Customer   models.Customer
	Similarity float64
}

// ReferenceStore is the read-only lookup over resolved customers.
type ReferenceStore interface {
	// FindByExactFields returns customers whose normalized company name,
	// email, or phone equals the given values. Empty arguments are ignored.
	FindByExactFields(ctx context.Context, companyName, email, phone string) ([]models.Customer, error)
	// FindByVector returns up to limit customers whose profile embedding has
	// cosine similarity >= threshold, ordered by descending similarity.
	FindByVector(ctx context.Context, embedding []float32, threshold float64, limit int) ([]VectorHit, error)
	// FindByFuzzy returns up to limit customers whose company or contact
	// name is trigram-similar to name, ordered by descending similarity.
	FindByFuzzy(ctx context.Context, name string, threshold float64, limit int) ([]FuzzyHit, error)
}

// IncomingStore looks up and mutates incoming customer records.
type IncomingStore interface {
	Get(ctx context.Context, incomingCustomerID string) (*models.IncomingCustomer, error)
	MarkProcessed(ctx context.Context, incomingCustomerID string, processedAt time.Time) error
}

// ResultStore persists match results.
type ResultStore interface {
	SaveBatch(ctx context.Context, results []*models.MatchResult) error
}

// Transactor opens a database transaction carried on the returned context so
// store calls made with it share one unit of work. database.DB implements
// it; a nil Transactor leaves each store call autonomous.
type Transactor interface {
	GetTx(ctx context.Context, opts *sql.TxOptions) (context.Context, database.Tx, error)
}
