package matchresult

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Repository handles match result persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new match result repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const allColumns = "match_id, incoming_customer_id, matched_customer_id, similarity_score, match_type, confidence_level, match_criteria, created_date, reviewed, reviewer_notes"

// prefixColumns qualifies allColumns with a table alias for joins
func prefixColumns(alias string) string {
	return alias + "." + strings.ReplaceAll(allColumns, ", ", ", "+alias+".")
}

// SaveBatch persists a run's match results in one statement
func (r *Repository) SaveBatch(ctx context.Context, results []*models.MatchResult) error {
	ctx, span := tracing.StartSpan(ctx, "matchresult.Repository.SaveBatch")
	defer span.End()

	if len(results) == 0 {
		return nil
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("match_results")
	sb.Cols("match_id", "incoming_customer_id", "matched_customer_id", "similarity_score", "match_type", "confidence_level", "match_criteria", "created_date", "reviewed")

	for _, result := range results {
		sb.Values(result.MatchID, result.IncomingCustomerID, result.MatchedCustomerID, result.SimilarityScore, result.MatchType, result.ConfidenceLevel, result.MatchCriteria, result.CreatedDate, result.Reviewed)
	}

	query, args := sb.Build()
	// Joins the caller's transaction when one is carried on the context so
	// the saves and the status flip commit together.
	if _, err := database.QuerierFromContext(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to save match results batch")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to save match results")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"count": len(results)}).Debug("Saved match results batch")
	return nil
}

// Get retrieves a match result by ID
func (r *Repository) Get(ctx context.Context, id string) (*models.MatchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "matchresult.Repository.Get")
	defer span.End()

	query := fmt.Sprintf("SELECT %s FROM match_results WHERE match_id = $1", allColumns)

	var result models.MatchResult
	if err := r.db.GetContext(ctx, &result, query, id); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("match result %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get match result")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get match result")
	}

	return &result, nil
}

// ListByIncoming returns all results for one incoming record, strongest first
func (r *Repository) ListByIncoming(ctx context.Context, incomingCustomerID string) ([]models.MatchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "matchresult.Repository.ListByIncoming")
	defer span.End()

	query := fmt.Sprintf(`
		SELECT %s FROM match_results
		WHERE incoming_customer_id = $1
		ORDER BY confidence_level DESC, similarity_score DESC
	`, allColumns)

	var results []models.MatchResult
	if err := r.db.SelectContext(ctx, &results, query, incomingCustomerID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list match results by incoming customer")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list match results")
	}

	return results, nil
}

// ListFilters narrows a match result listing
type ListFilters struct {
	MatchType     string
	Reviewed      *bool
	MinConfidence *float64
	Limit         int
}

// List retrieves match results matching the filters, newest first
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]models.MatchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "matchresult.Repository.List")
	defer span.End()

	if filters.Limit < 1 || filters.Limit > 500 {
		filters.Limit = 100
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(allColumns)
	sb.From("match_results")

	where := make([]string, 0, 3)
	if filters.MatchType != "" {
		where = append(where, sb.Equal("match_type", filters.MatchType))
	}
	if filters.Reviewed != nil {
		where = append(where, sb.Equal("reviewed", *filters.Reviewed))
	}
	if filters.MinConfidence != nil {
		where = append(where, sb.GreaterEqualThan("confidence_level", *filters.MinConfidence))
	}
	if len(where) > 0 {
		sb.Where(where...)
	}
	sb.OrderBy("created_date DESC")
	sb.Limit(filters.Limit)

	query, args := sb.Build()
	var results []models.MatchResult
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list match results")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list match results")
	}

	return results, nil
}

// Review marks a match result reviewed with optional notes
func (r *Repository) Review(ctx context.Context, id string, notes *string) (*models.MatchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "matchresult.Repository.Review")
	defer span.End()

	query := "UPDATE match_results SET reviewed = TRUE, reviewer_notes = $1 WHERE match_id = $2"

	result, err := r.db.ExecContext(ctx, query, notes, id)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to review match result")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to review match result")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("match result %s not found", id))
	}

	return r.Get(ctx, id)
}

// DeleteByIncoming clears prior results for a record before a rerun
func (r *Repository) DeleteByIncoming(ctx context.Context, incomingCustomerID string) error {
	ctx, span := tracing.StartSpan(ctx, "matchresult.Repository.DeleteByIncoming")
	defer span.End()

	if _, err := r.db.ExecContext(ctx, "DELETE FROM match_results WHERE incoming_customer_id = $1", incomingCustomerID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete match results by incoming customer")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete match results")
	}

	return nil
}

// FindOrphaned returns results whose matched customer row no longer exists.
// The FK cascade makes these impossible under normal operation; a non-empty
// return means something bypassed the schema.
func (r *Repository) FindOrphaned(ctx context.Context, limit int) ([]models.MatchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "matchresult.Repository.FindOrphaned")
	defer span.End()

	query := fmt.Sprintf(`
		SELECT %s FROM match_results mr
		LEFT JOIN customers c ON c.customer_id = mr.matched_customer_id
		WHERE c.customer_id IS NULL
		ORDER BY mr.created_date ASC
		LIMIT $1`, prefixColumns("mr"))

	var results []models.MatchResult
	if err := r.db.SelectContext(ctx, &results, query, limit); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to find orphaned match results")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to find orphaned match results")
	}

	return results, nil
}

// Summary aggregates counts for the dashboard
type Summary struct {
	TotalIncoming     int            `json:"total_incoming_customers"`
	TotalMatches      int            `json:"total_matches"`
	ProcessedRecords  int            `json:"processed_records"`
	PendingRecords    int            `json:"pending_records"`
	ReviewedMatches   int            `json:"reviewed_matches"`
	MatchDistribution map[string]int `json:"match_distribution"`
}

type distributionRow struct {
	MatchType string `db:"match_type"`
	Count     int    `db:"count"`
}

// GetSummary computes overall matching statistics
func (r *Repository) GetSummary(ctx context.Context) (*Summary, error) {
	ctx, span := tracing.StartSpan(ctx, "matchresult.Repository.GetSummary")
	defer span.End()

	summary := Summary{MatchDistribution: make(map[string]int)}

	counts := []struct {
		query string
		dest  *int
		args  []any
	}{
		{"SELECT COUNT(*) FROM incoming_customers", &summary.TotalIncoming, nil},
		{"SELECT COUNT(*) FROM match_results", &summary.TotalMatches, nil},
		{"SELECT COUNT(*) FROM incoming_customers WHERE processing_status = $1", &summary.ProcessedRecords, []any{models.ProcessingStatusProcessed}},
		{"SELECT COUNT(*) FROM incoming_customers WHERE processing_status = $1", &summary.PendingRecords, []any{models.ProcessingStatusPending}},
		{"SELECT COUNT(*) FROM match_results WHERE reviewed = TRUE", &summary.ReviewedMatches, nil},
	}
	for _, c := range counts {
		if err := r.db.GetContext(ctx, c.dest, c.query, c.args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("Failed to compute match summary")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to compute match summary")
		}
	}

	var distribution []distributionRow
	if err := r.db.SelectContext(ctx, &distribution, "SELECT match_type, COUNT(*) AS count FROM match_results GROUP BY match_type"); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to compute match distribution")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to compute match summary")
	}
	for _, row := range distribution {
		summary.MatchDistribution[row.MatchType] = row.Count
	}

	return &summary, nil
}
