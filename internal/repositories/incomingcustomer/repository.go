package incomingcustomer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Repository handles incoming customer persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new incoming customer repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const allColumns = "incoming_customer_id, request_id, company_name, contact_name, email, phone, address_line1, address_line2, city, state_province, postal_code, country, industry, annual_revenue, employee_count, website, description, processing_status, request_date, processed_date"

// Create creates a new incoming customer in pending status
func (r *Repository) Create(ctx context.Context, record *models.IncomingCustomer) (*models.IncomingCustomer, error) {
	ctx, span := tracing.StartSpan(ctx, "incomingcustomer.Repository.Create")
	defer span.End()

	if record.IncomingCustomerID == "" {
		record.IncomingCustomerID = uuid.New().String()
	}
	record.ProcessingStatus = models.ProcessingStatusPending
	record.RequestDate = time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("incoming_customers")
	sb.Cols("incoming_customer_id", "request_id", "company_name", "contact_name", "email", "phone", "address_line1", "address_line2", "city", "state_province", "postal_code", "country", "industry", "annual_revenue", "employee_count", "website", "description", "processing_status", "request_date")
	sb.Values(record.IncomingCustomerID, record.RequestID, record.CompanyName, record.ContactName, record.Email, record.Phone, record.AddressLine1, record.AddressLine2, record.City, record.StateProvince, record.PostalCode, record.Country, record.Industry, record.AnnualRevenue, record.EmployeeCount, record.Website, record.Description, record.ProcessingStatus, record.RequestDate)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"incoming_customer_id": record.IncomingCustomerID}).Error("Failed to create incoming customer")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create incoming customer")
	}

	return record, nil
}

// Get retrieves an incoming customer by ID, including its embedding
func (r *Repository) Get(ctx context.Context, id string) (*models.IncomingCustomer, error) {
	ctx, span := tracing.StartSpan(ctx, "incomingcustomer.Repository.Get")
	defer span.End()

	query := fmt.Sprintf("SELECT %s, profile_embedding FROM incoming_customers WHERE incoming_customer_id = $1", allColumns)

	var record models.IncomingCustomer
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("incoming customer %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get incoming customer")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get incoming customer")
	}

	return &record, nil
}

// List retrieves a page of incoming customers, optionally filtered by status
func (r *Repository) List(ctx context.Context, status string, page, pageSize int) ([]models.IncomingCustomer, int, error) {
	ctx, span := tracing.StartSpan(ctx, "incomingcustomer.Repository.List")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}

	countSb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From("incoming_customers")
	if status != "" {
		countSb.Where(countSb.Equal("processing_status", status))
	}

	countQuery, countArgs := countSb.Build()
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count incoming customers")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list incoming customers")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(allColumns)
	sb.From("incoming_customers")
	if status != "" {
		sb.Where(sb.Equal("processing_status", status))
	}
	sb.OrderBy("request_date DESC")
	sb.Limit(pageSize)
	sb.Offset((page - 1) * pageSize)

	query, args := sb.Build()
	var records []models.IncomingCustomer
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list incoming customers")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list incoming customers")
	}

	return records, total, nil
}

// ListPending returns pending records oldest first for the worker pool
func (r *Repository) ListPending(ctx context.Context, limit int) ([]models.IncomingCustomer, error) {
	ctx, span := tracing.StartSpan(ctx, "incomingcustomer.Repository.ListPending")
	defer span.End()

	if limit < 1 || limit > 500 {
		limit = 100
	}

	query := fmt.Sprintf(`
		SELECT %s, profile_embedding FROM incoming_customers
		WHERE processing_status = $1
		ORDER BY request_date ASC
		LIMIT $2
	`, allColumns)

	var records []models.IncomingCustomer
	if err := r.db.SelectContext(ctx, &records, query, models.ProcessingStatusPending, limit); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list pending incoming customers")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list pending incoming customers")
	}

	return records, nil
}

// UpdateEmbedding stores the profile vector for an incoming customer
func (r *Repository) UpdateEmbedding(ctx context.Context, record *models.IncomingCustomer) error {
	ctx, span := tracing.StartSpan(ctx, "incomingcustomer.Repository.UpdateEmbedding")
	defer span.End()

	query := "UPDATE incoming_customers SET profile_embedding = $1 WHERE incoming_customer_id = $2"

	result, err := r.db.ExecContext(ctx, query, record.ProfileEmbedding, record.IncomingCustomerID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"incoming_customer_id": record.IncomingCustomerID}).Error("Failed to update incoming customer embedding")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update incoming customer embedding")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("incoming customer %s not found", record.IncomingCustomerID))
	}

	return nil
}

// MarkProcessed transitions a record to processed with its completion time
func (r *Repository) MarkProcessed(ctx context.Context, id string, processedAt time.Time) error {
	ctx, span := tracing.StartSpan(ctx, "incomingcustomer.Repository.MarkProcessed")
	defer span.End()

	return r.setStatus(ctx, id, models.ProcessingStatusProcessed, &processedAt)
}

// MarkFailed transitions a record to failed
func (r *Repository) MarkFailed(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "incomingcustomer.Repository.MarkFailed")
	defer span.End()

	now := time.Now().UTC()
	return r.setStatus(ctx, id, models.ProcessingStatusFailed, &now)
}

// ResetProcessing returns a record to pending so it can be matched again
func (r *Repository) ResetProcessing(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "incomingcustomer.Repository.ResetProcessing")
	defer span.End()

	return r.setStatus(ctx, id, models.ProcessingStatusPending, nil)
}

func (r *Repository) setStatus(ctx context.Context, id string, status string, processedAt *time.Time) error {
	query := "UPDATE incoming_customers SET processing_status = $1, processed_date = $2 WHERE incoming_customer_id = $3"

	// Status flips join an ambient transaction so they commit with the
	// match results written in the same run.
	result, err := database.QuerierFromContext(ctx, r.db).ExecContext(ctx, query, status, processedAt, id)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"incoming_customer_id": id, "status": status}).Error("Failed to update incoming customer status")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update incoming customer status")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("incoming customer %s not found", id))
	}

	return nil
}

// FindOrphaned returns processed records with no match results. These
// indicate runs that completed without persisting their outcome.
func (r *Repository) FindOrphaned(ctx context.Context, limit int) ([]models.IncomingCustomer, error) {
	ctx, span := tracing.StartSpan(ctx, "incomingcustomer.Repository.FindOrphaned")
	defer span.End()

	if limit < 1 || limit > 500 {
		limit = 100
	}

	query := fmt.Sprintf(`
		SELECT %s FROM incoming_customers ic
		WHERE ic.processing_status = $1
		AND NOT EXISTS (
			SELECT 1 FROM match_results mr WHERE mr.incoming_customer_id = ic.incoming_customer_id
		)
		ORDER BY ic.processed_date ASC
		LIMIT $2
	`, prefixColumns("ic"))

	var records []models.IncomingCustomer
	if err := r.db.SelectContext(ctx, &records, query, models.ProcessingStatusProcessed, limit); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to find orphaned incoming customers")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to find orphaned incoming customers")
	}

	return records, nil
}

// Delete removes an incoming customer and relies on the FK cascade for its
// match results.
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "incomingcustomer.Repository.Delete")
	defer span.End()

	result, err := r.db.ExecContext(ctx, "DELETE FROM incoming_customers WHERE incoming_customer_id = $1", id)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete incoming customer")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete incoming customer")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("incoming customer %s not found", id))
	}

	return nil
}

func prefixColumns(alias string) string {
	return alias + ".incoming_customer_id, " + alias + ".request_id, " + alias + ".company_name, " + alias + ".contact_name, " + alias + ".email, " + alias + ".phone, " + alias + ".address_line1, " + alias + ".address_line2, " + alias + ".city, " + alias + ".state_province, " + alias + ".postal_code, " + alias + ".country, " + alias + ".industry, " + alias + ".annual_revenue, " + alias + ".employee_count, " + alias + ".website, " + alias + ".description, " + alias + ".processing_status, " + alias + ".request_date, " + alias + ".processed_date"
}
