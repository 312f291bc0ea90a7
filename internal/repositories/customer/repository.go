package customer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/pgvector/pgvector-go"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Repository handles reference customer persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new customer repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const allColumns = "customer_id, company_name, contact_name, email, phone, address_line1, address_line2, city, state_province, postal_code, country, industry, annual_revenue, employee_count, website, description, created_at, updated_at"

// Create creates a new reference customer
func (r *Repository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.Create")
	defer span.End()

	if customer.CustomerID == "" {
		customer.CustomerID = uuid.New().String()
	}
	customer.CreatedAt = time.Now().UTC()
	customer.UpdatedAt = customer.CreatedAt

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("customers")
	sb.Cols("customer_id", "company_name", "contact_name", "email", "phone", "address_line1", "address_line2", "city", "state_province", "postal_code", "country", "industry", "annual_revenue", "employee_count", "website", "description", "created_at", "updated_at")
	sb.Values(customer.CustomerID, customer.CompanyName, customer.ContactName, customer.Email, customer.Phone, customer.AddressLine1, customer.AddressLine2, customer.City, customer.StateProvince, customer.PostalCode, customer.Country, customer.Industry, customer.AnnualRevenue, customer.EmployeeCount, customer.Website, customer.Description, customer.CreatedAt, customer.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"customer_id": customer.CustomerID}).Error("Failed to create customer")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create customer")
	}

	return customer, nil
}

// CreateBatch inserts multiple reference customers efficiently
func (r *Repository) CreateBatch(ctx context.Context, customers []*models.Customer) error {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.CreateBatch")
	defer span.End()

	if len(customers) == 0 {
		return nil
	}

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("customers")
	sb.Cols("customer_id", "company_name", "contact_name", "email", "phone", "address_line1", "address_line2", "city", "state_province", "postal_code", "country", "industry", "annual_revenue", "employee_count", "website", "description", "created_at", "updated_at")

	for _, c := range customers {
		if c.CustomerID == "" {
			c.CustomerID = uuid.New().String()
		}
		c.CreatedAt = now
		c.UpdatedAt = now
		sb.Values(c.CustomerID, c.CompanyName, c.ContactName, c.Email, c.Phone, c.AddressLine1, c.AddressLine2, c.City, c.StateProvince, c.PostalCode, c.Country, c.Industry, c.AnnualRevenue, c.EmployeeCount, c.Website, c.Description, c.CreatedAt, c.UpdatedAt)
	}

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create customers batch")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to import customers")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"count": len(customers)}).Debug("Imported customers batch")
	return nil
}

// Get retrieves a customer by ID
func (r *Repository) Get(ctx context.Context, id string) (*models.Customer, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.Get")
	defer span.End()

	query := fmt.Sprintf("SELECT %s FROM customers WHERE customer_id = $1", allColumns)

	var customer models.Customer
	if err := r.db.GetContext(ctx, &customer, query, id); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("customer %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get customer")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get customer")
	}

	return &customer, nil
}

// Count returns the total number of reference customers
func (r *Repository) Count(ctx context.Context) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.Count")
	defer span.End()

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM customers"); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count customers")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count customers")
	}

	return total, nil
}

// List retrieves a page of customers ordered by company name
func (r *Repository) List(ctx context.Context, page, pageSize int) ([]models.Customer, int, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.List")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM customers"); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count customers")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list customers")
	}

	query := fmt.Sprintf("SELECT %s FROM customers ORDER BY company_name ASC LIMIT $1 OFFSET $2", allColumns)

	var customers []models.Customer
	if err := r.db.SelectContext(ctx, &customers, query, pageSize, (page-1)*pageSize); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list customers")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list customers")
	}

	return customers, total, nil
}

// Update applies the non-nil fields of the request to a customer
func (r *Repository) Update(ctx context.Context, id string, req *models.UpdateCustomerRequest) (*models.Customer, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.Update")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("customers")

	assignments := []string{sb.Assign("updated_at", time.Now().UTC())}
	addAssign := func(col string, v *string) {
		if v != nil {
			assignments = append(assignments, sb.Assign(col, *v))
		}
	}
	addAssign("company_name", req.CompanyName)
	addAssign("contact_name", req.ContactName)
	addAssign("email", req.Email)
	addAssign("phone", req.Phone)
	addAssign("address_line1", req.AddressLine1)
	addAssign("address_line2", req.AddressLine2)
	addAssign("city", req.City)
	addAssign("state_province", req.StateProvince)
	addAssign("postal_code", req.PostalCode)
	addAssign("country", req.Country)
	addAssign("industry", req.Industry)
	addAssign("website", req.Website)
	addAssign("description", req.Description)
	if req.AnnualRevenue != nil {
		assignments = append(assignments, sb.Assign("annual_revenue", *req.AnnualRevenue))
	}
	if req.EmployeeCount != nil {
		assignments = append(assignments, sb.Assign("employee_count", *req.EmployeeCount))
	}

	sb.Set(assignments...)
	sb.Where(sb.Equal("customer_id", id))

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update customer")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update customer")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("customer %s not found", id))
	}

	return r.Get(ctx, id)
}

// UpdateEmbeddings stores the precomputed vectors for a customer
func (r *Repository) UpdateEmbeddings(ctx context.Context, customer *models.Customer) error {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.UpdateEmbeddings")
	defer span.End()

	query := `
		UPDATE customers
		SET company_name_embedding = $1, full_profile_embedding = $2, updated_at = $3
		WHERE customer_id = $4
	`

	result, err := r.db.ExecContext(ctx, query, customer.CompanyNameEmbedding, customer.FullProfileEmbedding, time.Now().UTC(), customer.CustomerID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"customer_id": customer.CustomerID}).Error("Failed to update customer embeddings")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update customer embeddings")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("customer %s not found", customer.CustomerID))
	}

	return nil
}

// Delete removes a customer
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.Delete")
	defer span.End()

	result, err := r.db.ExecContext(ctx, "DELETE FROM customers WHERE customer_id = $1", id)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete customer")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete customer")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("customer %s not found", id))
	}

	return nil
}

// ListMissingEmbeddings returns customers whose vectors have not been
// computed yet, oldest first.
func (r *Repository) ListMissingEmbeddings(ctx context.Context, limit int) ([]models.Customer, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.ListMissingEmbeddings")
	defer span.End()

	if limit < 1 || limit > 500 {
		limit = 100
	}

	query := fmt.Sprintf(`
		SELECT %s FROM customers
		WHERE full_profile_embedding IS NULL OR company_name_embedding IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`, allColumns)

	var customers []models.Customer
	if err := r.db.SelectContext(ctx, &customers, query, limit); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list customers missing embeddings")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list customers")
	}

	return customers, nil
}

// FindByExactFields returns customers whose normalized company name, email,
// or phone equals the given values. Empty arguments are ignored.
func (r *Repository) FindByExactFields(ctx context.Context, companyName, email, phone string) ([]models.Customer, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.FindByExactFields")
	defer span.End()

	conditions := make([]string, 0, 3)
	args := make([]any, 0, 3)
	if companyName != "" {
		args = append(args, companyName)
		conditions = append(conditions, fmt.Sprintf("LOWER(TRIM(company_name)) = $%d", len(args)))
	}
	if email != "" {
		args = append(args, email)
		conditions = append(conditions, fmt.Sprintf("LOWER(TRIM(email)) = $%d", len(args)))
	}
	if phone != "" {
		args = append(args, phone)
		conditions = append(conditions, fmt.Sprintf("regexp_replace(phone, '[^0-9]', '', 'g') = $%d", len(args)))
	}
	if len(conditions) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM customers WHERE %s", allColumns, joinOr(conditions))

	var customers []models.Customer
	if err := r.db.SelectContext(ctx, &customers, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to find customers by exact fields")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to search customers")
	}

	return customers, nil
}

type vectorRow struct {
	models.Customer
	Similarity float64 `db:"similarity"`
}

// FindByVector returns the nearest customers by cosine similarity over the
// full-profile embedding, strongest first.
func (r *Repository) FindByVector(ctx context.Context, embedding []float32, threshold float64, limit int) ([]matching.VectorHit, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.FindByVector")
	defer span.End()

	query := fmt.Sprintf(`
		SELECT %s, 1 - (full_profile_embedding <=> $1) AS similarity
		FROM customers
		WHERE full_profile_embedding IS NOT NULL
		AND 1 - (full_profile_embedding <=> $1) >= $2
		ORDER BY full_profile_embedding <=> $1
		LIMIT $3
	`, allColumns)

	var rows []vectorRow
	if err := r.db.SelectContext(ctx, &rows, query, pgvector.NewVector(embedding), threshold, limit); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to find customers by vector similarity")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to search customers by similarity")
	}

	hits := make([]matching.VectorHit, 0, len(rows))
	for _, row := range rows {
		hits = append(hits, matching.VectorHit{Customer: row.Customer, Similarity: row.Similarity})
	}

	return hits, nil
}

// FindByFuzzy returns customers whose company or contact name is
// trigram-similar to name, strongest first.
func (r *Repository) FindByFuzzy(ctx context.Context, name string, threshold float64, limit int) ([]matching.FuzzyHit, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.FindByFuzzy")
	defer span.End()

	query := fmt.Sprintf(`
		SELECT %s, GREATEST(
			similarity(LOWER(company_name), LOWER($1)),
			similarity(LOWER(COALESCE(contact_name, '')), LOWER($1))
		) AS similarity
		FROM customers
		WHERE similarity(LOWER(company_name), LOWER($1)) >= $2
		OR similarity(LOWER(COALESCE(contact_name, '')), LOWER($1)) >= $2
		ORDER BY similarity DESC
		LIMIT $3
	`, allColumns)

	var rows []vectorRow
	if err := r.db.SelectContext(ctx, &rows, query, name, threshold, limit); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to find customers by fuzzy name")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to search customers by name")
	}

	hits := make([]matching.FuzzyHit, 0, len(rows))
	for _, row := range rows {
		hits = append(hits, matching.FuzzyHit{Customer: row.Customer, Similarity: row.Similarity})
	}

	return hits, nil
}

func joinOr(conditions []string) string {
	out := conditions[0]
	for _, c := range conditions[1:] {
		out += " OR " + c
	}
	return out
}
