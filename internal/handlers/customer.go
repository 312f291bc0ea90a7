package handlers

import (
	"context"
	"strconv"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/internal/repositories/customer"
	"github.com/Ramsey-B/clover/pkg/embedding"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// CustomerHandler serves CRUD and import endpoints for reference customers
type CustomerHandler struct {
	logger   ectologger.Logger
	repo     *customer.Repository
	embedder *embedding.Service
}

func NewCustomerHandler(logger ectologger.Logger, repo *customer.Repository, embedder *embedding.Service) *CustomerHandler {
	return &CustomerHandler{
		logger:   logger,
		repo:     repo,
		embedder: embedder,
	}
}

func (h *CustomerHandler) RegisterRoutes(g *echo.Group) {
	customers := g.Group("/customers")
	customers.POST("", h.Create)
	customers.GET("", h.List)
	customers.POST("/import", h.Import)
	customers.POST("/embeddings/backfill", h.BackfillEmbeddings)
	customers.GET("/:id", h.Get)
	customers.PUT("/:id", h.Update)
	customers.DELETE("/:id", h.Delete)
}

// Create inserts a reference customer and embeds its profile. Embedding
// failures are logged and left for the backfill endpoint to repair.
func (h *CustomerHandler) Create(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.CustomerHandler.Create")
	defer span.End()

	var req models.CreateCustomerRequest
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	created, err := h.repo.Create(ctx, req.ToCustomer())
	if err != nil {
		return err
	}

	h.embedCustomer(ctx, created)

	return CreatedResponse(c, created)
}

func (h *CustomerHandler) List(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.CustomerHandler.List")
	defer span.End()

	page, pageSize := parsePaging(c)

	items, total, err := h.repo.List(ctx, page, pageSize)
	if err != nil {
		return err
	}

	return SuccessResponse(c, models.CustomerListResponse{
		Items:      items,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	})
}

func (h *CustomerHandler) Get(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.CustomerHandler.Get")
	defer span.End()

	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	found, err := h.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	return SuccessResponse(c, found)
}

func (h *CustomerHandler) Update(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.CustomerHandler.Update")
	defer span.End()

	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateCustomerRequest
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	updated, err := h.repo.Update(ctx, id, &req)
	if err != nil {
		return err
	}

	// Profile text changed, so the stored vectors are stale.
	h.embedCustomer(ctx, updated)

	return SuccessResponse(c, updated)
}

func (h *CustomerHandler) Delete(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.CustomerHandler.Delete")
	defer span.End()

	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.repo.Delete(ctx, id); err != nil {
		return err
	}

	return NoContentResponse(c)
}

// Import bulk-inserts reference customers without embedding them; callers
// are expected to follow up with an embeddings backfill.
func (h *CustomerHandler) Import(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.CustomerHandler.Import")
	defer span.End()

	var req models.ImportCustomersRequest
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	customers := make([]*models.Customer, 0, len(req.Customers))
	for i := range req.Customers {
		customers = append(customers, req.Customers[i].ToCustomer())
	}

	if err := h.repo.CreateBatch(ctx, customers); err != nil {
		return err
	}

	h.logger.WithContext(ctx).WithFields(map[string]any{
		"count": len(customers),
	}).Info("Imported reference customers")

	return CreatedResponse(c, map[string]any{
		"imported": len(customers),
	})
}

// BackfillEmbeddings embeds a batch of customers that are missing vectors
func (h *CustomerHandler) BackfillEmbeddings(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.CustomerHandler.BackfillEmbeddings")
	defer span.End()

	limit := 100
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return BadRequest("limit must be a positive integer")
		}
		limit = parsed
	}

	missing, err := h.repo.ListMissingEmbeddings(ctx, limit)
	if err != nil {
		return err
	}

	embedded := 0
	for i := range missing {
		target := &missing[i]
		if err := h.embedder.EmbedCustomer(ctx, target); err != nil {
			h.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"customer_id": target.CustomerID,
			}).Warn("Failed to embed customer during backfill")
			continue
		}
		if err := h.repo.UpdateEmbeddings(ctx, target); err != nil {
			return err
		}
		embedded++
	}

	return SuccessResponse(c, map[string]any{
		"candidates": len(missing),
		"embedded":   embedded,
	})
}

// embedCustomer refreshes the stored vectors for a customer. Failures are
// logged rather than surfaced so a flaky embedding provider cannot block
// writes; the backfill endpoint picks up anything left behind.
func (h *CustomerHandler) embedCustomer(ctx context.Context, target *models.Customer) {
	if err := h.embedder.EmbedCustomer(ctx, target); err != nil {
		h.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"customer_id": target.CustomerID,
		}).Warn("Failed to embed customer profile")
		return
	}
	if err := h.repo.UpdateEmbeddings(ctx, target); err != nil {
		h.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"customer_id": target.CustomerID,
		}).Warn("Failed to store customer embeddings")
	}
}
