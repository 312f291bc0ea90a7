package handlers

import (
	"strconv"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/internal/repositories/incomingcustomer"
	"github.com/Ramsey-B/clover/internal/repositories/matchresult"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/processor"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// IncomingHandler serves submission and processing endpoints for
// incoming customer records
type IncomingHandler struct {
	logger    ectologger.Logger
	repo      *incomingcustomer.Repository
	matchRepo *matchresult.Repository
	matcher   *matching.Service
	processor *processor.Processor
}

func NewIncomingHandler(
	logger ectologger.Logger,
	repo *incomingcustomer.Repository,
	matchRepo *matchresult.Repository,
	matcher *matching.Service,
	proc *processor.Processor,
) *IncomingHandler {
	return &IncomingHandler{
		logger:    logger,
		repo:      repo,
		matchRepo: matchRepo,
		matcher:   matcher,
		processor: proc,
	}
}

func (h *IncomingHandler) RegisterRoutes(g *echo.Group) {
	incoming := g.Group("/incoming-customers")
	incoming.POST("", h.Submit)
	incoming.GET("", h.List)
	incoming.GET("/orphaned", h.ListOrphaned)
	incoming.GET("/:id", h.Get)
	incoming.DELETE("/:id", h.Delete)
	incoming.POST("/:id/process", h.Process)
	incoming.POST("/:id/match", h.MatchWithStrategy)
	incoming.POST("/:id/reset", h.Reset)
}

// Submit accepts a record for matching. The record is persisted as pending
// and picked up by the background worker; callers poll the record or
// subscribe to the completion topic for results.
func (h *IncomingHandler) Submit(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.IncomingHandler.Submit")
	defer span.End()

	var req models.CreateIncomingCustomerRequest
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	created, err := h.repo.Create(ctx, req.ToRecord())
	if err != nil {
		return err
	}

	return AcceptedResponse(c, created)
}

func (h *IncomingHandler) List(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.IncomingHandler.List")
	defer span.End()

	status := c.QueryParam("status")
	switch status {
	case "", models.ProcessingStatusPending, models.ProcessingStatusProcessed, models.ProcessingStatusFailed:
	default:
		return BadRequest("invalid status filter")
	}

	page, pageSize := parsePaging(c)

	items, total, err := h.repo.List(ctx, status, page, pageSize)
	if err != nil {
		return err
	}

	return SuccessResponse(c, models.IncomingCustomerListResponse{
		Items:      items,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	})
}

func (h *IncomingHandler) Get(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.IncomingHandler.Get")
	defer span.End()

	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	record, err := h.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	return SuccessResponse(c, record)
}

func (h *IncomingHandler) Delete(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.IncomingHandler.Delete")
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

// Process runs the matching pipeline for a record synchronously and
// returns the persisted results
func (h *IncomingHandler) Process(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.IncomingHandler.Process")
	defer span.End()

	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	record, err := h.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := h.processor.ProcessRecord(ctx, record); err != nil {
		return err
	}

	results, err := h.matchRepo.ListByIncoming(ctx, id)
	if err != nil {
		return err
	}

	return SuccessResponse(c, models.MatchResultListResponse{
		Items:      results,
		TotalCount: len(results),
	})
}

// MatchWithStrategy runs a single strategy for a record without persisting
// anything, for debugging and threshold tuning
func (h *IncomingHandler) MatchWithStrategy(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.IncomingHandler.MatchWithStrategy")
	defer span.End()

	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	strategy := c.QueryParam("strategy")
	if strategy == "" {
		return BadRequest("missing strategy query parameter")
	}

	candidates, err := h.matcher.MatchWithStrategy(ctx, id, strategy)
	if err != nil {
		return err
	}

	return SuccessResponse(c, map[string]any{
		"incoming_customer_id": id,
		"strategy":             strategy,
		"candidates":           candidates,
	})
}

// Reset clears a record's results and returns it to pending so the worker
// runs it again
func (h *IncomingHandler) Reset(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.IncomingHandler.Reset")
	defer span.End()

	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.matchRepo.DeleteByIncoming(ctx, id); err != nil {
		return err
	}
	if err := h.repo.ResetProcessing(ctx, id); err != nil {
		return err
	}

	h.logger.WithContext(ctx).WithFields(map[string]any{
		"incoming_customer_id": id,
	}).Info("Reset incoming customer for reprocessing")

	record, err := h.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	return SuccessResponse(c, record)
}

// ListOrphaned returns processed records that have no surviving match
// results, which usually means a downstream cleanup removed them
func (h *IncomingHandler) ListOrphaned(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.IncomingHandler.ListOrphaned")
	defer span.End()

	limit := 100
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return BadRequest("limit must be a positive integer")
		}
		limit = parsed
	}

	items, err := h.repo.FindOrphaned(ctx, limit)
	if err != nil {
		return err
	}

	return SuccessResponse(c, map[string]any{
		"items":       items,
		"total_count": len(items),
	})
}
