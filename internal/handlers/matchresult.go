package handlers

import (
	"strconv"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/internal/repositories/matchresult"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// MatchResultHandler serves read and review endpoints for match results
type MatchResultHandler struct {
	logger ectologger.Logger
	repo   *matchresult.Repository
}

func NewMatchResultHandler(logger ectologger.Logger, repo *matchresult.Repository) *MatchResultHandler {
	return &MatchResultHandler{
		logger: logger,
		repo:   repo,
	}
}

func (h *MatchResultHandler) RegisterRoutes(g *echo.Group) {
	matches := g.Group("/matches")
	matches.GET("", h.List)
	matches.GET("/summary", h.Summary)
	matches.GET("/orphaned", h.ListOrphaned)
	matches.GET("/:id", h.Get)
	matches.POST("/:id/review", h.Review)

	g.GET("/incoming-customers/:id/matches", h.ListByIncoming)
}

func (h *MatchResultHandler) List(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.MatchResultHandler.List")
	defer span.End()

	filters, err := parseMatchFilters(c)
	if err != nil {
		return err
	}

	items, err := h.repo.List(ctx, filters)
	if err != nil {
		return err
	}

	return SuccessResponse(c, models.MatchResultListResponse{
		Items:      items,
		TotalCount: len(items),
	})
}

func (h *MatchResultHandler) Get(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.MatchResultHandler.Get")
	defer span.End()

	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	result, err := h.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	return SuccessResponse(c, result)
}

func (h *MatchResultHandler) ListByIncoming(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.MatchResultHandler.ListByIncoming")
	defer span.End()

	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	items, err := h.repo.ListByIncoming(ctx, id)
	if err != nil {
		return err
	}

	return SuccessResponse(c, models.MatchResultListResponse{
		Items:      items,
		TotalCount: len(items),
	})
}

func (h *MatchResultHandler) Review(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.MatchResultHandler.Review")
	defer span.End()

	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	var req models.ReviewMatchRequest
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	reviewed, err := h.repo.Review(ctx, id, req.Notes)
	if err != nil {
		return err
	}

	return SuccessResponse(c, reviewed)
}

func (h *MatchResultHandler) Summary(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.MatchResultHandler.Summary")
	defer span.End()

	summary, err := h.repo.GetSummary(ctx)
	if err != nil {
		return err
	}

	return SuccessResponse(c, summary)
}

// ListOrphaned reports results whose matched customer has been deleted out
// from under them
func (h *MatchResultHandler) ListOrphaned(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.MatchResultHandler.ListOrphaned")
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

	if len(items) > 0 {
		h.logger.WithContext(ctx).WithFields(map[string]any{
			"count": len(items),
		}).Warn("Found match results referencing deleted customers")
	}

	return SuccessResponse(c, models.MatchResultListResponse{
		Items:      items,
		TotalCount: len(items),
	})
}

func parseMatchFilters(c echo.Context) (matchresult.ListFilters, error) {
	var filters matchresult.ListFilters

	matchType := c.QueryParam("match_type")
	switch matchType {
	case "", models.MatchTypeExact, models.MatchTypeHighConfidence, models.MatchTypePotential, models.MatchTypeLowConfidence:
		filters.MatchType = matchType
	default:
		return filters, BadRequest("invalid match_type filter")
	}

	if raw := c.QueryParam("reviewed"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return filters, BadRequest("reviewed must be a boolean")
		}
		filters.Reviewed = &parsed
	}

	if raw := c.QueryParam("min_confidence"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 || parsed > 1 {
			return filters, BadRequest("min_confidence must be between 0 and 1")
		}
		filters.MinConfidence = &parsed
	}

	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return filters, BadRequest("limit must be a positive integer")
		}
		filters.Limit = parsed
	}

	return filters, nil
}
