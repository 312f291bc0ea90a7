package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/internal/repositories/customer"
	"github.com/Ramsey-B/clover/internal/repositories/incomingcustomer"
	"github.com/Ramsey-B/clover/internal/repositories/matchresult"
	"github.com/Ramsey-B/clover/pkg/display"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// DisplayHandler serves side-by-side comparison views for match review
type DisplayHandler struct {
	matchRepo    *matchresult.Repository
	incomingRepo *incomingcustomer.Repository
	customerRepo *customer.Repository
}

func NewDisplayHandler(
	matchRepo *matchresult.Repository,
	incomingRepo *incomingcustomer.Repository,
	customerRepo *customer.Repository,
) *DisplayHandler {
	return &DisplayHandler{
		matchRepo:    matchRepo,
		incomingRepo: incomingRepo,
		customerRepo: customerRepo,
	}
}

func (h *DisplayHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/matches/:id/comparison", h.GetComparison)
}

// GetComparison joins a match with both records and renders per-field
// agreement for reviewers
func (h *DisplayHandler) GetComparison(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.DisplayHandler.GetComparison")
	defer span.End()

	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	result, err := h.matchRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	incoming, err := h.incomingRepo.Get(ctx, result.IncomingCustomerID)
	if err != nil {
		return err
	}

	matched, err := h.customerRepo.Get(ctx, result.MatchedCustomerID)
	if err != nil {
		return err
	}

	return SuccessResponse(c, display.BuildMatchComparison(result, incoming, matched))
}
