package matching

import (
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/similarity"
)

// RulesEngine adjusts a candidate's confidence using secondary signals on
// the (incoming, customer) pair. All rules are independent multipliers, so
// application order does not affect the final product.
type RulesEngine struct {
	logger ectologger.Logger
	cfg    Config
}

// NewRulesEngine creates a new business rules engine
func NewRulesEngine(logger ectologger.Logger, cfg Config) *RulesEngine {
	return &RulesEngine{
		logger: logger,
		cfg:    cfg,
	}
}

// Apply adjusts the candidate's confidence in place and records each applied
// rule as a flag in the criteria map. The multipliers can drive the product
// above 1.0; the confidence is clamped to [0, 1] and the unclamped value is
// preserved under "adjusted_score" for auditability.
func (e *RulesEngine) Apply(incoming *models.IncomingCustomer, c *Candidate) {
	if c.Criteria == nil {
		c.Criteria = make(map[string]any)
	}

	adjusted := c.Confidence
	customer := &c.Customer

	if bothPresent(incoming.Industry, customer.Industry) && equalFold(incoming.Industry, customer.Industry) {
		adjusted *= e.cfg.IndustryBoost
		c.Criteria["industry_match"] = true
	}

	if bothPresent(incoming.City, customer.City) && equalFold(incoming.City, customer.City) {
		adjusted *= e.cfg.CityBoost
		c.Criteria["location_match"] = true
	}

	if bothPresent(incoming.Country, customer.Country) && !equalFold(incoming.Country, customer.Country) {
		adjusted *= e.cfg.CountryPenalty
		c.Criteria["country_mismatch"] = true
	}

	if e.cfg.RevenueBoostEnabled && incoming.AnnualRevenue != nil && customer.AnnualRevenue != nil {
		if similarity.RevenueRatio(*incoming.AnnualRevenue, *customer.AnnualRevenue) > e.cfg.RevenueRatioMin {
			adjusted *= e.cfg.RevenueBoost
			c.Criteria["revenue_similar"] = true
		}
	}

	if adjusted > 1.0 {
		c.Criteria["adjusted_score"] = adjusted
		adjusted = 1.0
	}
	if adjusted < 0 {
		adjusted = 0
	}

	c.Confidence = adjusted
}

func bothPresent(a, b *string) bool {
	return a != nil && strings.TrimSpace(*a) != "" && b != nil && strings.TrimSpace(*b) != ""
}

func equalFold(a, b *string) bool {
	return strings.EqualFold(strings.TrimSpace(*a), strings.TrimSpace(*b))
}
