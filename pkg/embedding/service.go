package embedding

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/pgvector/pgvector-go"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Service populates embedding columns on customer records.
type Service struct {
	logger   ectologger.Logger
	embedder Embedder
}

// NewService creates an embedding service
func NewService(logger ectologger.Logger, embedder Embedder) *Service {
	return &Service{
		logger:   logger,
		embedder: embedder,
	}
}

// EmbedCustomer fills in the company-name and full-profile vectors in place.
func (s *Service) EmbedCustomer(ctx context.Context, c *models.Customer) error {
	ctx, span := tracing.StartSpan(ctx, "embedding.Service.EmbedCustomer")
	defer span.End()

	nameVector, err := s.embedder.EmbedText(ctx, c.CompanyName)
	if err != nil {
		return err
	}

	profileVector, err := s.embedder.EmbedText(ctx, BuildCustomerProfileText(c))
	if err != nil {
		return err
	}

	name := pgvector.NewVector(nameVector)
	profile := pgvector.NewVector(profileVector)
	c.CompanyNameEmbedding = &name
	c.FullProfileEmbedding = &profile

	return nil
}

// EmbedIncoming fills in the profile vector in place.
func (s *Service) EmbedIncoming(ctx context.Context, ic *models.IncomingCustomer) error {
	ctx, span := tracing.StartSpan(ctx, "embedding.Service.EmbedIncoming")
	defer span.End()

	vector, err := s.embedder.EmbedText(ctx, BuildIncomingProfileText(ic))
	if err != nil {
		return err
	}

	profile := pgvector.NewVector(vector)
	ic.ProfileEmbedding = &profile

	return nil
}
