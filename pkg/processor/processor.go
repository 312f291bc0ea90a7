// Package processor is the ingestion layer: it persists submitted customer
// records, computes their embeddings, and drives them through the matching
// pipeline.
package processor

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/embedding"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// IncomingStore is the persistence surface the processor needs for
// incoming customer records.
type IncomingStore interface {
	Create(ctx context.Context, record *models.IncomingCustomer) (*models.IncomingCustomer, error)
	UpdateEmbedding(ctx context.Context, record *models.IncomingCustomer) error
	MarkFailed(ctx context.Context, incomingCustomerID string) error
	ListPending(ctx context.Context, limit int) ([]models.IncomingCustomer, error)
}

// Processor handles submitted customer records end to end
type Processor struct {
	logger       ectologger.Logger
	incomingRepo IncomingStore
	embedder     *embedding.Service
	matcher      *matching.Service
	emitter      *events.Emitter
}

// NewProcessor creates a new record processor. The emitter may be nil when
// event emission is disabled.
func NewProcessor(
	logger ectologger.Logger,
	incomingRepo IncomingStore,
	embedder *embedding.Service,
	matcher *matching.Service,
	emitter *events.Emitter,
) *Processor {
	return &Processor{
		logger:       logger,
		incomingRepo: incomingRepo,
		embedder:     embedder,
		matcher:      matcher,
		emitter:      emitter,
	}
}

// ProcessMessage handles one Kafka submission: persist the record, then run
// it through the pipeline.
func (p *Processor) ProcessMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "processor.Processor.ProcessMessage")
	defer span.End()

	record := msg.ToIncomingCustomer()

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"company_name": record.CompanyName,
		"source":       msg.GetSource(),
	})

	record, err := p.incomingRepo.Create(ctx, record)
	if err != nil {
		log.WithError(err).Error("Failed to persist submitted record")
		return err
	}

	return p.ProcessRecord(ctx, record)
}

// ProcessRecord embeds and matches one record. An embedding failure is not
// fatal: the matcher falls back to the strategies that do not need a vector.
// A matching failure marks the record failed so it can be retried explicitly.
func (p *Processor) ProcessRecord(ctx context.Context, record *models.IncomingCustomer) error {
	ctx, span := tracing.StartSpan(ctx, "processor.Processor.ProcessRecord")
	defer span.End()

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"incoming_customer_id": record.IncomingCustomerID,
	})

	if record.ProfileEmbedding == nil {
		if err := p.embedder.EmbedIncoming(ctx, record); err != nil {
			log.WithError(err).Warn("Failed to embed record; continuing without vector matching")
		} else if err := p.incomingRepo.UpdateEmbedding(ctx, record); err != nil {
			log.WithError(err).Warn("Failed to store record embedding")
		}
	}

	run, err := p.matcher.MatchIncoming(ctx, record.IncomingCustomerID)
	if err != nil {
		log.WithError(err).Error("Matching run failed")
		if markErr := p.incomingRepo.MarkFailed(ctx, record.IncomingCustomerID); markErr != nil {
			log.WithError(markErr).Error("Failed to mark record failed")
		}
		if p.emitter != nil {
			if emitErr := p.emitter.EmitMatchFailed(ctx, record, err); emitErr != nil {
				log.WithError(emitErr).Error("Failed to emit match.failed event")
			}
		}
		return err
	}

	if p.emitter != nil {
		if err := p.emitter.EmitMatchCompleted(ctx, record, run); err != nil {
			// The run already persisted; a lost event is not worth a retry loop.
			log.WithError(err).Error("Failed to emit match.completed event")
		}
	}

	return nil
}
