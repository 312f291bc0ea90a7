// Package events handles event emission for matching lifecycle changes
package events

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Emitter publishes matching outcomes for downstream consumers
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitMatchCompleted emits a match.completed event for a finished run
func (e *Emitter) EmitMatchCompleted(ctx context.Context, record *models.IncomingCustomer, run *matching.RunResult) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitMatchCompleted")
	defer span.End()

	event := &kafka.MatchCompletedEvent{
		EventType:          "match.completed",
		IncomingCustomerID: run.IncomingCustomerID,
		RequestID:          record.RequestID,
		Strategy:           run.Strategy,
		MatchCount:         len(run.Results),
		Results:            run.Results,
	}

	if err := e.producer.PublishMatchCompleted(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit match.completed event")
		return err
	}

	return nil
}

// EmitMatchFailed emits a match.failed event for a run that errored out
func (e *Emitter) EmitMatchFailed(ctx context.Context, record *models.IncomingCustomer, runErr error) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitMatchFailed")
	defer span.End()

	event := &kafka.MatchCompletedEvent{
		EventType:          "match.failed",
		IncomingCustomerID: record.IncomingCustomerID,
		RequestID:          record.RequestID,
		Error:              runErr.Error(),
	}

	if err := e.producer.PublishMatchCompleted(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit match.failed event")
		return err
	}

	return nil
}
