package processor

import (
	"context"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
)

// WorkerConfig tunes the pending-record worker pool
type WorkerConfig struct {
	PollInterval time.Duration
	Concurrency  int
	BatchSize    int
}

// Worker polls for pending records and fans them out to the processor, one
// record per worker goroutine.
type Worker struct {
	logger       ectologger.Logger
	processor    *Processor
	incomingRepo IncomingStore
	cfg          WorkerConfig
	wg           sync.WaitGroup
	cancel       context.CancelFunc

	inFlight sync.Map // incoming_customer_id -> struct{}
}

// NewWorker creates a worker pool over the pending queue
func NewWorker(logger ectologger.Logger, processor *Processor, incomingRepo IncomingStore, cfg WorkerConfig) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 4
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 50
	}

	return &Worker{
		logger:       logger,
		processor:    processor,
		incomingRepo: incomingRepo,
		cfg:          cfg,
	}
}

// Start launches the polling loop and worker goroutines
func (w *Worker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	jobs := make(chan models.IncomingCustomer)

	for i := 0; i < w.cfg.Concurrency; i++ {
		w.wg.Add(1)
		go w.workLoop(ctx, jobs)
	}

	w.wg.Add(1)
	go w.pollLoop(ctx, jobs)

	w.logger.WithContext(ctx).WithFields(map[string]any{
		"concurrency":   w.cfg.Concurrency,
		"poll_interval": w.cfg.PollInterval.String(),
	}).Info("Pending record worker started")
	return nil
}

// Stop drains the pool
func (w *Worker) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	return nil
}

func (w *Worker) pollLoop(ctx context.Context, jobs chan<- models.IncomingCustomer) {
	defer w.wg.Done()
	defer close(jobs)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			records, err := w.incomingRepo.ListPending(ctx, w.cfg.BatchSize)
			if err != nil {
				w.logger.WithContext(ctx).WithError(err).Error("Failed to list pending records")
				continue
			}

			for _, record := range records {
				// A record stays pending until the run completes, so a slow
				// run can reappear in the next poll; skip records already
				// claimed by a worker.
				if _, claimed := w.inFlight.LoadOrStore(record.IncomingCustomerID, struct{}{}); claimed {
					continue
				}
				select {
				case <-ctx.Done():
					return
				case jobs <- record:
				}
			}
		}
	}
}

func (w *Worker) workLoop(ctx context.Context, jobs <-chan models.IncomingCustomer) {
	defer w.wg.Done()

	for record := range jobs {
		metrics.IngestInFlight.Inc()
		if err := w.processor.ProcessRecord(ctx, &record); err != nil {
			w.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"incoming_customer_id": record.IncomingCustomerID,
			}).Error("Failed to process pending record")
		}
		metrics.IngestInFlight.Dec()
		w.inFlight.Delete(record.IncomingCustomerID)
	}
}
