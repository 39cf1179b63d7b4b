package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"lawscraper/pkg/config"
	"lawscraper/pkg/utils"
)

// Task processes one target URL. Implementations must respect ctx.
type Task func(ctx context.Context, target string) error

// Result records the outcome of one target within a batch. Index matches the
// target's position in the input slice.
type Result struct {
	Target        string        `json:"target"`
	Index         int           `json:"index"`
	Err           error         `json:"-"`
	ErrorCategory string        `json:"error_category"`
	Elapsed       time.Duration `json:"elapsed"`
}

// BatchReport summarizes one batch run. Requested always equals
// Succeeded + Failed: every target gets a result, even targets never started
// because the batch deadline expired first.
type BatchReport struct {
	RunID     string        `json:"run_id"`
	Requested int           `json:"requested"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Results   []Result      `json:"results"`
	Elapsed   time.Duration `json:"elapsed"`
}

// FailureCounts aggregates failures by error category for the run summary.
func (r *BatchReport) FailureCounts() map[string]int {
	counts := make(map[string]int)
	for _, res := range r.Results {
		if res.Err != nil {
			counts[res.ErrorCategory]++
		}
	}
	return counts
}

// Coordinator runs batches of per-document tasks under a shared concurrency
// gate. One slow document never blocks the rest of the batch; the gate only
// bounds how many tasks run at once.
type Coordinator struct {
	maxConcurrency int64
	batchTimeout   time.Duration
	log            *logrus.Entry
}

// NewCoordinator creates a Coordinator from the configured concurrency and
// batch timeout settings.
func NewCoordinator(cfg *config.AppConfig, log *logrus.Logger) *Coordinator {
	return &Coordinator{
		maxConcurrency: int64(cfg.MaxConcurrency),
		batchTimeout:   cfg.BatchTimeout,
		log:            log.WithField("component", "dispatch"),
	}
}

// RunBatch executes task once per target, at most maxConcurrency at a time,
// and returns a report with one result per target in input order. A non-zero
// batch timeout bounds the whole batch; targets still waiting for a slot when
// it expires are recorded as Batch_Timeout failures rather than being run.
func (c *Coordinator) RunBatch(ctx context.Context, targets []string, task Task) *BatchReport {
	report := &BatchReport{
		RunID:     uuid.NewString(),
		Requested: len(targets),
		Results:   make([]Result, len(targets)),
	}
	runLog := c.log.WithFields(logrus.Fields{"run_id": report.RunID, "targets": len(targets)})
	runLog.Info("Starting batch")

	batchCtx := ctx
	var cancel context.CancelFunc
	if c.batchTimeout > 0 {
		batchCtx, cancel = context.WithTimeout(ctx, c.batchTimeout)
		defer cancel()
	}

	start := time.Now()
	sem := semaphore.NewWeighted(c.maxConcurrency)
	var wg sync.WaitGroup

	for i, target := range targets {
		result := Result{Target: target, Index: i}

		if err := sem.Acquire(batchCtx, 1); err != nil {
			// Never started: the batch deadline or the caller's context
			// expired while waiting for a slot.
			if errors.Is(batchCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
				result.Err = fmt.Errorf("%w: %q never started", utils.ErrBatchTimeout, target)
			} else {
				result.Err = err
			}
			result.ErrorCategory = utils.CategorizeError(result.Err)
			report.Results[i] = result
			continue
		}

		wg.Add(1)
		go func(i int, target string) {
			defer wg.Done()
			defer sem.Release(1)

			taskStart := time.Now()
			err := task(batchCtx, target)
			res := Result{
				Target:  target,
				Index:   i,
				Err:     err,
				Elapsed: time.Since(taskStart),
			}
			if err != nil {
				if errors.Is(batchCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
					res.Err = fmt.Errorf("%w: %v", utils.ErrBatchTimeout, err)
				}
				res.ErrorCategory = utils.CategorizeError(res.Err)
				c.log.WithFields(logrus.Fields{
					"run_id": report.RunID, "target": target, "category": res.ErrorCategory,
				}).Warnf("Target failed: %v", res.Err)
			}
			report.Results[i] = res
		}(i, target)
	}

	wg.Wait()
	report.Elapsed = time.Since(start)

	for _, res := range report.Results {
		if res.Err == nil {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}

	runLog.WithFields(logrus.Fields{
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
		"elapsed":   report.Elapsed,
	}).Info("Batch complete")
	return report
}
