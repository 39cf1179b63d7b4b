package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawscraper/pkg/config"
	"lawscraper/pkg/utils"
)

func testCoordinator(maxConcurrency int, batchTimeout time.Duration) *Coordinator {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewCoordinator(&config.AppConfig{
		MaxConcurrency: maxConcurrency,
		BatchTimeout:   batchTimeout,
	}, log)
}

func targetList(n int) []string {
	targets := make([]string, n)
	for i := range targets {
		targets[i] = fmt.Sprintf("https://new.kenyalaw.org/judgments/%d", i)
	}
	return targets
}

func TestRunBatchBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32

	c := testCoordinator(3, 0)
	report := c.RunBatch(context.Background(), targetList(10), func(ctx context.Context, target string) error {
		cur := inFlight.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	})

	assert.Equal(t, 10, report.Requested)
	assert.Equal(t, 10, report.Succeeded)
	assert.LessOrEqual(t, peak.Load(), int32(3), "no more than max_concurrency tasks in flight")
}

func TestRunBatchPreservesOrderAndTallies(t *testing.T) {
	c := testCoordinator(4, 0)
	targets := targetList(6)

	report := c.RunBatch(context.Background(), targets, func(ctx context.Context, target string) error {
		if target == targets[2] || target == targets[5] {
			return fmt.Errorf("%w: status 404 Not Found ", utils.ErrClientHTTPError)
		}
		return nil
	})

	require.Len(t, report.Results, 6)
	for i, res := range report.Results {
		assert.Equal(t, i, res.Index)
		assert.Equal(t, targets[i], res.Target)
	}
	assert.Equal(t, 4, report.Succeeded)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, report.Requested, report.Succeeded+report.Failed)
	assert.Equal(t, "HTTP_404", report.Results[2].ErrorCategory)
	assert.Equal(t, map[string]int{"HTTP_404": 2}, report.FailureCounts())
	assert.NotEmpty(t, report.RunID)
}

func TestRunBatchOneFailureDoesNotAbort(t *testing.T) {
	c := testCoordinator(2, 0)
	report := c.RunBatch(context.Background(), targetList(5), func(ctx context.Context, target string) error {
		if target == "https://new.kenyalaw.org/judgments/0" {
			return errors.New("boom")
		}
		return nil
	})

	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 4, report.Succeeded)
}

func TestRunBatchTimeoutMarksUnstartedTargets(t *testing.T) {
	c := testCoordinator(1, 50*time.Millisecond)

	var started atomic.Int32
	report := c.RunBatch(context.Background(), targetList(5), func(ctx context.Context, target string) error {
		started.Add(1)
		select {
		case <-time.After(200 * time.Millisecond):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	assert.Equal(t, 5, report.Requested)
	assert.Equal(t, report.Requested, report.Succeeded+report.Failed, "every target gets a result")
	assert.Less(t, started.Load(), int32(5), "deadline must prevent some targets from starting")

	timeouts := 0
	for _, res := range report.Results {
		if errors.Is(res.Err, utils.ErrBatchTimeout) {
			timeouts++
			assert.Equal(t, "Batch_Timeout", res.ErrorCategory)
		}
	}
	assert.Greater(t, timeouts, 0)
}

func TestRunBatchCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := testCoordinator(2, 0)
	report := c.RunBatch(ctx, targetList(3), func(ctx context.Context, target string) error {
		return ctx.Err()
	})

	assert.Equal(t, 3, report.Failed)
	for _, res := range report.Results {
		assert.Equal(t, "System_ContextCanceled", res.ErrorCategory)
	}
}

func TestRunBatchEmptyTargets(t *testing.T) {
	c := testCoordinator(2, 0)
	report := c.RunBatch(context.Background(), nil, func(ctx context.Context, target string) error {
		t.Fatal("task must not run for an empty batch")
		return nil
	})
	assert.Equal(t, 0, report.Requested)
	assert.Empty(t, report.Results)
}
