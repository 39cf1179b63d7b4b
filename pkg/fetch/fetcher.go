package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"lawscraper/pkg/config"
	"lawscraper/pkg/utils"
)

// Fetcher retrieves documents with per-host politeness pacing, rotating
// identification headers, and retry with exponential backoff. One Fetcher is
// shared by all workers in a batch.
type Fetcher struct {
	client  *http.Client
	cfg     *config.AppConfig
	limiter *RateLimiter
	agents  *UserAgentPool
	log     *logrus.Entry
}

// NewFetcher creates a Fetcher around the shared HTTP client.
func NewFetcher(client *http.Client, cfg *config.AppConfig, log *logrus.Logger) *Fetcher {
	return &Fetcher{
		client:  client,
		cfg:     cfg,
		limiter: NewRateLimiter(cfg.RequestDelay, log),
		agents:  NewUserAgentPool(cfg.UserAgents),
		log:     log.WithField("component", "fetcher"),
	}
}

// Fetch retrieves the document at rawURL and returns its body, observing the
// politeness delay for the URL's host before each attempt. The body is read
// fully up to the configured size cap; a response larger than the cap is
// truncated at the cap.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", utils.ErrMalformedURL, rawURL)
	}

	resp, err := f.fetchWithRetry(ctx, rawURL, u.Host)
	if err != nil {
		if resp != nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxPageSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", utils.ErrResponseBodyRead, rawURL, err)
	}
	return body, nil
}

// fetchWithRetry performs the attempt loop: initial attempt plus MaxRetries
// retries with exponential backoff and jitter. Server errors (5xx), 429, and
// network errors are retried; other 4xx statuses fail immediately.
func (f *Fetcher) fetchWithRetry(ctx context.Context, rawURL, host string) (*http.Response, error) {
	var lastErr error
	var currentResp *http.Response

	reqLog := f.log.WithField("url", rawURL)

	maxRetries := f.cfg.MaxRetries
	initialRetryDelay := f.cfg.InitialRetryDelay
	maxRetryDelay := f.cfg.MaxRetryDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return nil, fmt.Errorf("context cancelled (%v) after error: %w", ctx.Err(), lastErr)
			}
			return nil, ctx.Err()
		default:
		}

		if attempt > 0 {
			backoff := float64(initialRetryDelay) * math.Pow(2, float64(attempt-1))
			delay := time.Duration(backoff)
			if delay <= 0 || delay > maxRetryDelay {
				delay = maxRetryDelay
			}

			// Jitter: +/- 10% to avoid synchronized retries across workers
			var jitter time.Duration
			if jitterRange := int64(delay) / 5; jitterRange > 0 {
				jitter = time.Duration(rand.Int63n(jitterRange)) - (delay / 10)
			}
			finalDelay := delay + jitter
			if finalDelay < 0 {
				finalDelay = 0
			}

			reqLog.WithFields(logrus.Fields{"attempt": attempt, "max_retries": maxRetries, "delay": finalDelay}).Warn("Retrying request")

			select {
			case <-time.After(finalDelay):
			case <-ctx.Done():
				if lastErr != nil {
					return nil, fmt.Errorf("context cancelled (%v) during retry delay after error: %w", ctx.Err(), lastErr)
				}
				return nil, fmt.Errorf("context cancelled during retry delay: %w", ctx.Err())
			}
		}

		if err := f.limiter.Wait(ctx, host); err != nil {
			if lastErr != nil {
				return nil, fmt.Errorf("context cancelled (%v) during politeness delay after error: %w", err, lastErr)
			}
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", utils.ErrRequestCreation, err)
		}
		if ua := f.agents.Next(); ua != "" {
			req.Header.Set("User-Agent", ua)
		}
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		currentResp, lastErr = f.client.Do(req)
		f.limiter.UpdateLastRequestTime(host)

		if lastErr != nil {
			if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
				if currentResp != nil {
					io.Copy(io.Discard, currentResp.Body)
					currentResp.Body.Close()
				}
				return nil, lastErr
			}

			reqLog.WithField("attempt", attempt).Errorf("Network error: %v", lastErr)
			if currentResp != nil {
				io.Copy(io.Discard, currentResp.Body)
				currentResp.Body.Close()
			}
			continue
		}

		statusCode := currentResp.StatusCode
		resLog := reqLog.WithFields(logrus.Fields{"status_code": statusCode, "attempt": attempt})

		switch {
		case statusCode >= 200 && statusCode < 300:
			resLog.Debug("Fetched")
			return currentResp, nil

		case statusCode >= 500:
			resLog.Warn("Server error, retrying")
			lastErr = fmt.Errorf("%w: status %d %s", utils.ErrServerHTTPError, statusCode, currentResp.Status)
			io.Copy(io.Discard, currentResp.Body)
			currentResp.Body.Close()
			continue

		case statusCode == http.StatusTooManyRequests:
			resLog.Warn("Rate limited by server, retrying")
			lastErr = fmt.Errorf("%w: status %d %s", utils.ErrClientHTTPError, statusCode, currentResp.Status)
			io.Copy(io.Discard, currentResp.Body)
			currentResp.Body.Close()
			continue

		case statusCode >= 400 && statusCode < 500:
			resLog.Warn("Client error, not retrying")
			io.Copy(io.Discard, currentResp.Body)
			currentResp.Body.Close()
			return nil, fmt.Errorf("%w: status %d %s", utils.ErrClientHTTPError, statusCode, currentResp.Status)

		default:
			resLog.Warnf("Unexpected status: %d", statusCode)
			io.Copy(io.Discard, currentResp.Body)
			currentResp.Body.Close()
			return nil, fmt.Errorf("%w: status %d %s", utils.ErrOtherHTTPError, statusCode, currentResp.Status)
		}
	}

	reqLog.Errorf("All %d fetch attempts failed. Last error: %v", maxRetries+1, lastErr)
	if currentResp != nil {
		io.Copy(io.Discard, currentResp.Body)
		currentResp.Body.Close()
	}

	if lastErr != nil {
		if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			return nil, lastErr
		}
		return nil, fmt.Errorf("%w: %w", utils.ErrRetryFailed, lastErr)
	}
	return nil, utils.ErrRetryFailed
}
