package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"lawscraper/pkg/config"
	"lawscraper/pkg/utils"
)

// RewriteToMirror maps a primary-site URL to its fallback-mirror equivalent
// using the configured rule table. It returns the rewritten URL and true when
// a rule matched, or the input unchanged and false when none did. The mapping
// is table-driven only; no URL shapes are guessed.
func RewriteToMirror(rawURL string, rules []config.MirrorRule) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL, false
	}

	for _, rule := range rules {
		if !strings.EqualFold(u.Host, rule.Host) {
			continue
		}
		if rule.PathPrefix != "" && !strings.HasPrefix(u.Path, rule.PathPrefix) {
			continue
		}

		mirrored := *u
		mirrored.Host = rule.MirrorHost
		if rule.PathPrefix != "" {
			mirrored.Path = rule.MirrorPrefix + strings.TrimPrefix(u.Path, rule.PathPrefix)
		}
		return mirrored.String(), true
	}
	return rawURL, false
}

// FetchWithFallback fetches rawURL from the primary site and, if that fails
// with a retryable-class error, retries once against the configured mirror.
// It returns the body and the URL that actually served it. Context
// cancellation and malformed URLs never trigger a fallback.
func (f *Fetcher) FetchWithFallback(ctx context.Context, rawURL string) ([]byte, string, error) {
	body, primaryErr := f.Fetch(ctx, rawURL)
	if primaryErr == nil {
		return body, rawURL, nil
	}

	if errors.Is(primaryErr, context.Canceled) || errors.Is(primaryErr, context.DeadlineExceeded) ||
		errors.Is(primaryErr, utils.ErrMalformedURL) {
		return nil, rawURL, primaryErr
	}

	mirrorURL, ok := RewriteToMirror(rawURL, f.cfg.Site.MirrorRules)
	if !ok || mirrorURL == rawURL {
		return nil, rawURL, primaryErr
	}

	f.log.WithFields(logrus.Fields{
		"url":        rawURL,
		"mirror_url": mirrorURL,
		"error":      utils.CategorizeError(primaryErr),
	}).Warn("Primary site failed, trying mirror")

	body, mirrorErr := f.Fetch(ctx, mirrorURL)
	if mirrorErr == nil {
		return body, mirrorURL, nil
	}
	if errors.Is(mirrorErr, context.Canceled) || errors.Is(mirrorErr, context.DeadlineExceeded) {
		return nil, mirrorURL, mirrorErr
	}

	return nil, mirrorURL, fmt.Errorf("%w: primary: %v; mirror: %w", utils.ErrFallbackExhausted, primaryErr, mirrorErr)
}
