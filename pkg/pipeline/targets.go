package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"lawscraper/pkg/dispatch"
	"lawscraper/pkg/listing"
	"lawscraper/pkg/models"
	"lawscraper/pkg/storage"
)

// caseTarget is one judgment document queued for a batch: the URL to fetch,
// its normalized form used as the state-store key, and the listing title when
// one was available.
type caseTarget struct {
	URL   string
	Norm  string
	Title string
}

// truncateTargets caps targets at count; zero means no limit.
func truncateTargets(targets []caseTarget, count int) []caseTarget {
	if count > 0 && len(targets) > count {
		return targets[:count]
	}
	return targets
}

// collectCaseTargets discovers up to count judgment URLs (0 = no limit). The
// Atom feed is tried first because it is the cheapest complete listing; when
// the feed is unreachable, unparseable, or carries no judgments, discovery
// falls back to paginating the judgments listing.
func (s *Session) collectCaseTargets(ctx context.Context, count int) ([]caseTarget, error) {
	feedURL := s.primaryURL(s.cfg.Site.FeedPath)
	body, finalURL, err := s.fetcher.FetchWithFallback(ctx, feedURL)
	if err == nil {
		if entries, perr := listing.ParseFeed(body); perr == nil {
			targets := truncateTargets(s.targetsFromFeed(finalURL, entries), count)
			if len(targets) > 0 {
				s.log.WithField("targets", len(targets)).Info("Collected judgment targets from feed")
				return targets, nil
			}
		} else {
			s.log.Warnf("Feed unparseable, falling back to listing pages: %v", perr)
		}
	} else if ctx.Err() != nil {
		return nil, ctx.Err()
	} else {
		s.log.Warnf("Feed unavailable, falling back to listing pages: %v", err)
	}

	return s.targetsFromListing(ctx, count)
}

func (s *Session) targetsFromFeed(feedURL string, entries []listing.FeedEntry) []caseTarget {
	base, err := url.Parse(feedURL)
	if err != nil {
		return nil
	}

	var targets []caseTarget
	seen := make(map[string]bool)
	for _, entry := range entries {
		if !entry.IsJudgment() {
			continue
		}
		ref, err := url.Parse(entry.URL)
		if err != nil {
			continue
		}
		resolved := base.ResolveReference(ref).String()
		norm, err := storage.NormalizeURL(resolved)
		if err != nil || seen[norm] {
			continue
		}
		seen[norm] = true
		targets = append(targets, caseTarget{URL: resolved, Norm: norm, Title: entry.Title})
	}
	return targets
}

// targetsFromListing paginates the judgments listing until count targets are
// collected (0 = no limit), the configured page cap is hit, or a page stops
// yielding new items.
func (s *Session) targetsFromListing(ctx context.Context, count int) ([]caseTarget, error) {
	listURL := s.primaryURL(s.cfg.Site.JudgmentsPath)

	var targets []caseTarget
	seen := make(map[string]bool)

	for page := 1; page <= s.cfg.MaxListingPages && (count <= 0 || len(targets) < count); page++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		pageURL := listing.PageURL(listURL, page)
		body, finalURL, err := s.fetcher.FetchWithFallback(ctx, pageURL)
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("fetch judgments listing: %w", err)
			}
			s.log.WithField("page", page).Warnf("Listing page fetch failed, stopping pagination: %v", err)
			break
		}

		items, strategy, err := s.parser.ParseItems(body, finalURL, listing.CaseStrategies)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			// Past the last page: the site renders an empty shell
			break
		}

		added := 0
		for _, item := range items {
			norm, err := storage.NormalizeURL(item.URL)
			if err != nil || seen[norm] {
				continue
			}
			seen[norm] = true
			targets = append(targets, caseTarget{URL: item.URL, Norm: norm, Title: item.Title})
			added++
		}
		s.log.WithFields(logrus.Fields{"page": page, "strategy": strategy, "new_items": added}).Debug("Parsed listing page")
		if added == 0 {
			// Page repeated earlier content; pagination has wrapped
			break
		}
	}

	targets = truncateTargets(targets, count)
	s.log.WithField("targets", len(targets)).Info("Collected judgment targets from listing pages")
	return targets, nil
}

// targetsFromURLs builds targets from caller-supplied URLs, dropping
// malformed and duplicate entries.
func (s *Session) targetsFromURLs(urls []string) []caseTarget {
	var targets []caseTarget
	seen := make(map[string]bool)
	for _, raw := range urls {
		norm, err := storage.NormalizeURL(raw)
		if err != nil {
			s.log.Warnf("Skipping malformed URL %q: %v", raw, err)
			continue
		}
		if seen[norm] {
			continue
		}
		seen[norm] = true
		targets = append(targets, caseTarget{URL: raw, Norm: norm})
	}
	return targets
}

// stateKey scopes store entries by pipeline so analyzing a judgment and
// extracting its metadata are tracked independently.
func stateKey(docType models.DocumentType, norm string) string {
	return string(docType) + ":" + norm
}

// claimTargets filters targets through the state store: documents already
// scraped successfully are skipped, unseen documents are claimed as pending,
// and past failures are retried.
func (s *Session) claimTargets(targets []caseTarget, docType models.DocumentType) []caseTarget {
	var claimed []caseTarget
	skipped := 0

	for _, t := range targets {
		status, _, err := s.store.CheckStatus(stateKey(docType, t.Norm))
		if err != nil {
			s.log.WithField("url", t.URL).Warnf("State check failed, skipping: %v", err)
			continue
		}
		switch status {
		case models.DocStatusSuccess:
			skipped++
			continue
		case models.DocStatusNotFound:
			ok, err := s.store.MarkPending(stateKey(docType, t.Norm), docType)
			if err != nil {
				s.log.WithField("url", t.URL).Warnf("Claim failed, skipping: %v", err)
				continue
			}
			if !ok {
				skipped++
				continue
			}
		}
		claimed = append(claimed, t)
	}

	if skipped > 0 {
		s.log.WithFields(logrus.Fields{"skipped": skipped, "claimed": len(claimed)}).Info("Skipped already-processed documents")
	}
	return claimed
}

// recordOutcomes writes each batch result's terminal status to the state
// store so later runs can skip successes and retry failures.
func (s *Session) recordOutcomes(results []dispatch.Result, norms map[string]string, docType models.DocumentType) {
	now := time.Now().UTC()
	for _, res := range results {
		norm, ok := norms[res.Target]
		if !ok {
			continue
		}
		entry := &models.DocEntry{Type: docType, LastAttempt: now}
		if res.Err == nil {
			entry.Status = models.DocStatusSuccess
			entry.ProcessedAt = now
		} else {
			entry.Status = models.DocStatusFailure
			entry.ErrorType = res.ErrorCategory
		}
		if err := s.store.UpdateStatus(stateKey(docType, norm), entry); err != nil {
			s.log.WithField("url", res.Target).Warnf("Status update failed: %v", err)
		}
	}
}
