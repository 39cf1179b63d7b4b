package storage

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawscraper/pkg/models"
	"lawscraper/pkg/utils"
)

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store, err := NewBadgerStore(t.TempDir(), "new.kenyalaw.org", false, logrus.NewEntry(logger))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases host", "https://NEW.KenyaLaw.org/Judgments/1", "https://new.kenyalaw.org/Judgments/1"},
		{"strips fragment", "https://new.kenyalaw.org/judgments/1#page2", "https://new.kenyalaw.org/judgments/1"},
		{"strips trailing slash", "https://new.kenyalaw.org/judgments/1/", "https://new.kenyalaw.org/judgments/1"},
		{"strips default https port", "https://new.kenyalaw.org:443/judgments/1", "https://new.kenyalaw.org/judgments/1"},
		{"root path preserved", "https://new.kenyalaw.org", "https://new.kenyalaw.org/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := NormalizeURL("/judgments/relative")
	assert.ErrorIs(t, err, utils.ErrMalformedURL)
}

func TestNormalizeURLVariantsCollide(t *testing.T) {
	a, err := NormalizeURL("https://New.KenyaLaw.org/judgments/KEHC/2024/100/")
	require.NoError(t, err)
	b, err := NormalizeURL("https://new.kenyalaw.org:443/judgments/KEHC/2024/100#top")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMarkPendingClaimsOnce(t *testing.T) {
	store := newTestStore(t)

	claimed, err := store.MarkPending("https://new.kenyalaw.org/judgments/1", models.DocTypeCaseLaw)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = store.MarkPending("https://new.kenyalaw.org/judgments/1", models.DocTypeCaseLaw)
	require.NoError(t, err)
	assert.False(t, claimed, "second claim on the same URL must fail")

	assert.Equal(t, 1, store.Count())
}

func TestMarkPendingConcurrentSingleWinner(t *testing.T) {
	store := newTestStore(t)

	const workers = 8
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := store.MarkPending("https://new.kenyalaw.org/judgments/42", models.DocTypeCaseLaw)
			assert.NoError(t, err)
			if claimed {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load(), "exactly one worker may claim a URL")
}

func TestStatusRoundTrip(t *testing.T) {
	store := newTestStore(t)
	url := "https://new.kenyalaw.org/legislation/cap63"

	status, entry, err := store.CheckStatus(url)
	require.NoError(t, err)
	assert.Equal(t, models.DocStatusNotFound, status)
	assert.Nil(t, entry)

	_, err = store.MarkPending(url, models.DocTypeLegislation)
	require.NoError(t, err)

	status, _, err = store.CheckStatus(url)
	require.NoError(t, err)
	assert.Equal(t, models.DocStatusPending, status)

	now := time.Now().UTC()
	require.NoError(t, store.UpdateStatus(url, &models.DocEntry{
		Status:      models.DocStatusFailure,
		Type:        models.DocTypeLegislation,
		ErrorType:   "HTTP_404",
		LastAttempt: now,
	}))

	status, entry, err = store.CheckStatus(url)
	require.NoError(t, err)
	assert.Equal(t, models.DocStatusFailure, status)
	require.NotNil(t, entry)
	assert.Equal(t, "HTTP_404", entry.ErrorType)
	assert.Equal(t, models.DocTypeLegislation, entry.Type)
}

func TestFreshRunClearsState(t *testing.T) {
	dir := t.TempDir()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	entry := logrus.NewEntry(logger)

	store, err := NewBadgerStore(dir, "new.kenyalaw.org", false, entry)
	require.NoError(t, err)
	_, err = store.MarkPending("https://new.kenyalaw.org/judgments/1", models.DocTypeCaseLaw)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	resumed, err := NewBadgerStore(dir, "new.kenyalaw.org", true, entry)
	require.NoError(t, err)
	assert.Equal(t, 1, resumed.Count(), "resume preserves state")
	require.NoError(t, resumed.Close())

	fresh, err := NewBadgerStore(dir, "new.kenyalaw.org", false, entry)
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.Count(), "fresh run wipes state")
	require.NoError(t, fresh.Close())
}

func TestRunGCStopsOnCancel(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		store.RunGC(ctx, 50*time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunGC did not stop on context cancellation")
	}
}
