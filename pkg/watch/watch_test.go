package watch

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLog() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log.WithField("component", "watch")
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"30m", 30 * time.Minute, false},
		{"1h", time.Hour, false},
		{"24h", 24 * time.Hour, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"1d12h", 36 * time.Hour, false},
		{"", 0, true},
		{"nonsense", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseInterval(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestStateManagerRoundTrip(t *testing.T) {
	dir := t.TempDir()

	m := NewStateManager(dir)
	require.NoError(t, m.Load())
	m.Update("legislation", true, "")
	m.Update("case-analysis", false, "fetch failed")
	require.NoError(t, m.Save())

	reloaded := NewStateManager(dir)
	require.NoError(t, reloaded.Load())

	state, ok := reloaded.Get("legislation")
	require.True(t, ok)
	assert.True(t, state.LastRunSuccess)

	state, ok = reloaded.Get("case-analysis")
	require.True(t, ok)
	assert.False(t, state.LastRunSuccess)
	assert.Equal(t, "fetch failed", state.ErrorMessage)
}

func TestStateManagerShouldRun(t *testing.T) {
	m := NewStateManager(t.TempDir())

	assert.True(t, m.ShouldRun("legislation", time.Hour), "never-run pipeline is due")

	m.Update("legislation", true, "")
	assert.False(t, m.ShouldRun("legislation", time.Hour))
	assert.True(t, m.ShouldRun("legislation", 0))
}

func TestSchedulerRunsDuePipelines(t *testing.T) {
	var mu sync.Mutex
	ran := make(map[string]int)

	run := func(ctx context.Context, name string) error {
		mu.Lock()
		ran[name]++
		mu.Unlock()
		return nil
	}

	s := NewScheduler(t.TempDir(), []string{"case-extraction", "legislation"}, time.Hour, run, testLog())

	errCh := make(chan error, 1)
	go func() { errCh <- s.Run() }()

	// The initial pass runs every pipeline once
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return ran["case-extraction"] == 1 && ran["legislation"] == 1
	}, 5*time.Second, 10*time.Millisecond)

	s.Stop()
	require.NoError(t, <-errCh)

	// State persisted, so a fresh manager sees both pipelines as not due
	m := NewStateManager(s.state.stateDir)
	require.NoError(t, m.Load())
	assert.False(t, m.ShouldRun("case-extraction", time.Hour))
	assert.False(t, m.ShouldRun("legislation", time.Hour))
}

func TestSchedulerStopDuringRun(t *testing.T) {
	started := make(chan struct{})

	run := func(ctx context.Context, name string) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}

	s := NewScheduler(t.TempDir(), []string{"case-extraction"}, time.Hour, run, testLog())

	errCh := make(chan error, 1)
	go func() { errCh <- s.Run() }()

	<-started
	s.Stop()
	require.NoError(t, <-errCh)
}
