package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// RunFunc executes one named pipeline. Implementations must respect ctx.
type RunFunc func(ctx context.Context, name string) error

// Scheduler re-runs scraping pipelines on a fixed interval. Due pipelines run
// sequentially, never in parallel: the target site's politeness budget is
// shared, so overlapping scrapes would just contend for it.
type Scheduler struct {
	pipelines []string
	interval  time.Duration
	run       RunFunc
	state     *StateManager
	log       *logrus.Entry

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a Scheduler over the named pipelines. Run state is
// persisted under stateDir so restarts keep the schedule.
func NewScheduler(stateDir string, pipelines []string, interval time.Duration, run RunFunc, log *logrus.Entry) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		pipelines: pipelines,
		interval:  interval,
		run:       run,
		state:     NewStateManager(stateDir),
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Run starts the scheduler and blocks until Stop is called. Pipelines that
// have never run, or whose last run is older than the interval, run
// immediately; the rest wait their turn.
func (s *Scheduler) Run() error {
	defer close(s.done)

	if err := s.state.Load(); err != nil {
		s.log.Warnf("Failed to load watch state, starting fresh: %v", err)
	}

	s.log.Infof("Watching %d pipelines with interval %v", len(s.pipelines), s.interval)
	s.logSchedule()

	s.runDue()

	ticker := time.NewTicker(s.tickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.log.Info("Watch scheduler shutting down")
			return nil
		case <-ticker.C:
			s.runDue()
		}
	}
}

// Stop cancels the scheduler. It returns once Run has exited, so a run in
// progress observes the cancellation first.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.done
}

func (s *Scheduler) runDue() {
	for _, name := range s.pipelines {
		if s.ctx.Err() != nil {
			return
		}
		if !s.state.ShouldRun(name, s.interval) {
			continue
		}

		s.log.WithField("pipeline", name).Info("Running scheduled pipeline")
		err := s.run(s.ctx, name)
		errorMsg := ""
		if err != nil {
			errorMsg = err.Error()
			s.log.WithField("pipeline", name).Errorf("Scheduled run failed: %v", err)
		}
		s.state.Update(name, err == nil, errorMsg)

		if err := s.state.Save(); err != nil {
			s.log.Errorf("Failed to save watch state: %v", err)
		}
	}
	s.logNextRun()
}

// tickInterval is how often due pipelines are checked: a tenth of the
// interval, clamped to [1m, 10m].
func (s *Scheduler) tickInterval() time.Duration {
	tick := s.interval / 10
	if tick < time.Minute {
		tick = time.Minute
	}
	if tick > 10*time.Minute {
		tick = 10 * time.Minute
	}
	return tick
}

func (s *Scheduler) logSchedule() {
	for _, name := range s.pipelines {
		state, ok := s.state.Get(name)
		if !ok {
			s.log.Infof("  %s: never run, will run immediately", name)
			continue
		}
		status := "success"
		if !state.LastRunSuccess {
			status = "failed"
		}
		s.log.Infof("  %s: last run %s (%s), next run %s",
			name,
			state.LastRunTime.Format(time.RFC3339),
			status,
			s.state.NextRunTime(name, s.interval).Format(time.RFC3339))
	}
}

func (s *Scheduler) logNextRun() {
	var earliest time.Time
	next := ""
	for _, name := range s.pipelines {
		t := s.state.NextRunTime(name, s.interval)
		if next == "" || t.Before(earliest) {
			earliest = t
			next = name
		}
	}
	if next == "" {
		return
	}
	until := time.Until(earliest)
	if until < 0 {
		until = 0
	}
	s.log.Infof("Next run: %s in %v", next, until.Round(time.Second))
}

// ParseInterval parses a duration string, additionally accepting a day
// suffix (e.g. "7d", "1d12h").
func ParseInterval(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err == nil {
		return d, nil
	}

	var days int
	var remaining string
	n, _ := fmt.Sscanf(s, "%dd%s", &days, &remaining)
	if n >= 1 {
		d = time.Duration(days) * 24 * time.Hour
		if remaining != "" {
			extra, err := time.ParseDuration(remaining)
			if err != nil {
				return 0, fmt.Errorf("invalid interval format: %s", s)
			}
			d += extra
		}
		return d, nil
	}

	return 0, fmt.Errorf("invalid interval format: %s (examples: 30m, 1h, 24h, 7d)", s)
}
