package watch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const stateFileName = "watch_state.json"

// PipelineState records the last run of one pipeline.
type PipelineState struct {
	LastRunTime    time.Time `json:"last_run_time"`
	LastRunSuccess bool      `json:"last_run_success"`
	ErrorMessage   string    `json:"error_message,omitempty"`
}

type watchState struct {
	Pipelines map[string]PipelineState `json:"pipelines"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// StateManager persists per-pipeline run state across watch sessions so a
// restarted watcher does not re-scrape pipelines that ran recently.
type StateManager struct {
	stateDir  string
	statePath string
	state     watchState
	mu        sync.RWMutex
}

// NewStateManager creates a StateManager rooted at stateDir.
func NewStateManager(stateDir string) *StateManager {
	return &StateManager{
		stateDir:  stateDir,
		statePath: filepath.Join(stateDir, stateFileName),
		state:     watchState{Pipelines: make(map[string]PipelineState)},
	}
}

// Load reads the state file. A missing file starts fresh.
func (m *StateManager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			m.state = watchState{Pipelines: make(map[string]PipelineState)}
			return nil
		}
		return fmt.Errorf("read watch state: %w", err)
	}

	if err := json.Unmarshal(data, &m.state); err != nil {
		return fmt.Errorf("parse watch state: %w", err)
	}
	if m.state.Pipelines == nil {
		m.state.Pipelines = make(map[string]PipelineState)
	}
	return nil
}

// Save writes the state file, creating the state directory if needed.
func (m *StateManager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.UpdatedAt = time.Now()

	if err := os.MkdirAll(m.stateDir, 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal watch state: %w", err)
	}
	if err := os.WriteFile(m.statePath, data, 0o644); err != nil {
		return fmt.Errorf("write watch state: %w", err)
	}
	return nil
}

// Get returns the recorded state for a pipeline.
func (m *StateManager) Get(name string) (PipelineState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.state.Pipelines[name]
	return state, ok
}

// Update records the outcome of a pipeline run.
func (m *StateManager) Update(name string, success bool, errorMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.Pipelines[name] = PipelineState{
		LastRunTime:    time.Now(),
		LastRunSuccess: success,
		ErrorMessage:   errorMsg,
	}
}

// ShouldRun reports whether the pipeline is due: never run, or its last run
// is older than the interval.
func (m *StateManager) ShouldRun(name string, interval time.Duration) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.state.Pipelines[name]
	if !ok {
		return true
	}
	return time.Since(state.LastRunTime) >= interval
}

// NextRunTime returns when the pipeline is next due.
func (m *StateManager) NextRunTime(name string, interval time.Duration) time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.state.Pipelines[name]
	if !ok {
		return time.Now()
	}
	return state.LastRunTime.Add(interval)
}
