// Package jobmgr runs named background jobs, at most one per name, under a
// shared parent context.
//
//	jm := jobmgr.NewManager(ctx, nil)
//	err := jm.StartAsync("refresh:123", func(ctx context.Context) error {
//	    return work(ctx)
//	})
//	defer jm.StopAll()
package jobmgr

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrRunning = errors.New("job is already running")

// StatusReporter receives lifecycle events. err is nil for "running" and
// "done".
type StatusReporter func(name, state string, err error)

// Manager is safe for concurrent use.
type Manager struct {
	ctx      context.Context
	mu       sync.Mutex
	jobs     map[string]context.CancelFunc
	wg       sync.WaitGroup
	reporter StatusReporter
}

// NewManager creates a Manager whose jobs are cancelled when parent is.
// reporter may be nil.
func NewManager(parent context.Context, reporter StatusReporter) *Manager {
	return &Manager{
		ctx:      parent,
		jobs:     make(map[string]context.CancelFunc),
		reporter: reporter,
	}
}

// StartAsync runs runner in its own goroutine. A second job under a name that
// is still running is refused with ErrRunning.
func (m *Manager) StartAsync(name string, runner func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.jobs[name]; exists {
		return fmt.Errorf("%s: %w", name, ErrRunning)
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.jobs[name] = cancel
	m.wg.Add(1)

	go func() {
		defer m.wg.Done()
		defer func() {
			m.mu.Lock()
			delete(m.jobs, name)
			m.mu.Unlock()
			cancel()
		}()

		m.report(name, "running", nil)
		if err := runner(ctx); err != nil {
			m.report(name, "error", err)
			return
		}
		m.report(name, "done", nil)
	}()
	return nil
}

// StopAll cancels every job and waits for them to return.
func (m *Manager) StopAll() {
	m.mu.Lock()
	for _, cancel := range m.jobs {
		cancel()
	}
	m.mu.Unlock()
	m.wg.Wait()
}

func (m *Manager) report(name, state string, err error) {
	if m.reporter != nil {
		m.reporter(name, state, err)
	}
}
