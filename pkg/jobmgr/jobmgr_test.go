package jobmgr

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stateLog struct {
	mu     sync.Mutex
	states []string
}

func (l *stateLog) report(name, state string, _ error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, name+":"+state)
}

func (l *stateLog) get() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.states...)
}

func TestStartAsyncRefusesDuplicates(t *testing.T) {
	jm := NewManager(context.Background(), nil)
	release := make(chan struct{})

	require.NoError(t, jm.StartAsync("sync", func(ctx context.Context) error {
		<-release
		return nil
	}))
	assert.ErrorIs(t, jm.StartAsync("sync", func(context.Context) error { return nil }), ErrRunning)
	require.NoError(t, jm.StartAsync("other", func(context.Context) error { return nil }))

	close(release)
	jm.StopAll()
}

func TestNameIsFreedAfterCompletion(t *testing.T) {
	var log stateLog
	jm := NewManager(context.Background(), log.report)

	require.NoError(t, jm.StartAsync("job", func(context.Context) error { return nil }))
	jm.StopAll()
	require.NoError(t, jm.StartAsync("job", func(context.Context) error { return errors.New("boom") }))
	jm.StopAll()

	assert.Equal(t, []string{"job:running", "job:done", "job:running", "job:error"}, log.get())
}

func TestStopAllCancelsRunningJobs(t *testing.T) {
	var log stateLog
	jm := NewManager(context.Background(), log.report)

	started := make(chan struct{})
	require.NoError(t, jm.StartAsync("long", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}))
	<-started

	jm.StopAll()
	assert.Equal(t, []string{"long:running", "long:error"}, log.get())
}

func TestParentCancellationStopsJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	jm := NewManager(ctx, nil)

	errCh := make(chan error, 1)
	require.NoError(t, jm.StartAsync("job", func(ctx context.Context) error {
		<-ctx.Done()
		errCh <- ctx.Err()
		return nil
	}))
	cancel()
	jm.StopAll()
	assert.True(t, errors.Is(<-errCh, context.Canceled))
}
