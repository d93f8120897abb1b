package server

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// orderLog records start and stop calls across services.
type orderLog struct {
	mu    sync.Mutex
	calls []string
}

func (o *orderLog) add(s string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, s)
}

func (o *orderLog) snapshot() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.calls...)
}

func recording(log *orderLog, name string, startErr error) *FuncService {
	return &FuncService{
		StartFn: func(context.Context) error {
			log.add("start " + name)
			return startErr
		},
		StopFn: func() { log.add("stop " + name) },
	}
}

func TestLifecycleStartsInOrderAndStopsInReverse(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	log := &orderLog{}
	lc.Add("bus", recording(log, "bus", nil))
	lc.Add("loop", recording(log, "loop", nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(log.snapshot()) == 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}

	assert.Equal(t, []string{"start bus", "start loop", "stop loop", "stop bus"}, log.snapshot())
}

func TestLifecycleStartFailureStopsStartedServices(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	log := &orderLog{}
	boom := errors.New("boom")
	lc.Add("bus", recording(log, "bus", nil))
	lc.Add("ledger", recording(log, "ledger", boom))
	lc.Add("loop", recording(log, "loop", nil))

	err := lc.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "ledger")
	assert.Equal(t, []string{"start bus", "start ledger", "stop bus"}, log.snapshot())
}

func TestLifecycleNoServices(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, lc.Run(ctx))
}

func TestFuncService(t *testing.T) {
	started := false
	stopped := false

	svc := &FuncService{
		StartFn: func(context.Context) error {
			started = true
			return nil
		},
		StopFn: func() {
			stopped = true
		},
	}

	err := svc.Start(context.Background())
	assert.NoError(t, err)
	assert.True(t, started)

	svc.Stop()
	assert.True(t, stopped)
}

func TestFuncServiceNilFuncs(t *testing.T) {
	svc := &FuncService{}
	assert.NoError(t, svc.Start(context.Background()))
	assert.NotPanics(t, svc.Stop)
}
