package main

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/config"
)

type fakeScheduler struct {
	called bool
	err    error
}

func (f *fakeScheduler) Schedule(context.Context) error {
	f.called = true
	return f.err
}

type fakeCron struct {
	started bool
	stopped bool
}

func (f *fakeCron) Start() {
	f.started = true
}

func (f *fakeCron) Stop() context.Context {
	f.stopped = true
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

type fakeHTTP struct {
	listenCalled chan struct{}
	shutdownOnce sync.Once
	shutdownCh   chan struct{}
	listenErr    error
}

func newFakeHTTP() *fakeHTTP {
	return &fakeHTTP{
		listenCalled: make(chan struct{}),
		shutdownCh:   make(chan struct{}),
	}
}

func (f *fakeHTTP) ListenAndServe(string) error {
	close(f.listenCalled)
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.shutdownCh
	return http.ErrServerClosed
}

func (f *fakeHTTP) Shutdown(context.Context) error {
	f.shutdownOnce.Do(func() { close(f.shutdownCh) })
	return nil
}

func testServeConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Addr:      "127.0.0.1:0",
			UIEnabled: true,
		},
	}
}

func TestRunWithComponents_StartsCronAndHTTP(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := &fakeScheduler{}
	engine := &fakeCron{}
	httpSrv := newFakeHTTP()

	doneCh := make(chan error, 1)
	go func() {
		doneCh <- runWithComponents(ctx, testServeConfig(), sched, engine, httpSrv)
	}()

	select {
	case <-httpSrv.listenCalled:
	case <-time.After(2 * time.Second):
		t.Fatal("http server did not start")
	}

	cancel()

	select {
	case err := <-doneCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runWithComponents did not exit after cancellation")
	}

	assert.True(t, sched.called)
	assert.True(t, engine.started)
	assert.True(t, engine.stopped)
}

func TestRunWithComponents_ScheduleError(t *testing.T) {
	sched := &fakeScheduler{err: errors.New("bad cron")}
	engine := &fakeCron{}

	err := runWithComponents(context.Background(), testServeConfig(), sched, engine, newFakeHTTP())
	require.EqualError(t, err, "bad cron")
	assert.False(t, engine.started)
}

func TestRunWithComponents_ListenError(t *testing.T) {
	httpSrv := newFakeHTTP()
	httpSrv.listenErr = errors.New("address in use")
	engine := &fakeCron{}

	err := runWithComponents(context.Background(), testServeConfig(), &fakeScheduler{}, engine, httpSrv)
	require.EqualError(t, err, "address in use")
	assert.True(t, engine.stopped)
}
