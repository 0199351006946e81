// file: internal/lifecycle/lifecycle_test.go

package lifecycle

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"helix-console/internal/logger"
)

type fakeApp struct {
	runErr error
	closed atomic.Int32
}

func (a *fakeApp) Run(ctx context.Context) error {
	if a.runErr != nil {
		return a.runErr
	}
	<-ctx.Done()
	return nil
}

func (a *fakeApp) Close() error {
	a.closed.Add(1)
	return nil
}

func TestRunLoopShutdown(t *testing.T) {
	shutdown := make(chan os.Signal, 1)
	reload := make(chan os.Signal, 1)
	app := &fakeApp{}

	done := make(chan error, 1)
	go func() {
		done <- runLoop(func() (Application, error) { return app, nil }, logger.NewNopLogger(), shutdown, reload)
	}()

	shutdown <- syscall.SIGTERM

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runLoop() error = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runLoop() did not return after shutdown signal")
	}
	if app.closed.Load() != 1 {
		t.Errorf("Close() calls = %d, want 1", app.closed.Load())
	}
}

func TestRunLoopReload(t *testing.T) {
	shutdown := make(chan os.Signal, 1)
	reload := make(chan os.Signal, 1)

	var created atomic.Int32
	apps := make(chan *fakeApp, 2)
	createApp := func() (Application, error) {
		created.Add(1)
		app := &fakeApp{}
		apps <- app
		return app, nil
	}

	done := make(chan error, 1)
	go func() {
		done <- runLoop(createApp, logger.NewNopLogger(), shutdown, reload)
	}()

	first := <-apps
	reload <- syscall.SIGHUP
	second := <-apps
	shutdown <- syscall.SIGINT

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("runLoop() did not return after reload and shutdown")
	}

	if created.Load() != 2 {
		t.Errorf("createApp calls = %d, want 2", created.Load())
	}
	if first.closed.Load() != 1 || second.closed.Load() != 1 {
		t.Errorf("Close() calls = (%d, %d), want (1, 1)", first.closed.Load(), second.closed.Load())
	}
}

func TestRunLoopCreateError(t *testing.T) {
	wantErr := errors.New("bad config")
	err := runLoop(func() (Application, error) { return nil, wantErr }, logger.NewNopLogger(), nil, nil)
	if !errors.Is(err, wantErr) {
		t.Errorf("runLoop() error = %v, want wrapping %v", err, wantErr)
	}
}

func TestRunLoopRunError(t *testing.T) {
	wantErr := errors.New("listener died")
	app := &fakeApp{runErr: wantErr}
	err := runLoop(func() (Application, error) { return app, nil }, logger.NewNopLogger(), nil, nil)
	if !errors.Is(err, wantErr) {
		t.Errorf("runLoop() error = %v, want %v", err, wantErr)
	}
	if app.closed.Load() != 1 {
		t.Errorf("Close() calls = %d, want 1", app.closed.Load())
	}
}
