package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestRunWatchLoop(t *testing.T) {
	noSkip := func(string) bool { return false }

	t.Run("coalesces event bursts into one rebuild", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events := make(chan fsnotify.Event, 8)
		errs := make(chan error)
		var rebuilds int32

		done := make(chan struct{})
		go func() {
			defer close(done)
			runWatchLoop(ctx, events, errs, 20*time.Millisecond, noSkip, func() {
				atomic.AddInt32(&rebuilds, 1)
			})
		}()

		for i := 0; i < 5; i++ {
			events <- fsnotify.Event{Name: "schema.yaml", Op: fsnotify.Write}
		}
		time.Sleep(100 * time.Millisecond)
		cancel()
		<-done

		if n := atomic.LoadInt32(&rebuilds); n != 1 {
			t.Errorf("rebuilds = %d, want 1", n)
		}
	})

	t.Run("rebuilds never overlap", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events := make(chan fsnotify.Event, 8)
		errs := make(chan error)
		var inFlight, maxInFlight, rebuilds int32

		done := make(chan struct{})
		go func() {
			defer close(done)
			runWatchLoop(ctx, events, errs, 5*time.Millisecond, noSkip, func() {
				cur := atomic.AddInt32(&inFlight, 1)
				if cur > atomic.LoadInt32(&maxInFlight) {
					atomic.StoreInt32(&maxInFlight, cur)
				}
				time.Sleep(30 * time.Millisecond) // slow rebuild
				atomic.AddInt32(&inFlight, -1)
				atomic.AddInt32(&rebuilds, 1)
			})
		}()

		// Second change lands while the first rebuild is still running.
		events <- fsnotify.Event{Name: "a.pdf", Op: fsnotify.Write}
		time.Sleep(15 * time.Millisecond)
		events <- fsnotify.Event{Name: "b.pdf", Op: fsnotify.Write}
		time.Sleep(150 * time.Millisecond)
		cancel()
		<-done

		if n := atomic.LoadInt32(&rebuilds); n != 2 {
			t.Errorf("rebuilds = %d, want 2", n)
		}
		if m := atomic.LoadInt32(&maxInFlight); m != 1 {
			t.Errorf("max concurrent rebuilds = %d, want 1", m)
		}
	})

	t.Run("skipped and irrelevant events trigger nothing", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events := make(chan fsnotify.Event, 8)
		errs := make(chan error)
		var rebuilds int32

		skip := func(path string) bool { return path == "out.pdf" }
		done := make(chan struct{})
		go func() {
			defer close(done)
			runWatchLoop(ctx, events, errs, 5*time.Millisecond, skip, func() {
				atomic.AddInt32(&rebuilds, 1)
			})
		}()

		events <- fsnotify.Event{Name: "out.pdf", Op: fsnotify.Write}
		events <- fsnotify.Event{Name: "a.pdf", Op: fsnotify.Chmod}
		time.Sleep(50 * time.Millisecond)
		cancel()
		<-done

		if n := atomic.LoadInt32(&rebuilds); n != 0 {
			t.Errorf("rebuilds = %d, want 0", n)
		}
	})

	t.Run("closed event channel ends the loop", func(t *testing.T) {
		events := make(chan fsnotify.Event)
		errs := make(chan error)
		close(events)
		if err := runWatchLoop(context.Background(), events, errs, time.Millisecond, noSkip, func() {}); err != nil {
			t.Errorf("runWatchLoop() error = %v", err)
		}
	})
}
