package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrReconcilerRunning is returned by Start when the loop is already active.
	ErrReconcilerRunning = errors.New("reconciler already running")
	// ErrReconcilerNotRunning is returned by Stop when there is nothing to stop.
	ErrReconcilerNotRunning = errors.New("reconciler not running")
)

// reconciler runs a reconciliation pass on a fixed interval until stopped.
type reconciler struct {
	pass     func(ctx context.Context) ReconcileReport
	interval time.Duration
	log      zerolog.Logger

	mu       sync.Mutex
	stop     chan struct{}
	done     chan struct{}
	stopping bool
}

func newReconciler(pass func(ctx context.Context) ReconcileReport, interval time.Duration, log zerolog.Logger) *reconciler {
	return &reconciler{
		pass:     pass,
		interval: interval,
		log:      log,
	}
}

// Start launches the loop. Cancelling ctx ends the loop like Stop does, but an in-flight
// pass is never cancelled; it runs to completion bounded by the provider timeout.
// Once the loop has exited the reconciler can be started again.
func (r *reconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done != nil {
		return ErrReconcilerRunning
	}
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	r.stopping = false

	go r.run(ctx, r.stop, r.done)

	r.log.Info().Dur("interval", r.interval).Msg("withdrawal reconciler started")
	return nil
}

// Stop stops scheduling new passes and waits for the current one to finish.
// If ctx expires first the loop still exits after its pass; Stop may be called again to wait.
func (r *reconciler) Stop(ctx context.Context) error {
	r.mu.Lock()
	if r.done == nil {
		r.mu.Unlock()
		return ErrReconcilerNotRunning
	}
	if !r.stopping {
		close(r.stop)
		r.stopping = true
	}
	done := r.done
	r.mu.Unlock()

	select {
	case <-done:
		r.mu.Lock()
		if r.done == done {
			r.stop, r.done, r.stopping = nil, nil, false
		}
		r.mu.Unlock()
		r.log.Info().Msg("withdrawal reconciler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for reconciliation pass: %w", ctx.Err())
	}
}

func (r *reconciler) run(ctx context.Context, stop <-chan struct{}, done chan struct{}) {
	defer func() {
		r.mu.Lock()
		if r.done == done {
			r.stop, r.done, r.stopping = nil, nil, false
		}
		r.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	passCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		// A tick and a stop can be ready together; stop wins.
		select {
		case <-stop:
			return
		default:
		}

		report := r.pass(passCtx)
		if report.Checked > 0 {
			r.log.Debug().
				Int("checked", report.Checked).
				Int("processing", report.Processing).
				Int("completed", report.Completed).
				Int("failed", report.Failed).
				Int("errors", report.Errors).
				Msg("reconciliation pass finished")
		}
	}
}
