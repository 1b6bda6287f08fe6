package service

import (
	"context"
	"sync"
	"time"
)

// puller is the slice of the engine the poll job drives.
type puller interface {
	Pull(ctx context.Context) error
}

type syncJob struct {
	engine puller

	// mu serializes Start and Stop entirely. The poll goroutine never takes
	// it, so holding it across the done-channel wait cannot deadlock, and a
	// racing Start/Stop pair can never leak a goroutine or wait on the
	// wrong one.
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSyncJob creates a syncJob that calls engine.Pull on a ticker. The job
// is idle until Start is called.
func NewSyncJob(engine puller) SyncJob {
	return &syncJob{engine: engine}
}

// Start implements [SyncJob]. It stops any previously running job, then
// launches a background goroutine that pulls every interval. If interval is
// zero or negative it defaults to 30 seconds. The goroutine exits when ctx
// is cancelled or Stop is called. Pull errors are already surfaced by the
// engine; the job just keeps the cadence.
func (j *syncJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	j.stopLocked()

	jobCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	j.cancel = cancel
	j.done = done

	go func() {
		defer close(done)
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				_ = j.engine.Pull(jobCtx)
			}
		}
	}()
}

// Stop implements [SyncJob]. It cancels the background goroutine's context
// and blocks until the goroutine has fully exited. Safe to call when the job
// is not running (no-op in that case).
func (j *syncJob) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.stopLocked()
}

func (j *syncJob) stopLocked() {
	if j.cancel == nil {
		return
	}

	j.cancel()
	<-j.done
	j.cancel = nil
	j.done = nil
}
