package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pooler-app/pooler/internal/adapter"
	"github.com/pooler-app/pooler/internal/config"
	"github.com/pooler-app/pooler/internal/logger"
	"github.com/pooler-app/pooler/internal/store"
	"github.com/pooler-app/pooler/models"
)

// AdapterFactory constructs the backend adapter for a settings record.
// Tests substitute it to inject mock backends.
type AdapterFactory func(settings models.SyncSettings, timeout time.Duration, writer adapter.SettingsWriter, log *logger.Logger) (adapter.RemoteStore, error)

type syncEngine struct {
	reports    store.ReportRepository
	settings   adapter.SettingsWriter
	notifier   Notifier
	reconciler Reconciler
	newRemote  AdapterFactory

	pollInterval   time.Duration
	requestTimeout time.Duration

	logger *logger.Logger

	mu          sync.Mutex
	state       EngineState
	remote      adapter.RemoteStore
	job         SyncJob
	cancelRun   context.CancelFunc
	unsubscribe func()
	lastSyncAt  time.Time
}

// NewSyncEngine constructs the engine in the Disabled state. Nothing runs
// until Initialize is called with an enabled settings record.
func NewSyncEngine(reports store.ReportRepository, settings adapter.SettingsWriter, notifier Notifier, syncCfg config.Sync, log *logger.Logger) SyncEngine {
	e := &syncEngine{
		reports:        reports,
		settings:       settings,
		notifier:       notifier,
		reconciler:     NewReconciler(),
		newRemote:      adapter.New,
		pollInterval:   syncCfg.PollInterval,
		requestTimeout: syncCfg.RequestTimeout,
		logger:         log,
		state:          StateDisabled,
	}
	e.job = NewSyncJob(e)

	return e
}

// Initialize implements [SyncEngine]. Construction failure is non-fatal to
// the host: it reports the error, leaves the engine Disabled, and returns.
func (e *syncEngine) Initialize(ctx context.Context, settings models.SyncSettings) error {
	e.Suspend()

	e.mu.Lock()
	e.state = StateInitializing
	e.remote = nil
	e.mu.Unlock()

	if !settings.Enabled() {
		e.setState(StateDisabled)
		e.logger.Info().Msg("sync disabled: no backend configured")
		return nil
	}

	remote, err := e.newRemote(settings, e.requestTimeout, e.settings, e.logger)
	if err != nil {
		e.setState(StateDisabled)
		e.notifier.NotifyError("sync setup failed: " + err.Error())
		e.logger.Error().Err(err).Str("method", string(settings.Method)).Msg("construct sync backend")
		return fmt.Errorf("construct sync backend: %w", err)
	}

	e.mu.Lock()
	e.remote = remote
	e.mu.Unlock()

	if err = e.enable(ctx); err != nil {
		e.mu.Lock()
		e.state = StateDisabled
		e.remote = nil
		e.mu.Unlock()
		return err
	}

	e.logger.Info().Str("method", string(settings.Method)).Msg("sync enabled")
	return nil
}

// enable transitions into Enabled: push backends get one subscription and no
// poll timer, everything else gets exactly one poll timer. An immediate pull
// runs on entry; its failure is retried on the normal cadence and never
// tears sync down.
//
// The workers run on an engine-owned context cancelled only by Suspend.
// The caller's context covers just the synchronous part of enabling: it is
// typically a request context that dies as soon as the configuring request
// returns, and the poll timer and subscription must outlive it.
func (e *syncEngine) enable(ctx context.Context) error {
	e.mu.Lock()
	remote := e.remote
	e.mu.Unlock()

	runCtx, cancel := context.WithCancel(context.Background())

	if sub, ok := remote.(adapter.Subscriber); ok {
		stop, err := sub.Subscribe(runCtx, e.onRemoteChange)
		if err != nil {
			cancel()
			e.notifier.NotifyError("sync subscription failed: " + err.Error())
			e.logger.Error().Err(err).Msg("subscribe to sync backend")
			return fmt.Errorf("subscribe to sync backend: %w", err)
		}

		e.mu.Lock()
		e.cancelRun = cancel
		e.unsubscribe = stop
		e.state = StateEnabled
		e.mu.Unlock()
	} else {
		e.mu.Lock()
		e.cancelRun = cancel
		e.state = StateEnabled
		e.mu.Unlock()
		e.job.Start(runCtx, e.pollInterval)
	}

	_ = e.Pull(ctx)
	return nil
}

// Suspend implements [SyncEngine]. Idempotent: stopping an idle job and
// tearing down an absent subscription are no-ops.
func (e *syncEngine) Suspend() {
	e.job.Stop()

	e.mu.Lock()
	stop := e.unsubscribe
	cancel := e.cancelRun
	e.unsubscribe = nil
	e.cancelRun = nil
	if e.state == StateEnabled {
		e.state = StateSuspended
	}
	e.mu.Unlock()

	if stop != nil {
		stop()
	}
	if cancel != nil {
		cancel()
	}
}

// Resume implements [SyncEngine].
func (e *syncEngine) Resume(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateSuspended {
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	return e.enable(ctx)
}

// Push implements [SyncEngine]. The payload is always the complete local
// set, never a delta: the backends replace the remote collection wholesale.
func (e *syncEngine) Push(ctx context.Context) error {
	remote := e.activeRemote()
	if remote == nil {
		return nil
	}

	reports, err := e.reports.GetAllReports(ctx)
	if err != nil {
		return fmt.Errorf("load local reports: %w", err)
	}

	if err = remote.Upload(ctx, reports); err != nil {
		e.notifier.NotifyError("sync upload failed: " + err.Error())
		e.logger.Warn().Err(err).Msg("sync upload failed")
		return fmt.Errorf("sync upload: %w", err)
	}

	return nil
}

// Pull implements [SyncEngine].
func (e *syncEngine) Pull(ctx context.Context) error {
	remote := e.activeRemote()
	if remote == nil {
		return nil
	}

	remoteSet, err := remote.Download(ctx)
	if err != nil {
		e.notifier.NotifyError("sync download failed: " + err.Error())
		e.logger.Warn().Err(err).Msg("sync download failed")
		return fmt.Errorf("sync download: %w", err)
	}

	if err = e.merge(ctx, remoteSet); err != nil {
		e.notifier.NotifyError("sync merge failed: " + err.Error())
		e.logger.Warn().Err(err).Msg("sync merge failed")
		return err
	}

	e.mu.Lock()
	e.lastSyncAt = time.Now()
	e.mu.Unlock()

	return nil
}

// merge reconciles a remote snapshot into the local store and drives the UI
// collaborator: render each new active report, refresh overwritten views,
// and emit a single aggregate new-report notice per cycle. An unchanged
// merge performs no store write and no notification.
func (e *syncEngine) merge(ctx context.Context, remoteSet []models.Report) error {
	local, err := e.reports.GetAllReports(ctx)
	if err != nil {
		return fmt.Errorf("load local reports: %w", err)
	}

	res := e.reconciler.Reconcile(local, remoteSet)
	if len(res.Added) == 0 && len(res.Refreshed) == 0 {
		return nil
	}

	if err = e.reports.SaveReports(ctx, res.Records...); err != nil {
		return fmt.Errorf("persist merged reports: %w", err)
	}

	for _, added := range res.Added {
		if added.Status == models.StatusActive {
			e.notifier.RenderReport(added)
		}
	}
	for _, id := range res.Refreshed {
		e.notifier.RefreshReportView(id)
	}
	if n := res.NewCount(); n > 0 {
		e.notifier.NotifyNewReports(n)
		e.logger.Info().Int("count", n).Msg("merged new reports")
	}

	return nil
}

// onRemoteChange handles snapshots delivered by a push subscription.
func (e *syncEngine) onRemoteChange(remoteSet []models.Report) {
	ctx, cancel := context.WithTimeout(context.Background(), e.requestTimeout)
	defer cancel()

	if err := e.merge(ctx, remoteSet); err != nil {
		e.notifier.NotifyError("sync merge failed: " + err.Error())
		e.logger.Warn().Err(err).Msg("merge pushed snapshot")
		return
	}

	e.mu.Lock()
	e.lastSyncAt = time.Now()
	e.mu.Unlock()
}

// State implements [SyncEngine].
func (e *syncEngine) State() EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// LastSyncAt implements [SyncEngine].
func (e *syncEngine) LastSyncAt() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSyncAt
}

// activeRemote returns the adapter when the engine is Enabled, nil
// otherwise. Network calls run without holding the engine lock.
func (e *syncEngine) activeRemote() adapter.RemoteStore {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateEnabled {
		return nil
	}
	return e.remote
}

func (e *syncEngine) setState(s EngineState) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}
