// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The Pooler Authors

package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pooler-app/pooler/internal/adapter"
	"github.com/pooler-app/pooler/internal/config"
	"github.com/pooler-app/pooler/internal/logger"
	"github.com/pooler-app/pooler/models"
)

// In-package stubs instead of generated mocks: internal/mock imports this
// package, so using it from here would cycle.

// memReports is an in-memory report repository that counts batch saves.
type memReports struct {
	mu      sync.Mutex
	records map[string]models.Report
	order   []string
	saves   int
}

func newMemReports(seed ...models.Report) *memReports {
	m := &memReports{records: map[string]models.Report{}}
	for _, r := range seed {
		m.records[r.ID] = r
		m.order = append(m.order, r.ID)
	}
	return m
}

func (m *memReports) GetAllReports(context.Context) ([]models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Report, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.records[id])
	}
	return out, nil
}

func (m *memReports) GetReport(_ context.Context, id string) (models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.records[id]
	if !ok {
		return models.Report{}, fmt.Errorf("report %s not found", id)
	}
	return r, nil
}

func (m *memReports) SaveReports(_ context.Context, reports ...models.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saves++
	for _, r := range reports {
		if _, ok := m.records[r.ID]; !ok {
			m.order = append(m.order, r.ID)
		}
		m.records[r.ID] = r
	}
	return nil
}

func (m *memReports) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *memReports) get(id string) (models.Report, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	return r, ok
}

// memSettings is an in-memory settings repository with a fixed device id.
type memSettings struct {
	mu       sync.Mutex
	settings models.SyncSettings
}

func (m *memSettings) GetSyncSettings(context.Context) (models.SyncSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings, nil
}

func (m *memSettings) SaveSyncSettings(_ context.Context, settings models.SyncSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = settings
	return nil
}

func (m *memSettings) DeviceID(context.Context) (string, error) {
	return "device-1", nil
}

// recordingNotifier captures every UI notification.
type recordingNotifier struct {
	mu        sync.Mutex
	errors    []string
	newCounts []int
	rendered  []string
	refreshed []string
}

func (n *recordingNotifier) NotifyNewReports(count int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.newCounts = append(n.newCounts, count)
}

func (n *recordingNotifier) NotifyError(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

func (n *recordingNotifier) RenderReport(report models.Report) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rendered = append(n.rendered, report.ID)
}

func (n *recordingNotifier) RefreshReportView(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.refreshed = append(n.refreshed, id)
}

func (n *recordingNotifier) snapshot() (errors []string, newCounts []int, rendered, refreshed []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string{}, n.errors...),
		append([]int{}, n.newCounts...),
		append([]string{}, n.rendered...),
		append([]string{}, n.refreshed...)
}

// fakeRemote is a scriptable adapter.RemoteStore.
type fakeRemote struct {
	mu          sync.Mutex
	uploads     [][]models.Report
	downloads   int
	downloadSet []models.Report
	uploadErr   error
	downloadErr error
}

func (f *fakeRemote) Upload(_ context.Context, reports []models.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads = append(f.uploads, append([]models.Report{}, reports...))
	return nil
}

func (f *fakeRemote) Download(context.Context) ([]models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads++
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	return append([]models.Report{}, f.downloadSet...), nil
}

func (f *fakeRemote) setDownload(reports []models.Report, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloadSet = reports
	f.downloadErr = err
}

func (f *fakeRemote) downloadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.downloads
}

func (f *fakeRemote) uploadedSets() [][]models.Report {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]models.Report{}, f.uploads...)
}

// fakeSubscriberRemote additionally implements adapter.Subscriber.
type fakeSubscriberRemote struct {
	fakeRemote

	mu         sync.Mutex
	subscribes int
	stops      int
	ctx        context.Context
	onChange   func([]models.Report)
}

func (f *fakeSubscriberRemote) Subscribe(ctx context.Context, onChange func([]models.Report)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribes++
	f.ctx = ctx
	f.onChange = onChange
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.stops++
	}, nil
}

func (f *fakeSubscriberRemote) subscribeCtx() context.Context {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ctx
}

func (f *fakeSubscriberRemote) pushSnapshot(reports []models.Report) {
	f.mu.Lock()
	onChange := f.onChange
	f.mu.Unlock()
	onChange(reports)
}

func (f *fakeSubscriberRemote) counts() (subscribes, stops int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribes, f.stops
}

func newTestEngine(t *testing.T, repo *memReports, remote adapter.RemoteStore) (*syncEngine, *recordingNotifier) {
	t.Helper()

	notifier := &recordingNotifier{}
	cfg := config.Sync{PollInterval: time.Hour, RequestTimeout: time.Second}
	e := NewSyncEngine(repo, &memSettings{}, notifier, cfg, logger.Nop()).(*syncEngine)
	e.newRemote = func(models.SyncSettings, time.Duration, adapter.SettingsWriter, *logger.Logger) (adapter.RemoteStore, error) {
		return remote, nil
	}
	t.Cleanup(e.Suspend)

	return e, notifier
}

func gistSettings() models.SyncSettings {
	return models.SyncSettings{Method: models.SyncGist, GistToken: "tok"}
}

func TestEngine_StartsDisabled(t *testing.T) {
	e, _ := newTestEngine(t, newMemReports(), &fakeRemote{})
	assert.Equal(t, StateDisabled, e.State())
	assert.True(t, e.LastSyncAt().IsZero())
}

func TestEngine_Initialize_DisabledSettings(t *testing.T) {
	e, notifier := newTestEngine(t, newMemReports(), &fakeRemote{})

	require.NoError(t, e.Initialize(context.Background(), models.SyncSettings{}))

	assert.Equal(t, StateDisabled, e.State())
	errs, _, _, _ := notifier.snapshot()
	assert.Empty(t, errs)
}

func TestEngine_Initialize_ConfigurationErrorStaysDisabled(t *testing.T) {
	e, notifier := newTestEngine(t, newMemReports(), &fakeRemote{})
	e.newRemote = func(models.SyncSettings, time.Duration, adapter.SettingsWriter, *logger.Logger) (adapter.RemoteStore, error) {
		return nil, fmt.Errorf("%w: gist token is required", adapter.ErrConfiguration)
	}

	err := e.Initialize(context.Background(), gistSettings())

	require.Error(t, err)
	assert.ErrorIs(t, err, adapter.ErrConfiguration)
	assert.Equal(t, StateDisabled, e.State())

	errs, _, _, _ := notifier.snapshot()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "sync setup failed")
}

func TestEngine_Initialize_EnablesAndPullsImmediately(t *testing.T) {
	remote := &fakeRemote{}
	remote.setDownload([]models.Report{report("r1", time.Now())}, nil)

	repo := newMemReports()
	e, notifier := newTestEngine(t, repo, remote)

	require.NoError(t, e.Initialize(context.Background(), gistSettings()))

	assert.Equal(t, StateEnabled, e.State())
	assert.False(t, e.LastSyncAt().IsZero())

	_, ok := repo.get("r1")
	assert.True(t, ok)

	_, newCounts, rendered, _ := notifier.snapshot()
	assert.Equal(t, []int{1}, newCounts)
	assert.Equal(t, []string{"r1"}, rendered)
}

func TestEngine_Push_UploadsFullSnapshot(t *testing.T) {
	base := time.Now()
	repo := newMemReports(report("a", base), report("b", base))
	remote := &fakeRemote{}
	e, _ := newTestEngine(t, repo, remote)

	require.NoError(t, e.Initialize(context.Background(), gistSettings()))
	require.NoError(t, e.Push(context.Background()))

	sets := remote.uploadedSets()
	require.Len(t, sets, 1)
	// always the complete local set, never a delta
	assert.ElementsMatch(t, []string{"a", "b"}, ids(sets[0]))
}

func TestEngine_Push_NoOpWhenDisabled(t *testing.T) {
	remote := &fakeRemote{}
	e, _ := newTestEngine(t, newMemReports(report("a", time.Now())), remote)

	require.NoError(t, e.Push(context.Background()))
	assert.Empty(t, remote.uploadedSets())
}

func TestEngine_Pull_TransportFailureKeepsEnabled(t *testing.T) {
	remote := &fakeRemote{}
	e, notifier := newTestEngine(t, newMemReports(), remote)

	require.NoError(t, e.Initialize(context.Background(), gistSettings()))

	remote.setDownload(nil, fmt.Errorf("%w: connection refused", adapter.ErrTransport))
	err := e.Pull(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, adapter.ErrTransport)
	// transient failure: surfaced, state unchanged, retried next cycle
	assert.Equal(t, StateEnabled, e.State())

	errs, _, _, _ := notifier.snapshot()
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[len(errs)-1], "sync download failed")

	remote.setDownload(nil, nil)
	require.NoError(t, e.Pull(context.Background()))
	assert.Equal(t, StateEnabled, e.State())
}

func TestEngine_Pull_OverwriteRefreshesWithoutNewNotice(t *testing.T) {
	base := time.Now()
	local := report("r1", base)
	local.Notes = "stale"
	repo := newMemReports(local)

	remote := &fakeRemote{}
	e, notifier := newTestEngine(t, repo, remote)
	require.NoError(t, e.Initialize(context.Background(), gistSettings()))

	updated := report("r1", base.Add(time.Minute))
	updated.Notes = "fresh"
	remote.setDownload([]models.Report{updated}, nil)

	require.NoError(t, e.Pull(context.Background()))

	got, ok := repo.get("r1")
	require.True(t, ok)
	assert.Equal(t, "fresh", got.Notes)

	_, newCounts, _, refreshed := notifier.snapshot()
	assert.Empty(t, newCounts)
	assert.Equal(t, []string{"r1"}, refreshed)
}

func TestEngine_Pull_UnchangedMergeWritesNothing(t *testing.T) {
	base := time.Now()
	repo := newMemReports(report("r1", base))
	remote := &fakeRemote{}
	remote.setDownload([]models.Report{report("r1", base)}, nil)

	e, notifier := newTestEngine(t, repo, remote)
	require.NoError(t, e.Initialize(context.Background(), gistSettings()))

	savesBefore := repo.saveCount()
	require.NoError(t, e.Pull(context.Background()))

	assert.Equal(t, savesBefore, repo.saveCount())
	_, newCounts, _, refreshed := notifier.snapshot()
	assert.Empty(t, newCounts)
	assert.Empty(t, refreshed)
}

func TestEngine_SuspendAndResume(t *testing.T) {
	remote := &fakeRemote{}
	e, _ := newTestEngine(t, newMemReports(), remote)
	require.NoError(t, e.Initialize(context.Background(), gistSettings()))

	e.Suspend()
	assert.Equal(t, StateSuspended, e.State())

	// idempotent
	e.Suspend()
	assert.Equal(t, StateSuspended, e.State())

	// suspended engine performs no network calls
	before := remote.downloadCount()
	require.NoError(t, e.Pull(context.Background()))
	require.NoError(t, e.Push(context.Background()))
	assert.Equal(t, before, remote.downloadCount())
	assert.Empty(t, remote.uploadedSets())

	require.NoError(t, e.Resume(context.Background()))
	assert.Equal(t, StateEnabled, e.State())

	// resuming an enabled engine is a no-op
	require.NoError(t, e.Resume(context.Background()))
	assert.Equal(t, StateEnabled, e.State())
}

func TestEngine_Resume_NoOpWhenDisabled(t *testing.T) {
	e, _ := newTestEngine(t, newMemReports(), &fakeRemote{})

	require.NoError(t, e.Resume(context.Background()))
	assert.Equal(t, StateDisabled, e.State())
}

func TestEngine_SubscriberBackend(t *testing.T) {
	remote := &fakeSubscriberRemote{}
	repo := newMemReports()
	e, notifier := newTestEngine(t, repo, remote)

	require.NoError(t, e.Initialize(context.Background(), models.SyncSettings{Method: models.SyncRealtime, RealtimeURL: "wss://rt.example.com"}))
	assert.Equal(t, StateEnabled, e.State())

	subscribes, stops := remote.counts()
	assert.Equal(t, 1, subscribes)
	assert.Zero(t, stops)

	// a pushed snapshot merges like a pull
	remote.pushSnapshot([]models.Report{report("pushed", time.Now())})
	_, ok := repo.get("pushed")
	assert.True(t, ok)

	_, newCounts, _, _ := notifier.snapshot()
	assert.Contains(t, newCounts, 1)

	e.Suspend()
	_, stops = remote.counts()
	assert.Equal(t, 1, stops)

	require.NoError(t, e.Resume(context.Background()))
	subscribes, _ = remote.counts()
	assert.Equal(t, 2, subscribes)
}

// The configuring request's context dies as soon as the handler returns;
// the poll timer must keep ticking on the engine's own lifecycle.
func TestEngine_PollSurvivesCallerContextCancel(t *testing.T) {
	remote := &fakeRemote{}
	repo := newMemReports()
	e, _ := newTestEngine(t, repo, remote)
	e.pollInterval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, e.Initialize(ctx, gistSettings()))
	cancel()

	before := remote.downloadCount()
	assert.Eventually(t, func() bool {
		return remote.downloadCount() > before
	}, 2*time.Second, 5*time.Millisecond, "poll timer died with the caller's context")
	assert.Equal(t, StateEnabled, e.State())
}

func TestEngine_SubscriptionSurvivesCallerContextCancel(t *testing.T) {
	remote := &fakeSubscriberRemote{}
	repo := newMemReports()
	e, _ := newTestEngine(t, repo, remote)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, e.Initialize(ctx, models.SyncSettings{Method: models.SyncRealtime, RealtimeURL: "wss://rt.example.com"}))
	cancel()

	subCtx := remote.subscribeCtx()
	require.NotNil(t, subCtx)
	assert.NoError(t, subCtx.Err(), "subscription context died with the caller's context")

	// the listener still delivers after the configuring request is gone
	remote.pushSnapshot([]models.Report{report("late", time.Now())})
	_, ok := repo.get("late")
	assert.True(t, ok)

	// Suspend is what tears the lifecycle down
	e.Suspend()
	assert.Error(t, subCtx.Err())
}

// A locally created record the remote has not seen yet must survive
// overlapping push and pull cycles, both in the local set and in the next
// upload payload.
func TestEngine_ConcurrentPushPullKeepsLocalRecord(t *testing.T) {
	base := time.Now()
	repo := newMemReports(report("synced", base), report("fresh", base.Add(time.Second)))
	remote := &fakeRemote{}
	remote.setDownload([]models.Report{report("synced", base)}, nil)

	e, _ := newTestEngine(t, repo, remote)
	require.NoError(t, e.Initialize(context.Background(), gistSettings()))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = e.Push(context.Background())
		}()
		go func() {
			defer wg.Done()
			_ = e.Pull(context.Background())
		}()
	}
	wg.Wait()

	_, ok := repo.get("fresh")
	require.True(t, ok, "local-only record lost during interleaved push/pull")

	require.NoError(t, e.Push(context.Background()))
	sets := remote.uploadedSets()
	require.NotEmpty(t, sets)
	assert.Contains(t, ids(sets[len(sets)-1]), "fresh")
}

func TestEngine_Initialize_ReplacesActiveAdapter(t *testing.T) {
	first := &fakeRemote{}
	second := &fakeRemote{}

	repo := newMemReports(report("a", time.Now()))
	e, _ := newTestEngine(t, repo, first)

	require.NoError(t, e.Initialize(context.Background(), gistSettings()))

	e.newRemote = func(models.SyncSettings, time.Duration, adapter.SettingsWriter, *logger.Logger) (adapter.RemoteStore, error) {
		return second, nil
	}
	require.NoError(t, e.Initialize(context.Background(), gistSettings()))

	require.NoError(t, e.Push(context.Background()))
	assert.Empty(t, first.uploadedSets())
	assert.Len(t, second.uploadedSets(), 1)
}
