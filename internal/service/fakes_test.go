package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kube-rca/dqsync/internal/model"
)

func newObservedLogger(level zap.AtomicLevel) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

func warnLogger() (*zap.Logger, *observer.ObservedLogs) {
	return newObservedLogger(zap.NewAtomicLevelAt(zap.WarnLevel))
}

func zapErrorLevel() zap.AtomicLevel { return zap.NewAtomicLevelAt(zap.ErrorLevel) }

func strPtr(s string) *string { return &s }

// fakeTableQuerier pages over records using the record offset as cursor.
type fakeTableQuerier struct {
	records   []model.TableRecord
	failOn    int // 1-based call number that fails, 0 = never
	calls     int
	afters    []string
	overrides map[int]model.PageInfo // call number -> forced page info
}

func (f *fakeTableQuerier) GetTables(ctx context.Context, first int, after string) (*model.TablePage, error) {
	f.calls++
	f.afters = append(f.afters, after)
	if f.failOn == f.calls {
		return nil, errors.New("monte carlo returned status 500")
	}

	start := 0
	if after != "" {
		n, err := strconv.Atoi(after)
		if err != nil {
			return nil, err
		}
		start = n
	}
	end := start + first
	if end > len(f.records) {
		end = len(f.records)
	}

	page := &model.TablePage{}
	for _, rec := range f.records[start:end] {
		page.Edges = append(page.Edges, model.TableEdge{Node: rec})
	}
	page.PageInfo = model.PageInfo{EndCursor: strconv.Itoa(end), HasNextPage: end < len(f.records)}
	if pi, ok := f.overrides[f.calls]; ok {
		page.PageInfo = pi
	}
	return page, nil
}

func tableRecord(mcon, connectionType string) model.TableRecord {
	return model.TableRecord{Mcon: mcon, Warehouse: model.TableWarehouse{ConnectionType: connectionType}}
}

type fakeMonitorQuerier struct {
	records []model.MonitorRecord
	err     error
}

func (f *fakeMonitorQuerier) GetMonitors(ctx context.Context) ([]model.MonitorRecord, error) {
	return f.records, f.err
}

type fakeSink struct {
	mu       sync.Mutex
	name     string
	emitted  []model.ChangeProposal
	failWhen func(p model.ChangeProposal) bool
}

func (f *fakeSink) Name() string { return f.name }

func (f *fakeSink) Emit(ctx context.Context, p model.ChangeProposal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWhen != nil && f.failWhen(p) {
		return errors.New("sink unavailable")
	}
	f.emitted = append(f.emitted, p)
	return nil
}

func (f *fakeSink) aspects() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.emitted))
	for _, p := range f.emitted {
		out = append(out, p.AspectName)
	}
	return out
}

type fakeLocker struct {
	acquired bool
	err      error
	released []string
}

func (f *fakeLocker) AcquireRunLock(ctx context.Context, owner string, ttl time.Duration) (bool, error) {
	return f.acquired, f.err
}

func (f *fakeLocker) ReleaseRunLock(ctx context.Context, owner string) error {
	f.released = append(f.released, owner)
	return nil
}

type fakeNotifier struct {
	reports   []model.SyncRun
	incidents []string
	forgotten []string
}

func (f *fakeNotifier) SendRunReport(ctx context.Context, run model.SyncRun) error {
	f.reports = append(f.reports, run)
	return nil
}

func (f *fakeNotifier) SendIncident(ctx context.Context, runID, incidentURN string, info model.IncidentInfo) error {
	f.incidents = append(f.incidents, incidentURN)
	return nil
}

func (f *fakeNotifier) ForgetRun(runID string) {
	f.forgotten = append(f.forgotten, runID)
}

type fakeRunStore struct {
	saved []model.SyncRun
	err   error
}

func (f *fakeRunStore) SaveRun(ctx context.Context, run model.SyncRun) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, run)
	return nil
}

func (f *fakeRunStore) ListRuns(ctx context.Context, limit int) ([]model.SyncRun, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.saved) < limit {
		limit = len(f.saved)
	}
	return f.saved[:limit], nil
}

func (f *fakeRunStore) LatestRun(ctx context.Context) (*model.SyncRun, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.saved) == 0 {
		return nil, nil
	}
	r := f.saved[len(f.saved)-1]
	return &r, nil
}

type fakeRunCache struct {
	latest *model.SyncRun
	err    error
}

func (f *fakeRunCache) SaveLatestRun(ctx context.Context, run model.SyncRun) error {
	f.latest = &run
	return nil
}

func (f *fakeRunCache) GetLatestRun(ctx context.Context) (*model.SyncRun, error) {
	return f.latest, f.err
}
