// Monte Carlo -> 카탈로그 동기화 실행
//
// 처리 흐름:
//  1. 실행 잠금 (프로세스 내 mutex + Redis lease)
//  2. getTables 전체 페이지 -> PlatformMap (실패 시 run 실패)
//  3. getMonitors 와 assertion/incident 생성을 동시에 실행 (errgroup)
//  4. PlatformMap 완성 후 모니터 상관분석 -> 데이터셋 품질 레코드
//  5. 모든 aspect를 sink로 전달, run 기록, 실패/incident는 Slack 알림

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kube-rca/dqsync/internal/model"
	"github.com/kube-rca/dqsync/internal/registry"
)

var ErrRunInProgress = errors.New("sync run already in progress")

// RunLocker - replica 간 실행 직렬화
type RunLocker interface {
	AcquireRunLock(ctx context.Context, owner string, ttl time.Duration) (bool, error)
	ReleaseRunLock(ctx context.Context, owner string) error
}

// Notifier - run 결과 알림 (Slack)
type Notifier interface {
	SendRunReport(ctx context.Context, run model.SyncRun) error
	SendIncident(ctx context.Context, runID, incidentURN string, info model.IncidentInfo) error
	ForgetRun(runID string)
}

// SyncOptions - run마다 고정인 입력. nil이면 해당 aspect를 만들지 않는다.
type SyncOptions struct {
	Env       string
	LockTTL   time.Duration
	Assertion *AssertionSpec
	Incident  *IncidentSpec
}

type SyncService struct {
	tables     *TableInventoryService
	monitors   *MonitorService
	correlator *Correlator
	assertions *AssertionBuilder
	incidents  *IncidentBuilder
	sink       *MultiSink
	history    *RunHistory
	locker     RunLocker
	notifier   Notifier
	opts       SyncOptions
	logger     *zap.Logger

	now   func() time.Time
	newID func() string

	running sync.Mutex

	mu              sync.RWMutex
	lastRun         *model.SyncRun
	lastDatasets    []model.DatasetQuality
	lastDatasetsRun string
}

type SyncDeps struct {
	Tables     *TableInventoryService
	Monitors   *MonitorService
	Correlator *Correlator
	Assertions *AssertionBuilder
	Incidents  *IncidentBuilder
	Sinks      []ChangeProposalSink
	History    *RunHistory
	Locker     RunLocker // optional
	Notifier   Notifier  // optional
}

func NewSyncService(deps SyncDeps, opts SyncOptions, logger *zap.Logger) *SyncService {
	if opts.Env == "" {
		opts.Env = model.DefaultEnv
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 15 * time.Minute
	}
	history := deps.History
	if history == nil {
		history = NewRunHistory(nil, nil, logger)
	}
	return &SyncService{
		tables:     deps.Tables,
		monitors:   deps.Monitors,
		correlator: deps.Correlator,
		assertions: deps.Assertions,
		incidents:  deps.Incidents,
		sink:       NewMultiSink(logger, deps.Sinks...),
		history:    history,
		locker:     deps.Locker,
		notifier:   deps.Notifier,
		opts:       opts,
		logger:     logger.Named("sync"),
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
	}
}

// Run - 동기화 한 번 실행
//
// 테이블 인벤토리 실패만 에러로 반환한다. 그 외 실패는 로그와 run 카운터에 남는다.
func (s *SyncService) Run(ctx context.Context) (*model.SyncRun, error) {
	if !s.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.running.Unlock()

	run := &model.SyncRun{
		RunID:     s.newID(),
		Status:    model.SyncRunRunning,
		StartedAt: s.now().UTC(),
	}
	log := s.logger.With(zap.String("run_id", run.RunID))

	if s.locker != nil {
		ok, err := s.locker.AcquireRunLock(ctx, run.RunID, s.opts.LockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire run lock: %w", err)
		}
		if !ok {
			return nil, ErrRunInProgress
		}
		defer func() {
			// 호출 ctx가 끝났어도 lease는 풀어야 한다
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := s.locker.ReleaseRunLock(releaseCtx, run.RunID); err != nil {
				log.Warn("Failed to release run lock", zap.Error(err))
			}
		}()
	}

	log.Info("Sync run started")
	s.history.Record(ctx, *run)

	datasets, err := s.execute(ctx, run, log)
	run.Finish(s.now().UTC(), err)

	s.history.Record(ctx, *run)
	s.remember(run, datasets)

	if s.notifier != nil {
		if run.Status != model.SyncRunSucceeded {
			if nerr := s.notifier.SendRunReport(ctx, *run); nerr != nil {
				log.Warn("Failed to send run report", zap.Error(nerr))
			}
		}
		s.notifier.ForgetRun(run.RunID)
	}

	if err != nil {
		log.Error("Sync run failed", zap.Error(err))
		return run, err
	}
	log.Info("Sync run finished",
		zap.String("status", string(run.Status)),
		zap.Int("datasets", run.Datasets),
		zap.Int("proposals_emitted", run.ProposalsEmitted),
		zap.Int("proposals_failed", run.ProposalsFailed),
	)
	return run, nil
}

func (s *SyncService) execute(ctx context.Context, run *model.SyncRun, log *zap.Logger) ([]model.DatasetQuality, error) {
	platforms, err := s.tables.FetchPlatformMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build platform map: %w", err)
	}
	run.PlatformMapSize = platforms.Len()

	var (
		records          []model.MonitorRecord
		assertionProps   []model.ChangeProposal
		incidentProps    []model.ChangeProposal
		incidentURN      string
		incidentInfo     model.IncidentInfo
		incidentRequired bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records = s.monitors.FetchMonitors(gctx)
		return nil
	})
	g.Go(func() error {
		if spec := s.opts.Assertion; spec != nil && s.assertions != nil {
			a := *spec
			a.RunID = run.RunID
			a.Timestamp = run.StartedAt
			urn, aspects := s.assertions.Build(a)
			assertionProps = model.NewChangeProposals(model.EntityTypeAssertion, urn, aspects...)
		}
		if spec := s.opts.Incident; spec != nil && s.incidents != nil {
			in := *spec
			in.RunID = run.RunID
			in.RunStartedAt = run.StartedAt
			in.CreatedAt = run.StartedAt
			incidentURN, incidentInfo = s.incidents.Build(in)
			incidentProps = model.NewChangeProposals(model.EntityTypeIncident, incidentURN,
				model.IncidentKey{ID: in.ID}, incidentInfo)
			incidentRequired = true
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	run.MonitorsFetched = len(records)

	reg := registry.New()
	stats := s.correlator.Correlate(records, platforms, reg)
	run.MonitorsAttached = stats.Attached
	run.EntitiesUnresolved = stats.Unresolved
	run.MonitorsTruncated = stats.Truncated

	datasets := reg.All()
	run.Datasets = len(datasets)

	var total EmitResult
	for _, q := range datasets {
		props := model.NewChangeProposals(model.EntityTypeDataset, q.Key.URN(s.opts.Env), q.Aspect())
		total.add(EmitAll(ctx, log, s.sink, props))
	}
	total.add(EmitAll(ctx, log, s.sink, assertionProps))

	if incidentRequired {
		res := EmitAll(ctx, log, s.sink, incidentProps)
		total.add(res)
		if res.Failed == 0 && s.notifier != nil {
			if err := s.notifier.SendIncident(ctx, run.RunID, incidentURN, incidentInfo); err != nil {
				log.Warn("Failed to send incident notification", zap.Error(err))
			}
		}
	}

	run.ProposalsEmitted = total.Emitted
	run.ProposalsFailed = total.Failed
	return datasets, nil
}

func (s *SyncService) remember(run *model.SyncRun, datasets []model.DatasetQuality) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := *run
	s.lastRun = &r
	// 실패한 run은 이전 성공 스냅샷을 유지
	if run.Status != model.SyncRunFailed {
		s.lastDatasets = datasets
		s.lastDatasetsRun = run.RunID
	}
}

// LastDatasets - 마지막으로 완료된 run의 데이터셋 품질 스냅샷
func (s *SyncService) LastDatasets() (string, []model.DatasetQuality) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.DatasetQuality, len(s.lastDatasets))
	copy(out, s.lastDatasets)
	return s.lastDatasetsRun, out
}

// LastRun - 이 프로세스에서 마지막으로 끝난 run
func (s *SyncService) LastRun() (*model.SyncRun, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastRun == nil {
		return nil, false
	}
	r := *s.lastRun
	return &r, true
}

func (s *SyncService) History() *RunHistory {
	return s.history
}
