package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kube-rca/dqsync/internal/client"
	"github.com/kube-rca/dqsync/internal/config"
	"github.com/kube-rca/dqsync/internal/db"
	"github.com/kube-rca/dqsync/internal/eventbus"
	"github.com/kube-rca/dqsync/internal/handler"
	"github.com/kube-rca/dqsync/internal/model"
	"github.com/kube-rca/dqsync/internal/redis"
	"github.com/kube-rca/dqsync/internal/service"
)

// app - 명령 하나가 사용하는 연결과 서비스 묶음
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	sync   *service.SyncService
	tokens *service.TokenService

	closers []func()
}

// setup - 설정 로딩 후 SINKS / Postgres / Redis / Slack 설정에 따라 구성 요소 연결
func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.EnvFile != "" {
		log.Info("Loaded env file", zap.String("path", cfg.EnvFile))
	}

	a := &app{cfg: cfg, logger: log}
	a.onClose(func() { _ = log.Sync() })

	opts, err := buildSyncOptions(cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	var (
		sinks    []service.ChangeProposalSink
		store    service.RunStore
		cache    service.RunCache
		locker   service.RunLocker
		notifier service.Notifier
		pg       *db.Postgres
	)

	if db.IsConfigured(cfg.Postgres) {
		pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.onClose(pool.Close)
		pg = db.NewPostgres(pool)

		if err := pg.EnsureRunSchema(ctx); err != nil {
			a.Close()
			return nil, err
		}
		store = pg
	}

	for _, name := range cfg.Catalog.Sinks {
		switch name {
		case config.SinkCatalog:
			sinks = append(sinks, client.NewCatalogClient(cfg.Catalog))
		case config.SinkPostgres:
			if pg == nil {
				a.Close()
				return nil, fmt.Errorf("postgres sink requires DATABASE_URL or PGUSER/PGDATABASE")
			}
			if err := pg.EnsureProposalSchema(ctx); err != nil {
				a.Close()
				return nil, err
			}
			sinks = append(sinks, db.NewProposalSink(pg))
		case config.SinkNATS:
			pub, err := eventbus.NewPublisher(cfg.NATS, log)
			if err != nil {
				a.Close()
				return nil, err
			}
			a.onClose(pub.Close)
			sinks = append(sinks, pub)
		}
	}

	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.onClose(func() { _ = rdb.Close() })
		locker = rdb
		cache = rdb
	}

	if slack := client.NewSlackClient(cfg.Slack); slack.IsConfigured() {
		notifier = slack
	} else {
		log.Info("Slack not configured, run notifications disabled")
	}

	if cfg.Auth.JWTSecret != "" {
		tokens, err := service.NewTokenService(cfg.Auth)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.tokens = tokens
	}

	mc := client.NewMonteCarloClient(cfg.MonteCarlo, log)
	a.sync = service.NewSyncService(service.SyncDeps{
		Tables:     service.NewTableInventoryService(mc, cfg.MonteCarlo.BatchSize, log),
		Monitors:   service.NewMonitorService(mc, log),
		Correlator: service.NewCorrelator(cfg.MonteCarlo.AssetsBaseURL, cfg.MonteCarlo.MonitorsBaseURL, log),
		Assertions: service.NewAssertionBuilder(cfg.Catalog.Env),
		Incidents:  service.NewIncidentBuilder(cfg.Catalog.Env, cfg.Catalog.Actor),
		Sinks:      sinks,
		History:    service.NewRunHistory(store, cache, log),
		Locker:     locker,
		Notifier:   notifier,
	}, opts, log)

	log.Info("dqsync configured",
		zap.Strings("sinks", cfg.Catalog.Sinks),
		zap.Bool("postgres", pg != nil),
		zap.Bool("redis", locker != nil),
		zap.Bool("slack", notifier != nil),
		zap.Int("batch_size", cfg.MonteCarlo.BatchSize),
	)
	return a, nil
}

// buildSyncOptions - assertion/incident 고정 입력값 검증
func buildSyncOptions(cfg *config.Config, log *zap.Logger) (service.SyncOptions, error) {
	opts := service.SyncOptions{
		Env:     cfg.Catalog.Env,
		LockTTL: cfg.Sync.LockTTL,
	}

	platform, ok := model.ParsePlatform(cfg.Sync.AssertionPlatform)
	if !ok {
		return opts, fmt.Errorf("unsupported ASSERTION_PLATFORM: %s", cfg.Sync.AssertionPlatform)
	}
	dataset := model.DatasetKey{Platform: platform, Name: cfg.Sync.AssertionDataset}

	if cfg.Sync.EmitAssertion {
		op, ok := model.ParseAssertionOperator(cfg.Sync.AssertionOperator)
		if !ok {
			return opts, fmt.Errorf("unsupported ASSERTION_OPERATOR: %s", cfg.Sync.AssertionOperator)
		}
		opts.Assertion = &service.AssertionSpec{
			ID:        cfg.Sync.AssertionID,
			Dataset:   dataset,
			Operator:  op,
			Threshold: cfg.Sync.AssertionThreshold,
			RowCount:  cfg.Sync.AssertionRowCount,
		}
	}

	if cfg.Sync.EmitIncident {
		state, ok := model.ParseIncidentState(cfg.Sync.IncidentState)
		if !ok {
			log.Warn("Unrecognized INCIDENT_STATE, using OPEN", zap.String("state", cfg.Sync.IncidentState))
		}
		opts.Incident = &service.IncidentSpec{
			ID:          cfg.Sync.IncidentID,
			Datasets:    []model.DatasetKey{dataset},
			State:       state,
			Priority:    cfg.Sync.IncidentPriority,
			Title:       cfg.Sync.IncidentTitle,
			Description: cfg.Sync.IncidentDescription,
		}
	}
	return opts, nil
}

// runPeriodically - 시작 시 한 번, 이후 interval마다 실행. 실패는 로그만
func (a *app) runPeriodically(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := a.sync.Run(ctx); err != nil {
			a.logger.Error("Scheduled sync failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// verifier - JWT_SECRET이 없으면 nil (POST /api/v1/sync 항상 401)
func (a *app) verifier() handler.TokenVerifier {
	if a.tokens == nil {
		return nil
	}
	return a.tokens
}

func (a *app) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// Close - 등록 역순으로 정리
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
