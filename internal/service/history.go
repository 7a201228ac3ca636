package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kube-rca/dqsync/internal/model"
)

var ErrHistoryUnavailable = errors.New("run history store not configured")

// RunStore - run 이력 영구 저장 (postgres)
type RunStore interface {
	SaveRun(ctx context.Context, run model.SyncRun) error
	ListRuns(ctx context.Context, limit int) ([]model.SyncRun, error)
	LatestRun(ctx context.Context) (*model.SyncRun, error)
}

// RunCache - 최근 run 캐시 (redis)
type RunCache interface {
	SaveLatestRun(ctx context.Context, run model.SyncRun) error
	GetLatestRun(ctx context.Context) (*model.SyncRun, error)
}

// RunHistory - store/cache 둘 다 선택 사항. 기록 실패는 run을 실패시키지 않는다.
type RunHistory struct {
	store  RunStore
	cache  RunCache
	logger *zap.Logger
}

func NewRunHistory(store RunStore, cache RunCache, logger *zap.Logger) *RunHistory {
	return &RunHistory{store: store, cache: cache, logger: logger.Named("history")}
}

func (h *RunHistory) Record(ctx context.Context, run model.SyncRun) {
	if h.store != nil {
		if err := h.store.SaveRun(ctx, run); err != nil {
			h.logger.Warn("Failed to save sync run", zap.String("run_id", run.RunID), zap.Error(err))
		}
	}
	if h.cache != nil {
		if err := h.cache.SaveLatestRun(ctx, run); err != nil {
			h.logger.Warn("Failed to cache latest sync run", zap.String("run_id", run.RunID), zap.Error(err))
		}
	}
}

func (h *RunHistory) ListRuns(ctx context.Context, limit int) ([]model.SyncRun, error) {
	if h.store == nil {
		return nil, ErrHistoryUnavailable
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	runs, err := h.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync runs: %w", err)
	}
	return runs, nil
}

// LatestRun - cache, store 순서로 조회. 기록이 없으면 (nil, nil)
func (h *RunHistory) LatestRun(ctx context.Context) (*model.SyncRun, error) {
	if h.cache != nil {
		run, err := h.cache.GetLatestRun(ctx)
		if err != nil {
			h.logger.Warn("Failed to read cached sync run", zap.Error(err))
		} else if run != nil {
			return run, nil
		}
	}
	if h.store == nil {
		return nil, nil
	}
	run, err := h.store.LatestRun(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest sync run: %w", err)
	}
	return run, nil
}
