package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kube-rca/dqsync/internal/model"
	"github.com/kube-rca/dqsync/internal/service"
)

type syncRunner interface {
	Run(ctx context.Context) (*model.SyncRun, error)
	LastRun() (*model.SyncRun, bool)
	LastDatasets() (string, []model.DatasetQuality)
}

type runHistory interface {
	ListRuns(ctx context.Context, limit int) ([]model.SyncRun, error)
	LatestRun(ctx context.Context) (*model.SyncRun, error)
}

type SyncHandler struct {
	runner  syncRunner
	history runHistory
	logger  *zap.Logger
}

func NewSyncHandler(runner syncRunner, history runHistory, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{runner: runner, history: history, logger: logger.Named("handler")}
}

// TriggerSync godoc
// @Summary Run one Monte Carlo sync
// @Tags sync
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.SyncRunEnvelope
// @Failure 401 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Failure 500 {object} model.SyncRunEnvelope
// @Router /api/v1/sync [post]
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	// 클라이언트 연결이 끊겨도 전송 중인 run은 끝까지 진행
	ctx := context.WithoutCancel(c.Request.Context())

	if user := GetAuthUser(c); user != nil {
		h.logger.Info("Sync triggered via API", zap.String("subject", user.Subject))
	}

	run, err := h.runner.Run(ctx)
	if errors.Is(err, service.ErrRunInProgress) {
		c.JSON(http.StatusConflict, gin.H{"status": "error", "error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error(), "data": run})
		return
	}

	c.JSON(http.StatusOK, model.SyncRunEnvelope{Status: "success", Data: run})
}

// ListRuns godoc
// @Summary List recent sync runs
// @Tags sync
// @Produce json
// @Param limit query int false "Max runs (default 20, max 100)"
// @Success 200 {object} model.SyncRunListResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/sync/runs [get]
func (h *SyncHandler) ListRuns(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "limit must be a positive integer"})
			return
		}
		limit = v
	}

	runs, err := h.history.ListRuns(c.Request.Context(), limit)
	if errors.Is(err, service.ErrHistoryUnavailable) {
		// 이력 저장소가 없으면 이 프로세스의 마지막 run만
		runs = []model.SyncRun{}
		if last, ok := h.runner.LastRun(); ok {
			runs = append(runs, *last)
		}
		err = nil
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.SyncRunListResponse{Status: "success", Data: runs})
}

// GetLatestRun godoc
// @Summary Get the latest sync run
// @Tags sync
// @Produce json
// @Success 200 {object} model.SyncRunEnvelope
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/sync/runs/latest [get]
func (h *SyncHandler) GetLatestRun(c *gin.Context) {
	run, err := h.history.LatestRun(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	if run == nil {
		if last, ok := h.runner.LastRun(); ok {
			run = last
		}
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "no sync run recorded"})
		return
	}

	c.JSON(http.StatusOK, model.SyncRunEnvelope{Status: "success", Data: run})
}

// ListDatasets godoc
// @Summary List dataset quality records from the last completed run
// @Tags datasets
// @Produce json
// @Param platform query string false "BIGQUERY, REDSHIFT or SNOWFLAKE"
// @Success 200 {object} model.DatasetQualityListResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /api/v1/datasets [get]
func (h *SyncHandler) ListDatasets(c *gin.Context) {
	runID, datasets := h.runner.LastDatasets()

	if raw := strings.TrimSpace(c.Query("platform")); raw != "" {
		platform, ok := model.ParsePlatform(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "unsupported platform: " + raw})
			return
		}
		filtered := make([]model.DatasetQuality, 0, len(datasets))
		for _, q := range datasets {
			if q.Key.Platform == platform {
				filtered = append(filtered, q)
			}
		}
		datasets = filtered
	}

	c.JSON(http.StatusOK, model.DatasetQualityListResponse{Status: "success", RunID: runID, Data: datasets})
}
