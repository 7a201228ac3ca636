package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/kube-rca/dqsync/internal/model"
)

type MonitorQuerier interface {
	GetMonitors(ctx context.Context) ([]model.MonitorRecord, error)
}

type MonitorService struct {
	client MonitorQuerier
	logger *zap.Logger
}

func NewMonitorService(client MonitorQuerier, logger *zap.Logger) *MonitorService {
	return &MonitorService{client: client, logger: logger.Named("monitors")}
}

// FetchMonitors - 조회 실패는 run을 멈추지 않는다 (로그 후 빈 목록)
func (s *MonitorService) FetchMonitors(ctx context.Context) []model.MonitorRecord {
	records, err := s.client.GetMonitors(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch monitors, continuing without monitors", zap.Error(err))
		return []model.MonitorRecord{}
	}
	if records == nil {
		records = []model.MonitorRecord{}
	}
	s.logger.Info("Fetched monitors", zap.Int("count", len(records)))
	return records
}
