package service

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kube-rca/dqsync/internal/model"
	"github.com/kube-rca/dqsync/internal/registry"
)

// CorrelationStats - Correlate 한 번의 결과 집계
type CorrelationStats struct {
	Monitors   int `json:"monitors"`
	Attached   int `json:"attached"`   // (monitor, dataset) 연결 수
	Unresolved int `json:"unresolved"` // PlatformMap에 없는 mcon
	Truncated  int `json:"truncated"`  // entities가 entityMcons보다 길었던 monitor 수
}

// Correlator - 모니터를 PlatformMap으로 해석해 데이터셋 품질 레코드에 붙인다
type Correlator struct {
	assetsBaseURL   string
	monitorsBaseURL string
	logger          *zap.Logger
}

func NewCorrelator(assetsBaseURL, monitorsBaseURL string, logger *zap.Logger) *Correlator {
	return &Correlator{
		assetsBaseURL:   strings.TrimRight(assetsBaseURL, "/"),
		monitorsBaseURL: strings.TrimRight(monitorsBaseURL, "/"),
		logger:          logger.Named("correlator"),
	}
}

// Correlate - platforms가 완성된 뒤에만 호출해야 한다
func (c *Correlator) Correlate(records []model.MonitorRecord, platforms model.PlatformMap, reg *registry.Registry) CorrelationStats {
	stats := CorrelationStats{Monitors: len(records)}

	for _, rec := range records {
		monitor := c.BuildDataMonitor(rec)

		for i, entity := range rec.Entities {
			if i >= len(rec.EntityMcons) {
				stats.Truncated++
				c.logger.Warn("Monitor has more entities than entity mcons, skipping the rest",
					zap.String("monitor_uuid", rec.UUID),
					zap.Int("index", i),
					zap.Any("record", rec),
				)
				break
			}
			mcon := rec.EntityMcons[i]

			platform, ok := platforms.Lookup(mcon)
			if !ok {
				stats.Unresolved++
				c.logger.Warn("Monitor entity mcon not found in table inventory",
					zap.String("monitor_uuid", rec.UUID),
					zap.String("entity", entity),
					zap.String("mcon", mcon),
				)
				continue
			}

			key := model.DatasetKey{Platform: platform, Name: NormalizeDatasetName(entity)}
			url := c.assetsBaseURL + "/" + mcon + "/custom-monitors"
			reg.Update(key, func(q *model.DatasetQuality) {
				q.URL = url
				q.Monitors = append(q.Monitors, copyMonitor(monitor))
			})
			stats.Attached++
		}
	}

	c.logger.Info("Correlated monitors",
		zap.Int("monitors", stats.Monitors),
		zap.Int("attached", stats.Attached),
		zap.Int("unresolved", stats.Unresolved),
		zap.Int("truncated", stats.Truncated),
	)
	return stats
}

// BuildDataMonitor - MonitorRecord 하나를 정규화. 실패는 UNKNOWN / nil 로 대체하고 로그만 남긴다.
func (c *Correlator) BuildDataMonitor(rec model.MonitorRecord) model.DataMonitor {
	rawSeverity := ""
	if rec.Severity != nil {
		rawSeverity = *rec.Severity
	}
	severity, ok := model.ParseSeverity(rawSeverity)
	if !ok {
		c.logger.Warn("Unrecognized monitor severity, using UNKNOWN",
			zap.String("monitor_uuid", rec.UUID),
			zap.String("severity", rawSeverity),
		)
	}

	status, ok := model.ParseMonitorStatus(rec.MonitorStatus)
	if !ok {
		c.logger.Warn("Unrecognized monitor status, using UNKNOWN",
			zap.String("monitor_uuid", rec.UUID),
			zap.String("status", rec.MonitorStatus),
		)
	}

	var lastRun *time.Time
	if rec.PrevExecutionTime != nil && *rec.PrevExecutionTime != "" {
		t, err := time.Parse(time.RFC3339, *rec.PrevExecutionTime)
		if err != nil {
			c.logger.Warn("Invalid monitor prevExecutionTime",
				zap.String("monitor_uuid", rec.UUID),
				zap.String("prev_execution_time", *rec.PrevExecutionTime),
				zap.Error(err),
			)
		} else {
			lastRun = &t
		}
	}

	targets := make([]model.DataMonitorTarget, 0, len(rec.MonitorFields))
	for _, field := range rec.MonitorFields {
		targets = append(targets, model.DataMonitorTarget{Column: strings.ToUpper(field)})
	}

	return model.DataMonitor{
		Title:       rec.Name,
		Description: rec.Description,
		Owner:       rec.CreatorID,
		Status:      status,
		Severity:    severity,
		URL:         c.monitorsBaseURL + "/" + rec.UUID,
		LastRun:     lastRun,
		Targets:     targets,
	}
}

// NormalizeDatasetName - "<project>:<dataset>.<table>" 형식을 "."으로 통일. 대소문자는 유지
func NormalizeDatasetName(entity string) string {
	return strings.TrimSpace(strings.ReplaceAll(entity, ":", "."))
}

// 데이터셋마다 독립된 값을 갖도록 슬라이스/포인터 복사
func copyMonitor(m model.DataMonitor) model.DataMonitor {
	out := m
	out.Targets = append([]model.DataMonitorTarget(nil), m.Targets...)
	if m.LastRun != nil {
		t := *m.LastRun
		out.LastRun = &t
	}
	return out
}
