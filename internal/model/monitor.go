package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ============================================================================
// Monte Carlo getMonitors 응답 모델
// ============================================================================

// MonitorRecord - getMonitors 결과 하나 (가공 전 원본)
//
// Entities와 EntityMcons는 인덱스로 짝지어진 병렬 리스트이다.
type MonitorRecord struct {
	UUID              string   `json:"uuid"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Entities          []string `json:"entities"`
	EntityMcons       []string `json:"entityMcons"`
	Severity          *string  `json:"severity"`
	MonitorStatus     string   `json:"monitorStatus"`
	MonitorFields     []string `json:"monitorFields"`
	CreatorID         string   `json:"creatorId"`
	PrevExecutionTime *string  `json:"prevExecutionTime"`
}

// UnmarshalJSON - 타입이 어긋난 스칼라 필드는 값이 없는 것으로 본다.
//
// entities/entityMcons는 인덱스로 짝지어지므로 문자열 배열이 아니면 레코드 전체를 거부한다.
// monitorFields의 문자열이 아닌 항목은 버린다.
func (r *MonitorRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("monitor record is not an object: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("monitor record is null")
	}

	var rec MonitorRecord
	rec.UUID, _ = looseString(raw["uuid"])
	rec.Name, _ = looseString(raw["name"])
	rec.Description, _ = looseString(raw["description"])
	rec.CreatorID, _ = looseString(raw["creatorId"])
	rec.MonitorStatus, _ = looseString(raw["monitorStatus"])
	if s, ok := looseString(raw["severity"]); ok {
		rec.Severity = &s
	}
	if s, ok := looseString(raw["prevExecutionTime"]); ok {
		rec.PrevExecutionTime = &s
	}

	var err error
	if rec.Entities, err = strictStrings(raw["entities"]); err != nil {
		return fmt.Errorf("invalid entities: %w", err)
	}
	if rec.EntityMcons, err = strictStrings(raw["entityMcons"]); err != nil {
		return fmt.Errorf("invalid entityMcons: %w", err)
	}
	rec.MonitorFields = looseStrings(raw["monitorFields"])

	*r = rec
	return nil
}

func looseString(raw json.RawMessage) (string, bool) {
	var s string
	if len(raw) == 0 || string(raw) == "null" || json.Unmarshal(raw, &s) != nil {
		return "", false
	}
	return s, true
}

func strictStrings(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func looseStrings(raw json.RawMessage) []string {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := looseString(item); ok {
			out = append(out, s)
		}
	}
	return out
}

// ============================================================================
// DataMonitor (정규화된 모니터)
// ============================================================================

type DataMonitorSeverity string

const (
	SeverityLow     DataMonitorSeverity = "LOW"
	SeverityMedium  DataMonitorSeverity = "MEDIUM"
	SeverityHigh    DataMonitorSeverity = "HIGH"
	SeverityUnknown DataMonitorSeverity = "UNKNOWN"
)

// ParseSeverity maps a raw severity to the enum. Absent or unrecognized input
// resolves to UNKNOWN with ok=false so callers can warn.
func ParseSeverity(raw string) (DataMonitorSeverity, bool) {
	switch s := DataMonitorSeverity(strings.ToUpper(strings.TrimSpace(raw))); s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityUnknown:
		return s, true
	default:
		return SeverityUnknown, false
	}
}

type DataMonitorStatus string

const (
	MonitorStatusPassed  DataMonitorStatus = "PASSED"
	MonitorStatusWarning DataMonitorStatus = "WARNING"
	MonitorStatusError   DataMonitorStatus = "ERROR"
	MonitorStatusUnknown DataMonitorStatus = "UNKNOWN"
)

// monitorStatuses - Monte Carlo monitorStatus -> DataMonitorStatus
var monitorStatuses = map[string]DataMonitorStatus{
	"SUCCESS":       MonitorStatusPassed,
	"ERROR":         MonitorStatusError,
	"MISCONFIGURED": MonitorStatusError,
	"TIMEOUT":       MonitorStatusError,
	"ALERTING":      MonitorStatusWarning,
	"IN_TRAINING":   MonitorStatusUnknown,
	"NO_STATUS":     MonitorStatusUnknown,
	"PAUSED":        MonitorStatusUnknown,
	"SNOOZED":       MonitorStatusUnknown,
}

// ParseMonitorStatus - ParseSeverity와 같은 규칙 (없거나 모르는 값은 UNKNOWN, ok=false)
func ParseMonitorStatus(raw string) (DataMonitorStatus, bool) {
	key := strings.ToUpper(strings.TrimSpace(raw))
	s, ok := monitorStatuses[key]
	if !ok {
		return MonitorStatusUnknown, false
	}
	return s, true
}

// DataMonitorTarget - 모니터가 검사하는 컬럼
type DataMonitorTarget struct {
	Column string `json:"column"`
}

// DataMonitor - 데이터셋 품질 레코드에 붙는 모니터 정의
type DataMonitor struct {
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Owner       string              `json:"owner,omitempty"`
	Status      DataMonitorStatus   `json:"status"`
	Severity    DataMonitorSeverity `json:"severity"`
	URL         string              `json:"url"`
	LastRun     *time.Time          `json:"lastRun,omitempty"`
	Targets     []DataMonitorTarget `json:"targets"`
}
