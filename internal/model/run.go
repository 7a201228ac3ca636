package model

import "time"

// ============================================================================
// Sync run (한 번의 동기화 실행 결과)
// ============================================================================

type SyncRunStatus string

const (
	SyncRunRunning   SyncRunStatus = "running"
	SyncRunSucceeded SyncRunStatus = "succeeded"
	SyncRunDegraded  SyncRunStatus = "degraded" // 완료했지만 일부 aspect 전송 실패
	SyncRunFailed    SyncRunStatus = "failed"
)

// SyncRun - 실행 요약 (sync_runs 테이블 / Redis latest / API 응답 공용)
type SyncRun struct {
	RunID      string        `json:"run_id"`
	Status     SyncRunStatus `json:"status"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at"`
	Error      string        `json:"error,omitempty"`

	PlatformMapSize    int `json:"platform_map_size"`
	MonitorsFetched    int `json:"monitors_fetched"`
	MonitorsAttached   int `json:"monitors_attached"`
	EntitiesUnresolved int `json:"entities_unresolved"`
	MonitorsTruncated  int `json:"monitors_truncated"`
	Datasets           int `json:"datasets"`
	ProposalsEmitted   int `json:"proposals_emitted"`
	ProposalsFailed    int `json:"proposals_failed"`
}

// Finish - 종료 시각과 최종 상태 설정
func (r *SyncRun) Finish(at time.Time, err error) {
	r.FinishedAt = &at
	switch {
	case err != nil:
		r.Status = SyncRunFailed
		r.Error = err.Error()
	case r.ProposalsFailed > 0:
		r.Status = SyncRunDegraded
	default:
		r.Status = SyncRunSucceeded
	}
}
