package model

type ErrorResponse struct {
	Error string `json:"error"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SyncRunEnvelope - 동기화 실행 API 응답 구조체
type SyncRunEnvelope struct {
	Status string   `json:"status"`
	Data   *SyncRun `json:"data"`
}

// SyncRunListResponse - 실행 이력 목록 응답 구조체
type SyncRunListResponse struct {
	Status string    `json:"status"`
	Data   []SyncRun `json:"data"`
}

// DatasetQualityListResponse - 마지막 실행의 데이터셋 품질 레코드 목록
type DatasetQualityListResponse struct {
	Status string           `json:"status"`
	RunID  string           `json:"run_id,omitempty"`
	Data   []DatasetQuality `json:"data"`
}
