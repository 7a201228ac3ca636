package model

// DatasetKey - 레지스트리 키 (platform, qualified name)
type DatasetKey struct {
	Platform Platform `json:"platform"`
	Name     string   `json:"name"`
}

// URN - 주어진 env로 데이터셋 URN 생성
func (k DatasetKey) URN(env string) string {
	return MakeDatasetURN(k.Platform, k.Name, env)
}

// DatasetQuality - 데이터셋 하나에 누적되는 품질 메타데이터
//
// Monitors는 append만 한다 (같은 데이터셋에 여러 모니터가 처리 순서대로 쌓임).
type DatasetQuality struct {
	Key      DatasetKey    `json:"key"`
	URL      string        `json:"url,omitempty"`
	Monitors []DataMonitor `json:"monitors"`
}

// DatasetDataQuality - datasetDataQuality aspect 본문
type DatasetDataQuality struct {
	URL      string        `json:"url,omitempty"`
	Monitors []DataMonitor `json:"monitors"`
}

func (DatasetDataQuality) AspectName() string { return "datasetDataQuality" }

// Aspect - DatasetQuality를 카탈로그 aspect로 변환
func (q DatasetQuality) Aspect() DatasetDataQuality {
	monitors := make([]DataMonitor, len(q.Monitors))
	copy(monitors, q.Monitors)
	return DatasetDataQuality{URL: q.URL, Monitors: monitors}
}
