package model

// ============================================================================
// Incident aspects (데이터 품질 장애 단위)
// ============================================================================

const IncidentTypeDataQuality = "DATA_QUALITY"

// IncidentState - 생성 시 한 번 설정되는 평면 상태 (lifecycle 없음)
type IncidentState string

const (
	IncidentStateOpen     IncidentState = "OPEN"
	IncidentStateActive   IncidentState = "ACTIVE"
	IncidentStateResolved IncidentState = "RESOLVED"
)

// ParseIncidentState - 모르는 값은 OPEN, ok=false
func ParseIncidentState(raw string) (IncidentState, bool) {
	switch s := IncidentState(raw); s {
	case IncidentStateOpen, IncidentStateActive, IncidentStateResolved:
		return s, true
	default:
		return IncidentStateOpen, false
	}
}

type IncidentKey struct {
	ID string `json:"id"`
}

func (IncidentKey) AspectName() string { return "incidentKey" }

type IncidentStatus struct {
	State       IncidentState `json:"state"`
	LastUpdated AuditStamp    `json:"lastUpdated"`
}

// IncidentInfo - incidentInfo aspect
type IncidentInfo struct {
	Type        string         `json:"type"`
	Entities    []string       `json:"entities"` // 영향받는 dataset URN
	Status      IncidentStatus `json:"status"`
	Created     AuditStamp     `json:"created"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    int            `json:"priority"`
}

func (IncidentInfo) AspectName() string { return "incidentInfo" }
