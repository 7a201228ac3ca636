// Package template provides incident title/description rendering.
//
// 지원하는 변수 형식:
//
//	{{incident.id}}, {{incident.state}}, {{incident.priority}}, {{incident.created_at}}
//
//	{{dataset.platform}}, {{dataset.name}}, {{dataset.urn}}
//
//	{{run.id}}, {{run.started_at}}
package template

import (
	"strconv"
	"strings"
	"time"

	"github.com/kube-rca/dqsync/internal/model"
)

// IncidentData - 템플릿 렌더링에 사용할 Incident 데이터
type IncidentData struct {
	ID        string
	State     model.IncidentState
	Priority  int
	CreatedAt time.Time
}

// DatasetData - 장애 대상 데이터셋
type DatasetData struct {
	Platform model.Platform
	Name     string
	URN      string
}

// RunData - 현재 sync run
type RunData struct {
	ID        string
	StartedAt time.Time
}

// DatasetDataFromKey - DatasetKey에서 DatasetData 생성
func DatasetDataFromKey(key model.DatasetKey, env string) DatasetData {
	return DatasetData{
		Platform: key.Platform,
		Name:     key.Name,
		URN:      key.URN(env),
	}
}

// RenderText - 템플릿의 변수를 실제 값으로 치환
//
// nil로 전달된 항목의 변수는 빈 문자열로 치환됩니다.
// 모르는 변수는 그대로 남습니다.
func RenderText(text string, incident *IncidentData, dataset *DatasetData, run *RunData) string {
	if !strings.Contains(text, "{{") {
		return text
	}

	pairs := make([]string, 0, 18)

	// --- Incident 변수 ---
	if incident != nil {
		createdAt := ""
		if !incident.CreatedAt.IsZero() {
			createdAt = incident.CreatedAt.UTC().Format(time.RFC3339)
		}
		pairs = append(pairs,
			"{{incident.id}}", incident.ID,
			"{{incident.state}}", string(incident.State),
			"{{incident.priority}}", strconv.Itoa(incident.Priority),
			"{{incident.created_at}}", createdAt,
		)
	} else {
		pairs = append(pairs,
			"{{incident.id}}", "",
			"{{incident.state}}", "",
			"{{incident.priority}}", "",
			"{{incident.created_at}}", "",
		)
	}

	// --- Dataset 변수 ---
	if dataset != nil {
		pairs = append(pairs,
			"{{dataset.platform}}", string(dataset.Platform),
			"{{dataset.name}}", dataset.Name,
			"{{dataset.urn}}", dataset.URN,
		)
	} else {
		pairs = append(pairs,
			"{{dataset.platform}}", "",
			"{{dataset.name}}", "",
			"{{dataset.urn}}", "",
		)
	}

	// --- Run 변수 ---
	if run != nil {
		startedAt := ""
		if !run.StartedAt.IsZero() {
			startedAt = run.StartedAt.UTC().Format(time.RFC3339)
		}
		pairs = append(pairs,
			"{{run.id}}", run.ID,
			"{{run.started_at}}", startedAt,
		)
	} else {
		pairs = append(pairs,
			"{{run.id}}", "",
			"{{run.started_at}}", "",
		)
	}

	return strings.NewReplacer(pairs...).Replace(text)
}
