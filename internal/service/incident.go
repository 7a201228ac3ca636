package service

import (
	"time"

	"github.com/kube-rca/dqsync/internal/model"
	"github.com/kube-rca/dqsync/internal/template"
)

// IncidentSpec - incident 한 건의 입력값. Title/Description은 템플릿
type IncidentSpec struct {
	ID           string
	Datasets     []model.DatasetKey
	State        model.IncidentState
	Priority     int
	Title        string
	Description  string
	RunID        string
	RunStartedAt time.Time
	CreatedAt    time.Time
}

type IncidentBuilder struct {
	env   string
	actor string
}

func NewIncidentBuilder(env, actor string) *IncidentBuilder {
	if env == "" {
		env = model.DefaultEnv
	}
	if actor == "" {
		actor = model.DefaultActor
	}
	return &IncidentBuilder{env: env, actor: actor}
}

// Build - incident URN과 incidentInfo aspect 생성
//
// 상태는 생성 시점에 한 번 설정된다. {{dataset.*}} 변수는 첫 번째 데이터셋으로 치환한다.
func (b *IncidentBuilder) Build(spec IncidentSpec) (string, model.IncidentInfo) {
	urn := model.MakeIncidentURN(spec.ID)

	entities := make([]string, 0, len(spec.Datasets))
	for _, key := range spec.Datasets {
		entities = append(entities, key.URN(b.env))
	}

	incData := &template.IncidentData{
		ID:        spec.ID,
		State:     spec.State,
		Priority:  spec.Priority,
		CreatedAt: spec.CreatedAt,
	}
	var dsData *template.DatasetData
	if len(spec.Datasets) > 0 {
		d := template.DatasetDataFromKey(spec.Datasets[0], b.env)
		dsData = &d
	}
	runData := &template.RunData{ID: spec.RunID, StartedAt: spec.RunStartedAt}

	stamp := model.NewAuditStamp(spec.CreatedAt, b.actor, "")
	info := model.IncidentInfo{
		Type:     model.IncidentTypeDataQuality,
		Entities: entities,
		Status: model.IncidentStatus{
			State:       spec.State,
			LastUpdated: stamp,
		},
		Created:     stamp,
		Title:       template.RenderText(spec.Title, incData, dsData, runData),
		Description: template.RenderText(spec.Description, incData, dsData, runData),
		Priority:    spec.Priority,
	}
	return urn, info
}
