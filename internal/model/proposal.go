package model

// Aspect - 엔티티에 붙는 타입이 있는 메타데이터 페이로드
type Aspect interface {
	AspectName() string
}

const ChangeTypeUpsert = "UPSERT"

// ChangeProposal - (entity urn, aspect) 한 쌍의 변경 제안
type ChangeProposal struct {
	EntityType string `json:"entityType"`
	EntityURN  string `json:"entityUrn"`
	ChangeType string `json:"changeType"`
	AspectName string `json:"aspectName"`
	Aspect     Aspect `json:"aspect"`
}

// NewChangeProposals - 하나의 엔티티 URN에 대한 aspect 목록을 순서대로 proposal로 변환
func NewChangeProposals(entityType, urn string, aspects ...Aspect) []ChangeProposal {
	out := make([]ChangeProposal, 0, len(aspects))
	for _, a := range aspects {
		out = append(out, ChangeProposal{
			EntityType: entityType,
			EntityURN:  urn,
			ChangeType: ChangeTypeUpsert,
			AspectName: a.AspectName(),
			Aspect:     a,
		})
	}
	return out
}
