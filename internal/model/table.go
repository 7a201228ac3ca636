package model

// ============================================================================
// Monte Carlo getTables 응답 모델
// ============================================================================

// TableRecord - getTables edge.node 하나 (테이블 인벤토리 항목)
type TableRecord struct {
	Mcon      string         `json:"mcon"`
	Warehouse TableWarehouse `json:"warehouse"`
}

// TableWarehouse - 테이블이 속한 warehouse 정보
type TableWarehouse struct {
	ConnectionType string `json:"connectionType"`
}

// TableEdge - GraphQL connection edge
type TableEdge struct {
	Node TableRecord `json:"node"`
}

// PageInfo - 커서 기반 페이지네이션 정보
type PageInfo struct {
	EndCursor   string `json:"endCursor"`
	HasNextPage bool   `json:"hasNextPage"`
}

// TablePage - getTables(first, after) 한 페이지
type TablePage struct {
	Edges    []TableEdge `json:"edges"`
	PageInfo PageInfo    `json:"pageInfo"`
}

// Records - edge에서 node만 추출
func (p TablePage) Records() []TableRecord {
	out := make([]TableRecord, 0, len(p.Edges))
	for _, e := range p.Edges {
		out = append(out, e.Node)
	}
	return out
}
