package model

// ============================================================================
// Assertion aspects
// ============================================================================

const (
	AssertionTypeVolume          = "VOLUME"
	VolumeAssertionRowCountTotal = "ROW_COUNT_TOTAL"

	AssertionParamTypeNumber = "NUMBER"

	AssertionRunStatusComplete = "COMPLETE"
)

// AssertionOperator - 볼륨 assertion 비교 연산자
type AssertionOperator string

const (
	OperatorGreaterThan        AssertionOperator = "GREATER_THAN"
	OperatorGreaterThanOrEqual AssertionOperator = "GREATER_THAN_OR_EQUAL_TO"
	OperatorLessThan           AssertionOperator = "LESS_THAN"
	OperatorLessThanOrEqual    AssertionOperator = "LESS_THAN_OR_EQUAL_TO"
	OperatorEqualTo            AssertionOperator = "EQUAL_TO"
)

// ParseAssertionOperator - 모르는 연산자는 ok=false
func ParseAssertionOperator(raw string) (AssertionOperator, bool) {
	switch op := AssertionOperator(raw); op {
	case OperatorGreaterThan, OperatorGreaterThanOrEqual, OperatorLessThan, OperatorLessThanOrEqual, OperatorEqualTo:
		return op, true
	default:
		return "", false
	}
}

// AssertionResultType - 실행 결과
type AssertionResultType string

const (
	AssertionResultSuccess AssertionResultType = "SUCCESS"
	AssertionResultFailure AssertionResultType = "FAILURE"
	AssertionResultError   AssertionResultType = "ERROR"
)

type AssertionKey struct {
	AssertionID string `json:"assertionId"`
}

func (AssertionKey) AspectName() string { return "assertionKey" }

type AssertionStdParameter struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type AssertionStdParameters struct {
	Value *AssertionStdParameter `json:"value,omitempty"`
}

type RowCountTotal struct {
	Operator   AssertionOperator      `json:"operator"`
	Parameters AssertionStdParameters `json:"parameters"`
}

type VolumeAssertionInfo struct {
	Type          string         `json:"type"`
	Entity        string         `json:"entity"`
	RowCountTotal *RowCountTotal `json:"rowCountTotal,omitempty"`
}

type AssertionInfo struct {
	Type            string               `json:"type"`
	VolumeAssertion *VolumeAssertionInfo `json:"volumeAssertion,omitempty"`
}

func (AssertionInfo) AspectName() string { return "assertionInfo" }

type AssertionResult struct {
	Type     AssertionResultType `json:"type"`
	RowCount *int64              `json:"rowCount,omitempty"`
}

type AssertionRunEvent struct {
	TimestampMillis int64            `json:"timestampMillis"`
	RunID           string           `json:"runId"`
	AsserteeURN     string           `json:"asserteeUrn"`
	AssertionURN    string           `json:"assertionUrn"`
	Status          string           `json:"status"`
	Result          *AssertionResult `json:"result,omitempty"`
}

func (AssertionRunEvent) AspectName() string { return "assertionRunEvent" }
