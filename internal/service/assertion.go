package service

import (
	"strconv"
	"time"

	"github.com/kube-rca/dqsync/internal/model"
)

// AssertionSpec - 볼륨 assertion 한 건의 입력값
type AssertionSpec struct {
	ID        string
	Dataset   model.DatasetKey
	Operator  model.AssertionOperator
	Threshold int64
	RowCount  int64
	RunID     string
	Timestamp time.Time
}

type AssertionBuilder struct {
	env string
}

func NewAssertionBuilder(env string) *AssertionBuilder {
	if env == "" {
		env = model.DefaultEnv
	}
	return &AssertionBuilder{env: env}
}

// Build - assertionInfo, assertionKey, assertionRunEvent 순서의 aspect 목록
//
// 세 aspect는 같은 assertion URN을 공유한다.
func (b *AssertionBuilder) Build(spec AssertionSpec) (string, []model.Aspect) {
	urn := model.MakeAssertionURN(spec.ID)
	datasetURN := spec.Dataset.URN(b.env)

	info := model.AssertionInfo{
		Type: model.AssertionTypeVolume,
		VolumeAssertion: &model.VolumeAssertionInfo{
			Type:   model.VolumeAssertionRowCountTotal,
			Entity: datasetURN,
			RowCountTotal: &model.RowCountTotal{
				Operator: spec.Operator,
				Parameters: model.AssertionStdParameters{
					Value: &model.AssertionStdParameter{
						Type:  model.AssertionParamTypeNumber,
						Value: strconv.FormatInt(spec.Threshold, 10),
					},
				},
			},
		},
	}

	rowCount := spec.RowCount
	runEvent := model.AssertionRunEvent{
		TimestampMillis: spec.Timestamp.UnixMilli(),
		RunID:           spec.RunID,
		AsserteeURN:     datasetURN,
		AssertionURN:    urn,
		Status:          model.AssertionRunStatusComplete,
		Result: &model.AssertionResult{
			Type:     EvaluateRowCount(spec.Operator, spec.RowCount, spec.Threshold),
			RowCount: &rowCount,
		},
	}

	return urn, []model.Aspect{info, model.AssertionKey{AssertionID: spec.ID}, runEvent}
}

// EvaluateRowCount - 측정된 row count를 threshold와 비교
func EvaluateRowCount(op model.AssertionOperator, rowCount, threshold int64) model.AssertionResultType {
	var passed bool
	switch op {
	case model.OperatorGreaterThan:
		passed = rowCount > threshold
	case model.OperatorGreaterThanOrEqual:
		passed = rowCount >= threshold
	case model.OperatorLessThan:
		passed = rowCount < threshold
	case model.OperatorLessThanOrEqual:
		passed = rowCount <= threshold
	case model.OperatorEqualTo:
		passed = rowCount == threshold
	default:
		return model.AssertionResultError
	}
	if passed {
		return model.AssertionResultSuccess
	}
	return model.AssertionResultFailure
}
