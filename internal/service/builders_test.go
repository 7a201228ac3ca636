package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kube-rca/dqsync/internal/model"
)

var securities = model.DatasetKey{Platform: model.PlatformSnowflake, Name: "Finance.public.securities"}

const securitiesURN = "urn:li:dataset:(urn:li:dataPlatform:snowflake,Finance.public.securities,PROD)"

func TestAssertionBuilder_Build(t *testing.T) {
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	urn, aspects := NewAssertionBuilder("").Build(AssertionSpec{
		ID:        "securities_ingest",
		Dataset:   securities,
		Operator:  model.OperatorGreaterThan,
		Threshold: 10000,
		RowCount:  20000,
		RunID:     "run-1",
		Timestamp: ts,
	})

	assert.Equal(t, "urn:li:assertion:securities_ingest", urn)
	require.Len(t, aspects, 3)
	assert.Equal(t, []string{"assertionInfo", "assertionKey", "assertionRunEvent"},
		[]string{aspects[0].AspectName(), aspects[1].AspectName(), aspects[2].AspectName()})

	info := aspects[0].(model.AssertionInfo)
	assert.Equal(t, model.AssertionTypeVolume, info.Type)
	require.NotNil(t, info.VolumeAssertion)
	assert.Equal(t, securitiesURN, info.VolumeAssertion.Entity)
	assert.Equal(t, model.VolumeAssertionRowCountTotal, info.VolumeAssertion.Type)
	assert.Equal(t, model.OperatorGreaterThan, info.VolumeAssertion.RowCountTotal.Operator)
	assert.Equal(t, "10000", info.VolumeAssertion.RowCountTotal.Parameters.Value.Value)
	assert.Equal(t, model.AssertionParamTypeNumber, info.VolumeAssertion.RowCountTotal.Parameters.Value.Type)

	assert.Equal(t, model.AssertionKey{AssertionID: "securities_ingest"}, aspects[1])

	event := aspects[2].(model.AssertionRunEvent)
	assert.Equal(t, ts.UnixMilli(), event.TimestampMillis)
	assert.Equal(t, "run-1", event.RunID)
	assert.Equal(t, securitiesURN, event.AsserteeURN)
	assert.Equal(t, urn, event.AssertionURN)
	assert.Equal(t, model.AssertionRunStatusComplete, event.Status)
	assert.Equal(t, model.AssertionResultSuccess, event.Result.Type)
	assert.EqualValues(t, 20000, *event.Result.RowCount)
}

func TestEvaluateRowCount(t *testing.T) {
	tests := []struct {
		op   model.AssertionOperator
		rows int64
		want model.AssertionResultType
	}{
		{op: model.OperatorGreaterThan, rows: 10001, want: model.AssertionResultSuccess},
		{op: model.OperatorGreaterThan, rows: 10000, want: model.AssertionResultFailure},
		{op: model.OperatorGreaterThanOrEqual, rows: 10000, want: model.AssertionResultSuccess},
		{op: model.OperatorLessThan, rows: 9999, want: model.AssertionResultSuccess},
		{op: model.OperatorLessThanOrEqual, rows: 10001, want: model.AssertionResultFailure},
		{op: model.OperatorEqualTo, rows: 10000, want: model.AssertionResultSuccess},
		{op: "BETWEEN", rows: 10000, want: model.AssertionResultError},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateRowCount(tt.op, tt.rows, 10000))
		})
	}
}

func TestIncidentBuilder_Build(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	urn, info := NewIncidentBuilder("PROD", "").Build(IncidentSpec{
		ID:          "securities_ingest",
		Datasets:    []model.DatasetKey{securities},
		State:       model.IncidentStateOpen,
		Priority:    1,
		Title:       "Data Quality Incident",
		Description: "{{dataset.name}} check failed in {{run.id}}",
		RunID:       "run-1",
		CreatedAt:   created,
	})

	assert.Equal(t, "urn:li:incident:securities_ingest", urn)
	assert.Equal(t, model.IncidentTypeDataQuality, info.Type)
	assert.Equal(t, []string{securitiesURN}, info.Entities)
	assert.Equal(t, model.IncidentStateOpen, info.Status.State)
	assert.Equal(t, created.UnixMilli(), info.Status.LastUpdated.Time)
	assert.Equal(t, model.DefaultActor, info.Created.Actor)
	assert.Equal(t, info.Created, info.Status.LastUpdated)
	assert.Equal(t, "Data Quality Incident", info.Title)
	assert.Equal(t, "Finance.public.securities check failed in run-1", info.Description)
	assert.Equal(t, 1, info.Priority)
}
