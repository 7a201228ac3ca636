package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kube-rca/dqsync/internal/model"
)

func manyTables(n int) []model.TableRecord {
	out := make([]model.TableRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, tableRecord(fmt.Sprintf("mcon%d", i), "SNOWFLAKE"))
	}
	return out
}

func TestFetchPlatformMap_PageCount(t *testing.T) {
	tests := []struct {
		name      string
		tables    int
		batchSize int
		wantCalls int
	}{
		{name: "empty-inventory-still-one-request", tables: 0, batchSize: 500, wantCalls: 1},
		{name: "single-partial-page", tables: 3, batchSize: 500, wantCalls: 1},
		{name: "exact-multiple", tables: 4, batchSize: 2, wantCalls: 2},
		{name: "remainder-page", tables: 5, batchSize: 2, wantCalls: 3},
		{name: "batch-of-one", tables: 3, batchSize: 1, wantCalls: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeTableQuerier{records: manyTables(tt.tables)}
			svc := NewTableInventoryService(q, tt.batchSize, zap.NewNop())

			platforms, err := svc.FetchPlatformMap(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantCalls, q.calls)
			assert.Equal(t, tt.tables, platforms.Len())
			assert.Equal(t, "", q.afters[0])
		})
	}
}

func TestFetchPlatformMap_Idempotent(t *testing.T) {
	q := &fakeTableQuerier{records: []model.TableRecord{
		tableRecord("m1", "SNOWFLAKE"),
		tableRecord("m2", "bigquery"),
		tableRecord("m3", "REDSHIFT"),
	}}
	svc := NewTableInventoryService(q, 2, zap.NewNop())

	first, err := svc.FetchPlatformMap(context.Background())
	require.NoError(t, err)
	second, err := svc.FetchPlatformMap(context.Background())
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	p, ok := first.Lookup("m2")
	require.True(t, ok)
	assert.Equal(t, model.PlatformBigQuery, p)
}

func TestFetchPlatformMap_SkipsUnknownConnectionType(t *testing.T) {
	logger, logs := warnLogger()
	q := &fakeTableQuerier{records: []model.TableRecord{
		tableRecord("m1", "SNOWFLAKE"),
		tableRecord("m2", "DATABRICKS"),
	}}
	svc := NewTableInventoryService(q, 10, logger)

	platforms, err := svc.FetchPlatformMap(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, platforms.Len())
	_, ok := platforms.Lookup("m2")
	assert.False(t, ok)

	warns := logs.FilterMessage("Skipping table with unsupported connection type").All()
	require.Len(t, warns, 1)
	assert.Equal(t, "m2", warns[0].ContextMap()["mcon"])
}

func TestFetchPlatformMap_PageErrorAborts(t *testing.T) {
	q := &fakeTableQuerier{records: manyTables(5), failOn: 2}
	svc := NewTableInventoryService(q, 2, zap.NewNop())

	platforms, err := svc.FetchPlatformMap(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 2")
	assert.Equal(t, 0, platforms.Len())
	assert.Equal(t, 2, q.calls)
}

func TestFetchPlatformMap_MalformedCursor(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[int]model.PageInfo
		want      string
	}{
		{
			name:      "missing-end-cursor",
			overrides: map[int]model.PageInfo{1: {EndCursor: "", HasNextPage: true}},
			want:      "without endCursor",
		},
		{
			name: "repeated-end-cursor",
			overrides: map[int]model.PageInfo{
				1: {EndCursor: "1", HasNextPage: true},
				2: {EndCursor: "1", HasNextPage: true},
			},
			want: "repeated endCursor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeTableQuerier{records: manyTables(5), overrides: tt.overrides}
			svc := NewTableInventoryService(q, 1, zap.NewNop())

			_, err := svc.FetchPlatformMap(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFetchMonitors(t *testing.T) {
	logger, logs := warnLogger()

	svc := NewMonitorService(&fakeMonitorQuerier{err: assert.AnError}, logger)
	got := svc.FetchMonitors(context.Background())
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 1, logs.FilterMessage("Failed to fetch monitors, continuing without monitors").Len())

	svc = NewMonitorService(&fakeMonitorQuerier{records: []model.MonitorRecord{{UUID: "u1"}}}, logger)
	got = svc.FetchMonitors(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, "u1", got[0].UUID)
}
