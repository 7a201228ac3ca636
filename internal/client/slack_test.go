package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kube-rca/dqsync/internal/config"
	"github.com/kube-rca/dqsync/internal/model"
)

func newTestSlackClient(t *testing.T, handler http.HandlerFunc) *SlackClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewSlackClient(config.SlackConfig{BotToken: "xoxb-test", ChannelID: "C123"})
	c.apiURL = srv.URL
	return c
}

func TestSlackClient_IsConfigured(t *testing.T) {
	assert.False(t, NewSlackClient(config.SlackConfig{}).IsConfigured())
	assert.False(t, NewSlackClient(config.SlackConfig{BotToken: "xoxb"}).IsConfigured())
	assert.True(t, NewSlackClient(config.SlackConfig{BotToken: "xoxb", ChannelID: "C1"}).IsConfigured())
}

func TestSlackClient_NotConfigured(t *testing.T) {
	c := NewSlackClient(config.SlackConfig{})
	err := c.SendRunReport(context.Background(), model.SyncRun{RunID: "r1"})
	require.Error(t, err)
}

func TestSlackClient_RunMessagesShareThread(t *testing.T) {
	var calls int32
	var got []SlackMessage
	c := newTestSlackClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer xoxb-test", r.Header.Get("Authorization"))
		var msg SlackMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		got = append(got, msg)
		atomic.AddInt32(&calls, 1)
		_ = json.NewEncoder(w).Encode(SlackResponse{OK: true, TS: "1700000000.000100"})
	})

	ctx := context.Background()
	info := model.IncidentInfo{
		Title:    "Data Quality Incident",
		Entities: []string{"urn:li:dataset:(urn:li:dataPlatform:snowflake,Finance.public.securities,PROD)"},
		Status:   model.IncidentStatus{State: model.IncidentStateOpen},
		Priority: 1,
	}
	require.NoError(t, c.SendIncident(ctx, "run-1", "urn:li:incident:securities_ingest", info))
	require.NoError(t, c.SendRunReport(ctx, model.SyncRun{RunID: "run-1", Status: model.SyncRunDegraded, ProposalsFailed: 2}))

	require.Len(t, got, 2)
	assert.Equal(t, "C123", got[0].Channel)
	assert.Empty(t, got[0].ThreadTS)
	assert.Equal(t, "1700000000.000100", got[1].ThreadTS)
	assert.Equal(t, "#ffc107", got[1].Attachments[0].Color)

	c.ForgetRun("run-1")
	_, ok := c.GetThreadTS("run-1")
	assert.False(t, ok)
}

func TestSlackClient_APIError(t *testing.T) {
	c := newTestSlackClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(SlackResponse{OK: false, Error: "channel_not_found"})
	})

	err := c.SendRunReport(context.Background(), model.SyncRun{RunID: "r1", Status: model.SyncRunFailed})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
	_, ok := c.GetThreadTS("r1")
	assert.False(t, ok)
}
