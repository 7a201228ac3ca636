// Slack sync 리포트 / incident 메시지

package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kube-rca/dqsync/internal/model"
)

// SendIncident - 발행한 데이터 품질 incident를 run 쓰레드에 전송
func (c *SlackClient) SendIncident(ctx context.Context, runID, incidentURN string, info model.IncidentInfo) error {
	fields := []SlackField{
		{Title: "Incident", Value: incidentURN, Short: false},
		{Title: "State", Value: string(info.Status.State), Short: true},
		{Title: "Priority", Value: strconv.Itoa(info.Priority), Short: true},
	}
	if len(info.Entities) > 0 {
		fields = append(fields, SlackField{Title: "Datasets", Value: strings.Join(info.Entities, "\n"), Short: false})
	}

	return c.postInRunThread(ctx, runID, SlackMessage{
		Attachments: []SlackAttachment{
			{
				Color:  colorByIncidentState(info.Status.State),
				Title:  fmt.Sprintf("🚨 %s", info.Title),
				Text:   info.Description,
				Fields: fields,
				Footer: "dqsync",
				Ts:     time.Now().Unix(),
			},
		},
	})
}

// SendRunReport - 실패 또는 일부 실패(degraded)한 run 요약 전송
func (c *SlackClient) SendRunReport(ctx context.Context, run model.SyncRun) error {
	fields := []SlackField{
		{Title: "Run", Value: run.RunID, Short: true},
		{Title: "Status", Value: string(run.Status), Short: true},
		{Title: "Tables", Value: strconv.Itoa(run.PlatformMapSize), Short: true},
		{Title: "Monitors", Value: fmt.Sprintf("%d fetched / %d attached", run.MonitorsFetched, run.MonitorsAttached), Short: true},
		{Title: "Proposals", Value: fmt.Sprintf("%d emitted / %d failed", run.ProposalsEmitted, run.ProposalsFailed), Short: true},
	}

	return c.postInRunThread(ctx, run.RunID, SlackMessage{
		Attachments: []SlackAttachment{
			{
				Color:  colorByRunStatus(run.Status),
				Title:  fmt.Sprintf("%s Monte Carlo sync %s", emojiByRunStatus(run.Status), run.Status),
				Text:   run.Error,
				Fields: fields,
				Footer: "dqsync",
				Ts:     time.Now().Unix(),
			},
		},
	})
}

func colorByRunStatus(status model.SyncRunStatus) string {
	switch status {
	case model.SyncRunSucceeded:
		return "#36a64f" // green
	case model.SyncRunDegraded:
		return "#ffc107" // yellow
	default:
		return "#dc3545" // red
	}
}

func emojiByRunStatus(status model.SyncRunStatus) string {
	switch status {
	case model.SyncRunSucceeded:
		return "✅"
	case model.SyncRunDegraded:
		return "⚠️"
	default:
		return "🔥"
	}
}

func colorByIncidentState(state model.IncidentState) string {
	if state == model.IncidentStateResolved {
		return "#36a64f"
	}
	return "#dc3545"
}
