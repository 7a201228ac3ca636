// 외부 Slack API와 통신하는 클라이언트 정의
//
// 환경변수:
//   - SLACK_BOT_TOKEN: Slack Bot Token (xoxb-...)
//   - SLACK_CHANNEL_ID: Slack 채널 ID (C...)
//
// 같은 sync run에서 나온 메시지(incident, 실패 리포트)는 하나의 쓰레드로 묶는다.
// 설정이 비어있으면 IsConfigured()가 false이고 호출 측에서 전송을 생략한다.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/kube-rca/dqsync/internal/config"
)

const slackPostMessageURL = "https://slack.com/api/chat.postMessage"

// SlackClient(메시지 메타데이터) 구조체 정의
type SlackClient struct {
	botToken   string
	channelID  string
	apiURL     string
	httpClient *http.Client

	// threadMap: run_id -> thread_ts
	threadMap sync.Map
}

// SlackMessage(메시지 내용) 구조체 정의
type SlackMessage struct {
	Channel     string            `json:"channel"`
	Text        string            `json:"text,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
	ThreadTS    string            `json:"thread_ts,omitempty"`
}

// SlackAttachment(메시지 포맷) 구조체 정의
type SlackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Text   string       `json:"text"`
	Footer string       `json:"footer,omitempty"`
	Ts     int64        `json:"ts,omitempty"`
	Fields []SlackField `json:"fields,omitempty"`
}

// SlackField(메시지 포맷 필드) 구조체 정의
type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// SlackResponse(메시지 응답) 구조체 정의
type SlackResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	TS    string `json:"ts,omitempty"`
}

// SlackClient 객체 생성
func NewSlackClient(cfg config.SlackConfig) *SlackClient {
	return &SlackClient{
		botToken:  cfg.BotToken,
		channelID: cfg.ChannelID,
		apiURL:    slackPostMessageURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SlackClient에 Bot Token과 Channel ID가 모두 설정되어 있는지 체크
func (c *SlackClient) IsConfigured() bool {
	return c.botToken != "" && c.channelID != ""
}

// Slack API 호출
func (c *SlackClient) send(ctx context.Context, msg SlackMessage) (*SlackResponse, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.botToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var slackResp SlackResponse
	if err := json.Unmarshal(body, &slackResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if !slackResp.OK {
		return nil, fmt.Errorf("slack API error: %s", slackResp.Error)
	}
	return &slackResp, nil
}

// postInRunThread - run의 쓰레드가 있으면 답글로, 없으면 새 메시지로 보내고 thread_ts 저장
func (c *SlackClient) postInRunThread(ctx context.Context, runID string, msg SlackMessage) error {
	if !c.IsConfigured() {
		return fmt.Errorf("slack bot token or channel ID not configured")
	}
	msg.Channel = c.channelID

	threadTS, hasThread := c.GetThreadTS(runID)
	if hasThread {
		msg.ThreadTS = threadTS
	}

	resp, err := c.send(ctx, msg)
	if err != nil {
		return err
	}
	if !hasThread && resp.TS != "" {
		c.threadMap.Store(runID, resp.TS)
	}
	return nil
}

// run의 thread_ts 조회
func (c *SlackClient) GetThreadTS(runID string) (string, bool) {
	val, ok := c.threadMap.Load(runID)
	if !ok {
		return "", false
	}
	return val.(string), true
}

// run 종료 후 thread_ts 제거 (메모리 정리)
func (c *SlackClient) ForgetRun(runID string) {
	c.threadMap.Delete(runID)
}
