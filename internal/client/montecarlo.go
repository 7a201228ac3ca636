// Monte Carlo GraphQL API 클라이언트
//
// 환경변수:
//   - MC_API_URL: GraphQL endpoint (default: https://api.getmontecarlo.com/graphql)
//   - MC_API_KEY_ID / MC_API_KEY_SECRET: x-mcd-id / x-mcd-token 헤더
//   - MC_PAGE_TIMEOUT: 요청 1회 타임아웃
//   - MC_MAX_RETRIES: 타임아웃, 429, 5xx 재시도 횟수
//
// 사용하는 쿼리:
//   - getTables(first, after): 커서 기반 테이블 인벤토리
//   - getMonitors: 전체 모니터 목록

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/kube-rca/dqsync/internal/config"
	"github.com/kube-rca/dqsync/internal/model"
)

// ErrGraphQL - 응답의 errors 필드가 비어있지 않음 (재시도하지 않음)
var ErrGraphQL = errors.New("graphql error")

const getTablesQuery = `
query getTables($first: Int, $after: String) {
  getTables(first: $first, after: $after) {
    edges {
      node {
        mcon
        warehouse {
          connectionType
        }
      }
    }
    pageInfo {
      endCursor
      hasNextPage
    }
  }
}`

const getMonitorsQuery = `
query getMonitors {
  getMonitors {
    uuid
    name
    description
    entities
    entityMcons
    severity
    monitorStatus
    monitorFields
    creatorId
    prevExecutionTime
  }
}`

// MonteCarloClient 구조체 정의
type MonteCarloClient struct {
	apiURL      string
	keyID       string
	keySecret   string
	httpClient  *http.Client
	pageTimeout time.Duration
	maxRetries  int
	retryWait   time.Duration
	logger      *zap.Logger
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// MonteCarloClient 객체 생성
func NewMonteCarloClient(cfg config.MonteCarloConfig, logger *zap.Logger) *MonteCarloClient {
	pageTimeout := cfg.PageTimeout
	if pageTimeout <= 0 {
		pageTimeout = 30 * time.Second
	}
	return &MonteCarloClient{
		apiURL:      cfg.APIURL,
		keyID:       cfg.APIKeyID,
		keySecret:   cfg.APIKeySecret,
		httpClient:  &http.Client{},
		pageTimeout: pageTimeout,
		maxRetries:  cfg.MaxRetries,
		retryWait:   500 * time.Millisecond,
		logger:      logger.Named("montecarlo"),
	}
}

// GetTables - getTables 한 페이지 조회. after가 빈 문자열이면 첫 페이지
func (c *MonteCarloClient) GetTables(ctx context.Context, first int, after string) (*model.TablePage, error) {
	vars := map[string]any{"first": first, "after": nil}
	if after != "" {
		vars["after"] = after
	}

	var data struct {
		GetTables *model.TablePage `json:"getTables"`
	}
	if err := c.Query(ctx, getTablesQuery, vars, &data); err != nil {
		return nil, fmt.Errorf("failed to query getTables: %w", err)
	}
	if data.GetTables == nil {
		return nil, fmt.Errorf("failed to query getTables: empty response")
	}
	return data.GetTables, nil
}

// GetMonitors - getMonitors 전체 조회
func (c *MonteCarloClient) GetMonitors(ctx context.Context) ([]model.MonitorRecord, error) {
	var data struct {
		GetMonitors []json.RawMessage `json:"getMonitors"`
	}
	if err := c.Query(ctx, getMonitorsQuery, nil, &data); err != nil {
		return nil, fmt.Errorf("failed to query getMonitors: %w", err)
	}

	// 레코드 단위로 디코딩해서 깨진 레코드 하나가 나머지를 막지 않게 한다
	records := make([]model.MonitorRecord, 0, len(data.GetMonitors))
	for i, raw := range data.GetMonitors {
		var rec model.MonitorRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			c.logger.Warn("Skipping malformed monitor record",
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Query - GraphQL 요청 후 data를 out에 디코딩
//
// 요청마다 pageTimeout을 적용하고, 타임아웃/429/5xx는 maxRetries까지 지수 백오프로 재시도한다.
func (c *MonteCarloClient) Query(ctx context.Context, query string, vars map[string]any, out any) error {
	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("failed to marshal graphql request: %w", err)
	}

	var data json.RawMessage
	op := func() error {
		d, err := c.do(ctx, payload)
		if err != nil {
			return err
		}
		data = d
		return nil
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.retryWait
	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(c.maxRetries)), ctx)

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("Retrying Monte Carlo request", zap.Error(err), zap.Duration("wait", wait))
	}
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return err
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse graphql data: %w", err)
	}
	return nil
}

// do - 요청 1회. 재시도 불가능한 오류는 backoff.Permanent로 감싼다.
func (c *MonteCarloClient) do(ctx context.Context, payload []byte) (json.RawMessage, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.pageTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-mcd-id", c.keyID)
	req.Header.Set("x-mcd-token", c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// 상위 ctx가 끝났으면 재시도 의미 없음
		if ctx.Err() != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to send request to monte carlo: %w", ctx.Err()))
		}
		return nil, fmt.Errorf("failed to send request to monte carlo: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("monte carlo returned status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(fmt.Errorf("monte carlo returned status %d: %s", resp.StatusCode, string(body)))
	}

	var gqlResp graphQLResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to parse response: %w", err))
	}
	if len(gqlResp.Errors) > 0 {
		msgs := make([]string, 0, len(gqlResp.Errors))
		for _, e := range gqlResp.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, backoff.Permanent(fmt.Errorf("%w: %s", ErrGraphQL, strings.Join(msgs, "; ")))
	}
	return gqlResp.Data, nil
}
