// 메타데이터 카탈로그(DataHub GMS) REST emitter
//
// 환경변수:
//   - DATAHUB_GMS_URL: GMS 주소 (예: http://datahub-gms:8080)
//   - DATAHUB_GMS_TOKEN: personal access token (없으면 Authorization 헤더 생략)
//
// proposal 하나당 POST /aspects?action=ingestProposal 한 번.
// aspect 값은 JSON 문자열로 직렬화해 GenericAspect로 전달한다.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kube-rca/dqsync/internal/config"
	"github.com/kube-rca/dqsync/internal/model"
)

// CatalogClient 구조체 정의
type CatalogClient struct {
	gmsURL     string
	token      string
	httpClient *http.Client
}

type genericAspect struct {
	Value       string `json:"value"`
	ContentType string `json:"contentType"`
}

type ingestProposal struct {
	EntityType string        `json:"entityType"`
	EntityURN  string        `json:"entityUrn"`
	ChangeType string        `json:"changeType"`
	AspectName string        `json:"aspectName"`
	Aspect     genericAspect `json:"aspect"`
}

type ingestProposalRequest struct {
	Proposal ingestProposal `json:"proposal"`
}

// CatalogClient 객체 생성
func NewCatalogClient(cfg config.CatalogConfig) *CatalogClient {
	return &CatalogClient{
		gmsURL: strings.TrimRight(cfg.GMSURL, "/"),
		token:  cfg.Token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *CatalogClient) Name() string { return config.SinkCatalog }

// Emit - proposal 하나를 GMS에 upsert
func (c *CatalogClient) Emit(ctx context.Context, p model.ChangeProposal) error {
	value, err := json.Marshal(p.Aspect)
	if err != nil {
		return fmt.Errorf("failed to marshal aspect %s: %w", p.AspectName, err)
	}

	payload, err := json.Marshal(ingestProposalRequest{
		Proposal: ingestProposal{
			EntityType: p.EntityType,
			EntityURN:  p.EntityURN,
			ChangeType: p.ChangeType,
			AspectName: p.AspectName,
			Aspect: genericAspect{
				Value:       string(value),
				ContentType: "application/json",
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal proposal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gmsURL+"/aspects?action=ingestProposal", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-RestLi-Protocol-Version", "2.0.0")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send proposal to catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("catalog returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
