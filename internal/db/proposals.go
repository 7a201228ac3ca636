package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kube-rca/dqsync/internal/config"
	"github.com/kube-rca/dqsync/internal/model"
)

// EnsureProposalSchema - change_proposals 테이블 생성 (없으면)
func (p *Postgres) EnsureProposalSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS change_proposals (
			entity_urn  TEXT        NOT NULL,
			aspect_name TEXT        NOT NULL,
			entity_type TEXT        NOT NULL,
			change_type TEXT        NOT NULL,
			aspect      JSONB       NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (entity_urn, aspect_name)
		)`,
		`CREATE INDEX IF NOT EXISTS change_proposals_entity_type_idx ON change_proposals (entity_type)`,
	}
	for _, q := range queries {
		if _, err := p.Pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("failed to ensure change_proposals schema: %w", err)
		}
	}
	return nil
}

// ProposalSink - change_proposals 테이블에 aspect를 upsert 하는 sink
type ProposalSink struct {
	pg *Postgres
}

func NewProposalSink(pg *Postgres) *ProposalSink {
	return &ProposalSink{pg: pg}
}

func (s *ProposalSink) Name() string { return config.SinkPostgres }

// Emit - (entity_urn, aspect_name) 기준 upsert. 같은 run을 다시 실행해도 결과가 같다.
func (s *ProposalSink) Emit(ctx context.Context, p model.ChangeProposal) error {
	aspect, err := json.Marshal(p.Aspect)
	if err != nil {
		return fmt.Errorf("failed to marshal aspect %s: %w", p.AspectName, err)
	}

	_, err = s.pg.Pool.Exec(ctx, `
		INSERT INTO change_proposals (entity_urn, aspect_name, entity_type, change_type, aspect, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (entity_urn, aspect_name) DO UPDATE SET
			entity_type = EXCLUDED.entity_type,
			change_type = EXCLUDED.change_type,
			aspect      = EXCLUDED.aspect,
			updated_at  = NOW()
	`, p.EntityURN, p.AspectName, p.EntityType, p.ChangeType, aspect)
	if err != nil {
		return fmt.Errorf("failed to upsert change proposal: %w", err)
	}
	return nil
}
