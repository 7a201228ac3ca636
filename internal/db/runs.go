package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kube-rca/dqsync/internal/model"
)

// EnsureRunSchema - sync_runs 테이블 생성 (없으면)
func (p *Postgres) EnsureRunSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sync_runs (
			run_id              TEXT        PRIMARY KEY,
			status              TEXT        NOT NULL,
			started_at          TIMESTAMPTZ NOT NULL,
			finished_at         TIMESTAMPTZ,
			error               TEXT        NOT NULL DEFAULT '',
			platform_map_size   INTEGER     NOT NULL DEFAULT 0,
			monitors_fetched    INTEGER     NOT NULL DEFAULT 0,
			monitors_attached   INTEGER     NOT NULL DEFAULT 0,
			entities_unresolved INTEGER     NOT NULL DEFAULT 0,
			monitors_truncated  INTEGER     NOT NULL DEFAULT 0,
			datasets            INTEGER     NOT NULL DEFAULT 0,
			proposals_emitted   INTEGER     NOT NULL DEFAULT 0,
			proposals_failed    INTEGER     NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS sync_runs_started_at_idx ON sync_runs (started_at DESC)`,
	}
	for _, q := range queries {
		if _, err := p.Pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("failed to ensure sync_runs schema: %w", err)
		}
	}
	return nil
}

const runColumns = `run_id, status, started_at, finished_at, error,
	platform_map_size, monitors_fetched, monitors_attached, entities_unresolved,
	monitors_truncated, datasets, proposals_emitted, proposals_failed`

// SaveRun - run 시작/종료 시점마다 upsert
func (p *Postgres) SaveRun(ctx context.Context, run model.SyncRun) error {
	_, err := p.Pool.Exec(ctx, `
		INSERT INTO sync_runs (`+runColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (run_id) DO UPDATE SET
			status              = EXCLUDED.status,
			finished_at         = EXCLUDED.finished_at,
			error               = EXCLUDED.error,
			platform_map_size   = EXCLUDED.platform_map_size,
			monitors_fetched    = EXCLUDED.monitors_fetched,
			monitors_attached   = EXCLUDED.monitors_attached,
			entities_unresolved = EXCLUDED.entities_unresolved,
			monitors_truncated  = EXCLUDED.monitors_truncated,
			datasets            = EXCLUDED.datasets,
			proposals_emitted   = EXCLUDED.proposals_emitted,
			proposals_failed    = EXCLUDED.proposals_failed
	`,
		run.RunID, string(run.Status), run.StartedAt, run.FinishedAt, run.Error,
		run.PlatformMapSize, run.MonitorsFetched, run.MonitorsAttached, run.EntitiesUnresolved,
		run.MonitorsTruncated, run.Datasets, run.ProposalsEmitted, run.ProposalsFailed,
	)
	if err != nil {
		return fmt.Errorf("failed to save sync run: %w", err)
	}
	return nil
}

// ListRuns - 최신순 run 목록
func (p *Postgres) ListRuns(ctx context.Context, limit int) ([]model.SyncRun, error) {
	rows, err := p.Pool.Query(ctx, `
		SELECT `+runColumns+`
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	runs := []model.SyncRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sync runs: %w", err)
	}
	return runs, nil
}

// LatestRun - 가장 최근 run. 없으면 (nil, nil)
func (p *Postgres) LatestRun(ctx context.Context) (*model.SyncRun, error) {
	row := p.Pool.QueryRow(ctx, `
		SELECT `+runColumns+`
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT 1
	`)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return run, err
}

func scanRun(row pgx.Row) (*model.SyncRun, error) {
	var (
		run    model.SyncRun
		status string
	)
	if err := row.Scan(
		&run.RunID, &status, &run.StartedAt, &run.FinishedAt, &run.Error,
		&run.PlatformMapSize, &run.MonitorsFetched, &run.MonitorsAttached, &run.EntitiesUnresolved,
		&run.MonitorsTruncated, &run.Datasets, &run.ProposalsEmitted, &run.ProposalsFailed,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan sync run: %w", err)
	}
	run.Status = model.SyncRunStatus(status)
	return &run, nil
}
