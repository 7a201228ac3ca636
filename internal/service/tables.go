package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kube-rca/dqsync/internal/model"
)

type TableQuerier interface {
	GetTables(ctx context.Context, first int, after string) (*model.TablePage, error)
}

// TableInventoryService - getTables 전체 페이지를 읽어 PlatformMap 생성
type TableInventoryService struct {
	client    TableQuerier
	batchSize int
	logger    *zap.Logger
}

func NewTableInventoryService(client TableQuerier, batchSize int, logger *zap.Logger) *TableInventoryService {
	if batchSize < 1 {
		batchSize = 500
	}
	return &TableInventoryService{
		client:    client,
		batchSize: batchSize,
		logger:    logger.Named("tables"),
	}
}

// FetchPlatformMap - 페이지를 순서대로 모두 조회한 뒤 한 번에 변환
//
// 페이지 하나라도 실패하면 부분 결과 없이 에러를 반환한다.
func (s *TableInventoryService) FetchPlatformMap(ctx context.Context) (model.PlatformMap, error) {
	var (
		records []model.TableRecord
		cursor  string
		pages   int
		seen    = make(map[string]struct{})
	)

	for {
		page, err := s.client.GetTables(ctx, s.batchSize, cursor)
		if err != nil {
			return model.PlatformMap{}, fmt.Errorf("failed to fetch table page %d: %w", pages+1, err)
		}
		pages++
		records = append(records, page.Records()...)

		if !page.PageInfo.HasNextPage {
			break
		}

		next := page.PageInfo.EndCursor
		if next == "" {
			return model.PlatformMap{}, fmt.Errorf("failed to fetch table page %d: hasNextPage without endCursor", pages)
		}
		if _, dup := seen[next]; dup || next == cursor {
			return model.PlatformMap{}, fmt.Errorf("failed to fetch table page %d: repeated endCursor %q", pages, next)
		}
		seen[next] = struct{}{}
		cursor = next
	}

	entries := make(map[string]model.Platform, len(records))
	skipped := 0
	for _, rec := range records {
		platform, ok := model.ParsePlatform(rec.Warehouse.ConnectionType)
		if !ok {
			skipped++
			s.logger.Warn("Skipping table with unsupported connection type",
				zap.String("mcon", rec.Mcon),
				zap.String("connection_type", rec.Warehouse.ConnectionType),
			)
			continue
		}
		entries[rec.Mcon] = platform
	}

	s.logger.Info("Fetched table inventory",
		zap.Int("pages", pages),
		zap.Int("tables", len(records)),
		zap.Int("resolved", len(entries)),
		zap.Int("skipped", skipped),
	)
	return model.NewPlatformMap(entries), nil
}
