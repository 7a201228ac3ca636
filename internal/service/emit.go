package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kube-rca/dqsync/internal/model"
)

// ChangeProposalSink - proposal 하나를 외부로 전달 (catalog REST, postgres, nats)
type ChangeProposalSink interface {
	Name() string
	Emit(ctx context.Context, p model.ChangeProposal) error
}

// MultiSink - 설정된 모든 sink로 fan-out
//
// 하나라도 실패하면 에러를 돌려주지만 나머지 sink에는 계속 전달한다.
type MultiSink struct {
	sinks  []ChangeProposalSink
	logger *zap.Logger
}

func NewMultiSink(logger *zap.Logger, sinks ...ChangeProposalSink) *MultiSink {
	return &MultiSink{sinks: sinks, logger: logger.Named("sink")}
}

func (m *MultiSink) Name() string { return "multi" }

func (m *MultiSink) Emit(ctx context.Context, p model.ChangeProposal) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Emit(ctx, p); err != nil {
			m.logger.Error("Failed to emit change proposal",
				zap.String("sink", s.Name()),
				zap.String("entity_urn", p.EntityURN),
				zap.String("aspect", p.AspectName),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// EmitResult - EmitAll 집계
type EmitResult struct {
	Emitted int
	Failed  int
}

func (r *EmitResult) add(o EmitResult) {
	r.Emitted += o.Emitted
	r.Failed += o.Failed
}

// EmitAll - proposal을 순서대로 전달. 실패는 세고 계속 진행한다.
// ctx가 취소되면 남은 proposal은 실패로 센다.
func EmitAll(ctx context.Context, logger *zap.Logger, sink ChangeProposalSink, proposals []model.ChangeProposal) EmitResult {
	var res EmitResult
	for i, p := range proposals {
		if err := ctx.Err(); err != nil {
			skipped := len(proposals) - i
			res.Failed += skipped
			logger.Warn("Context done, skipping remaining change proposals",
				zap.Int("skipped", skipped),
				zap.String("entity_urn", p.EntityURN),
				zap.Error(err),
			)
			break
		}
		if err := sink.Emit(ctx, p); err != nil {
			res.Failed++
			continue
		}
		res.Emitted++
	}
	return res
}
