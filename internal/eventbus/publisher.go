// NATS change proposal 발행
//
// 환경변수:
//   - NATS_URL (default: nats://localhost:4222)
//   - NATS_SUBJECT (default: datahub.mcp)
//
// proposal 하나당 메시지 하나. subject는 "<NATS_SUBJECT>.<entityType>"
// 헤더 Dq-Entity-Urn / Dq-Aspect-Name 으로 구독 측에서 본문을 열지 않고 라우팅할 수 있다.

package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/kube-rca/dqsync/internal/config"
	"github.com/kube-rca/dqsync/internal/model"
)

// ErrNotConnected - 연결이 끊긴 상태에서는 발행하지 않는다
var ErrNotConnected = errors.New("nats connection not established")

const (
	HeaderEntityURN  = "Dq-Entity-Urn"
	HeaderAspectName = "Dq-Aspect-Name"

	flushTimeout = 5 * time.Second
)

type Publisher struct {
	conn    *nats.Conn
	subject string
	logger  *zap.Logger
}

func NewPublisher(cfg config.NATSConfig, logger *zap.Logger) (*Publisher, error) {
	logger = logger.Named("nats")
	conn, err := nats.Connect(cfg.URL,
		nats.Name("dqsync"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("Disconnected from NATS", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	logger.Info("Connected to NATS", zap.String("url", cfg.URL), zap.String("subject", cfg.Subject))

	return &Publisher{conn: conn, subject: cfg.Subject, logger: logger}, nil
}

func (p *Publisher) Name() string { return config.SinkNATS }

// Emit - proposal을 JSON으로 발행. ctx는 flush 대기에만 쓰인다.
func (p *Publisher) Emit(ctx context.Context, cp model.ChangeProposal) error {
	msg, err := NewProposalMsg(p.subject, cp)
	if err != nil {
		return err
	}
	// 재연결 버퍼에 쌓인 메시지는 Drain 전에 재연결되지 않으면 사라지므로 실패로 센다
	if !p.IsConnected() {
		return fmt.Errorf("%w: %s", ErrNotConnected, p.conn.Status())
	}
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish change proposal: %w", err)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flushTimeout)
		defer cancel()
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush nats connection: %w", err)
	}
	return nil
}

// NewProposalMsg - proposal을 NATS 메시지로 변환
func NewProposalMsg(subject string, cp model.ChangeProposal) (*nats.Msg, error) {
	data, err := json.Marshal(cp)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal change proposal: %w", err)
	}
	msg := nats.NewMsg(subject + "." + cp.EntityType)
	msg.Data = data
	msg.Header.Set(HeaderEntityURN, cp.EntityURN)
	msg.Header.Set(HeaderAspectName, cp.AspectName)
	return msg, nil
}

func (p *Publisher) Close() {
	if p.conn != nil {
		if err := p.conn.Drain(); err != nil {
			p.conn.Close()
		}
		p.logger.Info("Disconnected from NATS")
	}
}

func (p *Publisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}
