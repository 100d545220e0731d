package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/ambiclean/apenso/internal/core/domain"
	"github.com/ambiclean/apenso/internal/infrastructure/resilience"
)

const (
	DefaultSubject       = "apenso.report.generated"
	EventReportGenerated = "report.generated"
)

// ReportEvent is the JSON payload announcing a generated report.
type ReportEvent struct {
	Event string            `json:"event"`
	Run   *domain.ReportRun `json:"run"`
}

type conn interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
}

type Publisher struct {
	nc       *nats.Conn
	conn     conn
	subject  string
	executor *resilience.Executor
}

type Options struct {
	ConnectTimeout     time.Duration
	ResilienceExecutor *resilience.Executor
	Logger             *slog.Logger
}

// Connect does not retry a failed initial connection: the publisher serves a
// single run and the caller treats a missing broker as a skipped side effect.
func Connect(url, subject string, options Options) (*Publisher, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if subject == "" {
		subject = DefaultSubject
	}

	nc, err := nats.Connect(
		url,
		nats.Name("apenso"),
		nats.Timeout(connectTimeout),
		nats.MaxReconnects(2),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, wrapTemporaryIfNeeded(fmt.Errorf("connect nats: %w", err))
	}
	p := newPublisher(nc, subject, options.ResilienceExecutor)
	p.nc = nc
	return p, nil
}

func newPublisher(c conn, subject string, executor *resilience.Executor) *Publisher {
	return &Publisher{conn: c, subject: subject, executor: executor}
}

func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

// PublishReportGenerated flushes before returning so the event is not lost
// when the process exits right after the run.
func (p *Publisher) PublishReportGenerated(ctx context.Context, run *domain.ReportRun) error {
	payload, err := json.Marshal(ReportEvent{Event: EventReportGenerated, Run: run})
	if err != nil {
		return fmt.Errorf("marshal report event: %w", err)
	}

	call := func(ctx context.Context) error {
		if err := p.conn.Publish(p.subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		if err := p.conn.FlushTimeout(flushTimeout(ctx)); err != nil {
			return fmt.Errorf("nats flush: %w", err)
		}
		return nil
	}

	if p.executor != nil {
		err = p.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

func flushTimeout(ctx context.Context) time.Duration {
	const fallback = 2 * time.Second
	deadline, ok := ctx.Deadline()
	if !ok {
		return fallback
	}
	if left := time.Until(deadline); left > 0 && left < fallback {
		return left
	}
	return fallback
}
