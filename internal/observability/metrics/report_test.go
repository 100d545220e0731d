package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/ambiclean/apenso/internal/core/domain"
)

type generatorFake struct {
	run *domain.ReportRun
	err error
}

func (g *generatorFake) GenerateReport(context.Context, domain.GenerateRequest) (*domain.ReportRun, error) {
	return g.run, g.err
}

func TestInstrumentCountsSuccessfulRun(t *testing.T) {
	m := NewReportMetrics("apenso")
	gen := m.Instrument(&generatorFake{run: &domain.ReportRun{
		TechnicalItems: 4,
		CostItems:      3,
		MatchedItems:   3,
		TotalAmount:    decimal.RequireFromString("1350.25"),
		CreatedAt:      time.Unix(1_700_000_000, 0),
	}})

	if _, err := gen.GenerateReport(context.Background(), domain.GenerateRequest{}); err != nil {
		t.Fatalf("GenerateReport() error = %v", err)
	}

	if got := testutil.ToFloat64(m.runsTotal.WithLabelValues("success")); got != 1 {
		t.Fatalf("expected 1 successful run, got %v", got)
	}
	if got := testutil.ToFloat64(m.itemsTotal.WithLabelValues("unmatched")); got != 1 {
		t.Fatalf("expected 1 unmatched item, got %v", got)
	}
	if got := testutil.ToFloat64(m.amountTotal); got != 1350.25 {
		t.Fatalf("expected amount 1350.25, got %v", got)
	}
	if got := testutil.ToFloat64(m.lastSuccessful); got != 1_700_000_000 {
		t.Fatalf("unexpected last success timestamp %v", got)
	}
}

func TestInstrumentCountsFailedRun(t *testing.T) {
	m := NewReportMetrics("apenso")
	errBoom := errors.New("boom")
	gen := m.Instrument(&generatorFake{err: errBoom})

	if _, err := gen.GenerateReport(context.Background(), domain.GenerateRequest{}); !errors.Is(err, errBoom) {
		t.Fatalf("expected error to pass through, got %v", err)
	}
	if got := testutil.ToFloat64(m.runsTotal.WithLabelValues("error")); got != 1 {
		t.Fatalf("expected 1 failed run, got %v", got)
	}
	if got := testutil.CollectAndCount(m.itemsTotal); got != 0 {
		t.Fatalf("expected no item series after a failure, got %d", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := NewReportMetrics("apenso")
	m.ObserveRetry("nats.publish", 1, errors.New("down"))

	path := filepath.Join(t.TempDir(), "apenso.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), `apenso_outbound_retries_total{operation="nats.publish",service="apenso"} 1`) {
		t.Fatalf("unexpected textfile contents:\n%s", data)
	}
}
