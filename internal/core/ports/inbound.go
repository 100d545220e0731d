package ports

import (
	"context"

	"github.com/ambiclean/apenso/internal/core/domain"
)

// ReportGenerator is the inbound contract for one end-to-end generation run.
type ReportGenerator interface {
	GenerateReport(ctx context.Context, req domain.GenerateRequest) (*domain.ReportRun, error)
}
