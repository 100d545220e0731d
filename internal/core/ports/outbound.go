package ports

import (
	"context"
	"io"

	"github.com/ambiclean/apenso/internal/core/domain"
)

// TextExtractor turns a paginated document into its ordered text lines.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (domain.ExtractedText, error)
}

// ReportDocument is a loaded template that paragraphs are appended to.
type ReportDocument interface {
	AddPageBreak()
	AddParagraph(text string)
	WriteTo(w io.Writer) (int64, error)
}

// TemplateLoader opens the report template.
type TemplateLoader interface {
	Load(ctx context.Context, path string) (ReportDocument, error)
}

// ObjectStorage opens and writes files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// SummaryExporter writes the reconciliation summary workbook.
type SummaryExporter interface {
	Export(ctx context.Context, report *domain.Report) ([]byte, error)
}

// RunRepository persists report run history.
type RunRepository interface {
	SaveRun(ctx context.Context, run *domain.ReportRun) error
}

// RunHistory lists past runs, newest first.
type RunHistory interface {
	ListRuns(ctx context.Context, limit int) ([]domain.ReportRun, error)
}

// EventPublisher announces finished runs.
type EventPublisher interface {
	PublishReportGenerated(ctx context.Context, run *domain.ReportRun) error
}
