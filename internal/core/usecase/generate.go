package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ambiclean/apenso/internal/core/domain"
	"github.com/ambiclean/apenso/internal/core/ports"
)

// GenerateOptions carries the optional collaborators of a run. Nil exporters,
// stores and publishers are skipped.
type GenerateOptions struct {
	Title       string
	SummaryPath string
	Summary     ports.SummaryExporter
	Runs        ports.RunRepository
	Events      ports.EventPublisher

	// SideEffectTimeout bounds each of the history insert and the event
	// publish. Zero leaves them bound only by the caller's context.
	SideEffectTimeout time.Duration
	Logger            *slog.Logger
	Now               func() time.Time
}

type GenerateReportUseCase struct {
	templates  ports.TemplateLoader
	extractor  ports.TextExtractor
	storage    ports.ObjectStorage
	classifier *Classifier
	opts       GenerateOptions
}

func NewGenerateReportUseCase(
	templates ports.TemplateLoader,
	extractor ports.TextExtractor,
	storage ports.ObjectStorage,
	classifier *Classifier,
	opts GenerateOptions,
) *GenerateReportUseCase {
	if classifier == nil {
		classifier = NewClassifier(nil)
	}
	if strings.TrimSpace(opts.Title) == "" {
		opts.Title = DefaultReportTitle
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &GenerateReportUseCase{
		templates:  templates,
		extractor:  extractor,
		storage:    storage,
		classifier: classifier,
		opts:       opts,
	}
}

func (uc *GenerateReportUseCase) GenerateReport(ctx context.Context, req domain.GenerateRequest) (*domain.ReportRun, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	report, err := uc.buildReport(ctx, req)
	if err != nil {
		return nil, err
	}

	run := &domain.ReportRun{
		ID:             uuid.NewString(),
		TemplatePath:   req.TemplatePath,
		VisitPath:      req.VisitPath,
		WorksheetPath:  req.WorksheetPath,
		OutputPath:     req.OutputPath,
		TechnicalItems: len(report.Items),
		CostItems:      len(report.Costs),
		MatchedItems:   len(report.Entries) - report.Unpriced,
		TotalAmount:    report.TotalBRL,
		CreatedAt:      uc.opts.Now().UTC(),
	}

	uc.exportSummary(ctx, report, run)
	uc.recordRun(ctx, run)
	uc.announce(ctx, run)

	uc.opts.Logger.Info("report generated",
		"run_id", run.ID,
		"output", run.OutputPath,
		"technical_items", run.TechnicalItems,
		"cost_items", run.CostItems,
		"matched_items", run.MatchedItems,
		"total_amount", run.TotalAmount.StringFixed(2),
	)
	return run, nil
}

func (uc *GenerateReportUseCase) buildReport(ctx context.Context, req domain.GenerateRequest) (*domain.Report, error) {
	doc, err := uc.templates.Load(ctx, req.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}

	visit, err := uc.extract(ctx, "technical visit", req.VisitPath)
	if err != nil {
		return nil, err
	}
	worksheet, err := uc.extract(ctx, "cost worksheet", req.WorksheetPath)
	if err != nil {
		return nil, err
	}

	report := &domain.Report{
		Title:     uc.opts.Title,
		Items:     uc.classifier.ClassifyTechnical(visit.Lines),
		Costs:     uc.classifier.ClassifyCosts(worksheet.Lines),
		Generated: req,
	}
	report.Entries = Reconcile(report.Items, report.Costs)
	report.Unpriced, report.TotalBRL = totals(report.Entries)

	uc.opts.Logger.Debug("documents classified",
		"visit_lines", len(visit.Lines),
		"worksheet_lines", len(worksheet.Lines),
		"technical_items", len(report.Items),
		"cost_items", len(report.Costs),
		"unpriced_items", report.Unpriced,
	)

	RenderReport(doc, report.Title, report.Entries)

	if err := uc.save(ctx, req.OutputPath, doc); err != nil {
		return nil, err
	}
	return report, nil
}

func (uc *GenerateReportUseCase) extract(ctx context.Context, label, path string) (domain.ExtractedText, error) {
	text, err := uc.extractor.Extract(ctx, path)
	if err != nil {
		return domain.ExtractedText{}, fmt.Errorf("extract %s: %w", label, err)
	}
	return text, nil
}

func (uc *GenerateReportUseCase) save(ctx context.Context, path string, doc ports.ReportDocument) error {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return domain.WrapError(domain.ErrOutputWrite, "encode report", err)
	}
	if err := uc.storage.Save(ctx, path, &buf); err != nil {
		return domain.WrapError(domain.ErrOutputWrite, "save report", err)
	}
	return nil
}

func (uc *GenerateReportUseCase) exportSummary(ctx context.Context, report *domain.Report, run *domain.ReportRun) {
	if uc.opts.Summary == nil || uc.opts.SummaryPath == "" {
		return
	}
	data, err := uc.opts.Summary.Export(ctx, report)
	if err != nil {
		uc.opts.Logger.Warn("summary export failed", "run_id", run.ID, "error", err)
		return
	}
	if err := uc.storage.Save(ctx, uc.opts.SummaryPath, bytes.NewReader(data)); err != nil {
		uc.opts.Logger.Warn("summary save failed", "run_id", run.ID, "path", uc.opts.SummaryPath, "error", err)
		return
	}
	run.SummaryPath = uc.opts.SummaryPath
}

func (uc *GenerateReportUseCase) recordRun(ctx context.Context, run *domain.ReportRun) {
	if uc.opts.Runs == nil {
		return
	}
	ctx, cancel := uc.sideEffectContext(ctx)
	defer cancel()
	if err := uc.opts.Runs.SaveRun(ctx, run); err != nil {
		uc.opts.Logger.Warn("run history not saved", "run_id", run.ID, "error", err)
	}
}

func (uc *GenerateReportUseCase) announce(ctx context.Context, run *domain.ReportRun) {
	if uc.opts.Events == nil {
		return
	}
	ctx, cancel := uc.sideEffectContext(ctx)
	defer cancel()
	if err := uc.opts.Events.PublishReportGenerated(ctx, run); err != nil {
		uc.opts.Logger.Warn("report event not published", "run_id", run.ID, "temporary", domain.IsKind(err, domain.ErrTemporary), "error", err)
	}
}

func (uc *GenerateReportUseCase) sideEffectContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if uc.opts.SideEffectTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, uc.opts.SideEffectTimeout)
}

func totals(entries []domain.ReconciledEntry) (int, decimal.Decimal) {
	unpriced := 0
	total := decimal.Zero
	for _, entry := range entries {
		if !entry.Matched {
			unpriced++
			continue
		}
		amount, _ := entry.Amount.Value()
		if unit, ok := domain.ParseBRL(amount); ok {
			total = total.Add(unit.Mul(decimal.NewFromInt(serviceQuantity)))
		}
	}
	return unpriced, total
}

func validateRequest(req domain.GenerateRequest) error {
	missing := make([]string, 0, 4)
	if strings.TrimSpace(req.TemplatePath) == "" {
		missing = append(missing, "template")
	}
	if strings.TrimSpace(req.VisitPath) == "" {
		missing = append(missing, "technical visit")
	}
	if strings.TrimSpace(req.WorksheetPath) == "" {
		missing = append(missing, "cost worksheet")
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		missing = append(missing, "output")
	}
	if len(missing) > 0 {
		return domain.WrapError(domain.ErrInvalidInput, "validate request", errors.New("missing path: "+strings.Join(missing, ", ")))
	}
	return nil
}
