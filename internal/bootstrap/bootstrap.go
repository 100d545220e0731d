package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ambiclean/apenso/internal/config"
	"github.com/ambiclean/apenso/internal/core/ports"
	"github.com/ambiclean/apenso/internal/core/usecase"
	"github.com/ambiclean/apenso/internal/infrastructure/document/docx"
	"github.com/ambiclean/apenso/internal/infrastructure/export/xlsx"
	"github.com/ambiclean/apenso/internal/infrastructure/extractor"
	"github.com/ambiclean/apenso/internal/infrastructure/extractor/pdftext"
	"github.com/ambiclean/apenso/internal/infrastructure/extractor/plaintext"
	"github.com/ambiclean/apenso/internal/infrastructure/extractor/xlsxtext"
	"github.com/ambiclean/apenso/internal/infrastructure/queue/nats"
	"github.com/ambiclean/apenso/internal/infrastructure/repository/postgres"
	"github.com/ambiclean/apenso/internal/infrastructure/resilience"
	"github.com/ambiclean/apenso/internal/infrastructure/storage/localfs"
	"github.com/ambiclean/apenso/internal/infrastructure/vocabulary"
	"github.com/ambiclean/apenso/internal/observability/metrics"
)

const serviceName = "apenso"

type App struct {
	Config config.Config

	Generator ports.ReportGenerator
	Metrics   *metrics.ReportMetrics

	// History is nil when no database is configured.
	History ports.RunHistory

	logger  *slog.Logger
	closeFn []func()
}

// New wires the generator. Only the document pipeline is mandatory; an
// unreachable database or broker is logged and its side effect skipped.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{
		Config:  cfg,
		Metrics: metrics.NewReportMetrics(serviceName),
		logger:  logger,
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	brands, err := vocabulary.NewLoader(storage).Load(ctx, cfg.BrandVocabularyPath)
	if err != nil {
		return nil, fmt.Errorf("load brand vocabulary: %w", err)
	}

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    cfg.RetryMaxAttempts,
		RetryInitialBackoff: cfg.RetryInitialBackoff,
		RetryMaxBackoff:     cfg.RetryMaxBackoff,
		BreakerEnabled:      cfg.BreakerEnabled,
	}, resilience.WithLogger(logger), resilience.WithRetryObserver(app.Metrics.ObserveRetry))

	opts := usecase.GenerateOptions{
		Title:             cfg.ReportTitle,
		SummaryPath:       cfg.SummaryXLSXPath,
		SideEffectTimeout: cfg.SideEffectTimeout,
		Logger:            logger,
	}
	if cfg.SummaryXLSXPath != "" {
		opts.Summary = xlsx.NewExporter(logger)
	}
	if repo := app.openRunRepository(ctx, executor); repo != nil {
		opts.Runs = repo
		app.History = repo
	}
	if publisher := app.openPublisher(executor); publisher != nil {
		opts.Events = publisher
	}

	textExtractor := extractor.NewRouter(
		pdftext.NewExtractor(storage, logger),
		xlsxtext.NewExtractor(storage),
		plaintext.NewExtractor(storage),
	)
	generator := usecase.NewGenerateReportUseCase(
		docx.NewLoader(storage),
		textExtractor,
		storage,
		usecase.NewClassifier(brands),
		opts,
	)
	app.Generator = app.Metrics.Instrument(generator)
	return app, nil
}

func (a *App) openRunRepository(ctx context.Context, executor *resilience.Executor) *postgres.ReportRunRepository {
	if a.Config.PostgresDSN == "" {
		return nil
	}
	connectCtx, cancel := a.connectContext(ctx)
	defer cancel()

	db, err := postgres.OpenDB(connectCtx, a.Config.PostgresDSN)
	if err != nil {
		a.logger.Warn("run history disabled", "error", err)
		return nil
	}
	repo := postgres.NewReportRunRepository(db, executor)
	if err := repo.EnsureSchema(connectCtx); err != nil {
		a.logger.Warn("run history disabled", "error", fmt.Errorf("ensure schema: %w", err))
		_ = db.Close()
		return nil
	}
	a.closeFn = append(a.closeFn, func() { _ = db.Close() })
	return repo
}

func (a *App) openPublisher(executor *resilience.Executor) *nats.Publisher {
	if a.Config.NATSURL == "" {
		return nil
	}
	publisher, err := nats.Connect(a.Config.NATSURL, a.Config.NATSSubject, nats.Options{
		ConnectTimeout:     a.Config.SideEffectTimeout,
		ResilienceExecutor: executor,
		Logger:             a.logger,
	})
	if err != nil {
		a.logger.Warn("report events disabled", "error", err)
		return nil
	}
	a.closeFn = append(a.closeFn, publisher.Close)
	return publisher
}

func (a *App) connectContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.Config.SideEffectTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.Config.SideEffectTimeout)
}

// FlushMetrics writes the metrics textfile when a path is configured.
func (a *App) FlushMetrics() {
	if a.Config.MetricsTextfilePath == "" {
		return
	}
	if err := a.Metrics.WriteTextfile(a.Config.MetricsTextfilePath); err != nil {
		a.logger.Warn("metrics textfile not written", "path", a.Config.MetricsTextfilePath, "error", err)
	}
}

func (a *App) Close() {
	a.FlushMetrics()
	for i := len(a.closeFn) - 1; i >= 0; i-- {
		a.closeFn[i]()
	}
}
